package llm

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

const extractionSystemPrompt = `You extract structured fields from a user's conversational message.
Only include fields explicitly present in the message; never guess or carry over defaults.
If the user provides weight in pounds, convert to kilograms (divide by 2.205).
If height is in feet/inches, convert to centimeters (1 foot = 30.48 cm, 1 inch = 2.54 cm).
Return only a valid JSON object, nothing else.`

const nutritionSystemPrompt = `You are a professional nutrition planner.
Plans must meet the caloric and macro targets as closely as possible, use common
whole foods, and respect every listed exclusion without exception.
Return only valid JSON matching the requested shape.`

const fitnessSystemPrompt = `You are a certified strength coach. Programs must fit the
available equipment, respect listed injuries, and stay realistic for the stated frequency.
Return only valid JSON matching the requested shape.`

const coachSystemPrompt = `You are a daily-routine coach. Lay the user's plans onto a
practical day with reasonable times. Return only valid JSON matching the requested shape.`

const replySystemPrompt = `You are FitPal, a friendly and professional health and fitness companion.
- Be warm, supportive and non-judgmental.
- Use conversational language, not medical jargon.
- Keep replies short: a few sentences or a compact list.
- You are not a doctor and you do not diagnose; suggest professional help where appropriate.`

func buildExtractionPrompt(text string, schema domain.SlotSchema, prior domain.SlotValues) string {
	var b strings.Builder
	b.WriteString("Extract any of these fields found in the message:\n")
	for _, slot := range schema.Slots {
		shape := "string"
		if slot.Kind == domain.SlotAccumulating {
			shape = "object mapping item to value"
		}
		fmt.Fprintf(&b, "- %s (%s): %s\n", slot.Name, shape, slot.Hint)
	}

	if len(prior) > 0 {
		b.WriteString("\nAlready collected (do not repeat unless the message changes them):\n")
		for _, slot := range schema.Slots {
			v, ok := prior[slot.Name]
			if !ok || v.Empty() {
				continue
			}
			if len(v.Pairs) > 0 {
				fmt.Fprintf(&b, "- %s: %v\n", slot.Name, v.Pairs)
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", slot.Name, v.Text)
			}
		}
	}

	fmt.Fprintf(&b, "\nMessage: %s\n", text)
	return b.String()
}

func buildMealPlanPrompt(metrics domain.HealthMetrics, prefs domain.DietaryPreferences, exclusions []string) string {
	var b strings.Builder
	b.WriteString("Create a complete daily meal plan.\n\nNutritional targets:\n")
	fmt.Fprintf(&b, "- Total calories: %d (within 50)\n", metrics.TargetCalories)
	fmt.Fprintf(&b, "- Protein: %dg (within 10)\n", metrics.ProteinG)
	fmt.Fprintf(&b, "- Carbohydrates: %dg (within 10)\n", metrics.CarbsG)
	fmt.Fprintf(&b, "- Fat: %dg (within 10)\n", metrics.FatG)

	b.WriteString("\nPreferred foods:\n")
	writeList(&b, "proteins", prefs.ProteinPreferences)
	writeList(&b, "carbs", prefs.CarbPreferences)
	writeList(&b, "fats", prefs.FatPreferences)

	if len(exclusions) > 0 {
		fmt.Fprintf(&b, "\nHard exclusions (never include these foods): %s\n", strings.Join(exclusions, ", "))
	}

	b.WriteString(`
Meal distribution: breakfast 25-30%, lunch 30-35%, dinner 30-35%, snack 10-15% of calories.
Return JSON: {"meals": [{"meal_type", "name", "description", "calories", "protein_g", "carbs_g", "fat_g", "foods": [...]}]}
with exactly four meals: breakfast, lunch, dinner, snack.`)
	return b.String()
}

func buildWorkoutPrompt(profile domain.UserProfile, constraints domain.FitnessConstraints) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a weekly workout program: %d days per week.\n", constraints.DaysPerWeek)
	writeList(&b, "equipment", constraints.Equipment)
	writeList(&b, "injuries to avoid loading", constraints.Injuries)
	if profile.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s.\n", profile.Goal)
	}
	b.WriteString(`Return JSON: {"program_type", "days_per_week", "workouts": [{"day", "focus", "exercises": [{"name", "sets", "reps", "rest"}]}]}`)
	return b.String()
}

func buildRecipePrompt(metrics domain.HealthMetrics, prefs domain.DietaryPreferences, exclusions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest one dish around %d calories.\n", metrics.TargetCalories/3)
	writeList(&b, "preferred proteins", prefs.ProteinPreferences)
	writeList(&b, "preferred carbs", prefs.CarbPreferences)
	if len(exclusions) > 0 {
		fmt.Fprintf(&b, "Hard exclusions (never use): %s\n", strings.Join(exclusions, ", "))
	}
	b.WriteString(`Return JSON: {"name", "description", "ingredients": [...], "steps": [...], "calories", "protein_g", "carbs_g", "fat_g"}`)
	return b.String()
}

func buildSchedulePrompt(metrics *domain.HealthMetrics, workout *domain.WorkoutPlan, meals *domain.MealPlan) string {
	var b strings.Builder
	b.WriteString("Lay out a daily schedule.\n")
	if workout != nil {
		fmt.Fprintf(&b, "The user trains %d days per week (%s).\n", workout.DaysPerWeek, workout.ProgramType)
	}
	if meals != nil {
		fmt.Fprintf(&b, "They follow a %d kcal meal plan with %d meals.\n", meals.TotalCalories, len(meals.Meals))
	}
	if metrics != nil {
		fmt.Fprintf(&b, "Daily target: %d kcal.\n", metrics.TargetCalories)
	}
	b.WriteString(`Return JSON: {"wake_time", "sleep_time", "workout_time", "meal_times": {"breakfast", "lunch", "dinner", "snack"}, "hydration_reminders": [...]}`)
	return b.String()
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, ", "))
}
