package llm

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// Mock is a deterministic, rule-based stand-in for the language model. It
// implements the extraction, generation and reply ports so the whole system
// runs and tests without network access. Extraction is a pure function of the
// input text, which keeps it idempotent.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

var (
	ageRe    = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years?\s*old|years?\b|yo\b)|\bage\s*(?:is|:)?\s*(\d{1,3})`)
	weightRe = regexp.MustCompile(`(?i)\b(\d{1,3}(?:\.\d+)?)\s*(kg|kilograms?|kilos?|lbs?|pounds?)\b`)
	heightRe = regexp.MustCompile(`(?i)\b(\d{2,3}(?:\.\d+)?)\s*(cm|centimeters?)\b`)
	feetRe   = regexp.MustCompile(`\b(\d)'(\d{1,2})"?`)
	daysRe   = regexp.MustCompile(`(?i)\b(\d)\s*(?:days?|times)\s*(?:a|per)\s*week`)
	freqRe   = regexp.MustCompile(`(?i)(daily|every day|almost daily|once a week|twice a week|\d+(?:-\d+)?\s*times\s*a\s*week)`)

	dislikeRe = regexp.MustCompile(`(?i)(?:don't like|do not like|dislike|hate|not a fan of|avoid|can't stand)\s+([a-z'\- ,]+?)(?:\.|!|\bbecause\b|$)`)
)

var proteinFoods = []string{"chicken breast", "chicken", "turkey", "beef", "steak", "pork", "salmon", "tuna", "fish", "shrimp", "eggs", "egg", "tofu", "tempeh", "lentils", "beans", "greek yogurt", "cottage cheese"}
var carbFoods = []string{"brown rice", "rice", "pasta", "sweet potatoes", "sweet potato", "potatoes", "potato", "oats", "oatmeal", "bread", "quinoa", "couscous", "tortilla", "fruit", "bananas"}
var fatFoods = []string{"avocado", "olive oil", "almonds", "walnuts", "peanut butter", "nuts", "seeds", "cheese", "butter", "coconut oil"}

var restrictionTerms = []string{
	"vegetarian", "vegan", "pescatarian", "dairy-free", "dairy free",
	"gluten-free", "gluten free", "keto", "paleo", "halal", "kosher",
	"lactose intolerant", "nut allergy",
}

// Extract implements domain.Extractor with keyword and pattern rules.
func (m *Mock) Extract(_ context.Context, text string, schema domain.SlotSchema, _ domain.SlotValues) (domain.SlotValues, []domain.SlotName, error) {
	values := make(domain.SlotValues)

	for _, slot := range schema.Slots {
		var v domain.SlotValue
		switch slot.Name {
		case "age":
			if match := ageRe.FindStringSubmatch(text); match != nil {
				if match[1] != "" {
					v.Text = match[1]
				} else {
					v.Text = match[2]
				}
			}
		case "gender":
			v.Text = extractGender(text)
		case "weight_kg":
			v.Text = extractWeight(text)
		case "height_cm":
			v.Text = extractHeight(text)
		case "activity_level":
			v.Text = extractActivity(text)
		case "goal":
			v.Text = extractGoal(text)
		case "protein_preferences":
			v.Text = strings.Join(foodsIn(text, proteinFoods, true), ", ")
		case "carb_preferences":
			v.Text = strings.Join(foodsIn(text, carbFoods, true), ", ")
		case "fat_preferences":
			v.Text = strings.Join(foodsIn(text, fatFoods, true), ", ")
		case "protein_frequency":
			v.Pairs = frequenciesIn(text, proteinFoods)
		case "carb_frequency":
			v.Pairs = frequenciesIn(text, carbFoods)
		case "fat_frequency":
			v.Pairs = frequenciesIn(text, fatFoods)
		case "dislikes":
			v.Text = strings.Join(extractDislikes(text), ", ")
		case "restrictions":
			v.Text = strings.Join(extractRestrictions(text), ", ")
		case "days_per_week":
			if match := daysRe.FindStringSubmatch(text); match != nil {
				v.Text = match[1]
			}
		case "equipment":
			v.Text = strings.Join(foodsIn(text, []string{"full gym", "gym", "dumbbells", "barbell", "kettlebell", "resistance bands", "pull-up bar", "bench", "bodyweight"}, false), ", ")
		case "injuries":
			v.Text = strings.Join(foodsIn(text, []string{"knee", "shoulder", "back", "wrist", "ankle", "elbow", "hip"}, false), ", ")
		}
		if !v.Empty() {
			values[slot.Name] = v
		}
	}

	matched := make([]domain.SlotName, 0, len(values))
	for name := range values {
		matched = append(matched, name)
	}
	return values, matched, nil
}

func extractGender(text string) string {
	lower := strings.ToLower(text)
	// "female" contains "male"; check the longer term first.
	if strings.Contains(lower, "female") || strings.Contains(lower, "woman") {
		return "female"
	}
	if strings.Contains(lower, "male") || strings.Contains(lower, " man") || strings.HasPrefix(lower, "man") {
		return "male"
	}
	return ""
}

func extractWeight(text string) string {
	match := weightRe.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	value, _ := strconv.ParseFloat(match[1], 64)
	unit := strings.ToLower(match[2])
	if strings.HasPrefix(unit, "lb") || strings.HasPrefix(unit, "pound") {
		value /= 2.205
	}
	return strconv.FormatFloat(math.Round(value*10)/10, 'f', -1, 64)
}

func extractHeight(text string) string {
	if match := heightRe.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	if match := feetRe.FindStringSubmatch(text); match != nil {
		feet, _ := strconv.Atoi(match[1])
		inches, _ := strconv.Atoi(match[2])
		cm := float64(feet)*30.48 + float64(inches)*2.54
		return strconv.FormatFloat(math.Round(cm*10)/10, 'f', -1, 64)
	}
	return ""
}

func extractActivity(text string) string {
	lower := strings.ToLower(text)
	for _, level := range []string{"extremely active", "very active", "moderately active", "lightly active", "sedentary"} {
		if strings.Contains(lower, level) || strings.Contains(lower, strings.ReplaceAll(level, " ", "_")) {
			return strings.ReplaceAll(level, " ", "_")
		}
	}
	return ""
}

func extractGoal(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "lose"):
		return "lose_weight"
	case strings.Contains(lower, "gain") || strings.Contains(lower, "muscle") || strings.Contains(lower, "bulk"):
		return "gain_muscle"
	case strings.Contains(lower, "maintain"):
		return "maintain"
	}
	return ""
}

// foodsIn returns the known terms present in the text, in lexicon order.
// When skipNegated is set, terms in a negated phrase ("don't like X") are
// dropped so dislikes don't leak into preferences.
func foodsIn(text string, lexicon []string, skipNegated bool) []string {
	lower := strings.ToLower(text)
	var negated string
	if skipNegated {
		if match := dislikeRe.FindStringSubmatch(lower); match != nil {
			negated = match[1]
		}
	}
	var out []string
	seen := make(map[string]bool)
	for _, term := range lexicon {
		if !strings.Contains(lower, term) {
			continue
		}
		if negated != "" && strings.Contains(negated, term) {
			continue
		}
		// Skip shorter lexicon entries already covered by a longer match
		// ("chicken" when "chicken breast" matched).
		covered := false
		for prev := range seen {
			if strings.Contains(prev, term) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}

// frequenciesIn pairs each known food with a frequency phrase found in the
// same sentence.
func frequenciesIn(text string, lexicon []string) map[string]string {
	pairs := make(map[string]string)
	for _, sentence := range strings.Split(text, ".") {
		lower := strings.ToLower(sentence)
		freq := freqRe.FindString(lower)
		if freq == "" {
			continue
		}
		for _, food := range foodsIn(lower, lexicon, false) {
			pairs[food] = strings.TrimSpace(freq)
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	return pairs
}

func extractDislikes(text string) []string {
	var out []string
	for _, match := range dislikeRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		for _, item := range strings.Split(strings.ReplaceAll(match[1], " or ", ","), ",") {
			item = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(item), "and "))
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func extractRestrictions(text string) []string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "no other restrictions") || strings.Contains(lower, "no restrictions") {
		return []string{"none"}
	}
	var out []string
	for _, term := range restrictionTerms {
		if strings.Contains(lower, term) {
			out = append(out, term)
		}
	}
	return out
}

// --- generation --- //

// GenerateMealPlan builds a plan whose totals match the targets exactly by
// distributing them across four meals, using preferred foods when they
// survive the exclusion list.
func (m *Mock) GenerateMealPlan(_ context.Context, metrics domain.HealthMetrics, prefs domain.DietaryPreferences, exclusions []string) (*domain.MealPlan, error) {
	protein := pickFood(prefs.ProteinPreferences, proteinFoods, exclusions, "lentils")
	carb := pickFood(prefs.CarbPreferences, carbFoods, exclusions, "rice")
	fat := pickFood(prefs.FatPreferences, fatFoods, exclusions, "olive oil")

	fractions := []struct {
		mealType string
		share    float64
	}{
		{"breakfast", 0.25},
		{"lunch", 0.35},
		{"dinner", 0.30},
		{"snack", 0.10},
	}

	plan := &domain.MealPlan{}
	usedCal, usedP, usedC, usedF := 0, 0, 0, 0
	for i, f := range fractions {
		var cal, p, c, fg int
		if i == len(fractions)-1 {
			// Last meal absorbs rounding so totals land exactly on target.
			cal = metrics.TargetCalories - usedCal
			p = metrics.ProteinG - usedP
			c = metrics.CarbsG - usedC
			fg = metrics.FatG - usedF
		} else {
			cal = int(math.Round(float64(metrics.TargetCalories) * f.share))
			p = int(math.Round(float64(metrics.ProteinG) * f.share))
			c = int(math.Round(float64(metrics.CarbsG) * f.share))
			fg = int(math.Round(float64(metrics.FatG) * f.share))
		}
		usedCal += cal
		usedP += p
		usedC += c
		usedF += fg

		plan.Meals = append(plan.Meals, domain.Meal{
			Type:        f.mealType,
			Name:        fmt.Sprintf("%s with %s", titleCase(protein), carb),
			Description: fmt.Sprintf("Simple %s built around %s.", f.mealType, protein),
			Calories:    cal,
			ProteinG:    p,
			CarbsG:      c,
			FatG:        fg,
			Foods:       []string{protein, carb, fat},
		})
	}
	plan.Recalculate()
	return plan, nil
}

func (m *Mock) GenerateWorkoutPlan(_ context.Context, _ domain.UserProfile, constraints domain.FitnessConstraints) (*domain.WorkoutPlan, error) {
	days := constraints.DaysPerWeek
	if days <= 0 {
		days = 3
	}
	programType := "Full Body"
	if days >= 4 {
		programType = "Upper/Lower Split"
	}

	hasWeights := false
	for _, eq := range constraints.Equipment {
		lower := strings.ToLower(eq)
		if strings.Contains(lower, "gym") || strings.Contains(lower, "dumbbell") || strings.Contains(lower, "barbell") {
			hasWeights = true
		}
	}
	badKnee := false
	for _, inj := range constraints.Injuries {
		if strings.Contains(strings.ToLower(inj), "knee") {
			badKnee = true
		}
	}

	weekdays := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	plan := &domain.WorkoutPlan{ProgramType: programType, DaysPerWeek: days}
	for i := 0; i < days && i < len(weekdays); i++ {
		var exercises []domain.Exercise
		if hasWeights {
			exercises = append(exercises, domain.Exercise{Name: "Bench Press", Sets: 4, Reps: "8-10", Rest: "90s"})
			if badKnee {
				exercises = append(exercises, domain.Exercise{Name: "Hip Thrust", Sets: 3, Reps: "10-12", Rest: "90s"})
			} else {
				exercises = append(exercises, domain.Exercise{Name: "Goblet Squat", Sets: 3, Reps: "10-12", Rest: "90s"})
			}
			exercises = append(exercises, domain.Exercise{Name: "One-Arm Row", Sets: 3, Reps: "10-12", Rest: "60s"})
		} else {
			exercises = append(exercises, domain.Exercise{Name: "Push-Up", Sets: 3, Reps: "10-15", Rest: "60s"})
			if badKnee {
				exercises = append(exercises, domain.Exercise{Name: "Glute Bridge", Sets: 3, Reps: "12-15", Rest: "60s"})
			} else {
				exercises = append(exercises, domain.Exercise{Name: "Bodyweight Squat", Sets: 3, Reps: "12-15", Rest: "60s"})
			}
			exercises = append(exercises, domain.Exercise{Name: "Plank", Sets: 3, Reps: "30-45s", Rest: "45s"})
		}
		plan.Workouts = append(plan.Workouts, domain.Workout{
			Day:       weekdays[i],
			Focus:     programType,
			Exercises: exercises,
		})
	}
	return plan, nil
}

func (m *Mock) GenerateRecipe(_ context.Context, metrics domain.HealthMetrics, prefs domain.DietaryPreferences, exclusions []string) (*domain.Recipe, error) {
	protein := pickFood(prefs.ProteinPreferences, proteinFoods, exclusions, "lentils")
	carb := pickFood(prefs.CarbPreferences, carbFoods, exclusions, "rice")
	fat := pickFood(prefs.FatPreferences, fatFoods, exclusions, "olive oil")

	perMeal := metrics.TargetCalories / 3
	return &domain.Recipe{
		Name:        fmt.Sprintf("%s Bowl with %s", titleCase(protein), titleCase(carb)),
		Description: "A one-bowl dish that fits your macros.",
		Ingredients: []string{protein, carb, fat, "mixed vegetables", "salt and pepper"},
		Steps: []string{
			fmt.Sprintf("Cook the %s.", carb),
			fmt.Sprintf("Season and pan-cook the %s in %s.", protein, fat),
			"Combine with the vegetables and serve.",
		},
		Calories: perMeal,
		ProteinG: metrics.ProteinG / 3,
		CarbsG:   metrics.CarbsG / 3,
		FatG:     metrics.FatG / 3,
	}, nil
}

func (m *Mock) GenerateDailySchedule(_ context.Context, _ *domain.HealthMetrics, workout *domain.WorkoutPlan, _ *domain.MealPlan) (*domain.DailySchedule, error) {
	schedule := &domain.DailySchedule{
		WakeTime:  "07:00",
		SleepTime: "23:00",
		MealTimes: map[string]string{
			"breakfast": "08:00",
			"lunch":     "13:00",
			"dinner":    "19:30",
			"snack":     "16:00",
		},
		HydrationReminders: []string{
			"Glass of water right after waking up",
			"Refill your bottle at lunch",
		},
	}
	if workout != nil {
		schedule.WorkoutTime = "18:00"
	}
	return schedule, nil
}

// GenerateReply implements domain.Replier with a canned supportive message.
func (m *Mock) GenerateReply(_ context.Context, prompt string, _ []*domain.Message) (string, error) {
	_ = prompt
	return "", nil // empty reply makes agents fall back to their local formatting
}

// pickFood returns the first preference that survives the exclusions, then
// the first lexicon entry that does, then the fallback.
func pickFood(preferred []string, lexicon []string, exclusions []string, fallback string) string {
	for _, food := range preferred {
		if excludedTerm(food, exclusions) == "" {
			return strings.ToLower(food)
		}
	}
	for _, food := range lexicon {
		if excludedTerm(food, exclusions) == "" {
			return food
		}
	}
	return fallback
}

func excludedTerm(food string, exclusions []string) string {
	lower := strings.ToLower(food)
	for _, excl := range exclusions {
		if lower == excl || strings.Contains(lower, excl) || strings.Contains(excl, lower) {
			return excl
		}
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
