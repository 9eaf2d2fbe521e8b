package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/app/slotfill"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
	"github.com/PabloGalante/fitpal-agent/internal/observability"
)

// Slot names of the dietary preference schema.
const (
	SlotProteinPreferences domain.SlotName = "protein_preferences"
	SlotProteinFrequency   domain.SlotName = "protein_frequency"
	SlotCarbPreferences    domain.SlotName = "carb_preferences"
	SlotCarbFrequency      domain.SlotName = "carb_frequency"
	SlotFatPreferences     domain.SlotName = "fat_preferences"
	SlotFatFrequency       domain.SlotName = "fat_frequency"
	SlotDislikes           domain.SlotName = "dislikes"
	SlotRestrictions       domain.SlotName = "restrictions"
)

// NutritionSchema gathers dietary preferences. Only the preference slots are
// required; the minimum of five exchanges keeps the dialog from ending on a
// lucky one-shot answer.
var NutritionSchema = domain.SlotSchema{
	Agent:    domain.AgentNutrition,
	Greeting: "Great, let's build you a meal plan! First I'd like to understand how you actually eat.",
	Slots: []domain.Slot{
		{Name: SlotProteinPreferences, Required: true, Prompt: "Which protein sources do you enjoy? Think chicken, fish, eggs, tofu, legumes...", Hint: "list of protein foods the user likes"},
		{Name: SlotCarbPreferences, Required: true, Prompt: "What about carbs - rice, pasta, potatoes, oats, bread? Which ones work for you?", Hint: "list of carbohydrate foods the user likes"},
		{Name: SlotFatPreferences, Required: true, Prompt: "And healthy fats: avocado, olive oil, nuts, cheese - any favorites?", Hint: "list of fat sources the user likes"},
		{Name: SlotProteinFrequency, Kind: domain.SlotAccumulating, Prompt: "How often do you eat each of those proteins in a typical week?", Hint: "map of protein food to how often it is eaten"},
		{Name: SlotCarbFrequency, Kind: domain.SlotAccumulating, Prompt: "How often do those carbs show up in your week?", Hint: "map of carb food to how often it is eaten"},
		{Name: SlotFatFrequency, Kind: domain.SlotAccumulating, Prompt: "How regularly do you have those fat sources?", Hint: "map of fat source to how often it is eaten"},
		{Name: SlotDislikes, Prompt: "Any foods you just don't like? I'll keep them off the plan.", Hint: "list of disliked foods"},
		{Name: SlotRestrictions, Prompt: "Any dietary restrictions or allergies I must respect (vegetarian, dairy-free, gluten-free...)?", Hint: "list of dietary restrictions or allergies"},
	},
	MinQuestions: 5,
	MaxQuestions: slotfill.DefaultMaxQuestions,
}

// Meal plan totals must land within these tolerances of the targets.
const (
	mealPlanCalorieTolerance = 50
	mealPlanProteinTolerance = 10
	mealPlanCarbTolerance    = 10
	mealPlanFatTolerance     = 10
)

// NutritionAgent gathers dietary preferences and produces a daily meal plan
// against the health metrics' caloric and macro targets.
type NutritionAgent struct {
	engine    *slotfill.Engine
	generator domain.Generator
}

func NewNutritionAgent(engine *slotfill.Engine, generator domain.Generator) *NutritionAgent {
	return &NutritionAgent{engine: engine, generator: generator}
}

func (a *NutritionAgent) ID() domain.AgentID { return domain.AgentNutrition }

func (a *NutritionAgent) Prerequisites() []Prerequisite {
	return []Prerequisite{PrereqHealthMetrics}
}

func (a *NutritionAgent) Run(ctx context.Context, turn Turn) (string, error) {
	log := observability.LoggerFromContext(ctx).With("agent", a.ID())

	if turn.State.HealthMetrics == nil {
		return "", fmt.Errorf("%w: complete a health assessment first", domain.ErrMissingPrerequisite)
	}

	result, err := a.engine.Step(ctx, turn.State, NutritionSchema, turn.UserText, turn.Now)
	if err != nil {
		return "", err
	}
	if !result.Done() {
		return result.Reply, nil
	}

	prefs := preferencesFromValues(result.Values)
	prefs.Complete = result.Completed
	exclusions := ExpandExclusions(prefs.Exclusions())
	metrics := *turn.State.HealthMetrics

	plan, err := retryGenerate(ctx, generateAttempts, func(ctx context.Context) (*domain.MealPlan, error) {
		p, err := a.generator.GenerateMealPlan(ctx, metrics, *prefs, exclusions)
		if err != nil {
			return nil, err
		}
		if err := validateMealPlan(p, metrics, exclusions); err != nil {
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		log.Error("meal plan generation failed", "error", err)
		return "", err
	}

	turn.State.DietaryPreferences = prefs
	turn.State.PutArtifact(&domain.Artifact{
		Kind:     domain.ArtifactMealPlan,
		Partial:  result.Exhausted,
		MealPlan: plan,
	}, turn.Now)
	log.Info("meal plan created", "total_calories", plan.TotalCalories, "partial", result.Exhausted)

	reply := formatMealPlan(plan, metrics)
	if result.Exhausted {
		reply = "We ran out of questions, so this is a best-effort plan built from what you told me plus sensible defaults.\n\n" + reply
	}
	return reply, nil
}

// validateMealPlan enforces the tolerance and exclusion invariants before a
// generated plan is accepted.
func validateMealPlan(plan *domain.MealPlan, metrics domain.HealthMetrics, exclusions []string) error {
	if plan == nil || len(plan.Meals) == 0 {
		return fmt.Errorf("empty meal plan")
	}
	plan.Recalculate()

	if diff := abs(plan.TotalCalories - metrics.TargetCalories); diff > mealPlanCalorieTolerance {
		return fmt.Errorf("calories off target by %d kcal", diff)
	}
	if diff := abs(plan.TotalProteinG - metrics.ProteinG); diff > mealPlanProteinTolerance {
		return fmt.Errorf("protein off target by %dg", diff)
	}
	if diff := abs(plan.TotalCarbsG - metrics.CarbsG); diff > mealPlanCarbTolerance {
		return fmt.Errorf("carbs off target by %dg", diff)
	}
	if diff := abs(plan.TotalFatG - metrics.FatG); diff > mealPlanFatTolerance {
		return fmt.Errorf("fat off target by %dg", diff)
	}

	for _, meal := range plan.Meals {
		if hit := violatesExclusions(meal.Foods, exclusions); hit != "" {
			return fmt.Errorf("meal %q contains excluded food %q", meal.Name, hit)
		}
		if hit := violatesExclusions([]string{meal.Name}, exclusions); hit != "" {
			return fmt.Errorf("meal %q matches excluded item %q", meal.Name, hit)
		}
	}
	return nil
}

func preferencesFromValues(values domain.SlotValues) *domain.DietaryPreferences {
	prefs := &domain.DietaryPreferences{}
	if v, ok := values[SlotProteinPreferences]; ok {
		prefs.ProteinPreferences = splitList(v.Text)
	}
	if v, ok := values[SlotCarbPreferences]; ok {
		prefs.CarbPreferences = splitList(v.Text)
	}
	if v, ok := values[SlotFatPreferences]; ok {
		prefs.FatPreferences = splitList(v.Text)
	}
	if v, ok := values[SlotProteinFrequency]; ok {
		prefs.ProteinFrequency = v.Pairs
	}
	if v, ok := values[SlotCarbFrequency]; ok {
		prefs.CarbFrequency = v.Pairs
	}
	if v, ok := values[SlotFatFrequency]; ok {
		prefs.FatFrequency = v.Pairs
	}
	if v, ok := values[SlotDislikes]; ok {
		prefs.Dislikes = splitList(v.Text)
	}
	if v, ok := values[SlotRestrictions]; ok {
		prefs.Restrictions = cleanRestrictions(splitList(v.Text))
	}
	return prefs
}

// cleanRestrictions drops "none"-style answers so they don't become
// exclusions.
func cleanRestrictions(items []string) []string {
	var out []string
	for _, item := range items {
		switch strings.ToLower(item) {
		case "none", "no", "nothing", "n/a", "no restrictions":
			continue
		}
		out = append(out, item)
	}
	return out
}

func formatMealPlan(plan *domain.MealPlan, metrics domain.HealthMetrics) string {
	var b strings.Builder
	b.WriteString("Here's your daily meal plan:\n")
	for _, meal := range plan.Meals {
		fmt.Fprintf(&b, "\n%s: %s\n", strings.ToUpper(meal.Type), meal.Name)
		if meal.Description != "" {
			fmt.Fprintf(&b, "%s\n", meal.Description)
		}
		fmt.Fprintf(&b, "%d kcal | %dg protein | %dg carbs | %dg fat\n",
			meal.Calories, meal.ProteinG, meal.CarbsG, meal.FatG)
		if len(meal.Foods) > 0 {
			fmt.Fprintf(&b, "Foods: %s\n", strings.Join(meal.Foods, ", "))
		}
	}
	fmt.Fprintf(&b, "\nDaily totals: %d/%d kcal, %d/%dg protein, %d/%dg carbs, %d/%dg fat\n",
		plan.TotalCalories, metrics.TargetCalories,
		plan.TotalProteinG, metrics.ProteinG,
		plan.TotalCarbsG, metrics.CarbsG,
		plan.TotalFatG, metrics.FatG)
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
