package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/app/slotfill"
	"github.com/PabloGalante/fitpal-agent/internal/calc"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
	"github.com/PabloGalante/fitpal-agent/internal/observability"
)

// Slot names of the health assessment schema.
const (
	SlotAge           domain.SlotName = "age"
	SlotGender        domain.SlotName = "gender"
	SlotWeightKg      domain.SlotName = "weight_kg"
	SlotHeightCm      domain.SlotName = "height_cm"
	SlotActivityLevel domain.SlotName = "activity_level"
	SlotGoal          domain.SlotName = "goal"
)

// HealthSchema collects everything the metric calculations need. MinQuestions
// is zero so a first message carrying the full profile completes immediately.
var HealthSchema = domain.SlotSchema{
	Agent:    domain.AgentHealth,
	Greeting: "Hi! I'm your health assessment coach. A few quick questions and I'll work out your metrics and daily targets.",
	Slots: []domain.Slot{
		{Name: SlotAge, Required: true, Prompt: "How old are you?", Hint: "age in years, integer"},
		{Name: SlotGender, Required: true, Prompt: "What is your biological sex (male or female)? I need it for the metabolic formulas.", Hint: "male or female"},
		{Name: SlotWeightKg, Required: true, Prompt: "What's your current weight? Kilograms preferred.", Hint: "weight in kilograms; convert pounds by dividing by 2.205"},
		{Name: SlotHeightCm, Required: true, Prompt: "And your height? Centimeters preferred.", Hint: "height in centimeters; 1 foot = 30.48 cm, 1 inch = 2.54 cm"},
		{Name: SlotActivityLevel, Required: true, Prompt: "How active are you day to day? (sedentary, lightly active, moderately active, very active, extremely active)", Hint: "one of: sedentary, lightly_active, moderately_active, very_active, extremely_active"},
		{Name: SlotGoal, Required: true, Prompt: "What's your goal: lose weight, maintain, or gain muscle?", Hint: "one of: lose_weight, maintain, gain_muscle"},
	},
	MinQuestions: 0,
	MaxQuestions: slotfill.DefaultMaxQuestions,
}

// HealthAgent gathers the user profile and derives BMI, TDEE and caloric
// targets from it.
type HealthAgent struct {
	engine  *slotfill.Engine
	replier domain.Replier
}

func NewHealthAgent(engine *slotfill.Engine, replier domain.Replier) *HealthAgent {
	return &HealthAgent{engine: engine, replier: replier}
}

func (a *HealthAgent) ID() domain.AgentID { return domain.AgentHealth }

func (a *HealthAgent) Prerequisites() []Prerequisite { return nil }

func (a *HealthAgent) Run(ctx context.Context, turn Turn) (string, error) {
	log := observability.LoggerFromContext(ctx).With("agent", a.ID())

	result, err := a.engine.Step(ctx, turn.State, HealthSchema, turn.UserText, turn.Now)
	if err != nil {
		return "", err
	}
	if !result.Done() {
		return result.Reply, nil
	}

	profile := profileFromValues(result.Values)
	if result.Exhausted {
		applyProfileDefaults(profile)
	}
	if !profile.Complete() {
		// Exhausted without the core numbers; nothing safe to compute.
		log.Warn("health session ended without a usable profile")
		return "I couldn't gather enough to assess your health safely. Whenever you're ready, tell me your age, weight, height, sex, activity level and goal and we'll pick it up again.", nil
	}

	metrics, err := calc.MetricsFor(*profile, turn.Now)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrArtifactGenerationFailed, err)
	}
	turn.State.Profile = profile
	turn.State.HealthMetrics = metrics
	turn.State.Touch(turn.Now)
	log.Info("health metrics calculated", "bmi", metrics.BMI, "target_calories", metrics.TargetCalories)

	reply := a.assessmentMessage(ctx, profile, metrics)
	if result.Exhausted {
		reply = "I worked with what you gave me plus some standard assumptions, so treat this as a best-effort assessment.\n\n" + reply
	}
	return reply, nil
}

// assessmentMessage asks the language model for a friendly summary and falls
// back to a locally formatted one if the call fails.
func (a *HealthAgent) assessmentMessage(ctx context.Context, profile *domain.UserProfile, m *domain.HealthMetrics) string {
	prompt := fmt.Sprintf(
		"Write a warm, encouraging health assessment for this user.\n"+
			"Profile: age %d, %s, %.1f kg, %.0f cm, %s, goal %s.\n"+
			"Metrics: BMI %.1f (%s), TDEE %.0f kcal, target %d kcal, protein %dg, carbs %dg, fat %dg.\n"+
			"Explain the BMI briefly, present the targets clearly, and close with next steps (meal planning, workouts). Keep it short.",
		profile.Age, profile.Gender, profile.WeightKg, profile.HeightCm, profile.ActivityLevel, profile.Goal,
		m.BMI, m.BMICategory, m.TDEE, m.TargetCalories, m.ProteinG, m.CarbsG, m.FatG,
	)
	if a.replier != nil {
		if reply, err := a.replier.GenerateReply(ctx, prompt, nil); err == nil && reply != "" {
			return reply
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thanks! Here's your assessment:\n")
	fmt.Fprintf(&b, "- BMI: %.1f (%s)\n", m.BMI, m.BMICategory)
	fmt.Fprintf(&b, "- Estimated daily burn (TDEE): %.0f kcal\n", m.TDEE)
	fmt.Fprintf(&b, "- Daily target: %d kcal — %dg protein, %dg carbs, %dg fat\n", m.TargetCalories, m.ProteinG, m.CarbsG, m.FatG)
	for _, rec := range m.Recommendations {
		fmt.Fprintf(&b, "- %s\n", rec)
	}
	b.WriteString("Want a meal plan or a workout program next?")
	return b.String()
}

func profileFromValues(values domain.SlotValues) *domain.UserProfile {
	p := &domain.UserProfile{}
	if v, ok := values[SlotAge]; ok {
		p.Age, _ = strconv.Atoi(strings.TrimSpace(v.Text))
	}
	if v, ok := values[SlotGender]; ok {
		switch strings.ToLower(strings.TrimSpace(v.Text)) {
		case "male", "m":
			p.Gender = domain.GenderMale
		case "female", "f":
			p.Gender = domain.GenderFemale
		}
	}
	if v, ok := values[SlotWeightKg]; ok {
		p.WeightKg = parseMeasure(v.Text)
	}
	if v, ok := values[SlotHeightCm]; ok {
		p.HeightCm = parseMeasure(v.Text)
	}
	if v, ok := values[SlotActivityLevel]; ok {
		p.ActivityLevel = parseActivityLevel(v.Text)
	}
	if v, ok := values[SlotGoal]; ok {
		p.Goal = parseGoal(v.Text)
	}
	return p
}

// applyProfileDefaults fills the fields that have a defensible default when a
// session exhausts. Age, sex, weight and height have none.
func applyProfileDefaults(p *domain.UserProfile) {
	if p.ActivityLevel == "" {
		p.ActivityLevel = domain.ActivityModeratelyActive
	}
	if p.Goal == "" {
		p.Goal = domain.GoalMaintain
	}
}

// parseMeasure reads the leading number out of strings like "80", "80 kg" or
// "175.5cm".
func parseMeasure(text string) float64 {
	text = strings.TrimSpace(text)
	end := 0
	for end < len(text) && (text[end] == '.' || (text[end] >= '0' && text[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0
	}
	v, _ := strconv.ParseFloat(text[:end], 64)
	return v
}

func parseActivityLevel(text string) domain.ActivityLevel {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
	switch domain.ActivityLevel(normalized) {
	case domain.ActivitySedentary, domain.ActivityLightlyActive, domain.ActivityModeratelyActive,
		domain.ActivityVeryActive, domain.ActivityExtremelyActive:
		return domain.ActivityLevel(normalized)
	}
	return ""
}

func parseGoal(text string) domain.FitnessGoal {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
	switch domain.FitnessGoal(normalized) {
	case domain.GoalLoseWeight, domain.GoalMaintain, domain.GoalGainMuscle:
		return domain.FitnessGoal(normalized)
	}
	return ""
}
