package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/app/slotfill"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
	"github.com/PabloGalante/fitpal-agent/internal/observability"
)

// Slot names of the fitness constraint schema.
const (
	SlotDaysPerWeek domain.SlotName = "days_per_week"
	SlotEquipment   domain.SlotName = "equipment"
	SlotInjuries    domain.SlotName = "injuries"
)

// FitnessSchema gathers training constraints before programming a workout.
var FitnessSchema = domain.SlotSchema{
	Agent:    domain.AgentFitness,
	Greeting: "Let's put a training program together. I just need to know what I'm working with.",
	Slots: []domain.Slot{
		{Name: SlotDaysPerWeek, Required: true, Prompt: "How many days a week can you realistically train?", Hint: "integer 1-7"},
		{Name: SlotEquipment, Required: true, Prompt: "What equipment do you have access to? (full gym, dumbbells, resistance bands, just bodyweight...)", Hint: "list of available equipment"},
		{Name: SlotInjuries, Prompt: "Any injuries or movements I should program around?", Hint: "list of injuries or limitations"},
	},
	MinQuestions: 2,
	MaxQuestions: slotfill.DefaultMaxQuestions,
}

// FitnessAgent gathers training constraints and produces a workout plan.
type FitnessAgent struct {
	engine    *slotfill.Engine
	generator domain.Generator
}

func NewFitnessAgent(engine *slotfill.Engine, generator domain.Generator) *FitnessAgent {
	return &FitnessAgent{engine: engine, generator: generator}
}

func (a *FitnessAgent) ID() domain.AgentID { return domain.AgentFitness }

func (a *FitnessAgent) Prerequisites() []Prerequisite {
	return []Prerequisite{PrereqHealthMetrics}
}

func (a *FitnessAgent) Run(ctx context.Context, turn Turn) (string, error) {
	log := observability.LoggerFromContext(ctx).With("agent", a.ID())

	if turn.State.HealthMetrics == nil {
		return "", fmt.Errorf("%w: complete a health assessment first", domain.ErrMissingPrerequisite)
	}

	result, err := a.engine.Step(ctx, turn.State, FitnessSchema, turn.UserText, turn.Now)
	if err != nil {
		return "", err
	}
	if !result.Done() {
		return result.Reply, nil
	}

	constraints := constraintsFromValues(result.Values)
	constraints.Complete = result.Completed
	if result.Exhausted {
		applyConstraintDefaults(constraints)
	}

	var profile domain.UserProfile
	if turn.State.Profile != nil {
		profile = *turn.State.Profile
	}

	plan, err := retryGenerate(ctx, generateAttempts, func(ctx context.Context) (*domain.WorkoutPlan, error) {
		return a.generator.GenerateWorkoutPlan(ctx, profile, *constraints)
	})
	if err != nil {
		log.Error("workout plan generation failed", "error", err)
		return "", err
	}

	turn.State.FitnessConstraints = constraints
	turn.State.PutArtifact(&domain.Artifact{
		Kind:        domain.ArtifactWorkoutPlan,
		Partial:     result.Exhausted,
		WorkoutPlan: plan,
	}, turn.Now)
	log.Info("workout plan created", "days_per_week", plan.DaysPerWeek, "partial", result.Exhausted)

	reply := formatWorkoutPlan(plan)
	if result.Exhausted {
		reply = "I filled the gaps with standard assumptions, so adjust as needed.\n\n" + reply
	}
	return reply, nil
}

func constraintsFromValues(values domain.SlotValues) *domain.FitnessConstraints {
	c := &domain.FitnessConstraints{}
	if v, ok := values[SlotDaysPerWeek]; ok {
		c.DaysPerWeek, _ = strconv.Atoi(strings.TrimSpace(v.Text))
	}
	if v, ok := values[SlotEquipment]; ok {
		c.Equipment = splitList(v.Text)
	}
	if v, ok := values[SlotInjuries]; ok {
		c.Injuries = splitList(v.Text)
	}
	return c
}

func applyConstraintDefaults(c *domain.FitnessConstraints) {
	if c.DaysPerWeek <= 0 {
		c.DaysPerWeek = 3
	}
	if len(c.Equipment) == 0 {
		c.Equipment = []string{"bodyweight"}
	}
}

func formatWorkoutPlan(plan *domain.WorkoutPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your program: %s, %d days/week\n", plan.ProgramType, plan.DaysPerWeek)
	for _, w := range plan.Workouts {
		fmt.Fprintf(&b, "\n%s — %s\n", w.Day, w.Focus)
		for _, ex := range w.Exercises {
			fmt.Fprintf(&b, "  %s: %d sets x %s", ex.Name, ex.Sets, ex.Reps)
			if ex.Rest != "" {
				fmt.Fprintf(&b, " (rest %s)", ex.Rest)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
