package agents_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/fitpal-agent/internal/adapters/llm"
	"github.com/PabloGalante/fitpal-agent/internal/app/agents"
	"github.com/PabloGalante/fitpal-agent/internal/app/slotfill"
	"github.com/PabloGalante/fitpal-agent/internal/calc"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// emptyExtractor never finds anything, which drives sessions to exhaustion.
type emptyExtractor struct{}

func (emptyExtractor) Extract(context.Context, string, domain.SlotSchema, domain.SlotValues) (domain.SlotValues, []domain.SlotName, error) {
	return domain.SlotValues{}, nil, nil
}

func testNow() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

func freshState() *domain.ConversationState {
	return domain.NewConversationState("sess-1", "user-1", testNow())
}

func stateWithMetrics(t *testing.T) *domain.ConversationState {
	t.Helper()
	state := freshState()
	profile := domain.UserProfile{
		Age:           30,
		Gender:        domain.GenderMale,
		WeightKg:      80,
		HeightCm:      175,
		ActivityLevel: domain.ActivityModeratelyActive,
		Goal:          domain.GoalLoseWeight,
	}
	metrics, err := calc.MetricsFor(profile, testNow())
	require.NoError(t, err)
	state.Profile = &profile
	state.HealthMetrics = metrics
	return state
}

func runTurn(t *testing.T, agent agents.Agent, state *domain.ConversationState, text string) string {
	t.Helper()
	reply, err := agent.Run(context.Background(), agents.Turn{State: state, UserText: text, Now: testNow()})
	require.NoError(t, err)
	return reply
}

func TestHealthAgentCompletesInOneTurn(t *testing.T) {
	mock := llm.NewMock()
	agent := agents.NewHealthAgent(slotfill.NewEngine(mock), mock)
	state := freshState()

	reply := runTurn(t, agent, state,
		"I'm 30 years old, male, 80 kg and 175 cm, moderately active, and I want to lose weight")

	require.NotNil(t, state.HealthMetrics, "metrics should be computed from a complete first message")
	assert.Equal(t, "Overweight", state.HealthMetrics.BMICategory)
	assert.Contains(t, reply, "BMI")

	require.NotNil(t, state.Profile)
	assert.Equal(t, 30, state.Profile.Age)
	assert.Equal(t, domain.GenderMale, state.Profile.Gender)
	assert.Equal(t, domain.GoalLoseWeight, state.Profile.Goal)

	// Session closed, no agent left active.
	assert.Nil(t, state.Session)
	assert.Empty(t, state.ActiveAgent)
}

func TestHealthAgentAsksForMissingFields(t *testing.T) {
	mock := llm.NewMock()
	agent := agents.NewHealthAgent(slotfill.NewEngine(mock), mock)
	state := freshState()

	reply := runTurn(t, agent, state, "I'm 30 years old and male")

	assert.Nil(t, state.HealthMetrics)
	assert.Equal(t, domain.AgentHealth, state.ActiveAgent)
	// First unfilled required slot after age and gender is weight.
	assert.Contains(t, reply, "weight")
}

func TestHealthAgentExhaustedWithoutNumbersDeclinesSafely(t *testing.T) {
	agent := agents.NewHealthAgent(slotfill.NewEngine(emptyExtractor{}), llm.NewMock())
	state := freshState()

	var reply string
	for i := 0; i < slotfill.DefaultMaxQuestions+1; i++ {
		reply = runTurn(t, agent, state, "I'd rather not say")
	}

	// Age, weight and the rest have no defensible defaults; no metrics.
	assert.Nil(t, state.HealthMetrics)
	assert.Nil(t, state.Profile)
	assert.Empty(t, state.ActiveAgent)
	assert.Contains(t, reply, "couldn't gather enough")
}

func TestNutritionAgentRequiresHealthMetrics(t *testing.T) {
	mock := llm.NewMock()
	agent := agents.NewNutritionAgent(slotfill.NewEngine(mock), mock)
	state := freshState()

	_, err := agent.Run(context.Background(), agents.Turn{State: state, UserText: "meal plan please", Now: testNow()})
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
	assert.Empty(t, state.ActiveAgent)
}

func TestNutritionAgentBuildsPlanHonoringExclusions(t *testing.T) {
	mock := llm.NewMock()
	agent := agents.NewNutritionAgent(slotfill.NewEngine(mock), mock)
	state := stateWithMetrics(t)

	turns := []string{
		"I'd like a meal plan",
		"I like chicken, salmon and tofu",
		"rice and oats work for me",
		"avocado and olive oil for fats",
		"I eat chicken daily. rice twice a week",
		"I'm dairy-free and I don't like pork",
	}
	var reply string
	for _, text := range turns {
		reply = runTurn(t, agent, state, text)
	}

	prefs := state.DietaryPreferences
	require.NotNil(t, prefs, "preferences should be recorded after completion")
	assert.True(t, prefs.Complete)
	assert.Contains(t, prefs.ProteinPreferences, "chicken")
	assert.Contains(t, prefs.Restrictions, "dairy-free")
	assert.Contains(t, prefs.Dislikes, "pork")
	assert.Equal(t, "daily", prefs.ProteinFrequency["chicken"])

	artifact := state.ActiveArtifact(domain.ArtifactMealPlan)
	require.NotNil(t, artifact)
	assert.False(t, artifact.Partial)

	plan := artifact.MealPlan
	require.NotNil(t, plan)
	assert.Equal(t, state.HealthMetrics.TargetCalories, plan.TotalCalories)

	exclusions := agents.ExpandExclusions(prefs.Exclusions())
	for _, meal := range plan.Meals {
		for _, food := range meal.Foods {
			for _, excl := range exclusions {
				assert.NotEqual(t, excl, food, "meal %s contains excluded food", meal.Type)
			}
		}
	}

	assert.Contains(t, reply, "meal plan")
	assert.Empty(t, state.ActiveAgent)
}

func TestNutritionAgentExhaustionYieldsPartialPlan(t *testing.T) {
	agent := agents.NewNutritionAgent(slotfill.NewEngine(emptyExtractor{}), llm.NewMock())
	state := stateWithMetrics(t)

	var reply string
	for i := 0; i < slotfill.DefaultMaxQuestions+1; i++ {
		reply = runTurn(t, agent, state, "not sure really")
	}

	// A best-effort plan still comes out, flagged as partial, and the
	// session is closed.
	artifact := state.ActiveArtifact(domain.ArtifactMealPlan)
	require.NotNil(t, artifact)
	assert.True(t, artifact.Partial)
	require.NotNil(t, state.DietaryPreferences)
	assert.False(t, state.DietaryPreferences.Complete)
	assert.Empty(t, state.ActiveAgent)
	assert.Nil(t, state.Session)
	assert.Contains(t, reply, "best-effort")
}

func TestFitnessAgentProgramsAroundInjury(t *testing.T) {
	mock := llm.NewMock()
	agent := agents.NewFitnessAgent(slotfill.NewEngine(mock), mock)
	state := stateWithMetrics(t)

	turns := []string{
		"I want a training program",
		"I can train 4 days a week with dumbbells and a barbell, but I have a bad knee",
		"nothing else to add",
	}
	var reply string
	for _, text := range turns {
		reply = runTurn(t, agent, state, text)
	}

	constraints := state.FitnessConstraints
	require.NotNil(t, constraints)
	assert.Equal(t, 4, constraints.DaysPerWeek)
	assert.Contains(t, constraints.Injuries, "knee")

	artifact := state.ActiveArtifact(domain.ArtifactWorkoutPlan)
	require.NotNil(t, artifact)
	plan := artifact.WorkoutPlan
	require.NotNil(t, plan)
	assert.Equal(t, 4, plan.DaysPerWeek)
	assert.Len(t, plan.Workouts, 4)

	for _, w := range plan.Workouts {
		for _, ex := range w.Exercises {
			assert.NotContains(t, ex.Name, "Squat", "knee injury should steer clear of squats")
		}
	}
	assert.Contains(t, reply, "4 days/week")
}

func TestRecipeAgentNeedsBothPrerequisites(t *testing.T) {
	mock := llm.NewMock()
	agent := agents.NewRecipeAgent(mock)

	state := stateWithMetrics(t)
	_, err := agent.Run(context.Background(), agents.Turn{State: state, UserText: "give me a recipe", Now: testNow()})
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)

	state.DietaryPreferences = &domain.DietaryPreferences{
		ProteinPreferences: []string{"salmon"},
		CarbPreferences:    []string{"rice"},
		Restrictions:       []string{"dairy-free"},
		Complete:           true,
	}
	reply := runTurn(t, agent, state, "give me a recipe")

	artifact := state.ActiveArtifact(domain.ArtifactRecipe)
	require.NotNil(t, artifact)
	require.NotNil(t, artifact.Recipe)
	assert.NotContains(t, artifact.Recipe.Ingredients, "cheese")
	assert.NotEmpty(t, reply)
}

func TestCoachAgentSchedulesAroundActivePlans(t *testing.T) {
	mock := llm.NewMock()
	agent := agents.NewCoachAgent(mock, mock)
	state := stateWithMetrics(t)

	state.PutArtifact(&domain.Artifact{
		Kind:        domain.ArtifactWorkoutPlan,
		WorkoutPlan: &domain.WorkoutPlan{ProgramType: "Full Body", DaysPerWeek: 3},
	}, testNow())

	reply := runTurn(t, agent, state, "plan my day")

	artifact := state.ActiveArtifact(domain.ArtifactDailySchedule)
	require.NotNil(t, artifact)
	require.NotNil(t, artifact.DailySchedule)
	// A workout plan exists, so the day reserves a training slot.
	assert.NotEmpty(t, artifact.DailySchedule.WorkoutTime)
	assert.NotEmpty(t, reply)
}

func TestCheckPrerequisites(t *testing.T) {
	state := freshState()

	err := agents.CheckPrerequisites(state, []agents.Prerequisite{agents.PrereqHealthMetrics})
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)

	state = stateWithMetrics(t)
	assert.NoError(t, agents.CheckPrerequisites(state, []agents.Prerequisite{agents.PrereqHealthMetrics}))

	err = agents.CheckPrerequisites(state, []agents.Prerequisite{agents.PrereqDietaryPreferences})
	assert.ErrorIs(t, err, domain.ErrMissingPrerequisite)
}
