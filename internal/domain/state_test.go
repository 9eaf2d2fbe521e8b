package domain_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

var t0 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestTouchIsMonotone(t *testing.T) {
	state := domain.NewConversationState("s", "u", t0)

	state.Touch(t0.Add(time.Minute))
	assert.Equal(t, t0.Add(time.Minute), state.UpdatedAt)

	// An earlier timestamp never moves UpdatedAt backwards.
	state.Touch(t0.Add(-time.Hour))
	assert.Equal(t, t0.Add(time.Minute), state.UpdatedAt)
}

func TestHistoryLimitsToMostRecent(t *testing.T) {
	state := domain.NewConversationState("s", "u", t0)
	for i := 0; i < 5; i++ {
		state.AppendMessage(&domain.Message{ID: domain.MessageID(strconv.Itoa(i)), Role: domain.RoleUser, Text: "m", CreatedAt: t0})
	}

	assert.Len(t, state.History(3), 3)
	assert.Len(t, state.History(0), 5)
	assert.Len(t, state.History(10), 5)
}

func TestPutArtifactSupersedesPriorActive(t *testing.T) {
	state := domain.NewConversationState("s", "u", t0)

	first := &domain.Artifact{Kind: domain.ArtifactMealPlan, MealPlan: &domain.MealPlan{TotalCalories: 1800}}
	state.PutArtifact(first, t0)
	second := &domain.Artifact{Kind: domain.ArtifactMealPlan, MealPlan: &domain.MealPlan{TotalCalories: 2100}}
	state.PutArtifact(second, t0.Add(time.Hour))

	active := state.ActiveArtifact(domain.ArtifactMealPlan)
	require.NotNil(t, active)
	assert.Equal(t, 2100, active.MealPlan.TotalCalories)
	assert.Equal(t, domain.ArtifactSuperseded, first.Status)

	// Other kinds are untouched.
	assert.Nil(t, state.ActiveArtifact(domain.ArtifactWorkoutPlan))
	// History keeps both versions.
	assert.Len(t, state.Artifacts[domain.ArtifactMealPlan], 2)
}

func TestBeginAndEndSlotSession(t *testing.T) {
	state := domain.NewConversationState("s", "u", t0)

	session := state.BeginSlotSession(domain.AgentNutrition, t0)
	assert.Equal(t, domain.AgentNutrition, state.ActiveAgent)
	assert.Same(t, session, state.Session)

	state.EndSlotSession(t0.Add(time.Minute))
	assert.Empty(t, state.ActiveAgent)
	assert.Nil(t, state.Session)
}

func TestCloneIsDeep(t *testing.T) {
	state := domain.NewConversationState("s", "u", t0)
	state.AppendMessage(&domain.Message{ID: "m1", Role: domain.RoleUser, Text: "hi", CreatedAt: t0})
	state.Profile = &domain.UserProfile{Age: 30}
	state.HealthMetrics = &domain.HealthMetrics{TargetCalories: 2000, Recommendations: []string{"walk more"}}
	state.DietaryPreferences = &domain.DietaryPreferences{
		ProteinPreferences: []string{"chicken"},
		ProteinFrequency:   map[string]string{"chicken": "daily"},
	}
	session := state.BeginSlotSession(domain.AgentNutrition, t0)
	session.Values["dislikes"] = domain.SlotValue{Text: "broccoli"}
	state.PutArtifact(&domain.Artifact{Kind: domain.ArtifactMealPlan, MealPlan: &domain.MealPlan{TotalCalories: 2000}}, t0)

	clone := state.Clone()
	clone.Messages[0].Text = "changed"
	clone.Profile.Age = 99
	clone.HealthMetrics.Recommendations[0] = "changed"
	clone.DietaryPreferences.ProteinFrequency["chicken"] = "never"
	clone.Session.Values["dislikes"] = domain.SlotValue{Text: "changed"}
	clone.ActiveArtifact(domain.ArtifactMealPlan).MealPlan.TotalCalories = 1

	assert.Equal(t, "hi", state.Messages[0].Text)
	assert.Equal(t, 30, state.Profile.Age)
	assert.Equal(t, "walk more", state.HealthMetrics.Recommendations[0])
	assert.Equal(t, "daily", state.DietaryPreferences.ProteinFrequency["chicken"])
	assert.Equal(t, "broccoli", state.Session.Values["dislikes"].Text)
	assert.Equal(t, 2000, state.ActiveArtifact(domain.ArtifactMealPlan).MealPlan.TotalCalories)
}

func TestProfileComplete(t *testing.T) {
	var p *domain.UserProfile
	assert.False(t, p.Complete())

	p = &domain.UserProfile{Age: 30, Gender: domain.GenderMale, WeightKg: 80, HeightCm: 175}
	assert.False(t, p.Complete())

	p.ActivityLevel = domain.ActivityModeratelyActive
	p.Goal = domain.GoalMaintain
	assert.True(t, p.Complete())
}

func TestExclusionsMergesDislikesAndRestrictions(t *testing.T) {
	prefs := &domain.DietaryPreferences{
		Dislikes:     []string{"broccoli"},
		Restrictions: []string{"dairy-free"},
	}
	assert.ElementsMatch(t, []string{"broccoli", "dairy-free"}, prefs.Exclusions())

	var nilPrefs *domain.DietaryPreferences
	assert.Nil(t, nilPrefs.Exclusions())
}
