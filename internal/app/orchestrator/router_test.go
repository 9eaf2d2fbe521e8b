package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

func routerState() *domain.ConversationState {
	return domain.NewConversationState("sess-1", "user-1", time.Now())
}

func TestRouteStickinessWithOpenSession(t *testing.T) {
	router := NewRouter(KeywordClassifier{})
	state := routerState()
	state.ActiveAgent = domain.AgentHealth

	// An open slot-filling session wins over any keyword signal.
	assert.Equal(t, domain.AgentHealth, router.Route(state, "actually, give me a meal plan"))
}

func TestRouteReturnsEmptyForGeneralChat(t *testing.T) {
	router := NewRouter(KeywordClassifier{})
	assert.Empty(t, router.Route(routerState(), "hello there, how are you?"))
}

func TestRouteSingleIntent(t *testing.T) {
	router := NewRouter(KeywordClassifier{})
	cases := map[string]domain.AgentID{
		"I want a meal plan":              domain.AgentNutrition,
		"build me a workout program":      domain.AgentFitness,
		"what's my bmi?":                  domain.AgentHealth,
		"got a recipe for tonight?":       domain.AgentRecipe,
		"help me with my daily schedule":  domain.AgentCoach,
	}
	for text, want := range cases {
		assert.Equal(t, want, router.Route(routerState(), text), "text=%q", text)
	}
}

func TestRouteTieBreaksOnSatisfiedPrerequisites(t *testing.T) {
	router := NewRouter(KeywordClassifier{})
	text := "what should I cook and when does it fit my schedule?"

	// Recipe and coach tie. With nothing gathered yet only the coach's
	// prerequisites hold, so it wins despite lower static priority.
	state := routerState()
	assert.Equal(t, domain.AgentCoach, router.Route(state, text))

	// Once metrics and preferences exist, the recipe intent is actionable
	// and static priority decides.
	state.HealthMetrics = &domain.HealthMetrics{TargetCalories: 2000}
	state.DietaryPreferences = &domain.DietaryPreferences{Complete: true}
	assert.Equal(t, domain.AgentRecipe, router.Route(state, text))
}

func TestKeywordClassifierNormalizesByStrongestIntent(t *testing.T) {
	scores := KeywordClassifier{}.Classify("I want a meal plan for breakfast and a workout")

	// Nutrition hits three keywords, fitness one.
	assert.Equal(t, 1.0, scores[domain.AgentNutrition])
	assert.Less(t, scores[domain.AgentFitness], 1.0)
	assert.Greater(t, scores[domain.AgentFitness], 0.0)
}

func TestKeywordClassifierEmptyForNoHits(t *testing.T) {
	assert.Empty(t, KeywordClassifier{}.Classify("good morning!"))
}
