package orchestrator

import (
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// IntentClassifier scores a user message against the agent intents. The
// language model never decides control flow; classification stays a
// deterministic, locally testable step.
type IntentClassifier interface {
	Classify(text string) map[domain.AgentID]float64
}

// Router assigns each turn to exactly one agent. An open slot-filling session
// always continues; otherwise the message is classified, ties break first on
// satisfied prerequisites and then on a fixed priority order.
type Router struct {
	classifier IntentClassifier
	threshold  float64
}

// routePriority is the fixed tie-break order.
var routePriority = []domain.AgentID{
	domain.AgentHealth,
	domain.AgentNutrition,
	domain.AgentFitness,
	domain.AgentRecipe,
	domain.AgentCoach,
}

func NewRouter(classifier IntentClassifier) *Router {
	return &Router{classifier: classifier, threshold: 0.5}
}

// Route returns the agent for this turn, or "" when the intent is general or
// too ambiguous, in which case the orchestrator answers with a clarification.
func (r *Router) Route(state *domain.ConversationState, userText string) domain.AgentID {
	if state.ActiveAgent != "" {
		return state.ActiveAgent
	}

	scores := r.classifier.Classify(userText)
	best := 0.0
	for _, score := range scores {
		if score > best {
			best = score
		}
	}
	if best < r.threshold {
		return ""
	}

	var tied []domain.AgentID
	for agent, score := range scores {
		if score == best {
			tied = append(tied, agent)
		}
	}
	if len(tied) == 1 {
		return tied[0]
	}

	// Prefer the intent whose prerequisites are already satisfied.
	satisfied := func(agent domain.AgentID) bool {
		switch agent {
		case domain.AgentNutrition, domain.AgentFitness:
			return state.HealthMetrics != nil
		case domain.AgentRecipe:
			return state.HealthMetrics != nil && state.DietaryPreferences != nil && state.DietaryPreferences.Complete
		default:
			return true
		}
	}
	for _, agent := range routePriority {
		if contains(tied, agent) && satisfied(agent) {
			return agent
		}
	}
	for _, agent := range routePriority {
		if contains(tied, agent) {
			return agent
		}
	}
	return ""
}

func contains(list []domain.AgentID, agent domain.AgentID) bool {
	for _, a := range list {
		if a == agent {
			return true
		}
	}
	return false
}

// KeywordClassifier is the default deterministic classifier: it counts intent
// keyword hits per category and normalizes by the strongest category.
type KeywordClassifier struct{}

var intentKeywords = map[domain.AgentID][]string{
	domain.AgentHealth: {
		"health", "bmi", "assessment", "metrics", "calories do i need",
		"tdee", "weight", "body", "assess",
	},
	domain.AgentNutrition: {
		"meal plan", "meal", "nutrition", "diet", "eat", "food", "macro",
		"breakfast", "lunch", "dinner",
	},
	domain.AgentFitness: {
		"workout", "training", "exercise", "gym", "program", "lift",
		"cardio", "strength",
	},
	domain.AgentRecipe: {
		"recipe", "cook", "dish", "ingredients", "how do i make",
	},
	domain.AgentCoach: {
		"schedule", "routine", "motivation", "coach", "daily plan",
		"check in", "my day",
	},
}

func (KeywordClassifier) Classify(text string) map[domain.AgentID]float64 {
	lower := strings.ToLower(text)
	hits := make(map[domain.AgentID]int)
	maxHits := 0
	for agent, keywords := range intentKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits[agent]++
			}
		}
		if hits[agent] > maxHits {
			maxHits = hits[agent]
		}
	}

	scores := make(map[domain.AgentID]float64, len(hits))
	if maxHits == 0 {
		return scores
	}
	for agent, count := range hits {
		if count > 0 {
			scores[agent] = float64(count) / float64(maxHits)
		}
	}
	return scores
}
