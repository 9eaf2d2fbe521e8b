package domain

import "context"

// Extractor is the boundary over the natural-language-understanding
// capability. Given free text, a schema and the values gathered so far, it
// returns the values found in the text for whatever slots it matched, plus
// the matched slot names. Prior values are context only; the caller merges.
//
// Implementations must be idempotent: re-running the same text against the
// same prior values yields the same result, and they never report a slot as
// matched on the strength of prior values alone.
type Extractor interface {
	Extract(ctx context.Context, text string, schema SlotSchema, prior SlotValues) (SlotValues, []SlotName, error)
}

// Generator is the boundary over the artifact-generation capability.
// Exclusions passed to meal and recipe generation are hard constraints:
// no produced food may match any excluded item.
type Generator interface {
	GenerateMealPlan(ctx context.Context, metrics HealthMetrics, prefs DietaryPreferences, exclusions []string) (*MealPlan, error)
	GenerateWorkoutPlan(ctx context.Context, profile UserProfile, constraints FitnessConstraints) (*WorkoutPlan, error)
	GenerateRecipe(ctx context.Context, metrics HealthMetrics, prefs DietaryPreferences, exclusions []string) (*Recipe, error)
	GenerateDailySchedule(ctx context.Context, metrics *HealthMetrics, workout *WorkoutPlan, meals *MealPlan) (*DailySchedule, error)
}

// Replier produces free-form assistant text (assessment summaries, coach
// replies). Kept separate from Generator so simple agents depend only on it.
type Replier interface {
	GenerateReply(ctx context.Context, prompt string, history []*Message) (string, error)
}

// StateStore persists conversation state keyed by session id. The core never
// shapes queries; it treats storage as an opaque load/save contract.
type StateStore interface {
	Load(ctx context.Context, id SessionID) (*ConversationState, error)
	Save(ctx context.Context, state *ConversationState) error
}
