// Package agents holds the specialized conversational agents. Each agent is a
// configuration of the slot-filling engine plus one artifact-producing step;
// agents never call each other, all data flows through the conversation state.
package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// Turn is the input to a single agent step.
type Turn struct {
	State    *domain.ConversationState
	UserText string
	Now      time.Time
}

// Agent runs one conversational step: either advance its slot-filling
// session or produce/update its artifact. Run returns the assistant reply;
// the caller appends it to the timeline and persists the state.
type Agent interface {
	ID() domain.AgentID
	// Prerequisites lists the upstream data this agent needs before it
	// opens a slot-filling session or produces anything.
	Prerequisites() []Prerequisite
	Run(ctx context.Context, turn Turn) (string, error)
}

// Prerequisite names a piece of upstream state an agent depends on.
type Prerequisite string

const (
	PrereqHealthMetrics      Prerequisite = "health_metrics"
	PrereqDietaryPreferences Prerequisite = "dietary_preferences"
)

// CheckPrerequisites verifies every prerequisite against the state. It is
// called before an agent opens a session, so an unmet prerequisite leaves
// the conversation untouched.
func CheckPrerequisites(state *domain.ConversationState, prereqs []Prerequisite) error {
	for _, p := range prereqs {
		switch p {
		case PrereqHealthMetrics:
			if state.HealthMetrics == nil {
				return fmt.Errorf("%w: complete a health assessment first", domain.ErrMissingPrerequisite)
			}
		case PrereqDietaryPreferences:
			if state.DietaryPreferences == nil || !state.DietaryPreferences.Complete {
				return fmt.Errorf("%w: tell me about your dietary preferences first", domain.ErrMissingPrerequisite)
			}
		default:
			return fmt.Errorf("%w: %s", domain.ErrMissingPrerequisite, p)
		}
	}
	return nil
}

// generation calls get a small retry budget before the failure surfaces.
const generateAttempts = 3

func retryGenerate[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	var (
		out     T
		lastErr error
	)
	backoff := 300 * time.Millisecond
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt < attempts {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out, fmt.Errorf("%w: %w", domain.ErrArtifactGenerationFailed, ctx.Err())
			case <-timer.C:
			}
			backoff *= 2
		}
	}
	return out, fmt.Errorf("%w: %w", domain.ErrArtifactGenerationFailed, lastErr)
}

// splitList turns a comma or "and" separated free-text enumeration into a
// trimmed list.
func splitList(text string) []string {
	if text == "" {
		return nil
	}
	replaced := text
	for _, sep := range []string{" and ", ";", "\n"} {
		replaced = strings.ReplaceAll(replaced, sep, ",")
	}
	var out []string
	for _, part := range strings.Split(replaced, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
