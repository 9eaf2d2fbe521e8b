// Package slotfill implements the generic question/answer/merge loop agents
// use to gather structured preferences from free-text conversation.
//
// The loop is a small state machine over a domain.SlotSession:
//
//	NOT_STARTED -> QUESTIONING -> COMPLETE
//	                          \-> EXHAUSTED
//
// COMPLETE fires once every required slot is filled and the minimum number of
// exchanges has happened; EXHAUSTED fires when the question budget runs out.
package slotfill

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
	"github.com/PabloGalante/fitpal-agent/internal/observability"
)

// Default budgets applied when a schema leaves them unset.
const (
	DefaultMaxQuestions = 8

	defaultExtractAttempts = 3
	defaultExtractBackoff  = 500 * time.Millisecond
)

// Engine drives slot-filling sessions against an extraction capability.
type Engine struct {
	extractor domain.Extractor
	attempts  int
	backoff   time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an engine with the default retry budget.
func NewEngine(extractor domain.Extractor) *Engine {
	return &Engine{
		extractor: extractor,
		attempts:  defaultExtractAttempts,
		backoff:   defaultExtractBackoff,
		sleep:     sleepCtx,
	}
}

// SetAttempts overrides the extraction retry budget.
func (e *Engine) SetAttempts(n int) {
	if n > 0 {
		e.attempts = n
	}
}

// StepResult is the outcome of feeding one user message into a session.
type StepResult struct {
	// Reply is the next question to pose. Empty when the session ended;
	// the owning agent supplies the closing message in that case.
	Reply string
	// Completed is true when the completeness predicate held.
	Completed bool
	// Exhausted is true when the question budget ran out first.
	Exhausted bool
	// Values holds the gathered slot values when Completed or Exhausted.
	Values domain.SlotValues
}

// Done reports whether the session reached a terminal state.
func (r StepResult) Done() bool { return r.Completed || r.Exhausted }

// Step advances the session for schema by one user message. On the first
// invocation it opens the session, extracts whatever the triggering message
// already contains, and greets the user; later invocations extract, merge and
// either ask the next question or finish.
//
// Step mutates state (session scratch area and active agent) but appends no
// messages; the caller owns the timeline.
func (e *Engine) Step(ctx context.Context, state *domain.ConversationState, schema domain.SlotSchema, userText string, now time.Time) (StepResult, error) {
	log := observability.LoggerFromContext(ctx).With("agent", schema.Agent)

	opening := false
	session := state.Session
	if session == nil || state.ActiveAgent != schema.Agent {
		session = state.BeginSlotSession(schema.Agent, now)
		opening = true
		log.Info("slot session opened")
	}

	extracted, matched, err := e.extract(ctx, userText, schema, session.Values)
	if err != nil {
		if opening {
			// Nothing gathered yet; fall through to the greeting so the
			// dialog still starts.
			log.Warn("extraction unavailable on opening turn", "error", err)
		} else {
			// Re-ask the previous question verbatim rather than advancing.
			log.Warn("extraction unavailable, re-asking", "error", err)
			return StepResult{Reply: lastPrompt(session, schema)}, nil
		}
	} else {
		session.Values = Merge(schema, session.Values, extracted)
		log.Info("extraction merged", "matched", len(matched), "questions_asked", session.QuestionsAsked)
	}
	state.Touch(now)

	if schema.RequiredFilled(session.Values) && session.QuestionsAsked >= schema.MinQuestions {
		values := session.Values
		state.EndSlotSession(now)
		log.Info("slot session complete", "questions_asked", session.QuestionsAsked)
		return StepResult{Completed: true, Values: values}, nil
	}

	maxQuestions := schema.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	if !opening && session.QuestionsAsked >= maxQuestions {
		session.Exhausted = true
		values := session.Values
		state.EndSlotSession(now)
		log.Warn("slot session exhausted", "questions_asked", session.QuestionsAsked)
		return StepResult{Exhausted: true, Values: values}, nil
	}

	question := e.nextQuestion(schema, session)
	session.AskedPrompts = append(session.AskedPrompts, question)
	session.QuestionsAsked++

	reply := question
	if opening && schema.Greeting != "" {
		reply = schema.Greeting + "\n\n" + question
	}
	return StepResult{Reply: reply}, nil
}

// extract calls the extraction port with retries and backoff. Failures after
// the retry budget surface as domain.ErrExtractionUnavailable.
func (e *Engine) extract(ctx context.Context, text string, schema domain.SlotSchema, prior domain.SlotValues) (domain.SlotValues, []domain.SlotName, error) {
	var lastErr error
	backoff := e.backoff
	for attempt := 1; attempt <= e.attempts; attempt++ {
		values, matched, err := e.extractor.Extract(ctx, text, schema, prior)
		if err == nil {
			return values, matched, nil
		}
		lastErr = err
		if attempt < e.attempts {
			if err := e.sleep(ctx, backoff); err != nil {
				return nil, nil, fmt.Errorf("%w: %w", domain.ErrExtractionUnavailable, err)
			}
			backoff *= 2
		}
	}
	return nil, nil, fmt.Errorf("%w: %w", domain.ErrExtractionUnavailable, lastErr)
}

// nextQuestion picks the highest-priority unfilled required slot. When every
// required slot is filled but the minimum exchange count is unmet, it falls
// back to optional slots and then to clarifying prompts. The same exact
// question is never returned twice for one session.
func (e *Engine) nextQuestion(schema domain.SlotSchema, session *domain.SlotSession) string {
	for _, slot := range schema.Slots {
		if !slot.Required || session.Values.Filled(slot.Name) {
			continue
		}
		return unaskedVariant(session, slot.Prompt)
	}

	for _, slot := range schema.Slots {
		if slot.Required || session.Values.Filled(slot.Name) {
			continue
		}
		if !session.Asked(slot.Prompt) {
			return slot.Prompt
		}
	}

	for _, p := range clarifyingPrompts {
		if !session.Asked(p) {
			return p
		}
	}
	// Question budget far exceeds the variants above, but stay unique anyway.
	return fmt.Sprintf("Anything else to add? We're %d questions in.", session.QuestionsAsked+1)
}

var clarifyingPrompts = []string{
	"Anything else I should take into account before I put this together?",
	"Is there anything you'd like to adjust or add to what you've told me so far?",
	"Any detail we haven't covered that matters to you?",
	"Before I wrap up, is there something I should double-check?",
}

// unaskedVariant returns prompt, or a rephrasing if the exact prompt was
// already posed (the slot stayed unfilled, so we ask differently).
func unaskedVariant(session *domain.SlotSession, prompt string) string {
	if !session.Asked(prompt) {
		return prompt
	}
	variants := []string{
		"Sorry, I still need this one: " + prompt,
		"Let me try that again. " + prompt,
	}
	for _, v := range variants {
		if !session.Asked(v) {
			return v
		}
	}
	return fmt.Sprintf("(%d) %s", session.QuestionsAsked+1, prompt)
}

// lastPrompt returns the most recent question for a verbatim re-ask after an
// extraction outage.
func lastPrompt(session *domain.SlotSession, schema domain.SlotSchema) string {
	if n := len(session.AskedPrompts); n > 0 {
		return session.AskedPrompts[n-1]
	}
	if len(schema.Slots) > 0 {
		return schema.Slots[0].Prompt
	}
	return "Could you tell me a bit more?"
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Merge applies the engine's merge policy: scalar slots are overwritten by the
// last non-empty value, accumulating slots collect key/value pairs.
func Merge(schema domain.SlotSchema, prior domain.SlotValues, extracted domain.SlotValues) domain.SlotValues {
	out := prior.Clone()
	for name, incoming := range extracted {
		slot, ok := schema.Slot(name)
		if !ok || incoming.Empty() {
			continue
		}
		current := out[name]
		switch slot.Kind {
		case domain.SlotAccumulating:
			if current.Pairs == nil {
				current.Pairs = make(map[string]string, len(incoming.Pairs))
			}
			for k, v := range incoming.Pairs {
				current.Pairs[k] = v
			}
			if incoming.Text != "" {
				current.Text = incoming.Text
			}
		default:
			if incoming.Text != "" {
				current.Text = incoming.Text
			}
		}
		out[name] = current
	}
	return out
}
