// Package orchestrator owns the turn loop: it loads the conversation state,
// routes the message to exactly one agent, runs that agent's step on a clone
// of the state, and persists the clone only if the step fully succeeds.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/fitpal-agent/internal/app/agents"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
	"github.com/PabloGalante/fitpal-agent/internal/observability"
)

const welcomeText = "Hi, I'm FitPal! I can assess your health, plan your meals, suggest recipes, program your workouts, and keep your day on track. Where would you like to start?"

const clarifyText = "I can help with a health assessment, meal planning, recipes, workout programming, or daily coaching. Which of those are you after?"

// Service is the sole entry point the transport layer talks to.
type Service struct {
	store      domain.StateStore
	router     *Router
	agents     map[domain.AgentID]agents.Agent
	llmTimeout time.Duration
	now        func() time.Time

	mu       sync.Mutex
	inflight map[domain.SessionID]struct{}
}

func NewService(store domain.StateStore, router *Router, agentList []agents.Agent, llmTimeout time.Duration) *Service {
	byID := make(map[domain.AgentID]agents.Agent, len(agentList))
	for _, ag := range agentList {
		byID[ag.ID()] = ag
	}
	return &Service{
		store:      store,
		router:     router,
		agents:     byID,
		llmTimeout: llmTimeout,
		now:        time.Now,
		inflight:   make(map[domain.SessionID]struct{}),
	}
}

// StartSession creates a fresh conversation state with a welcome message.
func (s *Service) StartSession(ctx context.Context, userID domain.UserID) (*domain.ConversationState, error) {
	now := s.now()
	state := domain.NewConversationState(domain.SessionID(uuid.NewString()), userID, now)
	state.AppendMessage(&domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Role:      domain.RoleAssistant,
		Text:      welcomeText,
		CreatedAt: now,
	})

	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info("session started",
		"session_id", state.SessionID, "user_id", userID)
	return state, nil
}

// TurnResult is what a completed turn hands back to the transport layer.
type TurnResult struct {
	AssistantText string
	State         *domain.ConversationState
}

// HandleTurn runs one conversational turn. Turns for the same session are
// serialized: a second concurrent call fails with ErrTurnInProgress. State is
// mutated on a clone and persisted only after the agent step fully succeeds,
// so a failed or abandoned turn can be retried without data loss.
func (s *Service) HandleTurn(ctx context.Context, sessionID domain.SessionID, userText string) (*TurnResult, error) {
	if err := s.acquire(sessionID); err != nil {
		return nil, err
	}
	defer s.release(sessionID)

	ctx = observability.WithSessionID(ctx, string(sessionID))
	log := observability.LoggerFromContext(ctx)

	state, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next := state.Clone()
	next.AppendMessage(&domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Role:      domain.RoleUser,
		Text:      userText,
		CreatedAt: now,
	})

	agentID := s.router.Route(next, userText)
	if agentID == "" {
		// Ambiguous or general intent: the orchestrator answers itself.
		log.Info("no agent matched, clarifying")
		return s.commit(ctx, next, "", clarifyText, now)
	}

	agent, ok := s.agents[agentID]
	if !ok {
		return nil, fmt.Errorf("no agent registered for %q", agentID)
	}

	// Prerequisites are checked before a session would open, against the
	// unmodified state, so an unmet prerequisite leaves no trace.
	if next.ActiveAgent != agentID {
		if err := agents.CheckPrerequisites(state, agent.Prerequisites()); err != nil {
			log.Warn("prerequisite unmet", "agent", agentID, "error", err)
			return nil, err
		}
	}

	log.Info("agent run start", "agent", agentID)
	start := time.Now()

	agentCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	reply, err := agent.Run(agentCtx, agents.Turn{State: next, UserText: userText, Now: now})
	if err != nil {
		log.Error("agent failed", "agent", agentID, "elapsed_ms", time.Since(start).Milliseconds(), "error", err)
		return nil, err
	}
	log.Info("agent run end", "agent", agentID, "elapsed_ms", time.Since(start).Milliseconds())

	return s.commit(ctx, next, agentID, reply, s.now())
}

// GetSession returns the current state for a session.
func (s *Service) GetSession(ctx context.Context, sessionID domain.SessionID) (*domain.ConversationState, error) {
	return s.store.Load(ctx, sessionID)
}

// commit appends the assistant reply, persists the new state and returns it.
func (s *Service) commit(ctx context.Context, state *domain.ConversationState, agentID domain.AgentID, reply string, now time.Time) (*TurnResult, error) {
	state.AppendMessage(&domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Role:      domain.RoleAssistant,
		Agent:     agentID,
		Text:      reply,
		CreatedAt: now,
	})
	if err := s.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return &TurnResult{AssistantText: reply, State: state}, nil
}

func (s *Service) acquire(sessionID domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return domain.ErrTurnInProgress
	}
	s.inflight[sessionID] = struct{}{}
	return nil
}

func (s *Service) release(sessionID domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}
