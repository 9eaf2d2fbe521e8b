package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PabloGalante/fitpal-agent/internal/app/orchestrator"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// Server is the thin HTTP wrapper around the orchestrator service.
type Server struct {
	svc *orchestrator.Service
}

func NewServer(svc *orchestrator.Service) http.Handler {
	s := &Server{svc: svc}

	r := chi.NewRouter()
	r.Use(withRequestID, withLogging, withCORS)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions/{sessionID}", s.handleGetSession)
	r.Post("/sessions/{sessionID}/turns", s.handleTurn)

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	UserID string `json:"user_id"`
}

type sessionResponse struct {
	SessionID     string            `json:"session_id"`
	UserID        string            `json:"user_id"`
	ActiveAgent   string            `json:"active_agent,omitempty"`
	Messages      []messageResponse `json:"messages"`
	HasMetrics    bool              `json:"has_health_metrics"`
	ArtifactKinds []string          `json:"artifact_kinds,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Agent     string    `json:"agent,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	AssistantText string          `json:"assistant_text"`
	Session       sessionResponse `json:"session"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	state, err := s.svc.StartSession(r.Context(), domain.UserID(req.UserID))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(state))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "sessionID"))
	state, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(state))
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "sessionID"))

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	result, err := s.svc.HandleTurn(r.Context(), id, req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, turnResponse{
		AssistantText: result.AssistantText,
		Session:       toSessionResponse(result.State),
	})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toSessionResponse(state *domain.ConversationState) sessionResponse {
	msgs := make([]messageResponse, 0, len(state.Messages))
	for _, m := range state.Messages {
		msgs = append(msgs, messageResponse{
			ID:        string(m.ID),
			Role:      string(m.Role),
			Agent:     string(m.Agent),
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		})
	}
	var kinds []string
	for kind := range state.Artifacts {
		if state.ActiveArtifact(kind) != nil {
			kinds = append(kinds, string(kind))
		}
	}
	return sessionResponse{
		SessionID:     string(state.SessionID),
		UserID:        string(state.UserID),
		ActiveAgent:   string(state.ActiveAgent),
		Messages:      msgs,
		HasMetrics:    state.HealthMetrics != nil,
		ArtifactKinds: kinds,
		CreatedAt:     state.CreatedAt,
		UpdatedAt:     state.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses. Prerequisite
// and generation failures carry user-facing text; the turn is safe to retry.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	case errors.Is(err, domain.ErrMissingPrerequisite):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrTurnInProgress):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "a turn is already in progress for this session"})
	case errors.Is(err, domain.ErrArtifactGenerationFailed):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "I couldn't generate that right now - please try again"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
