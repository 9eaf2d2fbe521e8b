package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/PabloGalante/fitpal-agent/internal/adapters/http"
	"github.com/PabloGalante/fitpal-agent/internal/adapters/llm"
	memstore "github.com/PabloGalante/fitpal-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/fitpal-agent/internal/app/agents"
	"github.com/PabloGalante/fitpal-agent/internal/app/orchestrator"
	"github.com/PabloGalante/fitpal-agent/internal/app/slotfill"
)

func newTestServer() *httptest.Server {
	mock := llm.NewMock()
	engine := slotfill.NewEngine(mock)
	agentList := []agents.Agent{
		agents.NewHealthAgent(engine, mock),
		agents.NewNutritionAgent(engine, mock),
		agents.NewFitnessAgent(engine, mock),
		agents.NewRecipeAgent(mock),
		agents.NewCoachAgent(mock, mock),
	}
	svc := orchestrator.NewService(
		memstore.NewStateStore(),
		orchestrator.NewRouter(orchestrator.KeywordClassifier{}),
		agentList,
		5*time.Second,
	)
	return httptest.NewServer(httpadapter.NewServer(svc))
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, ts.URL+"/sessions", map[string]string{"user_id": "user-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		SessionID string `json:"session_id"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.SessionID)
	return body.SessionID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestCreateSessionValidation(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/sessions", map[string]string{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	id := createSession(t, ts)

	// The welcome message is already on the timeline.
	resp, err := http.Get(fmt.Sprintf("%s/sessions/%s", ts.URL, id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session struct {
		Messages []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	decode(t, resp, &session)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "assistant", session.Messages[0].Role)

	// A complete first answer yields the assessment in one turn.
	turnResp := postJSON(t, fmt.Sprintf("%s/sessions/%s/turns", ts.URL, id), map[string]string{
		"text": "I'm 30 years old, male, 80 kg and 175 cm, moderately active, and I want to lose weight",
	})
	require.Equal(t, http.StatusOK, turnResp.StatusCode)

	var turn struct {
		AssistantText string `json:"assistant_text"`
		Session       struct {
			HasMetrics bool `json:"has_health_metrics"`
		} `json:"session"`
	}
	decode(t, turnResp, &turn)
	assert.Contains(t, turn.AssistantText, "BMI")
	assert.True(t, turn.Session.HasMetrics)
}

func TestTurnValidation(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()
	id := createSession(t, ts)

	resp := postJSON(t, fmt.Sprintf("%s/sessions/%s/turns", ts.URL, id), map[string]string{"text": "   "})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUnknownSessionReturns404(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/sessions/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnmetPrerequisiteReturns409(t *testing.T) {
	ts := newTestServer()
	defer ts.Close()
	id := createSession(t, ts)

	resp := postJSON(t, fmt.Sprintf("%s/sessions/%s/turns", ts.URL, id), map[string]string{
		"text": "I want a meal plan",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	decode(t, resp, &body)
	assert.Contains(t, body.Error, "health assessment")
}
