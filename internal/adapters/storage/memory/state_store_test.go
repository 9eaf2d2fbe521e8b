package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/fitpal-agent/internal/adapters/storage/memory"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

func TestLoadUnknownSession(t *testing.T) {
	store := memory.NewStateStore()
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := memory.NewStateStore()
	now := time.Now()

	state := domain.NewConversationState("sess-1", "user-1", now)
	state.AppendMessage(&domain.Message{ID: "m1", Role: domain.RoleUser, Text: "hi", CreatedAt: now})
	require.NoError(t, store.Save(context.Background(), state))

	got, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionID("sess-1"), got.SessionID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hi", got.Messages[0].Text)
}

func TestLoadReturnsIsolatedCopy(t *testing.T) {
	store := memory.NewStateStore()
	now := time.Now()

	state := domain.NewConversationState("sess-1", "user-1", now)
	require.NoError(t, store.Save(context.Background(), state))

	first, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	first.AppendMessage(&domain.Message{ID: "m1", Role: domain.RoleUser, Text: "mutated", CreatedAt: now})
	first.HealthMetrics = &domain.HealthMetrics{TargetCalories: 1}

	// Mutating a loaded copy leaves the stored state alone.
	second, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, second.Messages)
	assert.Nil(t, second.HealthMetrics)
}
