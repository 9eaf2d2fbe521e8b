package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/fitpal-agent/internal/adapters/storage/sqlite"
	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "fitpal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadUnknownSession(t *testing.T) {
	store := newStore(t)
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := newStore(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	state := domain.NewConversationState("sess-1", "user-1", now)
	state.AppendMessage(&domain.Message{ID: "m1", Role: domain.RoleUser, Text: "hi", CreatedAt: now})
	state.HealthMetrics = &domain.HealthMetrics{
		BMI:            26.1,
		BMICategory:    "Overweight",
		TargetCalories: 2100,
		CalculatedAt:   now,
	}
	state.PutArtifact(&domain.Artifact{
		Kind:     domain.ArtifactMealPlan,
		MealPlan: &domain.MealPlan{TotalCalories: 2100},
	}, now)

	require.NoError(t, store.Save(context.Background(), state))

	got, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("user-1"), got.UserID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hi", got.Messages[0].Text)
	require.NotNil(t, got.HealthMetrics)
	assert.Equal(t, 2100, got.HealthMetrics.TargetCalories)
	require.NotNil(t, got.ActiveArtifact(domain.ArtifactMealPlan))
}

func TestSaveUpserts(t *testing.T) {
	store := newStore(t)
	now := time.Now().UTC()

	state := domain.NewConversationState("sess-1", "user-1", now)
	require.NoError(t, store.Save(context.Background(), state))

	state.AppendMessage(&domain.Message{ID: "m1", Role: domain.RoleUser, Text: "hello again", CreatedAt: now.Add(time.Minute)})
	require.NoError(t, store.Save(context.Background(), state))

	got, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, "hello again", got.Messages[0].Text)
}
