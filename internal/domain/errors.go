package domain

import "errors"

// Error taxonomy shared by agents and the orchestrator. Prerequisite and
// generation failures are surfaced to the user with state unchanged;
// extraction failures are recovered inside the slot-filling loop.
var (
	ErrSessionNotFound = errors.New("session not found")

	// ErrMissingPrerequisite means a required upstream artifact is absent
	// (e.g. nutrition before health metrics exist).
	ErrMissingPrerequisite = errors.New("missing prerequisite")

	// ErrExtractionUnavailable means the extraction capability failed
	// repeatedly; the agent re-asks its question instead of advancing.
	ErrExtractionUnavailable = errors.New("extraction unavailable")

	// ErrArtifactGenerationFailed means the downstream generation call
	// failed after retries; the turn is safe to retry.
	ErrArtifactGenerationFailed = errors.New("artifact generation failed")

	// ErrTurnInProgress means another turn is already in flight for the
	// session; callers must serialize turns per session.
	ErrTurnInProgress = errors.New("turn already in progress")
)
