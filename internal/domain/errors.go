package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. Rejected intents
// (insufficient XP, nothing owned, already reset today) are NOT errors: the
// engine returns the unchanged state with a rejection outcome instead.

var (
	// Snapshot errors
	ErrSnapshotCorrupt = errors.New("stored snapshot failed to decode")

	// Task feed errors
	ErrTaskNotFound = errors.New("task not found")
)
