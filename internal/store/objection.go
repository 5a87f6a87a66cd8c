package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/domain"
)

// ObjectionStore is the catalog access collaborator: read-only lookup of
// canonical objection records for the engine, plus the administrative write
// operations used by seeding. The catalog is immutable reference data from
// the engine's point of view — sessions hold copies, never mutation
// handles.
type ObjectionStore interface {
	// GetByID retrieves a catalog objection by its unique ID.
	// Returns ErrObjectionNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneratedObjection, error)

	// GetByScenarioType retrieves all catalog objections for a scenario
	// type, in stable catalog order. An unknown scenario type yields an
	// empty slice, not an error.
	GetByScenarioType(ctx context.Context, scenarioType string) ([]domain.GeneratedObjection, error)

	// GetByCategory retrieves all catalog objections of a category, in
	// stable catalog order.
	GetByCategory(ctx context.Context, category domain.ObjectionCategory) ([]domain.GeneratedObjection, error)

	// GetCommon retrieves the scenario-independent objections usable in any
	// session.
	GetCommon(ctx context.Context) ([]domain.GeneratedObjection, error)

	// Save persists a catalog objection. Administrative concern; the
	// engine never calls this.
	Save(ctx context.Context, objection *domain.GeneratedObjection) error

	// SeedDefaults inserts the built-in default objections when the
	// catalog is empty. Idempotent: a non-empty catalog is left untouched.
	SeedDefaults(ctx context.Context) error
}

// SessionStore persists ConversationContext snapshots keyed by session id.
// The engine is stateless between process restarts; a session continues by
// reloading its snapshot.
type SessionStore interface {
	// Create persists the initial snapshot for a new session.
	Create(ctx context.Context, snapshot *domain.ConversationContext) error

	// Get retrieves the latest snapshot for a session.
	// Returns ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, sessionID uuid.UUID) (*domain.ConversationContext, error)

	// Update replaces the snapshot for a session. The update carries an
	// optimistic turn-number check: if the stored snapshot is already at or
	// past the new snapshot's turn, ErrStaleSnapshot is returned and
	// nothing is written. This serializes concurrent turns of one session.
	Update(ctx context.Context, snapshot *domain.ConversationContext) error
}
