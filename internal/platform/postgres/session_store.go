package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/domain"
	"github.com/salesim/salesim-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface using a
// PostgreSQL database as the storage backend. The full conversation context
// is stored as a JSONB snapshot; id, owner, state and turn are broken out
// into columns for querying and the optimistic turn check.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface. If logger is nil, a default logger is used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create
func (s *PostgresSessionStore) Create(ctx context.Context, snapshot *domain.ConversationContext) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	const query = `
		INSERT INTO sessions (id, user_id, state, current_turn, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = s.db.ExecContext(ctx, query,
		snapshot.SessionID, snapshot.UserID, string(snapshot.State),
		snapshot.CurrentTurn, payload, snapshot.CreatedAt, snapshot.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get implements store.SessionStore.Get
func (s *PostgresSessionStore) Get(
	ctx context.Context,
	sessionID uuid.UUID,
) (*domain.ConversationContext, error) {
	const query = `SELECT snapshot FROM sessions WHERE id = $1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var snapshot domain.ConversationContext
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session snapshot: %w", err)
	}

	return &snapshot, nil
}

// Update implements store.SessionStore.Update
// The WHERE clause enforces the optimistic turn-number check: a snapshot
// can only move the stored turn forward (or close the session at the same
// turn), so two concurrent requests for one session cannot both win.
func (s *PostgresSessionStore) Update(ctx context.Context, snapshot *domain.ConversationContext) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}

	const query = `
		UPDATE sessions
		SET state = $2, current_turn = $3, snapshot = $4, updated_at = $5
		WHERE id = $1 AND (current_turn < $3 OR (current_turn = $3 AND state <> $2))`

	result, err := s.db.ExecContext(ctx, query,
		snapshot.SessionID, string(snapshot.State), snapshot.CurrentTurn,
		payload, snapshot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing session from a lost optimistic check.
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, snapshot.SessionID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		if !exists {
			return store.ErrSessionNotFound
		}
		s.logger.WarnContext(ctx, "rejected stale session snapshot",
			"session_id", snapshot.SessionID.String(),
			"turn", snapshot.CurrentTurn)
		return store.ErrStaleSnapshot
	}

	return nil
}
