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
	"github.com/salesim/salesim-api/internal/domain/simulation"
	"github.com/salesim/salesim-api/internal/store"
)

// objectionColumns is the column list shared by all objection queries.
// Catalog order is the insertion order, made stable by (created_at, id).
const objectionColumns = `
	id, scenario_type, category, severity, core_content,
	variations, triggers, ideal_response, common_mistakes, created_at`

// PostgresObjectionStore implements the store.ObjectionStore interface
// using a PostgreSQL database as the storage backend. List-valued fields
// are stored as JSONB.
type PostgresObjectionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresObjectionStore creates a new PostgreSQL implementation of the
// ObjectionStore interface. If logger is nil, a default logger is used.
func NewPostgresObjectionStore(db store.DBTX, logger *slog.Logger) *PostgresObjectionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresObjectionStore{
		db:     db,
		logger: logger.With(slog.String("component", "objection_store")),
	}
}

// Ensure PostgresObjectionStore implements store.ObjectionStore interface
var _ store.ObjectionStore = (*PostgresObjectionStore)(nil)

// WithTx returns a copy of the store bound to the given transaction. All
// operations on the returned store run within that transaction.
func (s *PostgresObjectionStore) WithTx(tx *sql.Tx) *PostgresObjectionStore {
	return &PostgresObjectionStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByID implements store.ObjectionStore.GetByID
func (s *PostgresObjectionStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.GeneratedObjection, error) {
	query := `SELECT` + objectionColumns + ` FROM objections WHERE id = $1`

	obj, err := scanObjection(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrObjectionNotFound
		}
		return nil, err
	}
	return obj, nil
}

// GetByScenarioType implements store.ObjectionStore.GetByScenarioType
func (s *PostgresObjectionStore) GetByScenarioType(
	ctx context.Context,
	scenarioType string,
) ([]domain.GeneratedObjection, error) {
	query := `SELECT` + objectionColumns + `
		FROM objections
		WHERE scenario_type = $1
		ORDER BY created_at, id`

	return s.queryObjections(ctx, query, scenarioType)
}

// GetByCategory implements store.ObjectionStore.GetByCategory
func (s *PostgresObjectionStore) GetByCategory(
	ctx context.Context,
	category domain.ObjectionCategory,
) ([]domain.GeneratedObjection, error) {
	query := `SELECT` + objectionColumns + `
		FROM objections
		WHERE category = $1
		ORDER BY created_at, id`

	return s.queryObjections(ctx, query, string(category))
}

// GetCommon implements store.ObjectionStore.GetCommon
func (s *PostgresObjectionStore) GetCommon(ctx context.Context) ([]domain.GeneratedObjection, error) {
	query := `SELECT` + objectionColumns + `
		FROM objections
		WHERE scenario_type = 'default'
		ORDER BY created_at, id`

	return s.queryObjections(ctx, query)
}

// Save implements store.ObjectionStore.Save
func (s *PostgresObjectionStore) Save(ctx context.Context, objection *domain.GeneratedObjection) error {
	if err := objection.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	variations, err := json.Marshal(objection.Variations)
	if err != nil {
		return fmt.Errorf("failed to marshal variations: %w", err)
	}
	triggers, err := json.Marshal(objection.Triggers)
	if err != nil {
		return fmt.Errorf("failed to marshal triggers: %w", err)
	}
	mistakes, err := json.Marshal(objection.CommonMistakes)
	if err != nil {
		return fmt.Errorf("failed to marshal common mistakes: %w", err)
	}

	const query = `
		INSERT INTO objections (
			id, scenario_type, category, severity, core_content,
			variations, triggers, ideal_response, common_mistakes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			scenario_type = EXCLUDED.scenario_type,
			category = EXCLUDED.category,
			severity = EXCLUDED.severity,
			core_content = EXCLUDED.core_content,
			variations = EXCLUDED.variations,
			triggers = EXCLUDED.triggers,
			ideal_response = EXCLUDED.ideal_response,
			common_mistakes = EXCLUDED.common_mistakes`

	_, err = s.db.ExecContext(ctx, query,
		objection.ID, objection.ScenarioType, string(objection.Category),
		string(objection.Severity), objection.CoreContent,
		variations, triggers, objection.IdealResponse, mistakes, objection.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save objection: %w", err)
	}

	return nil
}

// SeedDefaults implements store.ObjectionStore.SeedDefaults
// It inserts the engine's built-in default pool only when the catalog is
// completely empty, so repeated startups never duplicate rows. When the
// store is backed by a plain connection the count and inserts run in a
// single transaction, so a failed seed leaves no partial catalog.
func (s *PostgresObjectionStore) SeedDefaults(ctx context.Context) error {
	db, ok := s.db.(*sql.DB)
	if !ok {
		// Already inside a caller-managed transaction.
		return s.seedDefaults(ctx, s)
	}
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return s.seedDefaults(ctx, s.WithTx(tx))
	})
}

func (s *PostgresObjectionStore) seedDefaults(ctx context.Context, target *PostgresObjectionStore) error {
	var count int
	if err := target.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM objections`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count objections: %w", err)
	}
	if count > 0 {
		s.logger.DebugContext(ctx, "objection catalog already populated, skipping seed",
			"count", count)
		return nil
	}

	for _, obj := range simulation.DefaultPool() {
		seeded := obj
		if err := target.Save(ctx, &seeded); err != nil {
			return fmt.Errorf("failed to seed default objection: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "seeded default objection catalog")
	return nil
}

func (s *PostgresObjectionStore) queryObjections(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.GeneratedObjection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query objections: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn("failed to close rows", "error", closeErr)
		}
	}()

	var objections []domain.GeneratedObjection
	for rows.Next() {
		obj, err := scanObjection(rows)
		if err != nil {
			return nil, err
		}
		objections = append(objections, *obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate objections: %w", err)
	}

	return objections, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanObjection(row rowScanner) (*domain.GeneratedObjection, error) {
	var (
		obj        domain.GeneratedObjection
		category   string
		severity   string
		variations []byte
		triggers   []byte
		mistakes   []byte
	)

	err := row.Scan(&obj.ID, &obj.ScenarioType, &category, &severity, &obj.CoreContent,
		&variations, &triggers, &obj.IdealResponse, &mistakes, &obj.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan objection: %w", err)
	}

	obj.Category = domain.ObjectionCategory(category)
	obj.Severity = domain.Severity(severity)

	if err := json.Unmarshal(variations, &obj.Variations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal variations: %w", err)
	}
	if err := json.Unmarshal(triggers, &obj.Triggers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal triggers: %w", err)
	}
	if err := json.Unmarshal(mistakes, &obj.CommonMistakes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal common mistakes: %w", err)
	}

	return &obj, nil
}
