package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/store"
)

// CatalogSeedTask seeds the default objection catalog when it is empty.
// Idempotent: a non-empty catalog is left untouched by the store.
type CatalogSeedTask struct {
	id             uuid.UUID
	objectionStore store.ObjectionStore
}

// Ensure CatalogSeedTask implements Task
var _ Task = (*CatalogSeedTask)(nil)

// NewCatalogSeedTask creates a new catalog seeding task.
func NewCatalogSeedTask(objectionStore store.ObjectionStore) (*CatalogSeedTask, error) {
	if objectionStore == nil {
		return nil, fmt.Errorf("objectionStore cannot be nil")
	}
	return &CatalogSeedTask{
		id:             uuid.New(),
		objectionStore: objectionStore,
	}, nil
}

// ID implements Task.ID.
func (t *CatalogSeedTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.Type.
func (t *CatalogSeedTask) Type() string {
	return TaskTypeCatalogSeed
}

// Execute implements Task.Execute.
func (t *CatalogSeedTask) Execute(ctx context.Context) error {
	if err := t.objectionStore.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed objection catalog: %w", err)
	}
	return nil
}
