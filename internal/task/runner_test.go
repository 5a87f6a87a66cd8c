package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesim/salesim-api/internal/domain"
	"github.com/salesim/salesim-api/internal/store"
)

// fakeTask records executions and optionally fails.
type fakeTask struct {
	id       uuid.UUID
	err      error
	executed chan struct{}
}

func newFakeTask(err error) *fakeTask {
	return &fakeTask{id: uuid.New(), err: err, executed: make(chan struct{})}
}

func (t *fakeTask) ID() uuid.UUID { return t.id }
func (t *fakeTask) Type() string  { return "fake" }

func (t *fakeTask) Execute(_ context.Context) error {
	close(t.executed)
	return t.err
}

func waitExecuted(t *testing.T, ft *fakeTask) {
	t.Helper()
	select {
	case <-ft.executed:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed in time")
	}
}

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	t.Parallel()

	runner := NewRunner(DefaultRunnerConfig(), nil)
	runner.Start()
	defer runner.Stop()

	ft := newFakeTask(nil)
	require.NoError(t, runner.Submit(ft))
	waitExecuted(t, ft)
}

func TestRunnerReportsFailures(t *testing.T) {
	t.Parallel()

	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 4}, nil)

	var mu sync.Mutex
	var failed []uuid.UUID
	done := make(chan struct{})
	runner.SetErrorHandler(func(task Task, err error) {
		mu.Lock()
		failed = append(failed, task.ID())
		mu.Unlock()
		close(done)
	})
	runner.Start()
	defer runner.Stop()

	ft := newFakeTask(errors.New("boom"))
	require.NoError(t, runner.Submit(ft))
	waitExecuted(t, ft)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("error handler was not called")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uuid.UUID{ft.id}, failed)
}

func TestRunnerRejectsWhenQueueFull(t *testing.T) {
	t.Parallel()

	// Never started, so the queue only drains up to its buffer.
	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, nil)

	require.NoError(t, runner.Submit(newFakeTask(nil)))
	assert.Error(t, runner.Submit(newFakeTask(nil)))
}

// seedOnlyStore is an ObjectionStore stub where only SeedDefaults matters.
type seedOnlyStore struct {
	seed func() error
}

func (s *seedOnlyStore) GetByID(_ context.Context, _ uuid.UUID) (*domain.GeneratedObjection, error) {
	return nil, store.ErrObjectionNotFound
}

func (s *seedOnlyStore) GetByScenarioType(_ context.Context, _ string) ([]domain.GeneratedObjection, error) {
	return nil, nil
}

func (s *seedOnlyStore) GetByCategory(_ context.Context, _ domain.ObjectionCategory) ([]domain.GeneratedObjection, error) {
	return nil, nil
}

func (s *seedOnlyStore) GetCommon(_ context.Context) ([]domain.GeneratedObjection, error) {
	return nil, nil
}

func (s *seedOnlyStore) Save(_ context.Context, _ *domain.GeneratedObjection) error {
	return nil
}

func (s *seedOnlyStore) SeedDefaults(_ context.Context) error {
	return s.seed()
}

func TestCatalogSeedTask(t *testing.T) {
	t.Parallel()

	t.Run("nil store rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewCatalogSeedTask(nil)
		assert.Error(t, err)
	})

	t.Run("delegates to SeedDefaults", func(t *testing.T) {
		t.Parallel()
		seeded := false
		seedTask, err := NewCatalogSeedTask(&seedOnlyStore{seed: func() error {
			seeded = true
			return nil
		}})
		require.NoError(t, err)
		assert.Equal(t, TaskTypeCatalogSeed, seedTask.Type())

		require.NoError(t, seedTask.Execute(context.Background()))
		assert.True(t, seeded)
	})

	t.Run("wraps seeding failure", func(t *testing.T) {
		t.Parallel()
		seedTask, err := NewCatalogSeedTask(&seedOnlyStore{seed: func() error {
			return errors.New("db down")
		}})
		require.NoError(t, err)

		err = seedTask.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to seed objection catalog")
	})
}
