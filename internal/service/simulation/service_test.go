package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesim/salesim-api/internal/domain"
	engine "github.com/salesim/salesim-api/internal/domain/simulation"
	"github.com/salesim/salesim-api/internal/generation"
	"github.com/salesim/salesim-api/internal/store"
)

// memorySessionStore is an in-memory SessionStore with the same optimistic
// turn-number check as the postgres implementation.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.ConversationContext
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[uuid.UUID]*domain.ConversationContext)}
}

func cloneContext(snapshot *domain.ConversationContext) *domain.ConversationContext {
	data, err := json.Marshal(snapshot)
	if err != nil {
		panic(err)
	}
	var clone domain.ConversationContext
	if err := json.Unmarshal(data, &clone); err != nil {
		panic(err)
	}
	return &clone
}

func (m *memorySessionStore) Create(_ context.Context, snapshot *domain.ConversationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[snapshot.SessionID] = cloneContext(snapshot)
	return nil
}

func (m *memorySessionStore) Get(_ context.Context, sessionID uuid.UUID) (*domain.ConversationContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.sessions[sessionID]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return cloneContext(snapshot), nil
}

func (m *memorySessionStore) Update(_ context.Context, snapshot *domain.ConversationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sessions[snapshot.SessionID]
	if !ok {
		return store.ErrSessionNotFound
	}
	if existing.CurrentTurn > snapshot.CurrentTurn ||
		(existing.CurrentTurn == snapshot.CurrentTurn && existing.State == snapshot.State) {
		return store.ErrStaleSnapshot
	}
	m.sessions[snapshot.SessionID] = cloneContext(snapshot)
	return nil
}

// memoryObjectionStore serves a fixed catalog.
type memoryObjectionStore struct {
	scoped map[string][]domain.GeneratedObjection
	common []domain.GeneratedObjection
}

func (m *memoryObjectionStore) GetByID(_ context.Context, id uuid.UUID) (*domain.GeneratedObjection, error) {
	for _, objs := range m.scoped {
		for i := range objs {
			if objs[i].ID == id {
				return &objs[i], nil
			}
		}
	}
	return nil, store.ErrObjectionNotFound
}

func (m *memoryObjectionStore) GetByScenarioType(_ context.Context, scenarioType string) ([]domain.GeneratedObjection, error) {
	return m.scoped[scenarioType], nil
}

func (m *memoryObjectionStore) GetByCategory(_ context.Context, category domain.ObjectionCategory) ([]domain.GeneratedObjection, error) {
	var out []domain.GeneratedObjection
	for _, objs := range m.scoped {
		for _, obj := range objs {
			if obj.Category == category {
				out = append(out, obj)
			}
		}
	}
	return out, nil
}

func (m *memoryObjectionStore) GetCommon(_ context.Context) ([]domain.GeneratedObjection, error) {
	return m.common, nil
}

func (m *memoryObjectionStore) Save(_ context.Context, _ *domain.GeneratedObjection) error {
	return nil
}

func (m *memoryObjectionStore) SeedDefaults(_ context.Context) error {
	return nil
}

// scriptedGenerator returns queued responses in order, or a fixed error.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) Complete(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) == 0 {
		return "generated line", nil
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	return next, nil
}

func testObjection(t *testing.T, scenarioType string, category domain.ObjectionCategory, severity domain.Severity) domain.GeneratedObjection {
	t.Helper()
	obj, err := domain.NewGeneratedObjection(scenarioType, category, severity,
		fmt.Sprintf("concern about %s (%s)", category, severity))
	require.NoError(t, err)
	return *obj
}

func testCatalogStore(t *testing.T) *memoryObjectionStore {
	t.Helper()
	return &memoryObjectionStore{
		scoped: map[string][]domain.GeneratedObjection{
			"condo_sale": {
				testObjection(t, "condo_sale", domain.CategoryPriceBudget, domain.SeverityModerate),
				testObjection(t, "condo_sale", domain.CategoryTimingUrgency, domain.SeverityMild),
				testObjection(t, "condo_sale", domain.CategoryTrustCredibility, domain.SeverityModerate),
			},
		},
	}
}

func newTestService(sessions store.SessionStore, objections store.ObjectionStore, gen generation.TextGenerator) SimulatorService {
	return NewSimulatorService(sessions, objections, engine.NewDefaultService(), gen, nil)
}

const positiveEvaluationJSON = `{
	"acknowledged": true,
	"empathy_shown": true,
	"addressed_directly": true,
	"provided_value": true,
	"asked_follow_up": true,
	"dismissive": false,
	"argumentative": false,
	"ignored_concern": false,
	"techniques": ["feel-felt-found"],
	"feedback": "Strong, empathetic handling.",
	"suggestions": []
}`

func TestStartSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates session with pool and opening line", func(t *testing.T) {
		t.Parallel()
		sessions := newMemorySessionStore()
		gen := &scriptedGenerator{responses: []string{"Hello there, I'm Jordan."}}
		svc := newTestService(sessions, testCatalogStore(t), gen)

		state, err := svc.StartSession(ctx, userID, StartSessionRequest{
			ScenarioType: "condo_sale",
			Difficulty:   domain.DifficultyMedium,
		})
		require.NoError(t, err)
		assert.Equal(t, "Hello there, I'm Jordan.", state.ClientMessage)
		assert.Equal(t, domain.StateOpening, state.Context.State)
		assert.Equal(t, 0, state.Context.CurrentTurn)
		assert.Len(t, state.Context.PendingPool, 3)

		stored, err := sessions.Get(ctx, state.Context.SessionID)
		require.NoError(t, err)
		assert.Equal(t, userID, stored.UserID)
	})

	t.Run("empty catalog falls back to default pool", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(newMemorySessionStore(), &memoryObjectionStore{}, &scriptedGenerator{})

		state, err := svc.StartSession(ctx, userID, StartSessionRequest{
			ScenarioType: "unknown_scenario",
			Difficulty:   domain.DifficultyEasy,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, state.Context.PendingPool)
		assert.LessOrEqual(t, len(state.Context.PendingPool), 2)
	})

	t.Run("empty scenario type rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(newMemorySessionStore(), testCatalogStore(t), &scriptedGenerator{})

		_, err := svc.StartSession(ctx, userID, StartSessionRequest{Difficulty: domain.DifficultyEasy})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("invalid persona override rejected", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(newMemorySessionStore(), testCatalogStore(t), &scriptedGenerator{})

		_, err := svc.StartSession(ctx, userID, StartSessionRequest{
			ScenarioType: "condo_sale",
			Difficulty:   domain.DifficultyEasy,
			Persona:      &domain.ClientPersona{Name: ""},
		})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("opening generation failure degrades to canned greeting", func(t *testing.T) {
		t.Parallel()
		gen := &scriptedGenerator{err: fmt.Errorf("%w: boom", generation.ErrTransientFailure)}
		svc := newTestService(newMemorySessionStore(), testCatalogStore(t), gen)

		state, err := svc.StartSession(ctx, userID, StartSessionRequest{
			ScenarioType: "condo_sale",
			Difficulty:   domain.DifficultyMedium,
		})
		require.NoError(t, err)
		assert.Equal(t, cannedGreeting, state.ClientMessage)
	})
}

func TestSubmitTurnFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	sessions := newMemorySessionStore()
	gen := &scriptedGenerator{responses: []string{
		"Hi, I'm Jordan.",         // opening
		"Tell me about the area.", // turn 1 plain reply
		"Honestly, this feels overpriced for what it is.",   // turn 2 formulated objection
		positiveEvaluationJSON,                              // turn 3 evaluation
		"Okay, that actually makes a lot of sense.",         // turn 3 follow-up
	}}
	svc := newTestService(sessions, testCatalogStore(t), gen)

	state, err := svc.StartSession(ctx, userID, StartSessionRequest{
		ScenarioType: "condo_sale",
		Difficulty:   domain.DifficultyMedium,
	})
	require.NoError(t, err)
	sessionID := state.Context.SessionID

	// Turn 1: opening stage, injection refused, plain reply.
	result, err := svc.SubmitTurn(ctx, userID, sessionID, "Hi Jordan, great to meet you.")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Turn)
	assert.Equal(t, domain.StateDiscovery, result.State)
	assert.Nil(t, result.ObjectionRaised)
	assert.Nil(t, result.Evaluation)
	assert.Equal(t, "Tell me about the area.", result.ClientMessage)

	// Turn 2: presenting stage, objection injected.
	result, err = svc.SubmitTurn(ctx, userID, sessionID, "This unit has a great view and a new kitchen.")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Turn)
	assert.Equal(t, domain.StateObjectionHandling, result.State)
	require.NotNil(t, result.ObjectionRaised)
	assert.Equal(t, domain.CategoryPriceBudget, result.ObjectionRaised.Category)
	assert.Equal(t, "Honestly, this feels overpriced for what it is.", result.ClientMessage)

	// Turn 3: active objection evaluated, accepted, resolved.
	result, err = svc.SubmitTurn(ctx, userID, sessionID,
		"I hear you. Comparable units sold for more, and this one includes parking.")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Turn)
	require.NotNil(t, result.Evaluation)
	assert.Equal(t, 100, result.Evaluation.Score)
	assert.False(t, result.Evaluation.Degraded)
	require.NotNil(t, result.Reaction)
	assert.Equal(t, domain.ActionAccept, result.Reaction.Action)
	assert.True(t, result.Reaction.Resolved)
	assert.Equal(t, domain.SentimentPositive, result.Sentiment)
	assert.Equal(t, "Okay, that actually makes a lot of sense.", result.ClientMessage)

	// The resolved record is persisted with response and evaluation.
	stored, err := sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, stored.RaisedObjections, 1)
	record := stored.RaisedObjections[0]
	assert.True(t, record.Resolved)
	require.NotNil(t, record.Response)
	require.NotNil(t, record.Evaluation)
	assert.Equal(t, 100, record.Evaluation.Score)
	assert.Len(t, stored.PendingPool, 2)
}

func TestSubmitTurnMalformedEvaluation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	sessions := newMemorySessionStore()
	snapshot := activeObjectionSnapshot(t, userID)
	require.NoError(t, sessions.Create(ctx, snapshot))

	gen := &scriptedGenerator{responses: []string{
		"I am not JSON at all, sorry.",
		"Hmm, alright.",
	}}
	svc := newTestService(sessions, testCatalogStore(t), gen)

	result, err := svc.SubmitTurn(ctx, userID, snapshot.SessionID, "Let me address that concern.")
	require.NoError(t, err)
	require.NotNil(t, result.Evaluation)
	assert.True(t, result.Evaluation.Degraded)
	assert.Equal(t, 50, result.Evaluation.Score)
	require.NotNil(t, result.Reaction)
	assert.Equal(t, domain.ActionSoften, result.Reaction.Action)
	assert.False(t, result.Reaction.Resolved)
}

func TestSubmitTurnTransientEvaluationFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	sessions := newMemorySessionStore()
	snapshot := activeObjectionSnapshot(t, userID)
	require.NoError(t, sessions.Create(ctx, snapshot))

	gen := &scriptedGenerator{err: fmt.Errorf("%w: connection reset", generation.ErrTransientFailure)}
	svc := newTestService(sessions, testCatalogStore(t), gen)

	_, err := svc.SubmitTurn(ctx, userID, snapshot.SessionID, "Let me address that concern.")
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)

	// The failed turn is not persisted, so it can be retried.
	stored, getErr := sessions.Get(ctx, snapshot.SessionID)
	require.NoError(t, getErr)
	assert.Equal(t, snapshot.CurrentTurn, stored.CurrentTurn)
}

func TestSubmitTurnGuards(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(newMemorySessionStore(), testCatalogStore(t), &scriptedGenerator{})

		_, err := svc.SubmitTurn(ctx, userID, uuid.New(), "hello")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("session owned by someone else", func(t *testing.T) {
		t.Parallel()
		sessions := newMemorySessionStore()
		snapshot := activeObjectionSnapshot(t, uuid.New())
		require.NoError(t, sessions.Create(ctx, snapshot))
		svc := newTestService(sessions, testCatalogStore(t), &scriptedGenerator{})

		_, err := svc.SubmitTurn(ctx, userID, snapshot.SessionID, "hello")
		assert.ErrorIs(t, err, ErrSessionNotOwned)
	})

	t.Run("ended session", func(t *testing.T) {
		t.Parallel()
		sessions := newMemorySessionStore()
		snapshot := activeObjectionSnapshot(t, userID)
		snapshot.State = domain.StateEnded
		require.NoError(t, sessions.Create(ctx, snapshot))
		svc := newTestService(sessions, testCatalogStore(t), &scriptedGenerator{})

		_, err := svc.SubmitTurn(ctx, userID, snapshot.SessionID, "hello")
		assert.ErrorIs(t, err, ErrSessionEnded)
	})

	t.Run("empty message", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(newMemorySessionStore(), testCatalogStore(t), &scriptedGenerator{})

		_, err := svc.SubmitTurn(ctx, userID, uuid.New(), "")
		assert.ErrorIs(t, err, ErrEmptyMessage)
	})
}

// staleWriteStore wraps a SessionStore and rejects every Update, simulating
// a racing turn that committed first.
type staleWriteStore struct {
	store.SessionStore
}

func (s *staleWriteStore) Update(_ context.Context, _ *domain.ConversationContext) error {
	return store.ErrStaleSnapshot
}

func TestSubmitTurnConcurrentWriteRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	sessions := newMemorySessionStore()
	snapshot := activeObjectionSnapshot(t, userID)
	require.NoError(t, sessions.Create(ctx, snapshot))

	gen := &scriptedGenerator{responses: []string{positiveEvaluationJSON, "Fine."}}
	svc := newTestService(&staleWriteStore{SessionStore: sessions}, testCatalogStore(t), gen)

	_, err := svc.SubmitTurn(ctx, userID, snapshot.SessionID, "First answer.")
	assert.ErrorIs(t, err, ErrConcurrentTurn)
}

func TestEndSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	sessions := newMemorySessionStore()
	gen := &scriptedGenerator{responses: []string{positiveEvaluationJSON, "Good."}}
	svc := newTestService(sessions, testCatalogStore(t), gen)

	snapshot := activeObjectionSnapshot(t, userID)
	require.NoError(t, sessions.Create(ctx, snapshot))

	_, err := svc.SubmitTurn(ctx, userID, snapshot.SessionID, "Here is my answer.")
	require.NoError(t, err)

	summary, err := svc.EndSession(ctx, userID, snapshot.SessionID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.SessionID, summary.SessionID)
	assert.Equal(t, 1, summary.ObjectionsRaised)
	assert.Equal(t, 1, summary.ObjectionsResolved)
	assert.Equal(t, 100, summary.AverageScore)

	// Ending twice is a policy violation.
	_, err = svc.EndSession(ctx, userID, snapshot.SessionID)
	assert.ErrorIs(t, err, ErrSessionEnded)

	// No further turns after ending.
	_, err = svc.SubmitTurn(ctx, userID, snapshot.SessionID, "one more")
	assert.ErrorIs(t, err, ErrSessionEnded)
}

// activeObjectionSnapshot builds a snapshot mid-conversation with one
// unanswered raised objection.
func activeObjectionSnapshot(t *testing.T, userID uuid.UUID) *domain.ConversationContext {
	t.Helper()

	pool := []domain.GeneratedObjection{
		testObjection(t, "condo_sale", domain.CategoryPriceBudget, domain.SeverityModerate),
		testObjection(t, "condo_sale", domain.CategoryTimingUrgency, domain.SeverityMild),
	}
	persona := domain.ClientPersona{
		Name:        "Dana Cole",
		Background:  "Looking to buy a condo downtown.",
		Personality: domain.PersonalityAnalytical,
	}

	snapshot, err := domain.NewConversationContext(userID, "condo_sale", persona, domain.DifficultyMedium, pool)
	require.NoError(t, err)
	snapshot.State = domain.StatePresenting
	snapshot.CurrentTurn = 2
	require.NoError(t, snapshot.RaiseObjection(pool[0], "This seems too expensive."))
	snapshot.State = domain.StateObjectionHandling
	return snapshot
}
