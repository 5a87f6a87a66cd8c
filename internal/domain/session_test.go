package domain

import (
	"testing"

	"github.com/google/uuid"
)

func testPersona() ClientPersona {
	return ClientPersona{
		Name:        "Dana Whitfield",
		Background:  "First-time buyer relocating for work",
		Personality: PersonalitySkeptical,
		Budget:      "around 450k",
		Motivations: []string{"schools", "commute"},
	}
}

func testObjection(t *testing.T, category ObjectionCategory) GeneratedObjection {
	t.Helper()
	obj, err := NewGeneratedObjection("price_negotiation", category, SeverityModerate,
		"The asking price is well above what comparable homes sold for.")
	if err != nil {
		t.Fatalf("failed to create objection: %v", err)
	}
	return *obj
}

func TestNewConversationContext(t *testing.T) {
	t.Parallel()

	pool := []GeneratedObjection{testObjection(t, CategoryPriceBudget)}

	ctx, err := NewConversationContext(uuid.New(), "price_negotiation", testPersona(), DifficultyMedium, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ctx.State != StateOpening {
		t.Errorf("expected initial state %q, got %q", StateOpening, ctx.State)
	}
	if ctx.Sentiment != SentimentNeutral {
		t.Errorf("expected initial sentiment %q, got %q", SentimentNeutral, ctx.Sentiment)
	}
	if ctx.CurrentTurn != 0 {
		t.Errorf("expected turn 0, got %d", ctx.CurrentTurn)
	}
	if len(ctx.PendingPool) != 1 {
		t.Errorf("expected pool of 1, got %d", len(ctx.PendingPool))
	}
}

func TestNewConversationContextValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		userID     uuid.UUID
		scenario   string
		persona    ClientPersona
		difficulty Difficulty
		wantErr    error
	}{
		{
			name:       "missing user ID",
			userID:     uuid.Nil,
			scenario:   "price_negotiation",
			persona:    testPersona(),
			difficulty: DifficultyEasy,
			wantErr:    ErrEmptySessionUserID,
		},
		{
			name:       "missing scenario type",
			userID:     uuid.New(),
			scenario:   "",
			persona:    testPersona(),
			difficulty: DifficultyEasy,
			wantErr:    ErrEmptyScenarioType,
		},
		{
			name:       "invalid personality",
			userID:     uuid.New(),
			scenario:   "price_negotiation",
			persona:    ClientPersona{Name: "X", Personality: "belligerent"},
			difficulty: DifficultyEasy,
			wantErr:    ErrInvalidPersonality,
		},
		{
			name:       "invalid difficulty",
			userID:     uuid.New(),
			scenario:   "price_negotiation",
			persona:    testPersona(),
			difficulty: "impossible",
			wantErr:    ErrInvalidDifficulty,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConversationContext(tc.userID, tc.scenario, tc.persona, tc.difficulty, nil)
			if err != tc.wantErr {
				t.Errorf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRaiseObjection(t *testing.T) {
	t.Parallel()

	pool := []GeneratedObjection{
		testObjection(t, CategoryPriceBudget),
		testObjection(t, CategoryTimingUrgency),
	}
	ctx, err := NewConversationContext(uuid.New(), "price_negotiation", testPersona(), DifficultyMedium, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ctx.RaiseObjection(pool[0], "Honestly, the price feels steep."); err != nil {
		t.Fatalf("unexpected error raising objection: %v", err)
	}

	if len(ctx.PendingPool) != 1 {
		t.Errorf("expected pool to shrink to 1, got %d", len(ctx.PendingPool))
	}
	if active := ctx.ActiveObjection(); active == nil {
		t.Fatal("expected an active objection")
	} else if active.Objection.ID != pool[0].ID {
		t.Errorf("active objection mismatch")
	}

	// A second unanswered objection must be refused.
	if err := ctx.RaiseObjection(pool[1], "And the timing is bad too."); err != ErrObjectionAlreadyOpen {
		t.Errorf("expected ErrObjectionAlreadyOpen, got %v", err)
	}
}

func TestResolveActiveObjection(t *testing.T) {
	t.Parallel()

	obj := testObjection(t, CategoryPriceBudget)
	ctx, err := NewConversationContext(uuid.New(), "price_negotiation", testPersona(), DifficultyEasy,
		[]GeneratedObjection{obj})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Resolving with no active objection is a policy violation.
	if err := ctx.ResolveActiveObjection("resp", ObjectionHandlingEvaluation{}, false); err != ErrNoActiveObjection {
		t.Errorf("expected ErrNoActiveObjection, got %v", err)
	}

	if err := ctx.RaiseObjection(obj, "It just costs too much."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	eval := ObjectionHandlingEvaluation{Score: 85, Acknowledged: true}
	if err := ctx.ResolveActiveObjection("I hear you, let me walk through the comps.", eval, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := ctx.RaisedObjections[0]
	if !rec.Answered() || !rec.Resolved {
		t.Errorf("expected record answered and resolved, got answered=%v resolved=%v",
			rec.Answered(), rec.Resolved)
	}
	if ctx.ActiveObjection() != nil {
		t.Error("expected no active objection after resolution")
	}
	if ctx.UnresolvedCount() != 0 {
		t.Errorf("expected 0 unresolved, got %d", ctx.UnresolvedCount())
	}
}
