package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ConversationState is the stage of the simulated sales conversation.
// Transitions run opening → discovery → presenting → objection_handling →
// closing → ended and are driven by the session flow; the injection policy
// only reads the current state.
type ConversationState string

// Possible conversation states.
const (
	StateOpening           ConversationState = "opening"
	StateDiscovery         ConversationState = "discovery"
	StatePresenting        ConversationState = "presenting"
	StateObjectionHandling ConversationState = "objection_handling"
	StateClosing           ConversationState = "closing"
	StateEnded             ConversationState = "ended"
)

// Sentiment is the synthetic client's current emotional disposition.
type Sentiment string

// Possible sentiments.
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Difficulty scales how many distinct objections a session may raise.
type Difficulty string

// Possible difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Session-specific validation errors
var (
	ErrEmptySessionID        = errors.New("session ID cannot be empty")
	ErrEmptySessionUserID    = errors.New("session user ID cannot be empty")
	ErrObjectionAlreadyOpen  = errors.New("an unanswered objection is already active")
	ErrNoActiveObjection     = errors.New("no unanswered objection is active")
	ErrRaisedRecordImmutable = errors.New("raised objection record already evaluated")
)

// RaisedObjectionRecord tracks one objection instance that was surfaced into
// the live conversation. Records are only appended to a context, never
// removed. Response and Evaluation stay nil until the trainee answers and
// the answer is scored; both are set together with the resolution decision
// so a record is never left half-updated.
type RaisedObjectionRecord struct {
	Objection    GeneratedObjection           `json:"objection"`
	Utterance    string                       `json:"utterance"`
	RaisedAtTurn int                          `json:"raised_at_turn"`
	Response     *string                      `json:"response,omitempty"`
	Evaluation   *ObjectionHandlingEvaluation `json:"evaluation,omitempty"`
	Resolved     bool                         `json:"resolved"`
}

// Answered reports whether the trainee has responded to this objection.
func (r *RaisedObjectionRecord) Answered() bool {
	return r.Response != nil
}

// ConversationContext is the running state of one simulation session.
// It is exclusively owned by the session: one turn is fully processed
// before the next turn's input is accepted, so no internal locking is
// needed. Snapshots are persisted between turns by the session store.
type ConversationContext struct {
	SessionID        uuid.UUID               `json:"session_id"`
	UserID           uuid.UUID               `json:"user_id"`
	ScenarioType     string                  `json:"scenario_type"`
	Persona          ClientPersona           `json:"persona"`
	State            ConversationState       `json:"state"`
	CurrentTurn      int                     `json:"current_turn"`
	LastUserMessage  string                  `json:"last_user_message"`
	PendingPool      []GeneratedObjection    `json:"pending_pool"`
	RaisedObjections []RaisedObjectionRecord `json:"raised_objections"`
	Sentiment        Sentiment               `json:"sentiment"`
	Difficulty       Difficulty              `json:"difficulty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// NewConversationContext creates the initial context for a session.
// The pending pool is the selector's output; the conversation starts in the
// opening state with neutral sentiment.
func NewConversationContext(
	userID uuid.UUID,
	scenarioType string,
	persona ClientPersona,
	difficulty Difficulty,
	pool []GeneratedObjection,
) (*ConversationContext, error) {
	ctx := &ConversationContext{
		SessionID:    uuid.New(),
		UserID:       userID,
		ScenarioType: scenarioType,
		Persona:      persona,
		State:        StateOpening,
		CurrentTurn:  0,
		PendingPool:  pool,
		Sentiment:    SentimentNeutral,
		Difficulty:   difficulty,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	return ctx, nil
}

// Validate checks if the ConversationContext has valid data.
func (c *ConversationContext) Validate() error {
	if c.SessionID == uuid.Nil {
		return ErrEmptySessionID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}
	if c.ScenarioType == "" {
		return ErrEmptyScenarioType
	}
	if err := c.Persona.Validate(); err != nil {
		return err
	}
	if !c.State.IsValid() {
		return ErrInvalidConversationState
	}
	if !c.Sentiment.IsValid() {
		return ErrInvalidSentiment
	}
	if !c.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	return nil
}

// ActiveObjection returns the most recent raised objection that the trainee
// has not yet answered, or nil if every raised objection is answered.
// At most one such record exists at any turn.
func (c *ConversationContext) ActiveObjection() *RaisedObjectionRecord {
	if n := len(c.RaisedObjections); n > 0 && !c.RaisedObjections[n-1].Answered() {
		return &c.RaisedObjections[n-1]
	}
	return nil
}

// UnresolvedCount returns the number of raised objections that have not been
// marked resolved.
func (c *ConversationContext) UnresolvedCount() int {
	count := 0
	for i := range c.RaisedObjections {
		if !c.RaisedObjections[i].Resolved {
			count++
		}
	}
	return count
}

// LastRaisedTurn returns the turn at which the most recent objection was
// raised, and whether any objection has been raised at all.
func (c *ConversationContext) LastRaisedTurn() (int, bool) {
	if n := len(c.RaisedObjections); n > 0 {
		return c.RaisedObjections[n-1].RaisedAtTurn, true
	}
	return 0, false
}

// RaiseObjection removes the given pending objection from the pool and
// appends a new raised record for the current turn. It refuses to stack a
// second unanswered objection.
func (c *ConversationContext) RaiseObjection(obj GeneratedObjection, utterance string) error {
	if c.ActiveObjection() != nil {
		return ErrObjectionAlreadyOpen
	}

	remaining := make([]GeneratedObjection, 0, len(c.PendingPool))
	for _, pending := range c.PendingPool {
		if pending.ID != obj.ID {
			remaining = append(remaining, pending)
		}
	}
	c.PendingPool = remaining

	c.RaisedObjections = append(c.RaisedObjections, RaisedObjectionRecord{
		Objection:    obj,
		Utterance:    utterance,
		RaisedAtTurn: c.CurrentTurn,
	})
	return nil
}

// ResolveActiveObjection records the trainee's response, its evaluation and
// the resolution decision on the active objection in a single step, so a
// cancelled session never leaves a record with an evaluation but no
// resolution decision.
func (c *ConversationContext) ResolveActiveObjection(
	response string,
	eval ObjectionHandlingEvaluation,
	resolved bool,
) error {
	active := c.ActiveObjection()
	if active == nil {
		return ErrNoActiveObjection
	}
	if active.Evaluation != nil {
		return ErrRaisedRecordImmutable
	}

	active.Response = &response
	active.Evaluation = &eval
	active.Resolved = resolved
	return nil
}

// AdvanceTurn registers the trainee's latest message and increments the turn
// counter.
func (c *ConversationContext) AdvanceTurn(userMessage string) {
	c.CurrentTurn++
	c.LastUserMessage = userMessage
	c.UpdatedAt = time.Now().UTC()
}

// IsValid reports whether the state is part of the session state machine.
func (s ConversationState) IsValid() bool {
	switch s {
	case StateOpening, StateDiscovery, StatePresenting,
		StateObjectionHandling, StateClosing, StateEnded:
		return true
	}
	return false
}

// IsValid reports whether the sentiment is part of the closed set.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// IsValid reports whether the difficulty is part of the closed set.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
