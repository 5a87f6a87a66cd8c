// Package simulation provides the session orchestrator: it threads the
// catalog, the deterministic engine and the text-generation collaborator
// through each conversation turn and owns all ConversationContext mutation.
package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/domain"
)

// StartSessionRequest carries the operator's inputs for a new session.
type StartSessionRequest struct {
	ScenarioType string                `json:"scenario_type"`
	Difficulty   domain.Difficulty     `json:"difficulty"`
	Persona      *domain.ClientPersona `json:"persona,omitempty"` // optional override
}

// SessionState is a read view of one session: the context snapshot plus the
// client utterance produced for the current step (empty on plain reads).
type SessionState struct {
	Context       *domain.ConversationContext `json:"context"`
	ClientMessage string                      `json:"client_message,omitempty"`
}

// TurnResult is the outcome of processing one trainee message.
type TurnResult struct {
	SessionID       uuid.UUID                           `json:"session_id"`
	Turn            int                                 `json:"turn"`
	State           domain.ConversationState            `json:"state"`
	Sentiment       domain.Sentiment                    `json:"sentiment"`
	ClientMessage   string                              `json:"client_message"`
	ObjectionRaised *domain.GeneratedObjection          `json:"objection_raised,omitempty"`
	Evaluation      *domain.ObjectionHandlingEvaluation `json:"evaluation,omitempty"`
	Reaction        *domain.ReactionResult              `json:"reaction,omitempty"`
}

// SessionSummary is the final report produced when a session ends.
type SessionSummary struct {
	SessionID          uuid.UUID `json:"session_id"`
	TotalTurns         int       `json:"total_turns"`
	ObjectionsRaised   int       `json:"objections_raised"`
	ObjectionsResolved int       `json:"objections_resolved"`
	AverageScore       int       `json:"average_score"`
}

// SimulatorService orchestrates objection-handling training sessions.
type SimulatorService interface {
	// StartSession creates a session: builds the persona, selects the
	// difficulty-capped objection pool, persists the initial snapshot and
	// produces the client's opening utterance.
	StartSession(
		ctx context.Context,
		userID uuid.UUID,
		req StartSessionRequest,
	) (*SessionState, error)

	// SubmitTurn processes one trainee message. If an objection is active,
	// the message is evaluated, scored and reacted to before the client's
	// follow-up is produced; otherwise the injection policy decides whether
	// a pending objection is surfaced.
	//
	// Returns ErrSessionNotFound if the session does not exist,
	// ErrSessionNotOwned if it belongs to another user, ErrSessionEnded if
	// it has already ended, and ErrConcurrentTurn if another turn for the
	// same session was committed first.
	SubmitTurn(
		ctx context.Context,
		userID uuid.UUID,
		sessionID uuid.UUID,
		message string,
	) (*TurnResult, error)

	// GetSession retrieves the current snapshot of a session.
	GetSession(
		ctx context.Context,
		userID uuid.UUID,
		sessionID uuid.UUID,
	) (*SessionState, error)

	// EndSession transitions the session to the ended state and returns the
	// final summary. Ending an already-ended session returns
	// ErrSessionEnded.
	EndSession(
		ctx context.Context,
		userID uuid.UUID,
		sessionID uuid.UUID,
	) (*SessionSummary, error)
}

// Common error types for SimulatorService
var (
	// ErrSessionNotFound indicates that the session does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotOwned indicates that the session belongs to another user.
	ErrSessionNotOwned = errors.New("unauthorized access: session not owned by user")

	// ErrSessionEnded indicates that the session has already ended.
	ErrSessionEnded = errors.New("session has already ended")

	// ErrConcurrentTurn indicates that another turn for the same session was
	// committed while this one was being processed.
	ErrConcurrentTurn = errors.New("concurrent turn rejected")

	// ErrEmptyMessage indicates that the trainee message was empty.
	ErrEmptyMessage = errors.New("trainee message cannot be empty")

	// ErrInvalidRequest indicates an invalid session start request.
	ErrInvalidRequest = errors.New("invalid session request")
)

// ServiceError wraps errors from the simulator service with the operation
// that failed, so consumers can differentiate failures with errors.As
// instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g. "start_session",
	// "submit_turn").
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewStartSessionError returns a new ServiceError for the start_session operation.
func NewStartSessionError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "start_session", Message: message, Err: err}
}

// NewSubmitTurnError returns a new ServiceError for the submit_turn operation.
func NewSubmitTurnError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_turn", Message: message, Err: err}
}

// NewEndSessionError returns a new ServiceError for the end_session operation.
func NewEndSessionError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "end_session", Message: message, Err: err}
}
