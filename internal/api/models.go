package api

import (
	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Token is the JWT access token used for API authorization
	Token string `json:"token"`
}

// StartSessionRequest defines the payload for creating a simulation session.
type StartSessionRequest struct {
	ScenarioType string                `json:"scenario_type" validate:"required,min=1,max=100"`
	Difficulty   string                `json:"difficulty"    validate:"omitempty,oneof=easy medium hard"`
	Persona      *domain.ClientPersona `json:"persona,omitempty"`
}

// SessionResponse carries a session snapshot plus the client's latest line.
type SessionResponse struct {
	SessionID     uuid.UUID                `json:"session_id"`
	ScenarioType  string                   `json:"scenario_type"`
	State         domain.ConversationState `json:"state"`
	Turn          int                      `json:"turn"`
	Sentiment     domain.Sentiment         `json:"sentiment"`
	Difficulty    domain.Difficulty        `json:"difficulty"`
	Persona       domain.ClientPersona     `json:"persona"`
	ClientMessage string                   `json:"client_message,omitempty"`
}

// SubmitTurnRequest defines the payload for submitting a trainee message.
type SubmitTurnRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// TurnResponse defines the result of one processed turn.
type TurnResponse struct {
	SessionID       uuid.UUID                           `json:"session_id"`
	Turn            int                                 `json:"turn"`
	State           domain.ConversationState            `json:"state"`
	Sentiment       domain.Sentiment                    `json:"sentiment"`
	ClientMessage   string                              `json:"client_message"`
	ObjectionRaised *domain.GeneratedObjection          `json:"objection_raised,omitempty"`
	Evaluation      *domain.ObjectionHandlingEvaluation `json:"evaluation,omitempty"`
	Reaction        *domain.ReactionResult              `json:"reaction,omitempty"`
}

// SessionSummaryResponse defines the final report for an ended session.
type SessionSummaryResponse struct {
	SessionID          uuid.UUID `json:"session_id"`
	TotalTurns         int       `json:"total_turns"`
	ObjectionsRaised   int       `json:"objections_raised"`
	ObjectionsResolved int       `json:"objections_resolved"`
	AverageScore       int       `json:"average_score"`
}
