package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/salesim/salesim-api/internal/domain"
	"github.com/salesim/salesim-api/internal/service/simulation"
)

// SessionHandler handles simulation-session API requests.
type SessionHandler struct {
	simulator simulation.SimulatorService
	validator *validator.Validate
}

// NewSessionHandler creates a new SessionHandler with the given dependencies.
func NewSessionHandler(simulator simulation.SimulatorService) *SessionHandler {
	return &SessionHandler{
		simulator: simulator,
		validator: validator.New(),
	}
}

// StartSession handles POST /api/sessions.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req StartSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	state, err := h.simulator.StartSession(r.Context(), userID, simulation.StartSessionRequest{
		ScenarioType: req.ScenarioType,
		Difficulty:   domain.Difficulty(req.Difficulty),
		Persona:      req.Persona,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, sessionResponseFrom(state))
}

// SubmitTurn handles POST /api/sessions/{id}/turns.
func (h *SessionHandler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndSessionID(w, r)
	if !ok {
		return
	}

	var req SubmitTurnRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.simulator.SubmitTurn(r.Context(), userID, sessionID, req.Message)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TurnResponse{
		SessionID:       result.SessionID,
		Turn:            result.Turn,
		State:           result.State,
		Sentiment:       result.Sentiment,
		ClientMessage:   result.ClientMessage,
		ObjectionRaised: result.ObjectionRaised,
		Evaluation:      result.Evaluation,
		Reaction:        result.Reaction,
	})
}

// GetSession handles GET /api/sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndSessionID(w, r)
	if !ok {
		return
	}

	state, err := h.simulator.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, sessionResponseFrom(state))
}

// EndSession handles POST /api/sessions/{id}/end.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := requireUserAndSessionID(w, r)
	if !ok {
		return
	}

	summary, err := h.simulator.EndSession(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, SessionSummaryResponse{
		SessionID:          summary.SessionID,
		TotalTurns:         summary.TotalTurns,
		ObjectionsRaised:   summary.ObjectionsRaised,
		ObjectionsResolved: summary.ObjectionsResolved,
		AverageScore:       summary.AverageScore,
	})
}

// sessionResponseFrom maps a service session state to the API response shape.
func sessionResponseFrom(state *simulation.SessionState) SessionResponse {
	snapshot := state.Context
	return SessionResponse{
		SessionID:     snapshot.SessionID,
		ScenarioType:  snapshot.ScenarioType,
		State:         snapshot.State,
		Turn:          snapshot.CurrentTurn,
		Sentiment:     snapshot.Sentiment,
		Difficulty:    snapshot.Difficulty,
		Persona:       snapshot.Persona,
		ClientMessage: state.ClientMessage,
	}
}
