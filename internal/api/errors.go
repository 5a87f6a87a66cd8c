package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/salesim/salesim-api/internal/api/shared"
	"github.com/salesim/salesim-api/internal/generation"
	"github.com/salesim/salesim-api/internal/service/auth"
	"github.com/salesim/salesim-api/internal/service/simulation"
	"github.com/salesim/salesim-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, simulation.ErrSessionNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrObjectionNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, simulation.ErrSessionNotFound):
		return http.StatusNotFound

	// Conflict errors: duplicates and turn-sequencing policy violations
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, simulation.ErrSessionEnded),
		errors.Is(err, simulation.ErrConcurrentTurn):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, simulation.ErrInvalidRequest),
		errors.Is(err, simulation.ErrEmptyMessage):
		return http.StatusBadRequest

	// Transient upstream generation failures are retryable
	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, simulation.ErrSessionNotOwned):
		return "You do not own this session"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, simulation.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrObjectionNotFound):
		return "Objection not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, simulation.ErrSessionEnded):
		return "Session has already ended"

	case errors.Is(err, simulation.ErrConcurrentTurn):
		return "Another turn for this session is in progress"

	case errors.Is(err, simulation.ErrEmptyMessage):
		return "Message cannot be empty"

	case errors.Is(err, simulation.ErrInvalidRequest):
		return "Invalid session request"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, generation.ErrTransientFailure):
		return "The simulated client is temporarily unavailable, please retry"

	default:
		var svcErr *simulation.ServiceError
		if errors.As(err, &svcErr) {
			switch svcErr.Operation {
			case "start_session":
				return "Failed to start session"
			case "submit_turn":
				return "Failed to process turn"
			case "end_session":
				return "Failed to end session"
			}
		}
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes a sanitized error response for a service-layer error,
// logging the underlying cause. An empty userMessage falls back to the safe
// message derived from the error type.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation
		// for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
