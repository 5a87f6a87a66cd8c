package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salesim/salesim-api/internal/generation"
	"github.com/salesim/salesim-api/internal/service/auth"
	"github.com/salesim/salesim-api/internal/service/simulation"
	"github.com/salesim/salesim-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"session not owned", simulation.ErrSessionNotOwned, http.StatusForbidden},
		{"session not found", simulation.ErrSessionNotFound, http.StatusNotFound},
		{"store session not found", store.ErrSessionNotFound, http.StatusNotFound},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"session ended", simulation.ErrSessionEnded, http.StatusConflict},
		{"concurrent turn", simulation.ErrConcurrentTurn, http.StatusConflict},
		{"invalid request", simulation.ErrInvalidRequest, http.StatusBadRequest},
		{"empty message", simulation.ErrEmptyMessage, http.StatusBadRequest},
		{"transient generation", generation.ErrTransientFailure, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped in service error",
			simulation.NewSubmitTurnError("failed",
				fmt.Errorf("%w: reset", generation.ErrTransientFailure)),
			http.StatusBadGateway,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Session not found", GetSafeErrorMessage(simulation.ErrSessionNotFound))
	assert.Equal(t, "Session has already ended", GetSafeErrorMessage(simulation.ErrSessionEnded))
	assert.Equal(t, "Failed to process turn",
		GetSafeErrorMessage(simulation.NewSubmitTurnError("db down", errors.New("boom"))))

	// Internal details never leak through the safe message.
	internal := errors.New("pq: connection to 10.0.0.5 refused")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
}
