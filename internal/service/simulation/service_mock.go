package simulation

import (
	"context"

	"github.com/google/uuid"
)

// MockSimulatorService is a mock implementation of the SimulatorService
// interface for testing handlers and middleware.
type MockSimulatorService struct {
	StartSessionFunc func(ctx context.Context, userID uuid.UUID, req StartSessionRequest) (*SessionState, error)
	SubmitTurnFunc   func(ctx context.Context, userID, sessionID uuid.UUID, message string) (*TurnResult, error)
	GetSessionFunc   func(ctx context.Context, userID, sessionID uuid.UUID) (*SessionState, error)
	EndSessionFunc   func(ctx context.Context, userID, sessionID uuid.UUID) (*SessionSummary, error)
}

// Ensure MockSimulatorService implements SimulatorService
var _ SimulatorService = (*MockSimulatorService)(nil)

// StartSession delegates to StartSessionFunc when set.
func (m *MockSimulatorService) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	req StartSessionRequest,
) (*SessionState, error) {
	if m.StartSessionFunc != nil {
		return m.StartSessionFunc(ctx, userID, req)
	}
	return nil, nil
}

// SubmitTurn delegates to SubmitTurnFunc when set.
func (m *MockSimulatorService) SubmitTurn(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	message string,
) (*TurnResult, error) {
	if m.SubmitTurnFunc != nil {
		return m.SubmitTurnFunc(ctx, userID, sessionID, message)
	}
	return nil, nil
}

// GetSession delegates to GetSessionFunc when set.
func (m *MockSimulatorService) GetSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*SessionState, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, userID, sessionID)
	}
	return nil, nil
}

// EndSession delegates to EndSessionFunc when set.
func (m *MockSimulatorService) EndSession(
	ctx context.Context,
	userID, sessionID uuid.UUID,
) (*SessionSummary, error) {
	if m.EndSessionFunc != nil {
		return m.EndSessionFunc(ctx, userID, sessionID)
	}
	return nil, nil
}
