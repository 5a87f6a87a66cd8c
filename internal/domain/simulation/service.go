package simulation

import (
	"errors"

	"github.com/salesim/salesim-api/internal/domain"
)

// Common errors
var (
	ErrNilContext    = errors.New("conversation context cannot be nil")
	ErrNilEvaluation = errors.New("evaluation cannot be nil")
	ErrNilPersona    = errors.New("persona cannot be nil")
)

// Service defines the interface for the deterministic engine operations.
// The service layer depends on this interface so the arithmetic can be
// swapped or re-parameterized in tests.
type Service interface {
	// SelectPool returns the ordered, difficulty-capped objection pool for
	// a session. An empty catalog yields the built-in default pool.
	SelectPool(
		catalog []domain.GeneratedObjection,
		difficulty domain.Difficulty,
	) []domain.GeneratedObjection

	// ShouldInject decides whether a pending objection may be surfaced on
	// the current turn.
	ShouldInject(ctx *domain.ConversationContext) (Decision, error)

	// Score computes the deterministic numeric score for an evaluation's
	// boolean signals.
	Score(eval *domain.ObjectionHandlingEvaluation) (int, error)

	// React maps an evaluation score and the active persona into the
	// client's next move.
	React(score int, persona *domain.ClientPersona) (domain.ReactionResult, error)

	// FallbackEvaluation returns the conservative evaluation used when
	// generation output cannot be parsed.
	FallbackEvaluation() domain.ObjectionHandlingEvaluation
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a simulation service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a simulation service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

// SelectPool implements the Service interface.
func (s *defaultService) SelectPool(
	catalog []domain.GeneratedObjection,
	difficulty domain.Difficulty,
) []domain.GeneratedObjection {
	return selectPool(catalog, difficulty, s.params)
}

// ShouldInject implements the Service interface.
func (s *defaultService) ShouldInject(ctx *domain.ConversationContext) (Decision, error) {
	if ctx == nil {
		return Decision{}, ErrNilContext
	}
	return shouldInject(ctx, s.params), nil
}

// Score implements the Service interface.
func (s *defaultService) Score(eval *domain.ObjectionHandlingEvaluation) (int, error) {
	if eval == nil {
		return 0, ErrNilEvaluation
	}
	return computeScore(eval, s.params), nil
}

// React implements the Service interface.
func (s *defaultService) React(
	score int,
	persona *domain.ClientPersona,
) (domain.ReactionResult, error) {
	if persona == nil {
		return domain.ReactionResult{}, ErrNilPersona
	}
	return determineReaction(score, persona, s.params), nil
}

// FallbackEvaluation implements the Service interface.
func (s *defaultService) FallbackEvaluation() domain.ObjectionHandlingEvaluation {
	return fallbackEvaluation(s.params)
}
