package simulation

import "github.com/salesim/salesim-api/internal/domain"

// Params contains the tunable constants of the simulation engine.
// The defaults satisfy the documented boundary behavior: five true positive
// signals score 100 (≥ 80, accept), three true negative signals with no
// positives score 5 (< 40), and the parse-failure fallback sits at the
// neutral base.
type Params struct {
	// BaseScore is the neutral starting point for score computation.
	BaseScore int

	// PositiveIncrement is added per true positive signal.
	PositiveIncrement int

	// NegativeDecrement is subtracted per true negative signal. Its
	// magnitude exceeds PositiveIncrement so sloppy answers cannot be
	// papered over with volume.
	NegativeDecrement int

	// AcceptThreshold is the minimum score at which the client accepts the
	// handling and the objection resolves.
	AcceptThreshold int

	// SoftenThreshold is the minimum score at which the client concedes
	// partially without resolving the concern.
	SoftenThreshold int

	// MaxUnresolved is the cap on simultaneously unresolved raised
	// objections; at or above it the policy refuses to inject.
	MaxUnresolved int

	// CooldownTurns is the number of full turns that must elapse after an
	// objection is raised before the next one may be injected.
	CooldownTurns int

	// PoolCaps limits how many distinct objections a session may ever
	// raise, per difficulty level.
	PoolCaps map[domain.Difficulty]int
}

// NewDefaultParams returns the standard engine parameters.
func NewDefaultParams() *Params {
	return &Params{
		BaseScore:         50,
		PositiveIncrement: 10,
		NegativeDecrement: 15,
		AcceptThreshold:   80,
		SoftenThreshold:   50,
		MaxUnresolved:     2,
		CooldownTurns:     1,
		PoolCaps: map[domain.Difficulty]int{
			domain.DifficultyEasy:   2,
			domain.DifficultyMedium: 4,
			domain.DifficultyHard:   5,
		},
	}
}
