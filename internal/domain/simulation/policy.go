package simulation

import "github.com/salesim/salesim-api/internal/domain"

// Injection refusal/permit reasons. Reasons are stable strings so sessions
// can be audited after the fact.
const (
	ReasonInappropriateStage = "Inappropriate conversation stage."
	ReasonObjectionActive    = "An objection is already awaiting a response."
	ReasonTooManyUnresolved  = "Too many unresolved objections."
	ReasonTooSoon            = "Too soon since last objection."
	ReasonPoolExhausted      = "No pending objections remain."
	ReasonReady              = "Conversation is ready for an objection."
)

// Decision is the outcome of the per-turn injection policy.
type Decision struct {
	ShouldInject bool   `json:"should_inject"`
	Reason       string `json:"reason"`
}

// shouldInject decides whether a pending objection may be surfaced on the
// current turn. The checks are ordered: conversation stage, active
// objection, unresolved cap, cooldown, pool availability. An exhausted pool
// is a normal refusal, not an error; the session simply proceeds without
// further objections.
func shouldInject(ctx *domain.ConversationContext, params *Params) Decision {
	// Objections must not interrupt rapport-building or a closed session,
	// and only the presenting and objection-handling stages are fair game.
	switch ctx.State {
	case domain.StatePresenting, domain.StateObjectionHandling:
	default:
		return Decision{ShouldInject: false, Reason: ReasonInappropriateStage}
	}

	// Never stack a second objection on an unanswered one.
	if ctx.ActiveObjection() != nil {
		return Decision{ShouldInject: false, Reason: ReasonObjectionActive}
	}

	// Don't overwhelm the trainee with stacked unaddressed concerns.
	if ctx.UnresolvedCount() >= params.MaxUnresolved {
		return Decision{ShouldInject: false, Reason: ReasonTooManyUnresolved}
	}

	// Pacing: at least CooldownTurns full turns since the last objection,
	// resolved or not.
	if lastTurn, raisedAny := ctx.LastRaisedTurn(); raisedAny {
		if ctx.CurrentTurn-lastTurn < params.CooldownTurns {
			return Decision{ShouldInject: false, Reason: ReasonTooSoon}
		}
	}

	if len(ctx.PendingPool) == 0 {
		return Decision{ShouldInject: false, Reason: ReasonPoolExhausted}
	}

	return Decision{ShouldInject: true, Reason: ReasonReady}
}
