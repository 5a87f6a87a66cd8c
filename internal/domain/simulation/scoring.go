package simulation

import "github.com/salesim/salesim-api/internal/domain"

// computeScore derives the numeric score from an evaluation's boolean
// signals: neutral base, fixed increment per true positive signal, larger
// fixed decrement per true negative signal, clamped to [0, 100]. The
// arithmetic is what keeps scoring reproducible across generation-service
// calls that agree on the same signals.
func computeScore(eval *domain.ObjectionHandlingEvaluation, params *Params) int {
	score := params.BaseScore

	positives := []bool{
		eval.Acknowledged,
		eval.EmpathyShown,
		eval.AddressedDirectly,
		eval.ProvidedValue,
		eval.AskedFollowUp,
	}
	for _, signal := range positives {
		if signal {
			score += params.PositiveIncrement
		}
	}

	negatives := []bool{
		eval.Dismissive,
		eval.Argumentative,
		eval.IgnoredConcern,
	}
	for _, signal := range negatives {
		if signal {
			score -= params.NegativeDecrement
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// fallbackEvaluation is the conservative evaluation used when the
// generation service returns output that cannot be parsed. All signals stay
// false, the score sits at the neutral base, and the feedback explains the
// degraded judgment so the turn (and the session) can continue.
func fallbackEvaluation(params *Params) domain.ObjectionHandlingEvaluation {
	return domain.ObjectionHandlingEvaluation{
		Score:    params.BaseScore,
		Degraded: true,
		Feedback: "Automatic evaluation was unavailable for this response, so a neutral score was recorded. " +
			"Keep acknowledging the concern directly and backing your answer with specifics.",
		Suggestions: []string{
			"Restate the client's concern in your own words before answering it.",
		},
	}
}
