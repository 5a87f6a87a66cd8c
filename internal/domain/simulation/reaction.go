package simulation

import "github.com/salesim/salesim-api/internal/domain"

// determineReaction maps an evaluation score and the active persona into
// the client's next move. The branch table:
//
//	score ≥ accept threshold  → accept, resolved, positive
//	score ≥ soften threshold  → soften, unresolved, neutral
//	otherwise                 → unresolved, negative; escalate for
//	                            confrontational personas, maintain for others
//
// The persona's trait never changes and modulates only the action branch at
// the low-score boundary, not the sentiment.
func determineReaction(
	score int,
	persona *domain.ClientPersona,
	params *Params,
) domain.ReactionResult {
	switch {
	case score >= params.AcceptThreshold:
		return domain.ReactionResult{
			Action:    domain.ActionAccept,
			Sentiment: domain.SentimentPositive,
			Resolved:  true,
		}
	case score >= params.SoftenThreshold:
		return domain.ReactionResult{
			Action:    domain.ActionSoften,
			Sentiment: domain.SentimentNeutral,
			Resolved:  false,
		}
	default:
		action := domain.ActionMaintain
		if persona.Personality.IsConfrontational() {
			action = domain.ActionEscalate
		}
		return domain.ReactionResult{
			Action:    action,
			Sentiment: domain.SentimentNegative,
			Resolved:  false,
		}
	}
}
