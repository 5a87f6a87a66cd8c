package domain

// ObjectionHandlingEvaluation scores one trainee response to an active
// objection. The boolean signals originate from the text-generation
// collaborator; the numeric score is derived deterministically from them by
// the simulation engine so that scoring stays reproducible and auditable
// independent of the free-text feedback. Immutable after creation.
type ObjectionHandlingEvaluation struct {
	Score int `json:"score"` // 0-100

	// Positive signals
	Acknowledged      bool `json:"acknowledged"`
	EmpathyShown      bool `json:"empathy_shown"`
	AddressedDirectly bool `json:"addressed_directly"`
	ProvidedValue     bool `json:"provided_value"`
	AskedFollowUp     bool `json:"asked_follow_up"`

	// Negative signals
	Dismissive     bool `json:"dismissive"`
	Argumentative  bool `json:"argumentative"`
	IgnoredConcern bool `json:"ignored_concern"`

	Techniques  []string `json:"techniques,omitempty"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions,omitempty"`

	// Degraded marks an evaluation produced by the conservative fallback
	// when the generation service returned unparseable output.
	Degraded bool `json:"degraded,omitempty"`
}

// ClientAction is the synthetic client's next behavioral move after an
// objection-handling attempt.
type ClientAction string

// Possible client actions.
const (
	ActionAccept   ClientAction = "accept"
	ActionSoften   ClientAction = "soften"
	ActionMaintain ClientAction = "maintain"
	ActionEscalate ClientAction = "escalate"
)

// ReactionResult maps an evaluation into the client's next emotional and
// behavioral state. It drives the follow-up utterance and the context
// update.
type ReactionResult struct {
	Action    ClientAction `json:"action"`
	Sentiment Sentiment    `json:"sentiment"`
	Resolved  bool         `json:"resolved"`
}

// IsValid reports whether the action is part of the closed set.
func (a ClientAction) IsValid() bool {
	switch a {
	case ActionAccept, ActionSoften, ActionMaintain, ActionEscalate:
		return true
	}
	return false
}
