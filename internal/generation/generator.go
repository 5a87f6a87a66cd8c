package generation

import "context"

// TextGenerator is the interface to the external text-generation service.
// It is the only seam through which the simulation reaches a language
// model: the formulator sends persona-voicing prompts and consumes the
// utterance unmodified, the evaluator sends judgment prompts and parses the
// structured payload itself.
type TextGenerator interface {
	// Complete sends a fully-formed prompt to the generation service and
	// returns the raw response text. Transport failures are returned as
	// ErrTransientFailure-wrapped errors so callers can surface them as
	// retryable; content safety blocks and empty responses are permanent.
	Complete(ctx context.Context, prompt string) (string, error)
}
