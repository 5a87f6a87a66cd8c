package generation

import "errors"

// Common errors returned by text generation implementations.
var (
	// ErrGenerationFailed is returned when a generation call fails for any
	// general reason.
	ErrGenerationFailed = errors.New("text generation failed")

	// ErrEmptyPrompt is returned when an empty prompt is submitted.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidResponse is returned when the model response is empty or
	// structurally unusable.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due
	// to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry (network, rate limits).
	ErrTransientFailure = errors.New("transient error during text generation")

	// ErrInvalidConfig is returned when the generator configuration is
	// invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
