package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidPersonality is returned when a personality trait is not one
	// of the closed set of traits.
	ErrInvalidPersonality = errors.New("invalid personality trait")

	// ErrInvalidCategory is returned when an objection category is not valid.
	ErrInvalidCategory = errors.New("invalid objection category")

	// ErrInvalidSeverity is returned when an objection severity is not valid.
	ErrInvalidSeverity = errors.New("invalid objection severity")

	// ErrInvalidConversationState is returned when a conversation state is
	// not part of the session state machine.
	ErrInvalidConversationState = errors.New("invalid conversation state")

	// ErrInvalidSentiment is returned when a sentiment value is not valid.
	ErrInvalidSentiment = errors.New("invalid sentiment")

	// ErrInvalidDifficulty is returned when a difficulty level is not valid.
	ErrInvalidDifficulty = errors.New("invalid difficulty level")

	// ErrInvalidClientAction is returned when a client action is not valid.
	ErrInvalidClientAction = errors.New("invalid client action")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
