package domain

import "errors"

// PersonalityTrait is the closed set of character profiles a synthetic
// client can assume for a session. The trait never changes during a session;
// it modulates how the client reacts to poorly handled objections.
type PersonalityTrait string

// Possible personality traits.
const (
	PersonalityFriendly   PersonalityTrait = "friendly"
	PersonalityAnalytical PersonalityTrait = "analytical"
	PersonalityDemanding  PersonalityTrait = "demanding"
	PersonalitySkeptical  PersonalityTrait = "skeptical"
	PersonalityIndecisive PersonalityTrait = "indecisive"
)

// Persona-specific validation errors
var (
	ErrEmptyPersonaName = errors.New("persona name cannot be empty")
)

// ClientPersona is the synthetic client's stable character profile for a
// session. It is created at session start from a scenario template or an
// operator-supplied override and is immutable for the lifetime of the
// session.
type ClientPersona struct {
	Name           string           `json:"name"`
	Background     string           `json:"background"`
	Personality    PersonalityTrait `json:"personality"`
	Budget         string           `json:"budget"`
	Motivations    []string         `json:"motivations"`
	Objections     []string         `json:"objections"`
	HiddenConcerns []string         `json:"hidden_concerns"`
}

// Validate checks if the ClientPersona has valid data.
func (p *ClientPersona) Validate() error {
	if p.Name == "" {
		return ErrEmptyPersonaName
	}
	if !p.Personality.IsValid() {
		return ErrInvalidPersonality
	}
	return nil
}

// IsValid reports whether the trait is part of the closed set.
func (t PersonalityTrait) IsValid() bool {
	switch t {
	case PersonalityFriendly, PersonalityAnalytical, PersonalityDemanding,
		PersonalitySkeptical, PersonalityIndecisive:
		return true
	}
	return false
}

// IsConfrontational reports whether a client with this trait pushes back
// rather than disengaging when an objection is handled badly.
func (t PersonalityTrait) IsConfrontational() bool {
	return t == PersonalityDemanding
}
