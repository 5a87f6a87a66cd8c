package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ObjectionCategory classifies a canonical client concern.
type ObjectionCategory string

// Possible objection categories.
const (
	CategoryPriceBudget       ObjectionCategory = "price_budget"
	CategoryTimingUrgency     ObjectionCategory = "timing_urgency"
	CategoryTrustCredibility  ObjectionCategory = "trust_credibility"
	CategoryPropertyCondition ObjectionCategory = "property_condition"
	CategoryLocation          ObjectionCategory = "location"
	CategoryCompetition       ObjectionCategory = "competition"
	CategoryAuthority         ObjectionCategory = "authority"
)

// Severity grades how hard an objection is to handle.
type Severity string

// Possible severities.
const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Objection-specific validation errors
var (
	ErrEmptyObjectionID      = errors.New("objection ID cannot be empty")
	ErrEmptyScenarioType     = errors.New("objection scenario type cannot be empty")
	ErrEmptyObjectionContent = errors.New("objection core content cannot be empty")
)

// GeneratedObjection is a canonical objection record from the catalog.
// It is immutable reference data: the engine only reads it, and many
// concurrent sessions may hold the same record.
type GeneratedObjection struct {
	ID              uuid.UUID         `json:"id"`
	ScenarioType    string            `json:"scenario_type"`
	Category        ObjectionCategory `json:"category"`
	Severity        Severity          `json:"severity"`
	CoreContent     string            `json:"core_content"`
	Variations      []string          `json:"variations,omitempty"`
	Triggers        []string          `json:"triggers,omitempty"`
	IdealResponse   string            `json:"ideal_response,omitempty"`
	CommonMistakes  []string          `json:"common_mistakes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewGeneratedObjection creates a catalog objection with a fresh ID and
// creation timestamp. Returns an error if validation fails.
func NewGeneratedObjection(
	scenarioType string,
	category ObjectionCategory,
	severity Severity,
	coreContent string,
) (*GeneratedObjection, error) {
	obj := &GeneratedObjection{
		ID:           uuid.New(),
		ScenarioType: scenarioType,
		Category:     category,
		Severity:     severity,
		CoreContent:  coreContent,
		CreatedAt:    time.Now().UTC(),
	}

	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return obj, nil
}

// Validate checks if the GeneratedObjection has valid data.
func (o *GeneratedObjection) Validate() error {
	if o.ID == uuid.Nil {
		return ErrEmptyObjectionID
	}
	if o.ScenarioType == "" {
		return ErrEmptyScenarioType
	}
	if !o.Category.IsValid() {
		return ErrInvalidCategory
	}
	if !o.Severity.IsValid() {
		return ErrInvalidSeverity
	}
	if o.CoreContent == "" {
		return ErrEmptyObjectionContent
	}
	return nil
}

// IsValid reports whether the category is part of the closed set.
func (c ObjectionCategory) IsValid() bool {
	switch c {
	case CategoryPriceBudget, CategoryTimingUrgency, CategoryTrustCredibility,
		CategoryPropertyCondition, CategoryLocation, CategoryCompetition,
		CategoryAuthority:
		return true
	}
	return false
}

// IsValid reports whether the severity is part of the closed set.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}
