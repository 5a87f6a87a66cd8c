package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesim/salesim-api/internal/domain"
)

func TestParseEvaluation(t *testing.T) {
	t.Parallel()

	t.Run("plain JSON object", func(t *testing.T) {
		t.Parallel()
		eval, err := parseEvaluation(positiveEvaluationJSON)
		require.NoError(t, err)
		assert.True(t, eval.Acknowledged)
		assert.True(t, eval.EmpathyShown)
		assert.False(t, eval.Dismissive)
		assert.Equal(t, []string{"feel-felt-found"}, eval.Techniques)
		assert.Equal(t, "Strong, empathetic handling.", eval.Feedback)
		assert.Zero(t, eval.Score, "score is derived by the engine, not the parser")
	})

	t.Run("JSON wrapped in code fences and prose", func(t *testing.T) {
		t.Parallel()
		raw := "Here is my assessment:\n```json\n" +
			`{"acknowledged": true, "dismissive": true, "feedback": "Mixed."}` +
			"\n```\nHope that helps!"
		eval, err := parseEvaluation(raw)
		require.NoError(t, err)
		assert.True(t, eval.Acknowledged)
		assert.True(t, eval.Dismissive)
		assert.Equal(t, "Mixed.", eval.Feedback)
	})

	t.Run("no JSON object", func(t *testing.T) {
		t.Parallel()
		_, err := parseEvaluation("I cannot evaluate this response.")
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		_, err := parseEvaluation(`{"acknowledged": "definitely"}`)
		assert.Error(t, err)
	})
}

func TestPromptBuilders(t *testing.T) {
	t.Parallel()

	persona := domain.ClientPersona{
		Name:        "Dana Cole",
		Background:  "Downtown condo shopper.",
		Personality: domain.PersonalityAnalytical,
		Budget:      "around 400k",
	}
	obj := domain.GeneratedObjection{
		ScenarioType:   "condo_sale",
		Category:       domain.CategoryPriceBudget,
		Severity:       domain.SeverityModerate,
		CoreContent:    "The asking price is above market.",
		IdealResponse:  "acknowledge, then present comparable sales",
		CommonMistakes: []string{"dismissing the concern", "arguing"},
	}
	snapshot := &domain.ConversationContext{
		ScenarioType:    "condo_sale",
		Persona:         persona,
		State:           domain.StatePresenting,
		Sentiment:       domain.SentimentNeutral,
		LastUserMessage: "The kitchen was fully renovated last year.",
	}

	t.Run("formulate prompt carries persona, content and last message", func(t *testing.T) {
		t.Parallel()
		prompt, err := buildFormulatePrompt(snapshot, obj)
		require.NoError(t, err)
		assert.Contains(t, prompt, "Dana Cole")
		assert.Contains(t, prompt, "analytical")
		assert.Contains(t, prompt, "The asking price is above market.")
		assert.Contains(t, prompt, "The kitchen was fully renovated last year.")
	})

	t.Run("evaluate prompt carries objection, response and guidance", func(t *testing.T) {
		t.Parallel()
		record := &domain.RaisedObjectionRecord{
			Objection: obj,
			Utterance: "Frankly, this is overpriced.",
		}
		prompt, err := buildEvaluatePrompt(record, "Let me walk you through recent comps.")
		require.NoError(t, err)
		assert.Contains(t, prompt, "Frankly, this is overpriced.")
		assert.Contains(t, prompt, "Let me walk you through recent comps.")
		assert.Contains(t, prompt, "acknowledge, then present comparable sales")
		assert.Contains(t, prompt, "dismissing the concern; arguing")
		assert.Contains(t, prompt, `"acknowledged"`)
	})

	t.Run("opening prompt names the scenario", func(t *testing.T) {
		t.Parallel()
		prompt, err := buildOpeningPrompt(snapshot)
		require.NoError(t, err)
		assert.Contains(t, prompt, "condo_sale")
		assert.Contains(t, prompt, "Dana Cole")
	})
}

func TestCannedLineFor(t *testing.T) {
	t.Parallel()

	for _, action := range []domain.ClientAction{
		domain.ActionAccept, domain.ActionSoften, domain.ActionMaintain, domain.ActionEscalate,
	} {
		assert.NotEmpty(t, cannedLineFor(action), "action %s", action)
	}
	assert.Equal(t, cannedReply, cannedLineFor(domain.ClientAction("unknown")))
}
