package simulation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/salesim/salesim-api/internal/domain"
)

// Prompt templates for the text-generation collaborator. The formulator
// prompt owns the persona traits, the canonical objection content and a
// single prior-turn excerpt; the generator's output is passed through to the
// trainee unmodified.
var (
	openingTemplate = template.Must(template.New("opening").Parse(
		`You are role-playing a potential client in a sales training simulation.

Your character:
- Name: {{.Persona.Name}}
- Background: {{.Persona.Background}}
- Personality: {{.Persona.Personality}}
- Budget: {{.Persona.Budget}}

Scenario: {{.ScenarioType}}

Write your opening line as this client greeting the sales trainee for the
first time. Stay in character. Reply with the utterance only, no quotation
marks or stage directions.`))

	formulateTemplate = template.Must(template.New("formulate").Parse(
		`You are role-playing a potential client in a sales training simulation.

Your character:
- Name: {{.Persona.Name}}
- Background: {{.Persona.Background}}
- Personality: {{.Persona.Personality}}
- Budget: {{.Persona.Budget}}

The trainee just said:
"{{.LastUserMessage}}"

Raise the following concern in your own voice, as this character would
naturally phrase it ({{.Objection.Severity}} severity):
{{.Objection.CoreContent}}

Reply with the utterance only, no quotation marks or stage directions.`))

	evaluateTemplate = template.Must(template.New("evaluate").Parse(
		`You are grading a sales trainee's response to a client objection.

The client's objection ({{.Objection.Category}}, {{.Objection.Severity}}):
"{{.Utterance}}"

The trainee responded:
"{{.Response}}"
{{if .Objection.IdealResponse}}
An ideal response would: {{.Objection.IdealResponse}}
{{end}}{{if .Objection.CommonMistakes}}
Common mistakes to watch for: {{.MistakeList}}
{{end}}
Respond with a single JSON object and nothing else:
{
  "acknowledged": bool,        // trainee acknowledged the concern
  "empathy_shown": bool,       // trainee showed empathy
  "addressed_directly": bool,  // trainee addressed the concern directly
  "provided_value": bool,      // trainee offered concrete value or evidence
  "asked_follow_up": bool,     // trainee asked a follow-up question
  "dismissive": bool,          // trainee brushed the concern off
  "argumentative": bool,       // trainee argued with the client
  "ignored_concern": bool,     // trainee ignored the concern entirely
  "techniques": ["..."],       // named techniques used, if any
  "feedback": "...",           // one short paragraph of coaching feedback
  "suggestions": ["..."]       // concrete improvement suggestions
}`))

	followUpTemplate = template.Must(template.New("follow_up").Parse(
		`You are role-playing a potential client in a sales training simulation.

Your character:
- Name: {{.Persona.Name}}
- Personality: {{.Persona.Personality}}

You raised this concern:
"{{.Utterance}}"

The trainee responded:
"{{.Response}}"

Your reaction is to {{.Action}} (current mood: {{.Sentiment}}). Write your
next line as this client, consistent with that reaction. Reply with the
utterance only, no quotation marks or stage directions.`))

	replyTemplate = template.Must(template.New("reply").Parse(
		`You are role-playing a potential client in a sales training simulation.

Your character:
- Name: {{.Persona.Name}}
- Background: {{.Persona.Background}}
- Personality: {{.Persona.Personality}}

Conversation stage: {{.State}}. Your current mood: {{.Sentiment}}.

The trainee just said:
"{{.LastUserMessage}}"

Write your next line as this client, keeping the conversation moving. Reply
with the utterance only, no quotation marks or stage directions.`))
)

// buildOpeningPrompt renders the prompt for the client's first utterance.
func buildOpeningPrompt(snapshot *domain.ConversationContext) (string, error) {
	return executeTemplate(openingTemplate, struct {
		Persona      domain.ClientPersona
		ScenarioType string
	}{snapshot.Persona, snapshot.ScenarioType})
}

// buildFormulatePrompt renders the prompt that voices a canonical objection
// through the session persona.
func buildFormulatePrompt(
	snapshot *domain.ConversationContext,
	obj domain.GeneratedObjection,
) (string, error) {
	return executeTemplate(formulateTemplate, struct {
		Persona         domain.ClientPersona
		LastUserMessage string
		Objection       domain.GeneratedObjection
	}{snapshot.Persona, snapshot.LastUserMessage, obj})
}

// buildEvaluatePrompt renders the grading prompt for a trainee response to
// the active objection.
func buildEvaluatePrompt(record *domain.RaisedObjectionRecord, response string) (string, error) {
	return executeTemplate(evaluateTemplate, struct {
		Objection   domain.GeneratedObjection
		Utterance   string
		Response    string
		MistakeList string
	}{
		Objection:   record.Objection,
		Utterance:   record.Utterance,
		Response:    response,
		MistakeList: strings.Join(record.Objection.CommonMistakes, "; "),
	})
}

// buildFollowUpPrompt renders the prompt for the client's line after an
// objection-handling attempt has been evaluated.
func buildFollowUpPrompt(
	snapshot *domain.ConversationContext,
	record *domain.RaisedObjectionRecord,
	response string,
	reaction domain.ReactionResult,
) (string, error) {
	return executeTemplate(followUpTemplate, struct {
		Persona   domain.ClientPersona
		Utterance string
		Response  string
		Action    domain.ClientAction
		Sentiment domain.Sentiment
	}{snapshot.Persona, record.Utterance, response, reaction.Action, reaction.Sentiment})
}

// buildReplyPrompt renders the prompt for an ordinary conversational line
// when no objection is in play.
func buildReplyPrompt(snapshot *domain.ConversationContext) (string, error) {
	return executeTemplate(replyTemplate, struct {
		Persona         domain.ClientPersona
		State           domain.ConversationState
		Sentiment       domain.Sentiment
		LastUserMessage string
	}{snapshot.Persona, snapshot.State, snapshot.Sentiment, snapshot.LastUserMessage})
}

func executeTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// evaluationPayload mirrors the JSON object the evaluator prompt requests.
type evaluationPayload struct {
	Acknowledged      bool     `json:"acknowledged"`
	EmpathyShown      bool     `json:"empathy_shown"`
	AddressedDirectly bool     `json:"addressed_directly"`
	ProvidedValue     bool     `json:"provided_value"`
	AskedFollowUp     bool     `json:"asked_follow_up"`
	Dismissive        bool     `json:"dismissive"`
	Argumentative     bool     `json:"argumentative"`
	IgnoredConcern    bool     `json:"ignored_concern"`
	Techniques        []string `json:"techniques"`
	Feedback          string   `json:"feedback"`
	Suggestions       []string `json:"suggestions"`
}

// parseEvaluation extracts the evaluation signals from raw generator output.
// The generator sometimes wraps the JSON in code fences or prose, so the
// parser isolates the outermost object before unmarshalling. The returned
// evaluation has no score yet; the engine derives it from the signals.
func parseEvaluation(raw string) (*domain.ObjectionHandlingEvaluation, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in generator output")
	}

	var payload evaluationPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}

	return &domain.ObjectionHandlingEvaluation{
		Acknowledged:      payload.Acknowledged,
		EmpathyShown:      payload.EmpathyShown,
		AddressedDirectly: payload.AddressedDirectly,
		ProvidedValue:     payload.ProvidedValue,
		AskedFollowUp:     payload.AskedFollowUp,
		Dismissive:        payload.Dismissive,
		Argumentative:     payload.Argumentative,
		IgnoredConcern:    payload.IgnoredConcern,
		Techniques:        payload.Techniques,
		Feedback:          payload.Feedback,
		Suggestions:       payload.Suggestions,
	}, nil
}

// Canned client lines used when follow-up generation fails. The turn still
// completes; only the flavor text degrades.
var cannedLines = map[domain.ClientAction]string{
	domain.ActionAccept:   "Alright, that makes sense. Let's keep going.",
	domain.ActionSoften:   "Okay, I hear you, but I'm still not fully convinced.",
	domain.ActionMaintain: "I'm sorry, but that really doesn't address my concern.",
	domain.ActionEscalate: "No. If that's the best answer you have, we have a problem.",
}

const (
	cannedGreeting = "Hi, thanks for meeting with me. I've been looking around for a while."
	cannedReply    = "Okay. What else can you tell me?"
)

// cannedLineFor returns the fallback client line for a reaction.
func cannedLineFor(action domain.ClientAction) string {
	if line, ok := cannedLines[action]; ok {
		return line
	}
	return cannedReply
}
