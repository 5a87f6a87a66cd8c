package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/salesim/salesim-api/internal/domain"
	engine "github.com/salesim/salesim-api/internal/domain/simulation"
	"github.com/salesim/salesim-api/internal/generation"
	"github.com/salesim/salesim-api/internal/platform/logger"
	"github.com/salesim/salesim-api/internal/store"
)

// Verify interface compliance at compile time
var _ SimulatorService = (*simulatorServiceImpl)(nil)

// simulatorServiceImpl implements the SimulatorService interface.
type simulatorServiceImpl struct {
	sessionStore   store.SessionStore
	objectionStore store.ObjectionStore
	engine         engine.Service
	generator      generation.TextGenerator
	logger         *slog.Logger
}

// NewSimulatorService creates a new SimulatorService implementation.
func NewSimulatorService(
	sessionStore store.SessionStore,
	objectionStore store.ObjectionStore,
	engineService engine.Service,
	generator generation.TextGenerator,
	logger *slog.Logger,
) SimulatorService {
	if sessionStore == nil {
		panic("sessionStore cannot be nil") // ALLOW-PANIC: fail fast on wiring error
	}
	if objectionStore == nil {
		panic("objectionStore cannot be nil") // ALLOW-PANIC: fail fast on wiring error
	}
	if engineService == nil {
		panic("engineService cannot be nil") // ALLOW-PANIC: fail fast on wiring error
	}
	if generator == nil {
		panic("generator cannot be nil") // ALLOW-PANIC: fail fast on wiring error
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &simulatorServiceImpl{
		sessionStore:   sessionStore,
		objectionStore: objectionStore,
		engine:         engineService,
		generator:      generator,
		logger:         logger.With(slog.String("component", "simulator_service")),
	}
}

// StartSession implements SimulatorService.StartSession.
func (s *simulatorServiceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	req StartSessionRequest,
) (*SessionState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.ScenarioType == "" {
		return nil, fmt.Errorf("%w: scenario type cannot be empty", ErrInvalidRequest)
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}
	if !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRequest, req.Difficulty)
	}

	persona := defaultPersona(req.ScenarioType)
	if req.Persona != nil {
		if err := req.Persona.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		persona = *req.Persona
	}

	catalog, err := s.loadCatalog(ctx, req.ScenarioType)
	if err != nil {
		log.Error("failed to load objection catalog",
			slog.String("error", err.Error()),
			slog.String("scenario_type", req.ScenarioType))
		return nil, NewStartSessionError("failed to load objection catalog", err)
	}

	pool := s.engine.SelectPool(catalog, difficulty)

	snapshot, err := domain.NewConversationContext(userID, req.ScenarioType, persona, difficulty, pool)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	opening := s.generateOrFallback(ctx, log, "opening", snapshot, cannedGreeting,
		func() (string, error) { return buildOpeningPrompt(snapshot) })

	if err := s.sessionStore.Create(ctx, snapshot); err != nil {
		log.Error("failed to persist new session",
			slog.String("error", err.Error()),
			slog.String("session_id", snapshot.SessionID.String()))
		return nil, NewStartSessionError("failed to persist session", err)
	}

	log.Debug("session started",
		slog.String("session_id", snapshot.SessionID.String()),
		slog.String("scenario_type", req.ScenarioType),
		slog.String("difficulty", string(difficulty)),
		slog.Int("pool_size", len(pool)))

	return &SessionState{Context: snapshot, ClientMessage: opening}, nil
}

// SubmitTurn implements SimulatorService.SubmitTurn.
func (s *simulatorServiceImpl) SubmitTurn(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
	message string,
) (*TurnResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if message == "" {
		return nil, ErrEmptyMessage
	}

	snapshot, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.State == domain.StateEnded {
		return nil, ErrSessionEnded
	}

	active := snapshot.ActiveObjection()
	snapshot.AdvanceTurn(message)

	result := &TurnResult{SessionID: sessionID}

	if active != nil {
		if err := s.handleObjectionResponse(ctx, log, snapshot, active, message, result); err != nil {
			return nil, err
		}
	} else {
		progressStage(snapshot)
		if err := s.handleOpenFloor(ctx, log, snapshot, result); err != nil {
			return nil, err
		}
	}

	if err := s.sessionStore.Update(ctx, snapshot); err != nil {
		if errors.Is(err, store.ErrStaleSnapshot) {
			log.Warn("stale snapshot write rejected",
				slog.String("session_id", sessionID.String()),
				slog.Int("turn", snapshot.CurrentTurn))
			return nil, ErrConcurrentTurn
		}
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		log.Error("failed to persist session snapshot",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, NewSubmitTurnError("failed to persist snapshot", err)
	}

	result.Turn = snapshot.CurrentTurn
	result.State = snapshot.State
	result.Sentiment = snapshot.Sentiment

	log.Debug("turn processed",
		slog.String("session_id", sessionID.String()),
		slog.Int("turn", snapshot.CurrentTurn),
		slog.String("state", string(snapshot.State)),
		slog.Bool("objection_raised", result.ObjectionRaised != nil),
		slog.Bool("evaluated", result.Evaluation != nil))

	return result, nil
}

// handleObjectionResponse runs the evaluate → score → react → resolve →
// follow-up sequence for a trainee message answering the active objection.
func (s *simulatorServiceImpl) handleObjectionResponse(
	ctx context.Context,
	log *slog.Logger,
	snapshot *domain.ConversationContext,
	active *domain.RaisedObjectionRecord,
	message string,
	result *TurnResult,
) error {
	eval, err := s.evaluateResponse(ctx, log, active, message)
	if err != nil {
		return err
	}

	reaction, err := s.engine.React(eval.Score, &snapshot.Persona)
	if err != nil {
		return NewSubmitTurnError("failed to determine reaction", err)
	}

	if err := snapshot.ResolveActiveObjection(message, *eval, reaction.Resolved); err != nil {
		return NewSubmitTurnError("failed to resolve objection", err)
	}
	snapshot.Sentiment = reaction.Sentiment
	progressStage(snapshot)

	followUp := s.generateOrFallback(ctx, log, "follow_up", snapshot,
		cannedLineFor(reaction.Action),
		func() (string, error) {
			return buildFollowUpPrompt(snapshot, active, message, reaction)
		})

	result.Evaluation = eval
	result.Reaction = &reaction
	result.ClientMessage = followUp
	return nil
}

// handleOpenFloor consults the injection policy when no objection is active:
// either the next pending objection is voiced or the client keeps the
// conversation moving with an ordinary line.
func (s *simulatorServiceImpl) handleOpenFloor(
	ctx context.Context,
	log *slog.Logger,
	snapshot *domain.ConversationContext,
	result *TurnResult,
) error {
	decision, err := s.engine.ShouldInject(snapshot)
	if err != nil {
		return NewSubmitTurnError("failed to evaluate injection policy", err)
	}

	if !decision.ShouldInject {
		log.Debug("injection refused",
			slog.String("session_id", snapshot.SessionID.String()),
			slog.String("reason", decision.Reason))
		result.ClientMessage = s.generateOrFallback(ctx, log, "reply", snapshot, cannedReply,
			func() (string, error) { return buildReplyPrompt(snapshot) })
		return nil
	}

	obj := snapshot.PendingPool[0]
	utterance, err := s.formulateObjection(ctx, log, snapshot, obj)
	if err != nil {
		return err
	}

	if err := snapshot.RaiseObjection(obj, utterance); err != nil {
		return NewSubmitTurnError("failed to raise objection", err)
	}
	snapshot.State = domain.StateObjectionHandling

	result.ObjectionRaised = &obj
	result.ClientMessage = utterance
	return nil
}

// evaluateResponse asks the generator to grade the trainee's answer and
// derives the deterministic score. Unparseable generator output degrades to
// the conservative fallback evaluation; only transient transport failures
// surface as errors so the caller can retry the turn.
func (s *simulatorServiceImpl) evaluateResponse(
	ctx context.Context,
	log *slog.Logger,
	active *domain.RaisedObjectionRecord,
	message string,
) (*domain.ObjectionHandlingEvaluation, error) {
	prompt, err := buildEvaluatePrompt(active, message)
	if err != nil {
		return nil, NewSubmitTurnError("failed to build evaluation prompt", err)
	}

	raw, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, generation.ErrTransientFailure) {
			log.Error("evaluation generation failed",
				slog.String("error", err.Error()),
				slog.String("objection_id", active.Objection.ID.String()))
			return nil, NewSubmitTurnError("evaluation generation failed", err)
		}
		// Permanent generation failures degrade rather than abort the turn.
		log.Warn("evaluation degraded to fallback",
			slog.String("error", err.Error()),
			slog.String("objection_id", active.Objection.ID.String()))
		fallback := s.engine.FallbackEvaluation()
		return &fallback, nil
	}

	eval, parseErr := parseEvaluation(raw)
	if parseErr != nil {
		log.Warn("malformed evaluation output, using fallback",
			slog.String("error", parseErr.Error()),
			slog.String("objection_id", active.Objection.ID.String()))
		fallback := s.engine.FallbackEvaluation()
		return &fallback, nil
	}

	score, err := s.engine.Score(eval)
	if err != nil {
		return nil, NewSubmitTurnError("failed to compute score", err)
	}
	eval.Score = score
	return eval, nil
}

// formulateObjection voices a canonical objection through the persona.
// Transient failures surface so the turn can be retried; permanent failures
// fall back to the canonical phrasing.
func (s *simulatorServiceImpl) formulateObjection(
	ctx context.Context,
	log *slog.Logger,
	snapshot *domain.ConversationContext,
	obj domain.GeneratedObjection,
) (string, error) {
	prompt, err := buildFormulatePrompt(snapshot, obj)
	if err != nil {
		return "", NewSubmitTurnError("failed to build formulation prompt", err)
	}

	utterance, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, generation.ErrTransientFailure) {
			log.Error("objection formulation failed",
				slog.String("error", err.Error()),
				slog.String("objection_id", obj.ID.String()))
			return "", NewSubmitTurnError("objection formulation failed", err)
		}
		log.Warn("objection formulation degraded to canonical content",
			slog.String("error", err.Error()),
			slog.String("objection_id", obj.ID.String()))
		return obj.CoreContent, nil
	}
	return utterance, nil
}

// GetSession implements SimulatorService.GetSession.
func (s *simulatorServiceImpl) GetSession(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
) (*SessionState, error) {
	snapshot, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionState{Context: snapshot}, nil
}

// EndSession implements SimulatorService.EndSession.
func (s *simulatorServiceImpl) EndSession(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
) (*SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	snapshot, err := s.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if snapshot.State == domain.StateEnded {
		return nil, ErrSessionEnded
	}

	snapshot.State = domain.StateEnded
	if err := s.sessionStore.Update(ctx, snapshot); err != nil {
		if errors.Is(err, store.ErrStaleSnapshot) {
			return nil, ErrConcurrentTurn
		}
		log.Error("failed to persist session end",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, NewEndSessionError("failed to persist session end", err)
	}

	summary := summarize(snapshot)
	log.Debug("session ended",
		slog.String("session_id", sessionID.String()),
		slog.Int("total_turns", summary.TotalTurns),
		slog.Int("objections_raised", summary.ObjectionsRaised),
		slog.Int("objections_resolved", summary.ObjectionsResolved))

	return summary, nil
}

// loadOwnedSession loads a session snapshot and verifies ownership.
func (s *simulatorServiceImpl) loadOwnedSession(
	ctx context.Context,
	userID uuid.UUID,
	sessionID uuid.UUID,
) (*domain.ConversationContext, error) {
	snapshot, err := s.sessionStore.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if snapshot.UserID != userID {
		return nil, ErrSessionNotOwned
	}
	return snapshot, nil
}

// loadCatalog merges the scenario-specific objections with the common ones.
func (s *simulatorServiceImpl) loadCatalog(
	ctx context.Context,
	scenarioType string,
) ([]domain.GeneratedObjection, error) {
	scoped, err := s.objectionStore.GetByScenarioType(ctx, scenarioType)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario objections: %w", err)
	}
	common, err := s.objectionStore.GetCommon(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load common objections: %w", err)
	}
	return append(scoped, common...), nil
}

// generateOrFallback produces a client line, degrading to the given canned
// line when prompt construction or generation fails. Flavor text never aborts
// a turn.
func (s *simulatorServiceImpl) generateOrFallback(
	ctx context.Context,
	log *slog.Logger,
	kind string,
	snapshot *domain.ConversationContext,
	fallback string,
	buildPrompt func() (string, error),
) string {
	prompt, err := buildPrompt()
	if err != nil {
		log.Warn("prompt construction failed, using canned line",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
			slog.String("session_id", snapshot.SessionID.String()))
		return fallback
	}

	line, err := s.generator.Complete(ctx, prompt)
	if err != nil {
		log.Warn("client line generation failed, using canned line",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
			slog.String("session_id", snapshot.SessionID.String()))
		return fallback
	}
	return line
}

// progressStage advances the scripted early stages of the conversation.
// Objection handling and closing are driven by the objection flow rather
// than the turn counter.
func progressStage(snapshot *domain.ConversationContext) {
	switch snapshot.State {
	case domain.StateOpening:
		snapshot.State = domain.StateDiscovery
	case domain.StateDiscovery:
		snapshot.State = domain.StatePresenting
	case domain.StateObjectionHandling:
		if snapshot.ActiveObjection() == nil {
			if len(snapshot.PendingPool) == 0 && snapshot.UnresolvedCount() == 0 {
				snapshot.State = domain.StateClosing
			} else {
				snapshot.State = domain.StatePresenting
			}
		}
	}
}

// summarize computes the final session report from a snapshot.
func summarize(snapshot *domain.ConversationContext) *SessionSummary {
	summary := &SessionSummary{
		SessionID:        snapshot.SessionID,
		TotalTurns:       snapshot.CurrentTurn,
		ObjectionsRaised: len(snapshot.RaisedObjections),
	}

	scored := 0
	total := 0
	for i := range snapshot.RaisedObjections {
		record := &snapshot.RaisedObjections[i]
		if record.Resolved {
			summary.ObjectionsResolved++
		}
		if record.Evaluation != nil {
			scored++
			total += record.Evaluation.Score
		}
	}
	if scored > 0 {
		summary.AverageScore = total / scored
	}
	return summary
}

// defaultPersona builds the stock client used when the operator does not
// supply a persona override.
func defaultPersona(scenarioType string) domain.ClientPersona {
	return domain.ClientPersona{
		Name:        "Jordan Reeves",
		Background:  "Has been researching " + scenarioType + " options for several months.",
		Personality: domain.PersonalitySkeptical,
		Budget:      "flexible but price-conscious",
		Motivations: []string{"find the right fit", "avoid overpaying"},
	}
}
