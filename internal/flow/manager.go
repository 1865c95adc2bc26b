package flow

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/classifier"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/dispatcher"
)

// clarificationThreshold mirrors spec §4.5's requires_clarification bar.
const clarificationThreshold = 0.85

// sessionIdleTimeout is how long a session may sit untouched before
// SweepIdle, run periodically by the scheduler, removes it. There is no
// lazy expiry check when a session is next used.
const sessionIdleTimeout = 30 * time.Minute

// Classifier is the subset of internal/classifier.Classifier the flow
// manager needs.
type Classifier interface {
	Classify(ctx context.Context, message string, userCtx classifier.UserContext, profile *aimodels.AssistantProfileRef) classifier.Result
}

// ContextLoader hydrates per-user context ahead of classification (spec
// §4.5 step 1: "Load/hydrate user context"). Implemented by the domain
// store; this package only depends on the interface.
type ContextLoader interface {
	LoadUserContext(ctx context.Context, userID string) (classifier.UserContext, *aimodels.AssistantProfileRef, error)
}

// Result is the manager's per-turn response envelope (spec §4.5 step 5).
type Result struct {
	SessionID            string
	IntentResult          classifier.Result
	ConversationState     SessionState
	NextActions           []dispatcher.Action
	RequiresClarification bool
}

// Manager implements spec §4.5: the conversation flow manager.
type Manager struct {
	classifier Classifier
	dispatcher *dispatcher.Dispatcher
	loader     ContextLoader
	sessions   *sessionStore
	feedback   classifier.FeedbackSink
	log        zerolog.Logger
	now        func() time.Time
}

func New(c Classifier, d *dispatcher.Dispatcher, loader ContextLoader, log zerolog.Logger) *Manager {
	return &Manager{
		classifier: c,
		dispatcher: d,
		loader:     loader,
		sessions:   newSessionStore(),
		feedback:   classifier.NopFeedbackSink{},
		log:        log.With().Str("component", "flow").Logger(),
		now:        time.Now,
	}
}

// WithFeedbackSink installs the persistence layer's feedback recorder
// (SPEC_FULL.md §10's IntentFeedback correction loop). Returns m for
// chaining from the composition root.
func (m *Manager) WithFeedbackSink(sink classifier.FeedbackSink) *Manager {
	m.feedback = sink
	return m
}

// RecordFeedback logs that a prior classification (identified by logID,
// from Result.LogID) should have produced correctedIntent instead
// (SPEC_FULL.md §10, grounded on original_source's test_feedback_logs.py).
func (m *Manager) RecordFeedback(logID string, correctedIntent classifier.Intent, feedbackType classifier.FeedbackType) {
	m.feedback.RecordFeedback(classifier.IntentFeedback{
		LogID:           logID,
		CorrectedIntent: correctedIntent,
		FeedbackType:    feedbackType,
		Timestamp:       m.now(),
	})
}

// ProcessMessage implements spec §4.5 steps 1-5. An empty message is
// rejected before the classifier is ever invoked (spec §8 boundary
// behavior: "Empty message ⇒ validation error (not a classifier call)").
func (m *Manager) ProcessMessage(ctx context.Context, userID string, message string) (Result, error) {
	if message == "" {
		return Result{}, aimodels.ErrValidation
	}

	userCtx, profile, err := m.loader.LoadUserContext(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	result := m.classifier.Classify(ctx, message, userCtx, profile)

	state := m.sessions.withSession(userID, func(s *SessionState) {
		s.TurnCount++
		s.CurrentIntent = result.Intent
		if result.Confidence >= clarificationThreshold {
			s.SuccessfulIntents++
		} else {
			s.FailedIntents++
		}
		s.AvgConfidence = runningMean(s.AvgConfidence, s.TurnCount, result.Confidence)
		s.IncompleteEntities = missingRequired(result.Intent, result.Entities)
		s.LastUpdated = m.now()
	})

	actions := m.dispatcher.Plan(result, dispatcher.SessionView{
		IncompleteEntities: state.IncompleteEntities,
		TurnCount:          state.TurnCount,
		CurrentIntent:      state.CurrentIntent,
	})

	return Result{
		SessionID:             userID,
		IntentResult:          result,
		ConversationState:     state,
		NextActions:           actions,
		RequiresClarification: result.Confidence < clarificationThreshold,
	}, nil
}

// Session returns a snapshot of a user's current session state, if any.
func (m *Manager) Session(userID string) (SessionState, bool) {
	return m.sessions.get(userID)
}

// SweepIdle expires sessions untouched for longer than sessionIdleTimeout,
// returning how many were removed. Intended to be run by the scheduler
// (spec §9 open question).
func (m *Manager) SweepIdle() int {
	cutoff := m.now().Add(-sessionIdleTimeout)
	removed := 0
	m.sessions.data.Range(func(key, value any) bool {
		state := value.(*SessionState)
		if state.LastUpdated.Before(cutoff) {
			m.sessions.data.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// runningMean folds confidence into the running mean over turnCount turns
// (spec §4.5 step 3: "Recompute avg_confidence as the running mean").
func runningMean(prevMean float64, turnCount int, sample float64) float64 {
	if turnCount <= 1 {
		return sample
	}
	return prevMean + (sample-prevMean)/float64(turnCount)
}

// missingRequired computes required_entities(intent) \ entities.keys (spec
// §4.5 step 3).
func missingRequired(intent classifier.Intent, entities map[string]string) []string {
	required := classifier.RequiredEntities[intent]
	if len(required) == 0 {
		return nil
	}
	missing := make([]string, 0, len(required))
	for _, req := range required {
		if _, ok := entities[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}
