package classifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// confidenceThreshold is Stage A's acceptance bar; below it, Stage B runs
// and the higher-confidence result wins (spec §4.4 "Merge rule").
const confidenceThreshold = 0.85

// Chatter is the subset of the orchestrator a classifier needs. Satisfied
// by *orchestrator.Orchestrator.
type Chatter interface {
	Chat(ctx context.Context, req aimodels.AIRequest) *aimodels.AIResponse
}

// Classifier implements spec §4.4's two-stage intent classification plus
// unconditional entity extraction.
type Classifier struct {
	chat Chatter
	log  zerolog.Logger
	sink LogSink
	now  func() time.Time
}

// New builds a Classifier. sink may be nil, in which case classifications
// are not recorded anywhere (NopLogSink is used).
func New(chat Chatter, sink LogSink, log zerolog.Logger) *Classifier {
	if sink == nil {
		sink = NopLogSink{}
	}
	return &Classifier{
		chat: chat,
		log:  log.With().Str("component", "classifier").Logger(),
		sink: sink,
		now:  time.Now,
	}
}

// llmJSONResult is the wire shape Stage A must parse to (spec §4.4 Stage A).
type llmJSONResult struct {
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
	Reasoning  string            `json:"reasoning"`
}

// Classify runs both stages, merges per spec §4.4, extracts entities
// unconditionally, and emits a ConversationLog record.
func (c *Classifier) Classify(ctx context.Context, message string, userCtx UserContext, profile *aimodels.AssistantProfileRef) Result {
	start := c.now()

	result, err := c.stageA(ctx, message, userCtx, profile)
	fallbackUsed := false
	if err != nil {
		c.log.Warn().Err(err).Msg("stage A classification failed, falling back to rules")
		result = c.stageB(message)
		fallbackUsed = true
	} else if result.Confidence < confidenceThreshold {
		ruleResult := c.stageB(message)
		if ruleResult.Confidence > result.Confidence {
			result = ruleResult
			fallbackUsed = true
		}
	}
	result.FallbackUsed = fallbackUsed

	if result.Entities == nil {
		result.Entities = map[string]string{}
	}
	for k, v := range extractEntities(message, result.Intent, c.now()) {
		result.Entities[k] = v
	}

	result.LogID = uuid.NewString()

	elapsed := c.now().Sub(start)
	c.sink.RecordClassification(ConversationLog{
		LogID:          result.LogID,
		Timestamp:      start,
		UserMessage:    message,
		Intent:         result.Intent,
		Confidence:     result.Confidence,
		Entities:       result.Entities,
		Reasoning:      result.Reasoning,
		FallbackUsed:   result.FallbackUsed,
		ProcessingTime: elapsed,
	})

	return result
}

// stageA asks the orchestrator for a model-based classification (spec §4.4
// Stage A). A non-nil error means the caller should fall straight through
// to Stage B without comparing confidences.
func (c *Classifier) stageA(ctx context.Context, message string, userCtx UserContext, profile *aimodels.AssistantProfileRef) (Result, error) {
	req := aimodels.AIRequest{
		UseCase:          aimodels.UseCaseConversation,
		AssistantProfile: profile,
		Conversation: &aimodels.ConversationRequest{
			Message:          message,
			IsClassification: true,
			SystemPrompt:     buildClassificationPrompt(userCtx),
			Context: aimodels.ConversationContext{
				RecentActivity: userCtx.RecentActivity,
				Preferences:    userCtx.Preferences,
				LifeAreas:      userCtx.LifeAreas,
			},
		},
	}

	resp := c.chat.Chat(ctx, req)
	if resp.Status != aimodels.StatusSuccess {
		return Result{}, &stageAError{message: resp.ErrorMessage}
	}

	var parsed llmJSONResult
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return Result{}, &stageAError{message: "parse failure: " + err.Error()}
	}

	intent := Intent(parsed.Intent)
	if _, ok := RequiredEntities[intent]; !ok {
		intent = IntentUnknown
	}

	entities := parsed.Entities
	if entities == nil {
		entities = map[string]string{}
	}

	return Result{
		Intent:     intent,
		Confidence: clamp01(parsed.Confidence),
		Entities:   entities,
		Reasoning:  parsed.Reasoning,
	}, nil
}

// stageB is the regex fallback (spec §4.4 Stage B), grounded on
// intent_service.py's _rule_based_classify.
func (c *Classifier) stageB(message string) Result {
	best := IntentUnknown
	bestConfidence := 0.0

	for _, intent := range intentOrder {
		matches := 0
		for _, re := range intentPatterns[intent] {
			if re.MatchString(message) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		confidence := 0.7 + float64(matches)*0.1
		if confidence > 0.95 {
			confidence = 0.95
		}
		if confidence > bestConfidence {
			bestConfidence = confidence
			best = intent
		}
	}

	if bestConfidence < 0.5 {
		best = IntentChatContinuation
		bestConfidence = 0.6
	}

	return Result{
		Intent:     best,
		Confidence: bestConfidence,
		Entities:   map[string]string{},
		Reasoning:  "rule-based match for " + string(best),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

type stageAError struct{ message string }

func (e *stageAError) Error() string { return e.message }
