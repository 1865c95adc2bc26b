// Package classifier implements spec §4.4: a two-stage intent classifier
// (model-based with a regex-based fallback) plus unconditional entity
// extraction.
package classifier

import "time"

// Intent is the closed set of conversational intents (spec §4.4).
type Intent string

const (
	IntentCreateGoal       Intent = "create_goal"
	IntentCreateTask       Intent = "create_task"
	IntentCreateProject    Intent = "create_project"
	IntentUpdateSettings   Intent = "update_settings"
	IntentRateLifeArea     Intent = "rate_life_area"
	IntentChatContinuation Intent = "chat_continuation"
	IntentGetAdvice        Intent = "get_advice"
	IntentUnknown          Intent = "unknown"
)

// RequiredEntities lists the entity keys an intent needs before it can be
// dispatched (spec §4.5/§4.6).
var RequiredEntities = map[Intent][]string{
	IntentCreateGoal:       {"title"},
	IntentCreateTask:       {"title"},
	IntentCreateProject:    {"title"},
	IntentUpdateSettings:   {},
	IntentRateLifeArea:     {"life_area"},
	IntentChatContinuation: {},
	IntentGetAdvice:        {},
	IntentUnknown:          {},
}

// Result is the outcome of classifying a single message.
type Result struct {
	LogID        string
	Intent       Intent
	Confidence   float64
	Entities     map[string]string
	Reasoning    string
	FallbackUsed bool
}

// ConversationLog is persisted by an external log sink (spec §4.4: "Every
// classification must emit a ConversationLog record"). LogID correlates a
// later correction (IntentFeedback, SPEC_FULL.md §10) back to the record
// it's amending.
type ConversationLog struct {
	LogID          string
	Timestamp      time.Time
	UserMessage    string
	Intent         Intent
	Confidence     float64
	Entities       map[string]string
	Reasoning      string
	FallbackUsed   bool
	ProcessingTime time.Duration
}

// LogSink receives a ConversationLog for every classification. The engine's
// persistence layer implements this; the classifier never blocks on it
// failing.
type LogSink interface {
	RecordClassification(ConversationLog)
}

// NopLogSink discards every record; used where no sink is configured.
type NopLogSink struct{}

func (NopLogSink) RecordClassification(ConversationLog) {}

// FeedbackType distinguishes a user-reported miss from a downstream
// correction applied after the fact (SPEC_FULL.md §10, grounded on
// original_source's test_feedback_logs.py).
type FeedbackType string

const (
	FeedbackTypeUserCorrection FeedbackType = "user_correction"
	FeedbackTypeAutoCorrected  FeedbackType = "auto_corrected"
)

// IntentFeedback records that a prior classification (LogID) should have
// produced CorrectedIntent instead.
type IntentFeedback struct {
	LogID           string
	CorrectedIntent Intent
	FeedbackType    FeedbackType
	Timestamp       time.Time
}

// FeedbackSink receives IntentFeedback corrections. Implemented by the
// same persistence layer as LogSink; kept as a separate interface since
// not every LogSink need support corrections.
type FeedbackSink interface {
	RecordFeedback(IntentFeedback)
}

// NopFeedbackSink discards every correction; used where no sink is
// configured.
type NopFeedbackSink struct{}

func (NopFeedbackSink) RecordFeedback(IntentFeedback) {}
