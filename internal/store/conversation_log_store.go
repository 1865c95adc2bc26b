package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/classifier"
)

// ConversationLogStore persists classifier.ConversationLog records and the
// IntentFeedback corrections that later amend them (SPEC_FULL.md §10,
// grounded on original_source's test_feedback_logs.py: a correction
// references a prior log by LogID rather than duplicating the record).
// It implements both classifier.LogSink and classifier.FeedbackSink.
type ConversationLogStore struct {
	db  *DB
	log func(err error, msg string)
}

func NewConversationLogStore(db *DB) *ConversationLogStore {
	return &ConversationLogStore{
		db: db,
		log: func(err error, msg string) {
			if err != nil {
				db.log.Warn().Err(err).Msg(msg)
			} else {
				db.log.Warn().Msg(msg)
			}
		},
	}
}

// RecordClassification implements classifier.LogSink. Persistence failures
// are logged, not returned: the classifier never blocks on the sink.
func (s *ConversationLogStore) RecordClassification(entry classifier.ConversationLog) {
	entities, err := json.Marshal(entry.Entities)
	if err != nil {
		s.log(err, "marshal conversation log entities")
		return
	}
	ctx := context.Background()
	_, err = s.db.raw.ExecContext(ctx, `
		INSERT INTO conversation_logs (
			log_id, timestamp, user_message, intent, confidence, entities,
			reasoning, fallback_used, processing_time_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(log_id) DO NOTHING
	`,
		entry.LogID, entry.Timestamp.UnixMilli(), entry.UserMessage, string(entry.Intent),
		entry.Confidence, string(entities), entry.Reasoning, boolToInt(entry.FallbackUsed),
		entry.ProcessingTime.Milliseconds(),
	)
	if err != nil {
		s.log(err, "insert conversation log")
	}
}

// StoredLog is a conversation_logs row, including any correction applied
// since it was first recorded.
type StoredLog struct {
	LogID           string
	Intent          classifier.Intent
	Confidence      float64
	FallbackUsed    bool
	CorrectedIntent classifier.Intent
	FeedbackType    classifier.FeedbackType
	HasFeedback     bool
}

// Get loads a single conversation log by id, for inspection and tests.
func (s *ConversationLogStore) Get(ctx context.Context, logID string) (StoredLog, bool, error) {
	var row StoredLog
	var intent string
	var fallbackUsed int
	var correctedIntent, feedbackType *string
	err := s.db.raw.QueryRowContext(ctx, `
		SELECT log_id, intent, confidence, fallback_used, corrected_intent, feedback_type
		FROM conversation_logs WHERE log_id = ?
	`, logID).Scan(&row.LogID, &intent, &row.Confidence, &fallbackUsed, &correctedIntent, &feedbackType)
	if err == sql.ErrNoRows {
		return StoredLog{}, false, nil
	}
	if err != nil {
		return StoredLog{}, false, err
	}
	row.Intent = classifier.Intent(intent)
	row.FallbackUsed = fallbackUsed != 0
	if correctedIntent != nil {
		row.CorrectedIntent = classifier.Intent(*correctedIntent)
		row.HasFeedback = true
	}
	if feedbackType != nil {
		row.FeedbackType = classifier.FeedbackType(*feedbackType)
	}
	return row, true, nil
}

// RecordFeedback implements classifier.FeedbackSink, annotating the
// ConversationLog named by feedback.LogID with the correction. A feedback
// record for an unknown LogID is logged and dropped rather than erroring,
// matching RecordClassification's fire-and-forget contract.
func (s *ConversationLogStore) RecordFeedback(feedback classifier.IntentFeedback) {
	ctx := context.Background()
	result, err := s.db.raw.ExecContext(ctx, `
		UPDATE conversation_logs SET
			corrected_intent = ?, feedback_type = ?, feedback_at = ?
		WHERE log_id = ?
	`,
		string(feedback.CorrectedIntent), string(feedback.FeedbackType), feedback.Timestamp.UnixMilli(),
		feedback.LogID,
	)
	if err != nil {
		s.log(err, "record intent feedback")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		s.log(nil, "intent feedback references unknown log id")
	}
}
