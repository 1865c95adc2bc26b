package classifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// stubChatter returns a canned AIResponse regardless of the request,
// letting tests drive Stage A deterministically.
type stubChatter struct {
	resp *aimodels.AIResponse
}

func (s *stubChatter) Chat(context.Context, aimodels.AIRequest) *aimodels.AIResponse { return s.resp }

func jsonResponse(t *testing.T, intent string, confidence float64, entities map[string]string) *aimodels.AIResponse {
	t.Helper()
	body, err := json.Marshal(llmJSONResult{Intent: intent, Confidence: confidence, Entities: entities, Reasoning: "because"})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return &aimodels.AIResponse{Status: aimodels.StatusSuccess, Content: string(body)}
}

func TestClassify_HighConfidenceStageA_SkipsStageB(t *testing.T) {
	chat := &stubChatter{resp: jsonResponse(t, "create_task", 0.97, map[string]string{"title": "buy milk"})}
	c := New(chat, nil, zerolog.Nop())

	result := c.Classify(context.Background(), "random text that matches no rule", UserContext{}, nil)

	if result.Intent != IntentCreateTask {
		t.Fatalf("expected create_task, got %s", result.Intent)
	}
	if result.FallbackUsed {
		t.Fatal("expected stage A result to stand, fallback should not be used")
	}
	if result.Confidence != 0.97 {
		t.Fatalf("expected confidence 0.97, got %f", result.Confidence)
	}
}

func TestClassify_LowConfidenceStageA_DefersToStageBWhenHigher(t *testing.T) {
	chat := &stubChatter{resp: jsonResponse(t, "unknown", 0.4, nil)}
	c := New(chat, nil, zerolog.Nop())

	result := c.Classify(context.Background(), "please create a goal to run a marathon", UserContext{}, nil)

	if result.Intent != IntentCreateGoal {
		t.Fatalf("expected stage B to win with create_goal, got %s", result.Intent)
	}
	if !result.FallbackUsed {
		t.Fatal("expected fallback_used = true")
	}
}

func TestClassify_LowConfidenceStageA_KeepsStageAWhenStageBLower(t *testing.T) {
	chat := &stubChatter{resp: jsonResponse(t, "get_advice", 0.8, map[string]string{})}
	c := New(chat, nil, zerolog.Nop())

	result := c.Classify(context.Background(), "hmm", UserContext{}, nil)

	if result.Intent != IntentGetAdvice {
		t.Fatalf("expected stage A's get_advice to stand, got %s", result.Intent)
	}
	if result.FallbackUsed {
		t.Fatal("stage B scored lower, fallback should not have been used")
	}
}

func TestClassify_StageAFailure_UsesStageBOnly(t *testing.T) {
	chat := &stubChatter{resp: &aimodels.AIResponse{Status: aimodels.StatusError, ErrorMessage: "all providers failed"}}
	c := New(chat, nil, zerolog.Nop())

	result := c.Classify(context.Background(), "remind me to call mom tomorrow", UserContext{}, nil)

	if result.Intent != IntentCreateTask {
		t.Fatalf("expected create_task from rules, got %s", result.Intent)
	}
	if !result.FallbackUsed {
		t.Fatal("expected fallback_used = true on stage A error")
	}
	if result.Entities["due_date"] == "" {
		t.Fatal("expected due_date entity to be extracted even on the fallback path")
	}
}

type recordingSink struct {
	logs []ConversationLog
}

func (s *recordingSink) RecordClassification(l ConversationLog) { s.logs = append(s.logs, l) }

func TestClassify_AssignsUniqueLogIDMatchingSinkRecord(t *testing.T) {
	chat := &stubChatter{resp: jsonResponse(t, "create_task", 0.97, map[string]string{"title": "buy milk"})}
	sink := &recordingSink{}
	c := New(chat, sink, zerolog.Nop())

	first := c.Classify(context.Background(), "create a task to buy milk", UserContext{}, nil)
	second := c.Classify(context.Background(), "create a task to buy milk", UserContext{}, nil)

	if first.LogID == "" || second.LogID == "" {
		t.Fatal("expected a non-empty LogID on every classification")
	}
	if first.LogID == second.LogID {
		t.Fatal("expected distinct LogIDs across classifications")
	}
	if len(sink.logs) != 2 {
		t.Fatalf("expected 2 recorded logs, got %d", len(sink.logs))
	}
	if sink.logs[0].LogID != first.LogID || sink.logs[1].LogID != second.LogID {
		t.Fatal("expected ConversationLog.LogID to match the returned Result.LogID")
	}
}

func TestStageB_NoPatternMatch_DefaultsToChatContinuation(t *testing.T) {
	c := New(&stubChatter{}, nil, zerolog.Nop())
	result := c.stageB("the weather is nice today")
	if result.Intent != IntentChatContinuation {
		t.Fatalf("expected chat_continuation, got %s", result.Intent)
	}
	if result.Confidence != 0.6 {
		t.Fatalf("expected confidence 0.6, got %f", result.Confidence)
	}
}

func TestStageB_ConfidenceFormula_CapsAt095(t *testing.T) {
	c := New(&stubChatter{}, nil, zerolog.Nop())
	// Matches several create_task patterns at once.
	result := c.stageB("create a task: remind me to schedule a meeting, task is due soon")
	if result.Intent != IntentCreateTask {
		t.Fatalf("expected create_task, got %s", result.Intent)
	}
	if result.Confidence > 0.95 {
		t.Fatalf("confidence must be capped at 0.95, got %f", result.Confidence)
	}
}

func TestExtractEntities_FirstMatchWinsPerType(t *testing.T) {
	now := time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC) // a Friday
	entities := extractEntities("create a task to go to the gym today, health is important, urgent, 30 minutes", IntentCreateTask, now)

	if entities["due_date"] != "2026-07-31" {
		t.Fatalf("expected today's date, got %q", entities["due_date"])
	}
	if entities["life_area"] != "Health" {
		t.Fatalf("expected Health, got %q", entities["life_area"])
	}
	if entities["priority"] != "high" {
		t.Fatalf("expected high priority, got %q", entities["priority"])
	}
	if entities["duration"] != "30 minutes" {
		t.Fatalf("expected '30 minutes', got %q", entities["duration"])
	}
	if entities["title"] == "" {
		t.Fatal("expected a title to be extracted")
	}
}

func TestExtractEntities_WeekdayResolvesToNextOccurrence(t *testing.T) {
	friday := time.Date(2026, time.July, 31, 12, 0, 0, 0, time.UTC)
	entities := extractEntities("let's meet on friday", IntentChatContinuation, friday)
	// "friday" on a Friday must resolve to next Friday, not today.
	if entities["due_date"] != "2026-08-07" {
		t.Fatalf("expected next Friday 2026-08-07, got %q", entities["due_date"])
	}
}

func TestExtractEntities_TitleRejectedWhenTooShort(t *testing.T) {
	entities := extractEntities("create a task", IntentCreateTask, time.Now())
	if _, ok := entities["title"]; ok {
		t.Fatal("expected no title entity for a too-short remainder")
	}
}

func TestExtractEntities_SlashDateNormalizesToISO(t *testing.T) {
	entities := extractEntities("due 3/14/2027", IntentChatContinuation, time.Now())
	if entities["due_date"] != "2027-03-14" {
		t.Fatalf("expected 2027-03-14, got %q", entities["due_date"])
	}
}

func TestExtractEntities_RelativeDuration(t *testing.T) {
	now := time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC)
	entities := extractEntities("finish this in 3 days", IntentChatContinuation, now)
	if entities["due_date"] != "2026-08-03" {
		t.Fatalf("expected 2026-08-03, got %q", entities["due_date"])
	}
}
