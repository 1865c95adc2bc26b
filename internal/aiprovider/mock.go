package aiprovider

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// MockClient is a deterministic, pure provider: the same prompt always
// yields the same content, selected from a small table of templates keyed
// by lexical features of the prompt and, failing that, by a stable hash of
// the prompt (spec §4.1, §9 — "model it as a table prompt_signature →
// response_template" rather than a long if/elif cascade).
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) Name() string { return string(aimodels.ProviderLocal) }

func (m *MockClient) GenerateCompletion(_ context.Context, req CompletionRequest) (*CompletionResult, error) {
	content := mockResponseFor(req.Prompt)
	return &CompletionResult{
		Provider:     aimodels.ProviderLocal,
		Content:      content,
		Model:        "mock-model",
		FinishReason: "stop",
		Usage: Usage{
			PromptTokens:     len(req.Prompt) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      (len(req.Prompt) + len(content)) / 4,
		},
	}, nil
}

// mockTemplate pairs a lexical trigger (all keywords must appear) with a
// canned response body.
type mockTemplate struct {
	keywords []string
	body     string
}

var mockTemplates = []mockTemplate{
	{
		keywords: []string{"goal", "decompos"},
		body: "Based on your goal, here are the suggested tasks:\n" +
			"1. Research phase - gather information and identify requirements.\n" +
			"2. Planning phase - create a detailed action plan with milestones.\n" +
			"3. Implementation phase - execute the plan and track progress.\n" +
			"Follow-up: what's your current experience level, and how much time can you dedicate weekly?",
	},
	{
		keywords: []string{"task", "suggest"},
		body: "Here are the next suggested tasks:\n" +
			"1. Pick up where the last completed task left off.\n" +
			"2. Keep sessions short and consistent.\n" +
			"3. Revisit pending tasks that are closest to their due date.",
	},
	{
		keywords: []string{"advice"},
		body: "A few suggestions to consider: break the goal into smaller steps, " +
			"schedule a fixed weekly time for it, and track progress so you can see momentum build.",
	},
}

// fallbackResponses is the bounded set of generic conversational templates
// used when no keyword trigger matches; selection is by stable hash of the
// prompt so it stays deterministic across calls and processes.
var fallbackResponses = []string{
	"That's helpful context. Could you tell me a bit more about what you're hoping to accomplish?",
	"Got it. Let's figure out the next concrete step together - what would success look like here?",
	"I hear you. What timeframe did you have in mind for this?",
	"Thanks for sharing that. Is there a specific area of your life this connects to?",
}

func mockResponseFor(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, tmpl := range mockTemplates {
		if allPresent(lower, tmpl.keywords) {
			return tmpl.body
		}
	}
	return fallbackResponses[promptSignature(prompt)%uint64(len(fallbackResponses))]
}

func allPresent(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(haystack, kw) {
			return false
		}
	}
	return true
}

// promptSignature is a stable, non-cryptographic hash of the prompt used
// purely to pick a deterministic template bucket.
func promptSignature(prompt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(prompt))
	return h.Sum64()
}
