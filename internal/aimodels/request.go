package aimodels

import "time"

// UseCase selects which prompt family and default ModelConfig apply to a
// request (spec §4.3 step 2).
type UseCase string

const (
	UseCaseGoalDecomposition UseCase = "goal_decomposition"
	UseCaseTaskGeneration    UseCase = "task_generation"
	UseCaseConversation      UseCase = "conversation"
)

// Provider identifies a closed set of completion backends (spec §9:
// "represent providers as a closed variant... dispatch by explicit pattern
// match" rather than a string-keyed lookup).
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderLocal     Provider = "local" // deterministic mock, also universal fallback
)

// AIRequest is the union of requests the orchestrator accepts. Exactly one
// of GoalDecomposition, TaskGeneration, or Conversation is non-nil,
// selected by UseCase.
type AIRequest struct {
	UseCase          UseCase
	ProviderOverride *Provider // optional explicit provider choice
	AssistantProfile *AssistantProfileRef

	GoalDecomposition *GoalDecompositionRequest
	TaskGeneration    *TaskGenerationRequest
	Conversation      *ConversationRequest
}

// AssistantProfileRef is the subset of an AssistantProfile the orchestrator
// and classifier need, avoiding a dependency cycle with internal/assistant.
type AssistantProfileRef struct {
	ID                string
	AIModel           string
	DialogueTemp      float64
	IntentTemp        float64
	CustomInstruction string
}

// GoalDecompositionRequest asks the model to break a goal into tasks.
type GoalDecompositionRequest struct {
	GoalTitle       string
	GoalDescription string
	Context         GoalContext
}

// GoalContext is the concrete value type prompt builders consume by field
// (spec §9: no duck-typed context objects).
type GoalContext struct {
	LifeArea        string
	ExistingTasks   []string
	UserExperience  string
	TimeAvailableWk string
}

// TaskGenerationRequest asks the model to suggest next tasks for a goal.
type TaskGenerationRequest struct {
	GoalTitle string
	Context   TaskContext
}

// TaskContext is the concrete value type for task-generation prompts.
type TaskContext struct {
	CompletedTasks []string
	PendingTasks   []string
	DueWithinDays  int
}

// ConversationRequest is a single conversational turn.
type ConversationRequest struct {
	Message string
	Context ConversationContext

	// IsClassification marks a conversational call made by the intent
	// classifier (spec §4.4 Stage A): it still uses UseCaseConversation's
	// model/timeout defaults, but the assistant profile's IntentTemperature
	// overrides temperature instead of DialogueTemperature (spec §4.3 step 2).
	IsClassification bool

	// SystemPrompt, when set, is used verbatim instead of the orchestrator's
	// built-in conversational system prompt - the classifier uses this to
	// supply its JSON-output contract (spec §4.4 Stage A).
	SystemPrompt string
}

// ConversationContext is the concrete value type conversation/classification
// prompts consume.
type ConversationContext struct {
	UserID          string
	RecentActivity  []string
	LifeAreas       []string
	Preferences     map[string]string
	SessionID       string
	PreviousIntent  string
	IncludeFullCtx  bool
}

// ResponseStatus is the outcome of an orchestrator call.
type ResponseStatus string

const (
	StatusSuccess ResponseStatus = "success"
	StatusError   ResponseStatus = "error"
)

// TokenUsage mirrors the provider's reported usage (spec §4.1).
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ResponseMetadata carries the provider-facing facts about how a response
// was produced (spec §4.3 step 7).
type ResponseMetadata struct {
	Provider     Provider
	FinishReason string
	CacheHit     bool
}

// AIResponse is the orchestrator's uniform return value; it is always
// populated (never an error return) per spec §4.3/§7.
type AIResponse struct {
	RequestID      string
	Status         ResponseStatus
	Content        string
	Metadata       ResponseMetadata
	TokenUsage     TokenUsage
	CostEstimate   float64
	ModelUsed      string
	ProcessingTime time.Duration
	ErrorMessage   string // set iff Status == StatusError
}

// ModelConfig parameterizes a single provider call (spec §4.3 step 2).
type ModelConfig struct {
	Provider     Provider
	ModelName    string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	CostPerToken float64 // 0 when unknown; cost is then reported as 0
}
