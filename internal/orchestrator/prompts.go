package orchestrator

import (
	"fmt"
	"strings"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// buildPrompt renders the full prompt text (system prompt prepended, when
// the use case has one) consumed by aiprovider.CompletionRequest, grounded
// on the teacher's simple-string-prompt provider calls and on
// libs/prompts/*.py's template shape, reduced to Go string builders rather
// than the original's multi-hundred-line f-strings.
func buildPrompt(req aimodels.AIRequest) string {
	switch req.UseCase {
	case aimodels.UseCaseGoalDecomposition:
		return goalDecompositionPrompt(req.GoalDecomposition)
	case aimodels.UseCaseTaskGeneration:
		return taskGenerationPrompt(req.TaskGeneration)
	case aimodels.UseCaseConversation:
		return conversationPrompt(req.Conversation)
	default:
		return ""
	}
}

func goalDecompositionPrompt(r *aimodels.GoalDecompositionRequest) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Decompose the following goal into concrete, actionable tasks.\n\nGoal: %s\n", r.GoalTitle)
	if r.GoalDescription != "" {
		fmt.Fprintf(&b, "Description: %s\n", r.GoalDescription)
	}
	if r.Context.LifeArea != "" {
		fmt.Fprintf(&b, "Life area: %s\n", r.Context.LifeArea)
	}
	if r.Context.UserExperience != "" {
		fmt.Fprintf(&b, "User experience level: %s\n", r.Context.UserExperience)
	}
	if r.Context.TimeAvailableWk != "" {
		fmt.Fprintf(&b, "Time available per week: %s\n", r.Context.TimeAvailableWk)
	}
	if len(r.Context.ExistingTasks) > 0 {
		fmt.Fprintf(&b, "Existing tasks: %s\n", strings.Join(r.Context.ExistingTasks, "; "))
	}
	b.WriteString("Respond with a numbered list of tasks, a rough timeline, and any follow-up questions.")
	return b.String()
}

func taskGenerationPrompt(r *aimodels.TaskGenerationRequest) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest the next tasks for the goal %q.\n", r.GoalTitle)
	if len(r.Context.CompletedTasks) > 0 {
		fmt.Fprintf(&b, "Already completed: %s\n", strings.Join(r.Context.CompletedTasks, "; "))
	}
	if len(r.Context.PendingTasks) > 0 {
		fmt.Fprintf(&b, "Still pending: %s\n", strings.Join(r.Context.PendingTasks, "; "))
	}
	if r.Context.DueWithinDays > 0 {
		fmt.Fprintf(&b, "Focus on tasks achievable within %d days.\n", r.Context.DueWithinDays)
	}
	b.WriteString("Respond with a short, prioritized task list.")
	return b.String()
}

func conversationPrompt(r *aimodels.ConversationRequest) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	system := r.SystemPrompt
	if system == "" {
		system = defaultChatSystemPrompt(r.Context)
	}
	b.WriteString(system)
	b.WriteString("\n\n")
	if len(r.Context.RecentActivity) > 0 {
		fmt.Fprintf(&b, "Recent activity: %s\n", strings.Join(r.Context.RecentActivity, "; "))
	}
	if len(r.Context.LifeAreas) > 0 {
		fmt.Fprintf(&b, "Life areas: %s\n", strings.Join(r.Context.LifeAreas, ", "))
	}
	fmt.Fprintf(&b, "user: %s", r.Message)
	return b.String()
}

// defaultChatSystemPrompt mirrors the teacher/original's conversational
// persona (original_source libs/prompts/conversation.py chat_system_prompt),
// trimmed to a paragraph rather than the original's multi-section essay.
func defaultChatSystemPrompt(ctx aimodels.ConversationContext) string {
	tone := "friendly and supportive"
	if t, ok := ctx.Preferences["tone"]; ok && t != "" {
		tone = t
	}
	return fmt.Sprintf(
		"You are an AI assistant helping the user manage their life goals and tasks. "+
			"Your tone is %s. Ask clarifying questions when details are missing, suggest "+
			"breaking large goals into smaller steps, and keep responses conversational but purposeful.",
		tone,
	)
}
