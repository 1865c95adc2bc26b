package classifier

import (
	"fmt"
	"strings"
)

// UserContext carries the recent-activity/preferences/life-area facts the
// classification prompt and entity extraction draw on (spec §4.4 Stage A:
// "user context").
type UserContext struct {
	RecentActivity []string
	Preferences    map[string]string
	LifeAreas      []string
}

// buildClassificationPrompt renders the Stage A system prompt: the intent
// taxonomy, entity catalog, user context, and a strict JSON-only output
// contract (spec §4.4 Stage A), grounded on
// intent_service.py's _build_classification_prompt.
func buildClassificationPrompt(ctx UserContext) string {
	var sb strings.Builder
	sb.WriteString("You are an intent classification system for a personal productivity assistant.\n\n")
	sb.WriteString("Analyze the user's message and return a JSON response with:\n")
	sb.WriteString("1. Intent classification (one of: create_goal, create_task, create_project, update_settings, rate_life_area, chat_continuation, get_advice, unknown)\n")
	sb.WriteString("2. Confidence score (0.0 to 1.0)\n")
	sb.WriteString("3. Extracted entities relevant to the intent\n")
	sb.WriteString("4. Brief reasoning for your classification\n\n")

	sb.WriteString("User Context:\n")
	if len(ctx.RecentActivity) > 0 {
		fmt.Fprintf(&sb, "- Recent activity: %s\n", strings.Join(ctx.RecentActivity, ", "))
	} else {
		sb.WriteString("- Recent activity: none\n")
	}
	if len(ctx.Preferences) > 0 {
		parts := make([]string, 0, len(ctx.Preferences))
		for k, v := range ctx.Preferences {
			parts = append(parts, k+"="+v)
		}
		fmt.Fprintf(&sb, "- Preferences: %s\n", strings.Join(parts, ", "))
	} else {
		sb.WriteString("- Preferences: none\n")
	}
	if len(ctx.LifeAreas) > 0 {
		fmt.Fprintf(&sb, "- Life areas: %s\n\n", strings.Join(ctx.LifeAreas, ", "))
	} else {
		sb.WriteString("- Life areas: none\n\n")
	}

	sb.WriteString("Intent Definitions:\n")
	sb.WriteString("- create_goal: user wants to set a new goal or objective\n")
	sb.WriteString("- create_task: user wants to add a specific task or to-do item\n")
	sb.WriteString("- create_project: user wants to start a new project\n")
	sb.WriteString("- update_settings: user wants to modify preferences or account settings\n")
	sb.WriteString("- rate_life_area: user wants to rate or evaluate a life area\n")
	sb.WriteString("- chat_continuation: general conversation or follow-up\n")
	sb.WriteString("- get_advice: user is asking for suggestions, tips, or guidance\n")
	sb.WriteString("- unknown: cannot determine intent with confidence\n\n")

	sb.WriteString("Entity Types: title, due_date (YYYY-MM-DD), life_area, priority (high|medium|low), duration.\n\n")

	sb.WriteString(`Respond with ONLY a JSON object of the form:
{"intent": "create_task", "confidence": 0.96, "entities": {"title": "Buy dumbbells"}, "reasoning": "..."}

Be conservative with confidence scores. Use confidence below 0.85 for ambiguous messages.`)

	return sb.String()
}
