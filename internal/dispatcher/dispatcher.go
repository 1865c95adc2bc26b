// Package dispatcher implements spec §4.6: the next-action planner that
// turns a classification and session state into an ordered list of Action
// records, delegating actual execution to an external domain service.
package dispatcher

import (
	"context"
	"fmt"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/classifier"
)

// ActionType is the closed set of action kinds the dispatcher emits (spec
// §4.6 table).
type ActionType string

const (
	ActionClarificationRequest ActionType = "clarification_request"
	ActionEntityRequest        ActionType = "entity_request"
	ActionExecuteAction        ActionType = "execute_action"
	ActionProvideAdvice        ActionType = "provide_advice"
	ActionContinueConversation ActionType = "continue_conversation"
)

// Action is one emitted next step; only the fields relevant to ActionType
// are populated, the rest are the zero value.
type Action struct {
	Type             ActionType
	Message          string
	SuggestedIntents []classifier.Intent
	RequiredEntity   string
	Intent           classifier.Intent
	Entities         map[string]string
	ExecutionResult  *ExecutionResult // left nil by Plan; Execute returns its result separately
}

// createIntents is the subset of intents that map 1:1 onto a domain-service
// create_* call (spec §4.6 "intent ∈ create_*").
var createIntents = map[classifier.Intent]bool{
	classifier.IntentCreateGoal:    true,
	classifier.IntentCreateTask:    true,
	classifier.IntentCreateProject: true,
}

// clarificationThreshold mirrors spec §4.5's requires_clarification bar.
const clarificationThreshold = 0.85

// suggestedClarificationIntents is the fixed hint list offered when the
// classifier itself is unsure, grounded on
// intent_service.py's _determine_next_actions.
var suggestedClarificationIntents = []classifier.Intent{
	classifier.IntentCreateGoal,
	classifier.IntentCreateTask,
	classifier.IntentGetAdvice,
}

// ExecutionResult is what the domain service returns for an execute_action.
type ExecutionResult struct {
	Success bool
	ID      string // ID of the created/updated domain object, if any
	Error   string
}

// DomainService is the external collaborator that actually performs
// create_goal / create_task / create_project / update_settings /
// rate_life_area (spec §4.6: "An execute_action is actually performed by
// the domain service").
type DomainService interface {
	CreateGoal(ctx context.Context, userID string, entities map[string]string) (ExecutionResult, error)
	CreateTask(ctx context.Context, userID string, entities map[string]string) (ExecutionResult, error)
	CreateProject(ctx context.Context, userID string, entities map[string]string) (ExecutionResult, error)
	UpdateSettings(ctx context.Context, userID string, entities map[string]string) (ExecutionResult, error)
	RateLifeArea(ctx context.Context, userID string, entities map[string]string) (ExecutionResult, error)
}

// Dispatcher plans (and, for execute_action, performs) next actions.
type Dispatcher struct {
	service DomainService
}

func New(service DomainService) *Dispatcher {
	return &Dispatcher{service: service}
}

// SessionView is the subset of conversation state the planner needs to
// decide entity-completeness and advisory context.
type SessionView struct {
	IncompleteEntities []string
	TurnCount          int
	CurrentIntent      classifier.Intent
}

// Plan builds the ordered action list for one classification result (spec
// §4.6 table). The table's conditions are mutually exclusive except for
// clarification, which always takes priority when confidence is low.
func (d *Dispatcher) Plan(result classifier.Result, session SessionView) []Action {
	if result.Confidence < clarificationThreshold {
		return []Action{{
			Type:             ActionClarificationRequest,
			Message:          "I'm not sure what you'd like to do. Could you be more specific?",
			SuggestedIntents: suggestedClarificationIntents,
		}}
	}

	if createIntents[result.Intent] {
		if _, ok := result.Entities["title"]; !ok {
			return []Action{{
				Type:           ActionEntityRequest,
				RequiredEntity: "title",
				Message:        fmt.Sprintf("What would you like to call this %s?", createNoun(result.Intent)),
			}}
		}
		return []Action{{
			Type:     ActionExecuteAction,
			Intent:   result.Intent,
			Entities: result.Entities,
		}}
	}

	if result.Intent == classifier.IntentRateLifeArea {
		if _, ok := result.Entities["life_area"]; !ok {
			return []Action{{
				Type:           ActionEntityRequest,
				RequiredEntity: "life_area",
				Message:        "Which life area would you like to rate?",
			}}
		}
		return []Action{{
			Type:     ActionExecuteAction,
			Intent:   result.Intent,
			Entities: result.Entities,
		}}
	}

	if result.Intent == classifier.IntentUpdateSettings {
		return []Action{{
			Type:     ActionExecuteAction,
			Intent:   result.Intent,
			Entities: result.Entities,
		}}
	}

	if result.Intent == classifier.IntentGetAdvice {
		return []Action{{Type: ActionProvideAdvice, Entities: result.Entities}}
	}

	return []Action{{Type: ActionContinueConversation, Intent: result.Intent}}
}

// Execute runs the domain-service call for an ActionExecuteAction, passing
// (user_id, entities) straight through (spec §4.6: "dispatcher passes
// (user_id, entities) through"). Actions of any other type are no-ops.
func (d *Dispatcher) Execute(ctx context.Context, userID string, action Action) (ExecutionResult, error) {
	if action.Type != ActionExecuteAction {
		return ExecutionResult{}, nil
	}
	switch action.Intent {
	case classifier.IntentCreateGoal:
		return d.service.CreateGoal(ctx, userID, action.Entities)
	case classifier.IntentCreateTask:
		return d.service.CreateTask(ctx, userID, action.Entities)
	case classifier.IntentCreateProject:
		return d.service.CreateProject(ctx, userID, action.Entities)
	case classifier.IntentUpdateSettings:
		return d.service.UpdateSettings(ctx, userID, action.Entities)
	case classifier.IntentRateLifeArea:
		return d.service.RateLifeArea(ctx, userID, action.Entities)
	default:
		return ExecutionResult{}, fmt.Errorf("dispatcher: no domain-service method for intent %q", action.Intent)
	}
}

func createNoun(intent classifier.Intent) string {
	switch intent {
	case classifier.IntentCreateGoal:
		return "goal"
	case classifier.IntentCreateTask:
		return "task"
	case classifier.IntentCreateProject:
		return "project"
	}
	return "item"
}
