// Package assistant implements the AssistantProfile entity (spec §3.1) and
// its store, including the single-default and per-user-cap invariants
// (spec §3.2).
package assistant

import "github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"

// MaxProfilesPerUser is the cap on AssistantProfiles owned by a single user
// (spec §3.2 invariant 3). MemoryStore and the sqlite-backed store both
// enforce this constant; internal/config parses
// AI_MAX_ASSISTANT_PROFILES_PER_USER, but that value is not passed to
// either store.
const MaxProfilesPerUser = 5

// Style holds the five integer personality traits, each constrained to
// [0, 100] (spec §3.1).
type Style struct {
	Formality  int
	Directness int
	Humor      int
	Empathy    int
	Motivation int
}

// Profile is the full AssistantProfile entity (spec §3.1).
type Profile struct {
	ID                   string
	OwnerID              string
	Name                 string
	Language             string
	AIModel              string
	Style                Style
	DialogueTemperature  float64
	IntentTemperature    float64
	CustomInstructions   string
	RequiresConfirmation bool
	IsDefault            bool
	IsPublic             bool
	Version              int64 // monotonic millisecond timestamp, spec §3.1
}

// Ref projects a Profile down to the fields the orchestrator/classifier
// need, avoiding a dependency from internal/aimodels back onto this
// package.
func (p Profile) Ref() *aimodels.AssistantProfileRef {
	return &aimodels.AssistantProfileRef{
		ID:                p.ID,
		AIModel:           p.AIModel,
		DialogueTemp:      p.DialogueTemperature,
		IntentTemp:        p.IntentTemperature,
		CustomInstruction: p.CustomInstructions,
	}
}

// ClampTemperature constrains a temperature field to [0, 2] (spec §3.1).
// Exported so both MemoryStore and the sqlite-backed store enforce the
// same bound.
func ClampTemperature(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 2 {
		return 2
	}
	return v
}

// ClampTrait constrains a Style trait to [0, 100] (spec §3.1).
func ClampTrait(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
