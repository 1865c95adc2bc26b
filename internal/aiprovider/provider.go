// Package aiprovider implements the uniform completion interface over the
// external model vendors (spec §4.1): two real vendor clients and a
// deterministic mock that doubles as the universal fallback.
package aiprovider

import (
	"context"
	"time"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// Client is the common operation every provider variant implements.
type Client interface {
	// Name returns the closed provider identifier this client serves.
	Name() string

	// GenerateCompletion produces a completion for prompt under the given
	// parameters. It fails with a *aimodels.ProviderError (Kind
	// ProviderError/Timeout/Unavailable) — see internal/aimodels/errors.go.
	GenerateCompletion(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// CompletionRequest is the provider-agnostic request shape (spec §4.1).
type CompletionRequest struct {
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// CompletionResult is the provider-agnostic response shape (spec §4.1).
type CompletionResult struct {
	Content      string
	Usage        Usage
	Model        string
	FinishReason string
	Provider     aimodels.Provider
}

// Usage mirrors the vendor's reported token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
