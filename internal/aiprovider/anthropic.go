package aiprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// AnthropicClient implements Client for Anthropic's Messages API.
type AnthropicClient struct {
	client anthropic.Client
	log    zerolog.Logger
}

// NewAnthropicClient builds an Anthropic-backed provider client.
func NewAnthropicClient(apiKey string, log zerolog.Logger) *AnthropicClient {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{client: c, log: log.With().Str("provider", "anthropic").Logger()}
}

func (a *AnthropicClient) Name() string { return string(aimodels.ProviderAnthropic) }

func (a *AnthropicClient) GenerateCompletion(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &aimodels.ProviderError{Kind: aimodels.KindTimeout, Provider: a.Name(), Message: "request timed out", Err: err}
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &aimodels.ProviderError{
				Kind:     aimodels.KindProviderError,
				Provider: a.Name(),
				Code:     fmt.Sprintf("%d", apiErr.StatusCode),
				Message:  apiErr.Message,
				Err:      err,
			}
		}
		return nil, &aimodels.ProviderError{Kind: aimodels.KindUnavailable, Provider: a.Name(), Message: "transport error", Err: err}
	}

	var content string
	if len(resp.Content) > 0 {
		content = resp.Content[0].Text
	}

	return &CompletionResult{
		Provider:     aimodels.ProviderAnthropic,
		Content:      content,
		Model:        string(resp.Model),
		FinishReason: string(resp.StopReason),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}
