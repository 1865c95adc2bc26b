package aiprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// OpenAIClient implements Client for OpenAI's chat completion API.
type OpenAIClient struct {
	client openai.Client
	log    zerolog.Logger
}

// NewOpenAIClient builds an OpenAI-backed provider client.
func NewOpenAIClient(apiKey string, log zerolog.Logger) *OpenAIClient {
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: c, log: log.With().Str("provider", "openai").Logger()}
}

func (o *OpenAIClient) Name() string { return string(aimodels.ProviderOpenAI) }

func (o *OpenAIClient) GenerateCompletion(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.Prompt)},
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &aimodels.ProviderError{Kind: aimodels.KindTimeout, Provider: o.Name(), Message: "request timed out", Err: err}
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &aimodels.ProviderError{
				Kind:     aimodels.KindProviderError,
				Provider: o.Name(),
				Code:     fmt.Sprintf("%d", apiErr.StatusCode),
				Message:  apiErr.Message,
				Err:      err,
			}
		}
		return nil, &aimodels.ProviderError{Kind: aimodels.KindUnavailable, Provider: o.Name(), Message: "transport error", Err: err}
	}

	var content, finishReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = resp.Choices[0].FinishReason
	}

	return &CompletionResult{
		Provider:     aimodels.ProviderOpenAI,
		Content:      content,
		Model:        resp.Model,
		FinishReason: finishReason,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
