// Package orchestrator implements the AI Orchestrator (spec §4.3): model
// config selection, cache consult, provider fallback chain, sanitization,
// and cost accounting.
package orchestrator

import (
	"time"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
)

// Catalog resolves the default ModelConfig for a (provider, use case) pair.
// It starts from built-in defaults; internal/config's
// ModelCatalogConfig.ApplyTo layers yaml model-catalog overrides on top.
type Catalog struct {
	configs map[aimodels.Provider]map[aimodels.UseCase]aimodels.ModelConfig
}

// NewCatalog builds a catalog seeded with sensible defaults for every
// provider/use-case pair so the orchestrator always has something to fall
// back to even with no explicit configuration.
func NewCatalog() *Catalog {
	c := &Catalog{configs: map[aimodels.Provider]map[aimodels.UseCase]aimodels.ModelConfig{
		aimodels.ProviderOpenAI: {
			aimodels.UseCaseGoalDecomposition: {Provider: aimodels.ProviderOpenAI, ModelName: "gpt-4-turbo", MaxTokens: 1024, Temperature: 0.7, Timeout: 30 * time.Second, CostPerToken: 0.00001},
			aimodels.UseCaseTaskGeneration:    {Provider: aimodels.ProviderOpenAI, ModelName: "gpt-3.5-turbo", MaxTokens: 512, Temperature: 0.6, Timeout: 20 * time.Second, CostPerToken: 0.0000015},
			aimodels.UseCaseConversation:      {Provider: aimodels.ProviderOpenAI, ModelName: "gpt-3.5-turbo", MaxTokens: 512, Temperature: 0.8, Timeout: 20 * time.Second, CostPerToken: 0.0000015},
		},
		aimodels.ProviderAnthropic: {
			aimodels.UseCaseGoalDecomposition: {Provider: aimodels.ProviderAnthropic, ModelName: "claude-3-sonnet-20240229", MaxTokens: 1024, Temperature: 0.7, Timeout: 30 * time.Second, CostPerToken: 0.000003},
			aimodels.UseCaseTaskGeneration:    {Provider: aimodels.ProviderAnthropic, ModelName: "claude-3-haiku-20240307", MaxTokens: 512, Temperature: 0.6, Timeout: 20 * time.Second, CostPerToken: 0.00000025},
			aimodels.UseCaseConversation:      {Provider: aimodels.ProviderAnthropic, ModelName: "claude-3-haiku-20240307", MaxTokens: 512, Temperature: 0.8, Timeout: 20 * time.Second, CostPerToken: 0.00000025},
		},
		aimodels.ProviderLocal: {
			aimodels.UseCaseGoalDecomposition: {Provider: aimodels.ProviderLocal, ModelName: "mock-model", MaxTokens: 1024, Temperature: 0.7, Timeout: 5 * time.Second},
			aimodels.UseCaseTaskGeneration:    {Provider: aimodels.ProviderLocal, ModelName: "mock-model", MaxTokens: 512, Temperature: 0.6, Timeout: 5 * time.Second},
			aimodels.UseCaseConversation:      {Provider: aimodels.ProviderLocal, ModelName: "mock-model", MaxTokens: 512, Temperature: 0.8, Timeout: 5 * time.Second},
		},
	}}
	return c
}

// Set overrides the config for a single (provider, use case) pair, letting
// internal/config apply yaml model-catalog overrides on top of the defaults.
func (c *Catalog) Set(provider aimodels.Provider, useCase aimodels.UseCase, cfg aimodels.ModelConfig) {
	if c.configs[provider] == nil {
		c.configs[provider] = map[aimodels.UseCase]aimodels.ModelConfig{}
	}
	c.configs[provider][useCase] = cfg
}

// Resolve returns a copy of the ModelConfig for provider/useCase, or the
// zero value and false if neither has been configured.
func (c *Catalog) Resolve(provider aimodels.Provider, useCase aimodels.UseCase) (aimodels.ModelConfig, bool) {
	byUseCase, ok := c.configs[provider]
	if !ok {
		return aimodels.ModelConfig{}, false
	}
	cfg, ok := byUseCase[useCase]
	return cfg, ok
}
