package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/orchestrator"
)

// ModelCatalogConfig is the yaml-structured subset of configuration the
// teacher keeps out of flat env vars (pkg/simpleruntime/config.go's
// `Models *ModelsConfig` convention): per-provider, per-use-case model
// name/token/timeout overrides.
type ModelCatalogConfig struct {
	Providers map[string]ProviderModelsConfig `yaml:"providers"`
}

// ProviderModelsConfig overrides the catalog defaults for one provider.
type ProviderModelsConfig struct {
	GoalDecomposition *ModelOverride `yaml:"goal_decomposition"`
	TaskGeneration    *ModelOverride `yaml:"task_generation"`
	Conversation      *ModelOverride `yaml:"conversation"`
}

// ModelOverride mirrors aimodels.ModelConfig's tunable fields in yaml form.
type ModelOverride struct {
	ModelName      string  `yaml:"model_name"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	CostPerToken   float64 `yaml:"cost_per_token"`
}

// LoadModelCatalogYAML reads a yaml file at path (if present) and returns
// the overrides it describes; a missing file is not an error, matching
// the teacher's convention of yaml config being optional with env vars as
// the mandatory layer.
func LoadModelCatalogYAML(path string) (*ModelCatalogConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ModelCatalogConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read model catalog yaml: %w", err)
	}
	var cfg ModelCatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse model catalog yaml: %w", err)
	}
	return &cfg, nil
}

// ApplyTo overlays the yaml overrides onto an orchestrator.Catalog that has
// already been seeded with defaults (orchestrator.NewCatalog()).
func (m *ModelCatalogConfig) ApplyTo(catalog *orchestrator.Catalog) {
	if m == nil {
		return
	}
	for providerName, overrides := range m.Providers {
		provider := aimodels.Provider(providerName)
		applyOverride(catalog, provider, aimodels.UseCaseGoalDecomposition, overrides.GoalDecomposition)
		applyOverride(catalog, provider, aimodels.UseCaseTaskGeneration, overrides.TaskGeneration)
		applyOverride(catalog, provider, aimodels.UseCaseConversation, overrides.Conversation)
	}
}

func applyOverride(catalog *orchestrator.Catalog, provider aimodels.Provider, useCase aimodels.UseCase, override *ModelOverride) {
	if override == nil {
		return
	}
	cfg, ok := catalog.Resolve(provider, useCase)
	if !ok {
		cfg = aimodels.ModelConfig{Provider: provider}
	}
	if override.ModelName != "" {
		cfg.ModelName = override.ModelName
	}
	if override.MaxTokens > 0 {
		cfg.MaxTokens = override.MaxTokens
	}
	if override.Temperature > 0 {
		cfg.Temperature = override.Temperature
	}
	if override.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(override.TimeoutSeconds) * time.Second
	}
	if override.CostPerToken > 0 {
		cfg.CostPerToken = override.CostPerToken
	}
	catalog.Set(provider, useCase, cfg)
}
