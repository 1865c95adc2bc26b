package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aiprovider"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/airesponsecache"
)

// Orchestrator implements spec §4.3: routes a typed request to a model
// config, consults the response cache, falls back across providers on
// failure, sanitizes output, and accounts for cost and token usage.
type Orchestrator struct {
	providers      map[aimodels.Provider]aiprovider.Client
	fallbackChain  []aimodels.Provider // primary ... local, tried in order
	catalog        *Catalog
	cache          *airesponsecache.Cache
	cachingEnabled bool
	log            zerolog.Logger
	metrics        *Metrics
}

// New builds an Orchestrator. fallbackChain's first element is the primary
// provider used when a request carries no ProviderOverride; the chain
// should always end with aimodels.ProviderLocal (spec §4.3 step 4: "primary
// provider, then the mock provider").
func New(providers map[aimodels.Provider]aiprovider.Client, catalog *Catalog, cache *airesponsecache.Cache, cachingEnabled bool, fallbackChain []aimodels.Provider, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		providers:      providers,
		fallbackChain:  fallbackChain,
		catalog:        catalog,
		cache:          cache,
		cachingEnabled: cachingEnabled,
		log:            log.With().Str("component", "orchestrator").Logger(),
		metrics:        NewMetrics(),
	}
}

// Metrics returns a read-only snapshot of orchestrator counters (spec §4.3:
// "Metrics are always updated").
func (o *Orchestrator) Metrics() MetricsSnapshot { return o.metrics.Snapshot() }

// Chat executes req end-to-end and always returns a populated AIResponse -
// errors never escape (spec §4.3/§7).
func (o *Orchestrator) Chat(ctx context.Context, req aimodels.AIRequest) *aimodels.AIResponse {
	start := time.Now()
	requestID := uuid.NewString()
	o.metrics.IncRequests()

	chain := o.chainFor(req)
	baseCfg := o.baseConfig(req, chain[0])
	prompt := buildPrompt(req)
	fingerprint := airesponsecache.Fingerprint(prompt, baseCfg.ModelName, baseCfg.MaxTokens, baseCfg.Temperature)

	var result aiprovider.CompletionResult
	var cacheHit bool
	var lastErr error

	if o.cachingEnabled {
		result, cacheHit, lastErr = o.cache.GetOrCompute(ctx, fingerprint, func(ctx context.Context) (aiprovider.CompletionResult, error) {
			return o.runFallbackChain(ctx, req, chain, prompt)
		})
	} else {
		result, lastErr = o.runFallbackChain(ctx, req, chain, prompt)
	}

	elapsed := time.Since(start)

	if lastErr != nil {
		o.metrics.IncErrors()
		return &aimodels.AIResponse{
			RequestID:      requestID,
			Status:         aimodels.StatusError,
			ErrorMessage:   sanitizedErrorMessage(lastErr),
			ProcessingTime: elapsed,
		}
	}

	content := sanitize(result.Content)
	cfg, _ := o.catalog.Resolve(result.Provider, req.UseCase)
	cost := 0.0
	if cfg.CostPerToken > 0 {
		cost = float64(result.Usage.TotalTokens) * cfg.CostPerToken
	}

	return &aimodels.AIResponse{
		RequestID: requestID,
		Status:    aimodels.StatusSuccess,
		Content:   content,
		Metadata: aimodels.ResponseMetadata{
			Provider:     result.Provider,
			FinishReason: result.FinishReason,
			CacheHit:     cacheHit,
		},
		TokenUsage: aimodels.TokenUsage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
		CostEstimate:   cost,
		ModelUsed:      result.Model,
		ProcessingTime: elapsed,
	}
}

// chainFor returns the ordered list of providers to attempt: an explicit
// ProviderOverride is tried first, followed by the remaining providers of
// the configured fallback chain in their configured order; without an
// override the configured fallback chain is used unchanged.
func (o *Orchestrator) chainFor(req aimodels.AIRequest) []aimodels.Provider {
	if req.ProviderOverride == nil {
		return o.fallbackChain
	}
	chain := []aimodels.Provider{*req.ProviderOverride}
	for _, p := range o.fallbackChain {
		if p != *req.ProviderOverride {
			chain = append(chain, p)
		}
	}
	return chain
}

// baseConfig resolves the ModelConfig used to compute the cache fingerprint
// before any particular provider attempt: the first provider in the chain's
// configuration, adjusted for an assistant profile override (spec §4.3
// step 2).
func (o *Orchestrator) baseConfig(req aimodels.AIRequest, provider aimodels.Provider) aimodels.ModelConfig {
	cfg, _ := o.catalog.Resolve(provider, req.UseCase)
	applyProfileOverride(&cfg, req)
	return cfg
}

func applyProfileOverride(cfg *aimodels.ModelConfig, req aimodels.AIRequest) {
	profile := req.AssistantProfile
	if profile == nil {
		return
	}
	if profile.AIModel != "" {
		cfg.ModelName = profile.AIModel
	}
	switch req.UseCase {
	case aimodels.UseCaseConversation:
		if req.Conversation != nil && req.Conversation.IsClassification {
			cfg.Temperature = profile.IntentTemp
		} else {
			cfg.Temperature = profile.DialogueTemp
		}
	}
}

// runFallbackChain tries each provider in chain in order, returning the
// first success. Every failure is absorbed and logged; only the last
// error is returned, and only once every provider has failed (spec §4.3
// step 4, §7).
func (o *Orchestrator) runFallbackChain(ctx context.Context, req aimodels.AIRequest, chain []aimodels.Provider, prompt string) (aiprovider.CompletionResult, error) {
	var lastErr error
	for _, providerName := range chain {
		client, ok := o.providers[providerName]
		if !ok {
			continue
		}
		cfg, ok := o.catalog.Resolve(providerName, req.UseCase)
		if !ok {
			continue
		}
		applyProfileOverride(&cfg, req)

		o.metrics.IncAttempt(providerName)
		result, err := client.GenerateCompletion(ctx, aiprovider.CompletionRequest{
			Prompt:      prompt,
			Model:       cfg.ModelName,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			lastErr = err
			o.metrics.IncFailure(providerName)
			o.log.Warn().Err(err).Str("provider", string(providerName)).Msg("provider attempt failed, trying next in chain")
			continue
		}
		o.metrics.IncSuccess(providerName)
		return *result, nil
	}
	if lastErr == nil {
		lastErr = aimodels.ErrValidation // no provider configured for this use case/chain
	}
	return aiprovider.CompletionResult{}, lastErr
}

// sanitizedErrorMessage never leaks vendor codes or stack traces to the
// caller (spec §7 "no stack traces or vendor codes are leaked").
func sanitizedErrorMessage(err error) string {
	if pe, ok := err.(*aimodels.ProviderError); ok {
		return "all providers failed: " + pe.Provider + " (" + string(pe.Kind) + ")"
	}
	return "all providers failed"
}
