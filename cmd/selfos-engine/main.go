// Command selfos-engine is the composition root demonstrating how the
// library packages in internal/ wire together into a running process:
// config -> store -> providers -> cache -> orchestrator -> classifier ->
// flow -> dispatcher -> permission -> syncengine -> scheduler. It is not
// itself a required deliverable (per spec §1 "Out of scope": HTTP
// transport lives outside this module) but demonstrates the ambient
// entrypoint a teacher-shaped repo would carry, following the shape of
// the teacher's cmd/ai-bridge/main.go bootstrap.
package main

import (
	"context"
	"os"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aiprovider"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/airesponsecache"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/assistant"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/classifier"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/config"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/dispatcher"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/flow"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/logging"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/orchestrator"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/permission"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/scheduler"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/store"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/syncengine"
)

func main() {
	log := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_PRETTY") != "")
	cfg := config.FromEnv()

	db, err := store.Open(cfg.StorePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer db.Close()

	assistantStore := store.NewAssistantStore(db)
	permissionStore := store.NewPermissionStore(db)
	syncStore := store.NewSyncStore(db)

	providers := map[aimodels.Provider]aiprovider.Client{
		aimodels.ProviderLocal: aiprovider.NewMockClient(),
	}
	fallbackChain := []aimodels.Provider{aimodels.ProviderLocal}
	switch cfg.AIProvider {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			providers[aimodels.ProviderOpenAI] = aiprovider.NewOpenAIClient(cfg.OpenAIAPIKey, log)
			fallbackChain = []aimodels.Provider{aimodels.ProviderOpenAI, aimodels.ProviderLocal}
		}
	case "anthropic":
		if cfg.AnthropicAPIKey != "" {
			providers[aimodels.ProviderAnthropic] = aiprovider.NewAnthropicClient(cfg.AnthropicAPIKey, log)
			fallbackChain = []aimodels.Provider{aimodels.ProviderAnthropic, aimodels.ProviderLocal}
		}
	}

	cache := airesponsecache.New(cfg.CacheTTL())
	catalog := orchestrator.NewCatalog()
	modelCatalogPath := os.Getenv("SELFOS_MODEL_CATALOG_PATH")
	if modelCatalogPath == "" {
		modelCatalogPath = "model_catalog.yaml"
	}
	if overrides, err := config.LoadModelCatalogYAML(modelCatalogPath); err != nil {
		log.Warn().Err(err).Msg("failed to load model catalog overrides, using built-in defaults")
	} else {
		overrides.ApplyTo(catalog)
	}
	orch := orchestrator.New(providers, catalog, cache, cfg.AIEnableCaching, fallbackChain, log)

	conversationLogs := store.NewConversationLogStore(db)
	clsf := classifier.New(orch, conversationLogs, log)

	permLookup := assistant.NewPermissionLookup(assistantStore)
	permService := permission.New(permissionStore, permLookup)

	domainService := &unimplementedDomainService{}
	loader := &assistantContextLoader{store: assistantStore}
	disp := dispatcher.New(domainService)
	manager := flow.New(clsf, disp, loader, log).WithFeedbackSink(conversationLogs)

	access := &permissionAccessChecker{perm: permService}
	syncEngine := syncengine.New(syncStore, access, log)
	_ = syncEngine

	sched := scheduler.New(log)
	if err := sched.RegisterFunc("cache-sweep", "*/10 * * * *", func() {
		cache.Sweep()
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to register cache sweep")
	}
	if err := sched.RegisterFunc("session-sweep", "*/5 * * * *", func() {
		manager.SweepIdle()
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to register session sweep")
	}
	if err := sched.RegisterFunc("permission-sweep", "0 * * * *", func() {
		if _, err := permService.SweepExpired(context.Background()); err != nil {
			log.Warn().Err(err).Msg("permission sweep failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to register permission sweep")
	}
	sched.Start()
	defer sched.Stop()

	log.Info().Str("provider", cfg.AIProvider).Msg("selfos-engine composition root ready")
	select {}
}

// assistantContextLoader implements flow.ContextLoader against the
// assistant store: it hydrates the caller's default profile (if any) and
// a minimal UserContext, leaving richer activity/preference hydration to
// the external domain service this module treats as a collaborator.
type assistantContextLoader struct {
	store assistant.Store
}

func (l *assistantContextLoader) LoadUserContext(ctx context.Context, userID string) (classifier.UserContext, *aimodels.AssistantProfileRef, error) {
	profiles, err := l.store.ListByOwner(ctx, userID)
	if err != nil {
		return classifier.UserContext{}, nil, err
	}
	for _, p := range profiles {
		if p.IsDefault {
			return classifier.UserContext{}, p.Ref(), nil
		}
	}
	return classifier.UserContext{}, nil, nil
}

// permissionAccessChecker adapts permission.Service to
// syncengine.AccessChecker.
type permissionAccessChecker struct {
	perm *permission.Service
}

func (a *permissionAccessChecker) CanAccess(ctx context.Context, userID, ownerID, objectType, objectID string) (bool, error) {
	if userID == ownerID {
		return true, nil
	}
	// Only assistant_profile sync objects are permission-checkable today;
	// every other object_type is an external domain collaborator's
	// concern (goals/tasks/projects enforce their own sharing rules
	// outside this module, per spec §1 "Out of scope").
	if objectType != "assistant_profile" {
		return false, nil
	}
	return a.perm.Check(ctx, userID, objectID, permission.LevelRead)
}

// unimplementedDomainService is a placeholder DomainService: the real
// implementation lives in the external domain service (goals/tasks/
// projects), out of scope for this module per spec §1.
type unimplementedDomainService struct{}

func (unimplementedDomainService) CreateGoal(context.Context, string, map[string]string) (dispatcher.ExecutionResult, error) {
	return dispatcher.ExecutionResult{}, aimodels.ErrValidation
}

func (unimplementedDomainService) CreateTask(context.Context, string, map[string]string) (dispatcher.ExecutionResult, error) {
	return dispatcher.ExecutionResult{}, aimodels.ErrValidation
}

func (unimplementedDomainService) CreateProject(context.Context, string, map[string]string) (dispatcher.ExecutionResult, error) {
	return dispatcher.ExecutionResult{}, aimodels.ErrValidation
}

func (unimplementedDomainService) UpdateSettings(context.Context, string, map[string]string) (dispatcher.ExecutionResult, error) {
	return dispatcher.ExecutionResult{}, aimodels.ErrValidation
}

func (unimplementedDomainService) RateLifeArea(context.Context, string, map[string]string) (dispatcher.ExecutionResult, error) {
	return dispatcher.ExecutionResult{}, aimodels.ErrValidation
}
