package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	accommodationx "github.com/verdanthealth/wellness-agent/agent/accommodation"
	"github.com/verdanthealth/wellness-agent/agent/agents/coordinator"
	"github.com/verdanthealth/wellness-agent/agent/agents/generation"
	"github.com/verdanthealth/wellness-agent/agent/agents/roles"
	contractx "github.com/verdanthealth/wellness-agent/agent/contract"
	intentx "github.com/verdanthealth/wellness-agent/agent/intent"
	memoryx "github.com/verdanthealth/wellness-agent/agent/memory"
	policyx "github.com/verdanthealth/wellness-agent/agent/policy"
	privacyx "github.com/verdanthealth/wellness-agent/agent/privacy"
	statex "github.com/verdanthealth/wellness-agent/agent/state"
	configx "github.com/verdanthealth/wellness-agent/pkg/config"
	_ "github.com/verdanthealth/wellness-agent/pkg/logger/autoload"
	openrouterx "github.com/verdanthealth/wellness-agent/pkg/openrouter"
	searchx "github.com/verdanthealth/wellness-agent/pkg/search"
)

type AppConfig struct {
	MemoryBackend  string `envconfig:"MEMORY_BACKEND" split_words:"true" default:"memory"`
	SessionBackend string `envconfig:"SESSION_BACKEND" split_words:"true" default:"memory"`
	GeneratorMode  string `envconfig:"GENERATOR_MODE" split_words:"true" default:"static"`
	ClassifierMode string `envconfig:"CLASSIFIER_MODE" split_words:"true" default:"keyword"`
	SearchEnabled  bool   `envconfig:"SEARCH_ENABLED" split_words:"true" default:"false"`
	HistoryLimit   int    `envconfig:"HISTORY_LIMIT" split_words:"true" default:"40"`

	DemoSessionID string `envconfig:"DEMO_SESSION_ID" split_words:"true" default:"local-session"`
	DemoRole      string `envconfig:"DEMO_ROLE" split_words:"true" default:"employee"`
	DemoUserID    string `envconfig:"DEMO_USER_ID" split_words:"true" default:"local-user"`
	DemoOrgID     string `envconfig:"DEMO_ORG_ID" split_words:"true" default:"local-org"`
	DemoDept      string `envconfig:"DEMO_DEPT" split_words:"true" default:"engineering"`
}

func main() {
	ctx := context.Background()
	appCfg := configx.MustNew[AppConfig]("WELLNESS")

	c, err := buildCoordinator(ctx, appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	runREPL(ctx, c, appCfg)
}

func buildCoordinator(ctx context.Context, appCfg *AppConfig) (*coordinator.Coordinator, error) {
	policyCfg := configx.MustNew[policyx.Config]("POLICY")
	engine, err := policyx.New(policyx.DefaultTable(policyCfg.MinGroupSize))
	if err != nil {
		return nil, fmt.Errorf("build policy engine: %w", err)
	}

	memStore, err := buildMemoryStore(ctx, appCfg.MemoryBackend)
	if err != nil {
		return nil, err
	}

	privacyCfg := configx.MustNew[privacyx.Config]("PRIVACY")
	aggregator, err := privacyx.NewAggregator(memStore, privacyx.DefaultStatistics(), *privacyCfg)
	if err != nil {
		return nil, fmt.Errorf("build aggregator: %w", err)
	}

	memoryCfg := configx.MustNew[memoryx.ServiceConfig]("MEMORY")
	memoryService, err := memoryx.NewService(memStore, engine, aggregator, *memoryCfg)
	if err != nil {
		return nil, fmt.Errorf("build memory service: %w", err)
	}

	accommodationService, err := accommodationx.NewService(memStore)
	if err != nil {
		return nil, fmt.Errorf("build accommodation service: %w", err)
	}

	var searchProvider contractx.SearchProvider
	if appCfg.SearchEnabled {
		searchCfg := configx.MustNew[searchx.Config]("SEARCH")
		searchProvider = searchx.MustNew(*searchCfg)
	}

	registry, err := roles.NewRegistry(memoryService, accommodationService, searchProvider)
	if err != nil {
		return nil, fmt.Errorf("build handler registry: %w", err)
	}

	classifier, err := buildClassifier(appCfg.ClassifierMode)
	if err != nil {
		return nil, err
	}

	generator, err := buildGenerator(ctx, appCfg.GeneratorMode)
	if err != nil {
		return nil, err
	}

	sessionStore, err := buildSessionStore(appCfg.SessionBackend)
	if err != nil {
		return nil, err
	}

	return coordinator.New(sessionStore, registry, classifier, generator, coordinator.Config{
		HistoryLimit: appCfg.HistoryLimit,
	})
}

func buildMemoryStore(ctx context.Context, backend string) (memoryx.Store, error) {
	switch backend {
	case "postgres":
		pgCfg := configx.MustNew[memoryx.PostgresConfig]("POSTGRES")
		store, err := memoryx.NewBunStore(*pgCfg)
		if err != nil {
			return nil, fmt.Errorf("build postgres memory store: %w", err)
		}
		if err := store.Init(ctx); err != nil {
			return nil, fmt.Errorf("init postgres memory store: %w", err)
		}
		return store, nil
	case "memory":
		return memoryx.NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", backend)
	}
}

func buildSessionStore(backend string) (statex.Store, error) {
	switch backend {
	case "upstash":
		redisCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		return statex.NewUpstashRedisStore(*redisCfg)
	case "memory":
		return statex.NewMemStore(0), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func buildClassifier(mode string) (contractx.Classifier, error) {
	switch mode {
	case "llm":
		openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
		client := openrouterx.NewClient(*openRouterCfg)
		if client == nil {
			return nil, fmt.Errorf("openrouter api key is required for llm classifier")
		}
		return intentx.NewLLMClassifier(client, openRouterCfg.Model)
	case "keyword":
		return intentx.NewKeywordClassifier(), nil
	default:
		return nil, fmt.Errorf("unknown classifier mode %q", mode)
	}
}

func buildGenerator(ctx context.Context, mode string) (contractx.Generator, error) {
	switch mode {
	case "openrouter":
		openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
		chatModel, err := openRouterCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("build generation model: %w", err)
		}
		return generation.New(ctx, chatModel, "")
	case "static":
		return generation.NewStatic(), nil
	default:
		return nil, fmt.Errorf("unknown generator mode %q", mode)
	}
}

func runREPL(ctx context.Context, c *coordinator.Coordinator, appCfg *AppConfig) {
	log.Info().
		Str("role", appCfg.DemoRole).
		Str("session_id", appCfg.DemoSessionID).
		Msg("ready, type a message (ctrl-d to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		resp, err := c.HandleRequest(ctx, contractx.Request{
			SessionID:      appCfg.DemoSessionID,
			ClaimedRole:    appCfg.DemoRole,
			UserID:         appCfg.DemoUserID,
			OrganizationID: appCfg.DemoOrgID,
			Department:     appCfg.DemoDept,
			Text:           text,
		})
		if err != nil {
			log.Error().Err(err).Msg("request failed")
			continue
		}
		fmt.Println(resp.Text)
	}
}
