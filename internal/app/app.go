// Package app wires the service desk components from configuration. It is
// shared by the API server and the deskctl CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/capitalize-ai/hr-service-desk/internal/agent"
	"github.com/capitalize-ai/hr-service-desk/internal/config"
	"github.com/capitalize-ai/hr-service-desk/internal/llm"
	natsclient "github.com/capitalize-ai/hr-service-desk/internal/nats"
	"github.com/capitalize-ai/hr-service-desk/internal/service"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
	"github.com/capitalize-ai/hr-service-desk/internal/tools"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
)

// App holds the wired service desk.
type App struct {
	Store      store.CaseStore
	Registry   *tools.Registry
	Dispatcher *service.Dispatcher
	FrontDesk  *service.FrontDesk

	// NATS and Journal are nil unless NATS is enabled.
	NATS    *natsclient.Client
	Journal *natsclient.StreamManager

	logger *logger.Logger
}

// New builds the service desk described by cfg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{logger: log}

	if cfg.NATSRequired() {
		client, err := natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("connect to NATS: %w", err)
		}
		a.NATS = client

		journal := natsclient.NewStreamManager(client)
		if err := journal.EnsureStream(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure case stream: %w", err)
		}
		a.Journal = journal
	}

	caseStore, err := openStore(ctx, cfg, a.NATS)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = caseStore

	client, err := newLLMClient(cfg)
	if err != nil {
		log.Warn("failed to create LLM client, conversational agent disabled",
			zap.String("provider", cfg.DefaultLLM),
			zap.Error(err),
		)
	}

	var chatRuntime agent.Runtime
	var onEvict func(string)
	if client != nil {
		rt := agent.NewLLMRuntime(client, agent.LLMRuntimeConfig{
			Model:        cfg.LLMModel,
			Instructions: agent.ConversationalInstructions,
			MaxTokens:    cfg.LLMMaxTokens,
		}, log.Named("chat"))
		chatRuntime = rt
		onEvict = rt.Forget
	}

	a.Registry = newRegistry(cfg, client, log)

	// A nil *StreamManager must not become a non-nil interface.
	var events service.EventPublisher
	if a.Journal != nil {
		events = a.Journal
	}
	a.Dispatcher = service.NewDispatcher(a.Store, a.Registry, events, service.DispatcherConfig{
		HandlerTimeout: cfg.HandlerTimeout,
	}, log.Named("dispatcher"))

	threads := service.NewThreadCache(service.ThreadCacheConfig{
		TTL:        cfg.ThreadTTL,
		MaxEntries: cfg.ThreadCacheMax,
		OnEvict:    onEvict,
	})
	a.FrontDesk = service.NewFrontDesk(chatRuntime, threads, log.Named("frontdesk"))

	log.Info("service desk ready",
		zap.String("case_store", cfg.CaseStore),
		zap.String("dispatch_mode", cfg.EffectiveDispatchMode()),
		zap.Bool("llm", client != nil),
		zap.Bool("journal", a.Journal != nil),
		zap.Strings("handlers", a.Registry.Describe()),
	)

	return a, nil
}

// Close releases the store and the NATS connection.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.logger.Warn("failed to close case store", zap.Error(err))
		}
	}
	if a.NATS != nil {
		a.NATS.Close()
	}
}

func openStore(ctx context.Context, cfg *config.Config, nc *natsclient.Client) (store.CaseStore, error) {
	switch cfg.CaseStore {
	case config.StoreSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}
		s, err := store.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite case store: %w", err)
		}
		return s, nil
	case config.StoreNATS:
		s, err := natsclient.NewKVCaseStore(ctx, nc)
		if err != nil {
			return nil, fmt.Errorf("open NATS case store: %w", err)
		}
		return s, nil
	default:
		return store.NewMemory(), nil
	}
}

// newLLMClient returns nil without error when no provider is configured.
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	if !cfg.LLMConfigured() {
		return nil, nil
	}
	return llm.NewClient(llm.Provider(cfg.DefaultLLM), llm.Options{
		APIKey:     cfg.LLMAPIKey(),
		Endpoint:   cfg.AzureOpenAIEndpoint,
		Deployment: cfg.AzureOpenAIDeployment,
	})
}

func newRegistry(cfg *config.Config, client llm.Client, log *logger.Logger) *tools.Registry {
	if cfg.EffectiveDispatchMode() != config.DispatchAgent {
		return tools.NewMockRegistry()
	}

	var rt agent.Runtime = agent.NewOfflineRuntime()
	if client != nil {
		rt = agent.NewLLMRuntime(client, agent.LLMRuntimeConfig{
			Model:        cfg.LLMModel,
			Instructions: agent.CaseInstructions,
			MaxTokens:    cfg.LLMMaxTokens,
		}, log.Named("cases"))
	}
	return tools.NewRegistry(tools.NewAgentTool(rt))
}
