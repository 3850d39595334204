package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	httpadapter "github.com/jfernandezp/agente-ia-uni/internal/adapters/http"
	"github.com/jfernandezp/agente-ia-uni/internal/adapters/identity"
	"github.com/jfernandezp/agente-ia-uni/internal/adapters/llm"
	fsquota "github.com/jfernandezp/agente-ia-uni/internal/adapters/quotastore/firestore"
	memquota "github.com/jfernandezp/agente-ia-uni/internal/adapters/quotastore/memory"
	sqlquota "github.com/jfernandezp/agente-ia-uni/internal/adapters/quotastore/sqlite"
	"github.com/jfernandezp/agente-ia-uni/internal/agent"
	"github.com/jfernandezp/agente-ia-uni/internal/config"
	"github.com/jfernandezp/agente-ia-uni/internal/domain"
	"github.com/jfernandezp/agente-ia-uni/internal/memory"
	"github.com/jfernandezp/agente-ia-uni/internal/observability"
	"github.com/jfernandezp/agente-ia-uni/internal/quota"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agente-api",
		Short:         "Conversational assistant API with image generation and daily quotas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var configPath string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVar(&configPath, "config", "", "optional YAML config file layered over env vars")

	root.AddCommand(serve)
	return root
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := observability.Logger()

	text, image, err := buildBackends(ctx, cfg)
	if err != nil {
		return err
	}

	store, closeStore, err := buildQuotaStore(ctx, cfg)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	gate := quota.NewGate(store, cfg.MaxImagesPerDay)
	memories := memory.NewManager(cfg.MaxSessions, cfg.MaxTurns)
	ag := agent.New(text, image, gate, memories, cfg.RequestTimeout)

	handler := httpadapter.NewServer(ag, identity.NewResolver())

	addr := ":" + cfg.Port
	log.Info("agente-api listening",
		"addr", addr,
		"provider", cfg.Provider,
		"quota_backend", cfg.QuotaBackend,
		"max_images_per_day", cfg.MaxImagesPerDay)

	return http.ListenAndServe(addr, handler)
}

func buildBackends(ctx context.Context, cfg *config.Config) (domain.TextGenerator, domain.ImageGenerator, error) {
	log := observability.Logger()

	switch cfg.Provider {
	case config.ProviderMock:
		log.Info("using mock inference backends")
		return llm.NewMockText(), llm.NewMockImage(), nil

	case config.ProviderOpenAI:
		log.Info("using openai-compatible text backend", "model", cfg.TextModel)
		text, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.TextModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, nil, err
		}
		// Image generation stays on Vertex when a project is
		// configured; otherwise the mock backend fills in.
		if cfg.GCPProjectID != "" {
			vertex, err := llm.NewVertexClient(ctx, vertexConfig(cfg))
			if err != nil {
				return nil, nil, err
			}
			return text, vertex, nil
		}
		log.Warn("no GCP project configured; image generation uses the mock backend")
		return text, llm.NewMockImage(), nil

	default:
		log.Info("using vertex backends",
			"text_model", cfg.TextModel,
			"image_model", cfg.ImageModel)
		vertex, err := llm.NewVertexClient(ctx, vertexConfig(cfg))
		if err != nil {
			return nil, nil, err
		}
		return vertex, vertex, nil
	}
}

func vertexConfig(cfg *config.Config) llm.VertexConfig {
	return llm.VertexConfig{
		ProjectID:  cfg.GCPProjectID,
		Location:   cfg.GCPLocation,
		TextModel:  cfg.TextModel,
		ImageModel: cfg.ImageModel,
	}
}

func buildQuotaStore(ctx context.Context, cfg *config.Config) (domain.QuotaStore, func() error, error) {
	log := observability.Logger()

	switch cfg.QuotaBackend {
	case config.QuotaFirestore:
		log.Info("using firestore quota store",
			"project", cfg.GCPProjectID,
			"collection", cfg.QuotaCollection)
		store, err := fsquota.NewStore(ctx, cfg.GCPProjectID, cfg.QuotaCollection)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.QuotaSQLite:
		log.Info("using sqlite quota store", "path", cfg.QuotaDBPath)
		store, err := sqlquota.New(cfg.QuotaDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		log.Info("using in-memory quota store")
		return memquota.NewStore(), nil, nil
	}
}
