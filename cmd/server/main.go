// ABOUTME: Main entry point for the docchat HTTP server
// ABOUTME: Wires configuration, adapters, registry, and the gin API together
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/harper/docchat/internal/api"
	"github.com/harper/docchat/internal/charm"
	"github.com/harper/docchat/internal/config"
	"github.com/harper/docchat/internal/grounding"
	"github.com/harper/docchat/internal/llm"
	"github.com/harper/docchat/internal/registry"
	"github.com/harper/docchat/internal/service"
)

func main() {
	// Load .env file if it exists (for credentials)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := grounding.NewClient(&grounding.Config{
		APIURL:         cfg.GroundingAPIURL,
		AuthURL:        cfg.GroundingAuthURL,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		ResourceGroup:  cfg.ResourceGroup,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        cfg.RequestTimeout,
		MaxAttempts:    cfg.MaxAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		RateLimitRPS:   cfg.GroundingRateLimitRPS,
	})
	if err != nil {
		log.Fatalf("Failed to initialize grounding store client: %v", err)
	}

	generator, err := llm.NewClient(&llm.Config{
		APIKey:         cfg.LLMAPIKey,
		BaseURL:        cfg.LLMBaseURL,
		Timeout:        cfg.RequestTimeout,
		MaxAttempts:    cfg.MaxAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
	})
	if err != nil {
		log.Fatalf("Failed to initialize generation client: %v", err)
	}

	var reg registry.Registry
	if cfg.RegistryBackend == "charm" {
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: true,
		})
		if err != nil {
			log.Fatalf("Failed to initialize charm registry: %v", err)
		}
		defer client.Close()
		reg = registry.NewCharm(client)
	} else {
		reg = registry.NewMemory()
	}

	svc := service.New(store, generator, reg, service.Options{
		DefaultChunkSize: cfg.DefaultChunkSize,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		AllowedModels:    cfg.AllowedModels,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.NewServer(svc, cfg).Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
