// ABOUTME: Shared wiring and formatting helpers for CLI commands
// ABOUTME: Builds the service stack from environment configuration
package commands

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/harper/docchat/internal/charm"
	"github.com/harper/docchat/internal/config"
	"github.com/harper/docchat/internal/grounding"
	"github.com/harper/docchat/internal/llm"
	"github.com/harper/docchat/internal/registry"
	"github.com/harper/docchat/internal/service"
)

// buildService assembles the full stack from environment configuration.
// The returned cleanup function closes the registry backend when one needs
// closing; callers defer it.
func buildService() (*service.Service, *config.Config, func(), error) {
	// Load .env for credentials
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading configuration: %w", err)
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
		return nil, nil, nil, fmt.Errorf("initializing grounding store client: %w", err)
	}

	generator, err := llm.NewClient(&llm.Config{
		APIKey:         cfg.LLMAPIKey,
		BaseURL:        cfg.LLMBaseURL,
		Timeout:        cfg.RequestTimeout,
		MaxAttempts:    cfg.MaxAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initializing generation client: %w", err)
	}

	reg, cleanup, err := buildRegistry(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	svc := service.New(store, generator, reg, service.Options{
		DefaultChunkSize: cfg.DefaultChunkSize,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		AllowedModels:    cfg.AllowedModels,
	})
	return svc, cfg, cleanup, nil
}

func buildRegistry(cfg *config.Config) (registry.Registry, func(), error) {
	if cfg.RegistryBackend == "charm" {
		client, err := charm.NewClient(&charm.Config{
			Host:     cfg.CharmHost,
			DBName:   cfg.CharmDBName,
			AutoSync: true,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("initializing charm registry: %w", err)
		}
		return registry.NewCharm(client), func() { _ = client.Close() }, nil
	}
	return registry.NewMemory(), func() {}, nil
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}
