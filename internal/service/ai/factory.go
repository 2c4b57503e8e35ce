package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/voicedesk/internal/config"
)

// NewGenerator picks the generator backend named by cfg.Conversation.GeneratorBackend.
// "auto" prefers Ark, then an OpenAI-compatible endpoint, then the rule generator.
// A model backend that fails to initialize degrades to the rule generator.
func NewGenerator(ctx context.Context, cfg *config.Config, logger zerolog.Logger) Generator {
	backend := strings.ToLower(strings.TrimSpace(cfg.Conversation.GeneratorBackend))
	if backend == "" || backend == "auto" {
		switch {
		case cfg.AI.Enabled():
			backend = "ark"
		case cfg.OpenAI.Enabled():
			backend = "openai"
		default:
			backend = "rule"
		}
	}

	gen, err := newBackend(ctx, cfg, backend)
	if err != nil {
		logger.Warn().Err(err).Str("backend", backend).Msg("generator unavailable, falling back to rule-based replies")
		return NewRuleGenerator()
	}

	logger.Info().Str("backend", gen.Backend()).Msg("response generator ready")
	return gen
}

func newBackend(ctx context.Context, cfg *config.Config, backend string) (Generator, error) {
	switch backend {
	case "rule":
		return NewRuleGenerator(), nil
	case "ark":
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return NewChainGenerator(ctx, chatModel, "ark")
	case "openai":
		return NewOpenAIGenerator(OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.AI.Temperature,
			MaxTokens:   cfg.AI.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown generator backend %q", backend)
	}
}
