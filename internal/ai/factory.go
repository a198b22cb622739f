package ai

import (
	"context"
	"strings"

	"github.com/fdg312/nutri-hub/internal/config"
)

// NewProvider builds the provider selected by AI_MODE.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))
	if mode == "" {
		mode = config.AIModeMock
	}

	switch mode {
	case config.AIModeOpenAI:
		return NewOpenAIProvider(cfg), nil
	case config.AIModeGemini:
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return NewMockProvider(), nil
	}
}
