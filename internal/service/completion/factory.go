package completion

import (
	"context"
	"fmt"

	"github.com/promptly-app/promptly/backend/internal/config"
)

// NewClient creates the completion client selected by configuration.
func NewClient(ctx context.Context, cfg config.CompletionConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderArk:
		return NewArk(ctx, cfg.Ark)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
