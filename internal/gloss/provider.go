package gloss

import (
	"context"
	"fmt"

	"github.com/jusunglee/typetoreveal/internal/anthropic"
	"github.com/jusunglee/typetoreveal/internal/google"
	"github.com/jusunglee/typetoreveal/internal/llm"
)

// ProviderConfig selects the language model used for meanings. A provider
// whose API key is empty leaves meanings disabled.
type ProviderConfig struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	GoogleAPIKey    string
}

// NewClient builds the configured client. It returns a nil client, and no
// error, when the selected provider has no API key.
func NewClient(ctx context.Context, cfg ProviderConfig) (llm.Client, string, error) {
	switch cfg.Provider {
	case llm.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, "", nil
		}
		c := anthropic.NewClient(cfg.AnthropicAPIKey, anthropic.Model(cfg.Model))
		return c, c.Model(), nil
	case llm.ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			return nil, "", nil
		}
		c, err := google.NewClient(ctx, cfg.GoogleAPIKey, google.Model(cfg.Model))
		if err != nil {
			return nil, "", fmt.Errorf("creating Google client: %w", err)
		}
		return c, c.Model(), nil
	case "":
		return nil, "", nil
	default:
		return nil, "", fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
