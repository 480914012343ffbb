// Package assistant provides the FinBot chat backends.
package assistant

import (
	"context"
	"fmt"

	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/models"
)

// Assistant answers a chat message given its prior context.
type Assistant interface {
	Reply(ctx context.Context, req models.ChatRequest) (string, error)
	Health(ctx context.Context) error
}

// New selects the assistant backend named by cfg.Provider.
func New(ctx context.Context, cfg config.AssistantConfig, c *client.Client, logger *common.Logger) (Assistant, error) {
	switch cfg.Provider {
	case "", "remote":
		return NewRemote(c, logger), nil
	case "ark":
		return NewArk(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown assistant provider %q", cfg.Provider)
	}
}
