package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/models"
)

// ErrUnhealthy is returned when the chat service answers but is not healthy.
var ErrUnhealthy = errors.New("chat service is not healthy")

// Remote forwards chat requests to the external chat service.
type Remote struct {
	client *client.Client
	logger *common.Logger
}

// NewRemote creates a Remote assistant.
func NewRemote(c *client.Client, logger *common.Logger) *Remote {
	return &Remote{client: c, logger: logger}
}

// Reply sends req to POST /chat.
func (r *Remote) Reply(ctx context.Context, req models.ChatRequest) (string, error) {
	return r.client.Chat(ctx, req)
}

// Health checks GET /health.
func (r *Remote) Health(ctx context.Context) error {
	status, err := r.client.Health(ctx)
	if err != nil {
		return err
	}
	if !status.Healthy() {
		if r.logger != nil {
			r.logger.Warn().Str("status", status.Status).Msg("chat service reported unhealthy")
		}
		return fmt.Errorf("%w: status %q", ErrUnhealthy, status.Status)
	}
	return nil
}
