// Package client talks to the PortFi chat and portfolio analytics services.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
)

const maxResponseBytes = 1 << 20

var errInvalidJSON = errors.New("response is not valid JSON")

// Client is the API client shared by the pages, the CLI and the MCP tools.
// It never retries and never caches.
type Client struct {
	chatURL     string
	analysisURL string
	replyPath   string
	httpClient  *http.Client
	logger      *common.Logger
}

// New creates a client for the configured backend.
func New(cfg config.BackendConfig, logger *common.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	replyPath := cfg.ReplyPath
	if replyPath == "" {
		replyPath = "$.reply"
	}
	return &Client{
		chatURL:     strings.TrimRight(cfg.ChatURL, "/"),
		analysisURL: strings.TrimRight(cfg.AnalysisURL, "/"),
		replyPath:   replyPath,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		te := classify(op, err)
		if c.logger != nil {
			c.logger.Warn().Str("op", op).Str("kind", te.Kind.String()).Str("error", err.Error()).Msg("backend request failed")
		}
		return nil, te
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classify(op, err)
	}

	if c.logger != nil {
		c.logger.Debug().Str("op", op).Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("backend request completed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(op, resp.StatusCode, body)
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, op, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op)
}
