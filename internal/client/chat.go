package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
	"github.com/portfi/portfi-portal/internal/models"
)

// Health checks the chat service. GET /health -> {"status": "healthy"}
func (c *Client) Health(ctx context.Context) (models.HealthStatus, error) {
	var status models.HealthStatus

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.chatURL+"/health", nil)
	if err != nil {
		return status, fmt.Errorf("failed to build health request: %w", err)
	}
	body, err := c.do(req, "health")
	if err != nil {
		return status, err
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return status, &FormatError{Op: "health", Err: err}
	}
	return status, nil
}

// Chat sends a message to FinBot. POST /chat -> {"reply": "..."}
// The reply is located with the configured JSONPath.
func (c *Client) Chat(ctx context.Context, in models.ChatRequest) (string, error) {
	body, err := c.postJSON(ctx, "chat", c.chatURL+"/chat", in)
	if err != nil {
		return "", err
	}
	return extractReply(body, c.replyPath)
}

func extractReply(body []byte, path string) (string, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", &FormatError{Op: "chat", Err: err}
	}

	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return "", &FormatError{Op: "chat", Err: fmt.Errorf("reply field %s: %w", path, err)}
	}
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return "", &FormatError{Op: "chat", Err: fmt.Errorf("reply field %s matched nothing", path)}
		}
		v = list[0]
	}

	reply, ok := v.(string)
	if !ok {
		return "", &FormatError{Op: "chat", Err: fmt.Errorf("reply field %s is %T, not a string", path, v)}
	}
	return reply, nil
}
