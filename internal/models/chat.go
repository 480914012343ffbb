package models

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in a chat transcript.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string        `json:"message"`
	Context []ChatMessage `json:"context,omitempty"`
	UserID  string        `json:"userId,omitempty"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}
