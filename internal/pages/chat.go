package pages

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/portfi/portfi-portal/internal/assistant"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/models"
)

// ErrDisconnected blocks sending while the chat service is unreachable.
var ErrDisconnected = errors.New("chat service is not connected")

// Scripted assistant messages.
const (
	WelcomeMessage = "Hi! I'm FinBot, your beginner-friendly financial assistant for India.\n" +
		"I can help you learn about SIPs, mutual funds, stocks, risk profiles, and more!\n" +
		"Go ahead, ask me anything about investing."
	FallbackReply = "Hmm... I couldn't understand that. Try rephrasing?"
	FailureReply  = "Something went wrong. Please try again."

	MsgMessageRequired = "Message is required"
)

// ContextWindow is the number of prior messages sent with each request.
const ContextWindow = 6

// ChatState is a snapshot of a ChatPage.
type ChatState struct {
	Messages  []models.ChatMessage `json:"messages"`
	Busy      bool                 `json:"busy"`
	Connected bool                 `json:"connected"`
	Checked   bool                 `json:"checked"`
}

// ChatPage is one browser's FinBot conversation. Messages are append-only.
type ChatPage struct {
	assistant assistant.Assistant
	logger    *common.Logger
	now       func() time.Time

	mu        sync.Mutex
	messages  []models.ChatMessage
	busy      bool
	connected bool
	checked   bool
}

// NewChatPage creates a conversation seeded with the welcome message.
func NewChatPage(a assistant.Assistant, logger *common.Logger) *ChatPage {
	p := &ChatPage{assistant: a, logger: logger, now: time.Now}
	p.messages = []models.ChatMessage{{
		Role:      models.RoleAssistant,
		Content:   WelcomeMessage,
		Timestamp: p.now(),
	}}
	return p
}

// Load runs the connection check unless the last check succeeded.
func (p *ChatPage) Load(ctx context.Context) {
	p.mu.Lock()
	ok := p.checked && p.connected
	p.mu.Unlock()
	if !ok {
		p.CheckConnection(ctx)
	}
}

// CheckConnection asks the assistant for its health and records the result.
func (p *ChatPage) CheckConnection(ctx context.Context) bool {
	err := p.assistant.Health(ctx)
	if err != nil && p.logger != nil {
		p.logger.Warn().Err(err).Msg("chat health check failed")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.checked = true
	p.connected = err == nil
	return p.connected
}

// Snapshot returns a copy of the page state.
func (p *ChatPage) Snapshot() ChatState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ChatState{
		Messages:  append([]models.ChatMessage(nil), p.messages...),
		Busy:      p.busy,
		Connected: p.connected,
		Checked:   p.checked,
	}
}

// Send appends input as a user message, asks the assistant and appends its
// reply. Assistant failures become a scripted reply rather than an error.
func (p *ChatPage) Send(ctx context.Context, input, userID string) (models.ChatMessage, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return models.ChatMessage{}, &ValidationError{Field: "message", Message: MsgMessageRequired}
	}

	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return models.ChatMessage{}, ErrBusy
	}
	if !p.connected {
		p.mu.Unlock()
		return models.ChatMessage{}, ErrDisconnected
	}

	history := trailing(p.messages, ContextWindow)
	p.messages = append(p.messages, models.ChatMessage{Role: models.RoleUser, Content: text, Timestamp: p.now()})
	p.busy = true
	p.mu.Unlock()

	reply, err := p.assistant.Reply(ctx, models.ChatRequest{Message: text, Context: history, UserID: userID})
	switch {
	case err != nil:
		if p.logger != nil {
			p.logger.Warn().Str("user_id", userID).Err(err).Msg("chat request failed")
		}
		reply = FailureReply
	case strings.TrimSpace(reply) == "":
		reply = FallbackReply
	}

	msg := models.ChatMessage{Role: models.RoleAssistant, Content: reply, Timestamp: p.now()}
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.busy = false
	p.mu.Unlock()
	return msg, nil
}

func trailing(messages []models.ChatMessage, n int) []models.ChatMessage {
	start := 0
	if len(messages) > n {
		start = len(messages) - n
	}
	out := make([]models.ChatMessage, len(messages)-start)
	for i, m := range messages[start:] {
		out[i] = models.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
