package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/models"
)

// SystemPrompt frames every conversation with the ark backend.
const SystemPrompt = "You are FinBot, a helpful and beginner-friendly financial assistant for Indian users. " +
	"Your role is to explain personal finance concepts in a clear, concise and engaging way, especially for beginners. " +
	"Do not provide personalized financial advice, only general educational information.\n\n" +
	"You specialize in:\n" +
	"- SIPs (Systematic Investment Plans)\n" +
	"- Mutual funds\n" +
	"- Stock market basics\n" +
	"- Risk profiles\n" +
	"- Investment options for beginners\n" +
	"- Tax-saving instruments in India\n\n" +
	"Always be friendly and informative. Use relatable analogies or simple examples if needed. " +
	"Even if the question is vague or incomplete, do your best to infer intent and provide an educational answer."

// HistoryLimit is the number of prior messages sent to the model.
const HistoryLimit = 5

// healthTTL is how long a successful model check is trusted.
const healthTTL = time.Minute

// ContinuePrompt replaces one-word acknowledgements.
const ContinuePrompt = "Please continue or tell me more about what you just explained."

var vagueReplies = map[string]bool{
	"yes": true, "ok": true, "okay": true, "sure": true, "yeah": true, "yep": true,
}

// invoker is satisfied by compose.Runnable.
type invoker interface {
	Invoke(ctx context.Context, input map[string]any, opts ...compose.Option) (*schema.Message, error)
}

// Ark talks to an Ark chat model directly through an eino chain.
type Ark struct {
	chain  invoker
	logger *common.Logger
	now    func() time.Time

	mu        sync.Mutex
	healthyAt time.Time
}

// NewArk builds the prompt chain for the configured Ark model.
func NewArk(ctx context.Context, cfg config.AssistantConfig, logger *common.Logger) (*Ark, error) {
	if cfg.ArkAPIKey == "" || cfg.ArkModel == "" {
		return nil, errors.New("ark assistant requires ark_api_key and ark_model")
	}

	arkCfg := &ark.ChatModelConfig{
		BaseURL: cfg.ArkBaseURL,
		Region:  cfg.ArkRegion,
		APIKey:  cfg.ArkAPIKey,
		Model:   cfg.ArkModel,
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		arkCfg.MaxTokens = &maxTokens
	}
	if cfg.Temperature > 0 {
		temperature := cfg.Temperature
		arkCfg.Temperature = &temperature
	}

	chatModel, err := ark.NewChatModel(ctx, arkCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Ark{chain: runnable, logger: logger, now: time.Now}, nil
}

// Reply runs the chain for req and returns the trimmed model output.
func (a *Ark) Reply(ctx context.Context, req models.ChatRequest) (string, error) {
	resp, err := a.chain.Invoke(ctx, buildInput(req))
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}
	reply := strings.TrimSpace(resp.Content)
	a.markHealthy()
	if a.logger != nil {
		a.logger.Debug().Str("user_id", req.UserID).Int("length", len(reply)).Msg("ark reply generated")
	}
	return reply, nil
}

// Health invokes the model with a one-word prompt. A success, from Health
// or Reply, is trusted for healthTTL. Failures are never cached.
func (a *Ark) Health(ctx context.Context) error {
	a.mu.Lock()
	fresh := !a.healthyAt.IsZero() && a.clock().Sub(a.healthyAt) < healthTTL
	a.mu.Unlock()
	if fresh {
		return nil
	}

	if _, err := a.chain.Invoke(ctx, buildInput(models.ChatRequest{Message: "ping"})); err != nil {
		return fmt.Errorf("ark model unreachable: %w", err)
	}
	a.markHealthy()
	return nil
}

func (a *Ark) markHealthy() {
	a.mu.Lock()
	a.healthyAt = a.clock()
	a.mu.Unlock()
}

func (a *Ark) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

func buildInput(req models.ChatRequest) map[string]any {
	return map[string]any{
		"system":  SystemPrompt,
		"history": historyMessages(req.Context),
		"query":   expandQuery(req.Message),
	}
}

func expandQuery(message string) string {
	message = strings.TrimSpace(message)
	if vagueReplies[strings.ToLower(message)] {
		return ContinuePrompt
	}
	return message
}

func historyMessages(messages []models.ChatMessage) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	start := 0
	if len(messages) > HistoryLimit {
		start = len(messages) - HistoryLimit
	}

	history := make([]*schema.Message, 0, len(messages)-start)
	for _, msg := range messages[start:] {
		switch msg.Role {
		case models.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case models.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
