package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ChatHandler serves the FinBot assistant page and its API.
type ChatHandler struct {
	logger    *common.Logger
	pages     *PageHandler
	workspace *pages.Registry
	markdown  goldmark.Markdown
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *common.Logger, p *PageHandler, ws *pages.Registry) *ChatHandler {
	return &ChatHandler{
		logger:    logger,
		pages:     p,
		workspace: ws,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// chatEntry is a message prepared for the template.
type chatEntry struct {
	Role models.Role
	HTML template.HTML
	Time string
}

// HandlePage serves GET /assistant. Every page load checks the backend.
func (h *ChatHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ws := h.workspace.Resolve(w, r)
	ws.Chat.CheckConnection(r.Context())
	state := ws.Chat.Snapshot()

	data := h.pages.baseData(r, "assistant")
	data["Messages"] = h.entries(state.Messages)
	data["Busy"] = state.Busy
	data["Connected"] = state.Connected
	h.pages.render(w, http.StatusOK, "assistant.html", data)
}

// HandleForm handles POST /assistant for browsers without script.
func (h *ChatHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ws := h.workspace.Resolve(w, r)
	ws.Chat.Load(r.Context())
	if _, err := ws.Chat.Send(r.Context(), r.FormValue("message"), userID(r)); err != nil && h.logger != nil {
		h.logger.Debug().Str("error", err.Error()).Msg("chat form submission rejected")
	}
	http.Redirect(w, r, "/assistant", http.StatusSeeOther)
}

type sendRequest struct {
	Message string `json:"message"`
}

// HandleSend serves POST /api/chat.
func (h *ChatHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	var req sendRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws := h.workspace.Resolve(w, r)
	ws.Chat.Load(r.Context())
	reply, err := ws.Chat.Send(r.Context(), req.Message, userID(r))
	if err != nil {
		writePageError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reply": reply,
		"html":  h.render(reply),
	})
}

// HandleMessages serves GET /api/chat/messages.
func (h *ChatHandler) HandleMessages(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ws := h.workspace.Resolve(w, r)
	ws.Chat.Load(r.Context())
	WriteJSON(w, http.StatusOK, ws.Chat.Snapshot())
}

func (h *ChatHandler) entries(messages []models.ChatMessage) []chatEntry {
	out := make([]chatEntry, len(messages))
	for i, m := range messages {
		out[i] = chatEntry{Role: m.Role, HTML: h.render(m), Time: m.Timestamp.Format("15:04")}
	}
	return out
}

// render converts assistant markdown to HTML; user text is escaped as is.
// Raw HTML in markdown is dropped by goldmark's default renderer.
func (h *ChatHandler) render(m models.ChatMessage) template.HTML {
	if m.Role != models.RoleAssistant {
		return template.HTML(template.HTMLEscapeString(m.Content))
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(m.Content), &buf); err != nil {
		if h.logger != nil {
			h.logger.Warn().Str("error", err.Error()).Msg("failed to render assistant markdown")
		}
		return template.HTML(template.HTMLEscapeString(m.Content))
	}
	return template.HTML(buf.String())
}

func userID(r *http.Request) string {
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		return id.ID
	}
	return ""
}
