package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/models"
)

const (
	feedWriteWait = 10 * time.Second
	feedPongWait  = 60 * time.Second
)

// FeedHandler streams the featured instrument rotation over a websocket.
// Every connection gets its own rotator.
type FeedHandler struct {
	logger   *common.Logger
	catalog  *market.Catalog
	interval time.Duration
	pongWait time.Duration
	origins  map[string]bool
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new rotation feed handler. Browsers may connect
// from the portal's own host or from one of allowedOrigins.
func NewFeedHandler(logger *common.Logger, catalog *market.Catalog, interval time.Duration, allowedOrigins []string) *FeedHandler {
	h := &FeedHandler{
		logger:   logger,
		catalog:  catalog,
		interval: interval,
		pongWait: feedPongWait,
		origins:  make(map[string]bool, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		h.origins[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts requests without an Origin header, same-host origins
// and configured origins.
func (h *FeedHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return h.origins[strings.ToLower(strings.TrimSuffix(origin, "/"))]
}

// FeedFrame is one message sent to the browser.
type FeedFrame struct {
	Instrument models.Instrument `json:"instrument"`
	Autoplay   bool              `json:"autoplay"`
}

// feedCommand is one message read from the browser: next, prev or pause.
type feedCommand struct {
	Action string `json:"action"`
}

// ServeHTTP handles GET /ws/rotation.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn().Str("error", err.Error()).Msg("rotation feed upgrade failed")
		}
		return
	}
	defer conn.Close()

	items := h.catalog.All()
	if len(items) == 0 {
		return
	}
	rot := market.NewRotator(items, h.interval)
	defer rot.Stop()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates := rot.Start(ctx)
	commands := make(chan string)
	go h.readCommands(ctx, conn, commands, cancel)

	ping := time.NewTicker(h.pongWait * 9 / 10)
	defer ping.Stop()

	if err := h.send(conn, rot); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case _, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
		case action := <-commands:
			switch action {
			case "next":
				rot.Next()
			case "prev":
				rot.Prev()
			case "pause":
				rot.Stop()
			default:
				continue
			}
		}
		if err := h.send(conn, rot); err != nil {
			return
		}
	}
}

// readCommands is the only reader on conn. It cancels the feed when the
// browser goes away.
func (h *FeedHandler) readCommands(ctx context.Context, conn *websocket.Conn, out chan<- string, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})
	for {
		var cmd feedCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && h.logger != nil {
				h.logger.Debug().Str("error", err.Error()).Msg("rotation feed closed")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
		select {
		case out <- cmd.Action:
		case <-ctx.Done():
			return
		}
	}
}

func (h *FeedHandler) send(conn *websocket.Conn, rot *market.Rotator) error {
	_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return conn.WriteJSON(FeedFrame{Instrument: rot.Current(), Autoplay: rot.Autoplay()})
}
