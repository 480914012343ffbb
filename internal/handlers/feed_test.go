package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/portfi/portfi-portal/internal/market"
)

func startFeed(t *testing.T, h *FeedHandler) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialFeed(t *testing.T, interval time.Duration) (*websocket.Conn, *market.Catalog) {
	t.Helper()
	catalog := market.NewCatalog()
	conn := dial(t, startFeed(t, NewFeedHandler(nil, catalog, interval, nil)), nil)
	return conn, catalog
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) FeedFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame FeedFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestFeedHandler_SendsCurrentThenAdvances(t *testing.T) {
	conn, catalog := dialFeed(t, 50*time.Millisecond)
	items := catalog.All()

	first := readFrame(t, conn)
	if first.Instrument.Symbol != items[0].Symbol || !first.Autoplay {
		t.Errorf("unexpected first frame %+v", first)
	}

	second := readFrame(t, conn)
	if second.Instrument.Symbol != items[1].Symbol || !second.Autoplay {
		t.Errorf("unexpected second frame %+v", second)
	}
}

func TestFeedHandler_ManualNavigationStopsAutoplay(t *testing.T) {
	conn, catalog := dialFeed(t, time.Hour)
	items := catalog.All()

	readFrame(t, conn)

	if err := conn.WriteJSON(map[string]string{"action": "prev"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	frame := readFrame(t, conn)
	if frame.Instrument.Symbol != items[len(items)-1].Symbol {
		t.Errorf("expected wrap to last instrument, got %s", frame.Instrument.Symbol)
	}
	if frame.Autoplay {
		t.Error("manual navigation must stop autoplay")
	}

	conn.WriteJSON(map[string]string{"action": "next"})
	frame = readFrame(t, conn)
	if frame.Instrument.Symbol != items[0].Symbol {
		t.Errorf("expected first instrument, got %s", frame.Instrument.Symbol)
	}
}

func TestFeedHandler_PingsKeepIdleFeedAlive(t *testing.T) {
	h := NewFeedHandler(nil, market.NewCatalog(), 50*time.Millisecond, nil)
	h.pongWait = 200 * time.Millisecond
	conn := dial(t, startFeed(t, h), nil)

	deadline := time.Now().Add(5 * h.pongWait)
	frames := 0
	for time.Now().Before(deadline) {
		readFrame(t, conn)
		frames++
	}
	if frames < 10 {
		t.Errorf("expected a steady stream of frames, got %d", frames)
	}
}

func TestFeedHandler_OriginPolicy(t *testing.T) {
	url := startFeed(t, NewFeedHandler(nil, market.NewCatalog(), time.Hour, []string{"https://app.example.com/"}))
	host := strings.TrimPrefix(url, "ws://")

	tests := []struct {
		origin string
		ok     bool
	}{
		{"http://" + host, true},
		{"https://app.example.com", true},
		{"https://evil.example.com", false},
	}
	for _, tt := range tests {
		conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {tt.origin}})
		if tt.ok {
			if err != nil {
				t.Errorf("origin %s: expected upgrade, got %v", tt.origin, err)
				continue
			}
			conn.Close()
			continue
		}
		if err == nil {
			conn.Close()
			t.Errorf("origin %s: expected rejection", tt.origin)
			continue
		}
		if resp == nil || resp.StatusCode != http.StatusForbidden {
			t.Errorf("origin %s: expected 403, got %v", tt.origin, resp)
		}
	}
}
