package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/portfi/portfi-portal/internal/auth"
	"github.com/portfi/portfi-portal/internal/market"
	"github.com/portfi/portfi-portal/internal/models"
	"github.com/portfi/portfi-portal/internal/pages"
)

var testSecret = []byte("mcp-secret")

type fakeAssistant struct {
	reply     string
	err       error
	healthErr error
	last      models.ChatRequest
}

func (f *fakeAssistant) Reply(_ context.Context, req models.ChatRequest) (string, error) {
	f.last = req
	return f.reply, f.err
}

func (f *fakeAssistant) Health(context.Context) error { return f.healthErr }

type fakeAnalyzer struct {
	last   models.AnalysisRequest
	result *models.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	f.last = req
	return f.result, f.err
}

func callRequest(args map[string]interface{}) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{Arguments: args},
	}
}

func resultText(t *testing.T, r *mcpgo.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty result")
	}
	return r.Content[0].(mcpgo.TextContent).Text
}

func sessionToken(t *testing.T, id string) string {
	t.Helper()
	token, err := auth.MintSessionToken(&models.Identity{ID: id, Email: id + "@example.com"}, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

// --- withUserContext ---

func TestWithUserContext_Cookie(t *testing.T) {
	req := httptest.NewRequest("POST", "/mcp", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: sessionToken(t, "user42")})

	h := &Handler{jwtSecret: testSecret}
	uc, ok := GetUserContext(h.withUserContext(req).Context())
	if !ok || uc.UserID != "user42" || uc.Email != "user42@example.com" {
		t.Errorf("unexpected user context %+v ok=%v", uc, ok)
	}
}

func TestWithUserContext_BearerWins(t *testing.T) {
	req := httptest.NewRequest("POST", "/mcp", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "bearer"))
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: sessionToken(t, "cookie")})

	h := &Handler{jwtSecret: testSecret}
	uc, _ := GetUserContext(h.withUserContext(req).Context())
	if uc.UserID != "bearer" {
		t.Errorf("expected bearer identity, got %s", uc.UserID)
	}
}

func TestWithUserContext_Rejects(t *testing.T) {
	other, _ := auth.MintSessionToken(&models.Identity{ID: "x"}, []byte("other"), time.Hour)
	tests := map[string]string{
		"garbage":      "not-a-jwt",
		"wrong secret": other,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/mcp", nil)
			req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
			h := &Handler{jwtSecret: testSecret}
			if _, ok := GetUserContext(h.withUserContext(req).Context()); ok {
				t.Error("expected no user context")
			}
		})
	}
}

func TestHandler_UnauthorizedWithoutSession(t *testing.T) {
	h := NewHandler(Deps{}, testSecret, nil)

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(`{}`))
	req.Host = "portal.local\r\nX-Evil: 1"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if strings.ContainsAny(w.Header().Get("WWW-Authenticate"), "\r\n") {
		t.Error("host must be sanitized")
	}
}

func TestHandler_ListsTools(t *testing.T) {
	h := NewHandler(Deps{
		Assistant: &fakeAssistant{},
		Analyzer:  &fakeAnalyzer{},
		Provider:  market.NewProvider(),
		Catalog:   market.NewCatalog(),
	}, testSecret, nil)

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "user1"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	for _, name := range []string{"ask_finbot", "analyze_portfolio", "market_overview", "search_instrument", "get_version"} {
		if !strings.Contains(w.Body.String(), `"`+name+`"`) {
			t.Errorf("expected tool %s in list", name)
		}
	}
}

// --- tool handlers ---

func TestAskHandler(t *testing.T) {
	a := &fakeAssistant{reply: "SIP stands for Systematic Investment Plan."}
	h := AskHandler(a, nil)

	ctx := WithUserContext(t.Context(), UserContext{UserID: "u1"})
	result, err := h(ctx, callRequest(map[string]interface{}{"message": "what is a sip"}))
	if err != nil || result.IsError {
		t.Fatalf("unexpected failure %v %+v", err, result)
	}
	if resultText(t, result) != a.reply {
		t.Errorf("unexpected reply %q", resultText(t, result))
	}
	if a.last.UserID != "u1" || a.last.Message != "what is a sip" {
		t.Errorf("unexpected request %+v", a.last)
	}
}

func TestAskHandler_Failures(t *testing.T) {
	result, _ := AskHandler(&fakeAssistant{}, nil)(t.Context(), callRequest(map[string]interface{}{"message": " "}))
	if !result.IsError || resultText(t, result) != pages.MsgMessageRequired {
		t.Errorf("expected message required error, got %+v", result)
	}

	result, _ = AskHandler(&fakeAssistant{err: errors.New("boom")}, nil)(t.Context(), callRequest(map[string]interface{}{"message": "hi"}))
	if !result.IsError || resultText(t, result) != pages.FailureReply {
		t.Errorf("expected failure reply, got %+v", result)
	}

	result, _ = AskHandler(&fakeAssistant{reply: ""}, nil)(t.Context(), callRequest(map[string]interface{}{"message": "hi"}))
	if result.IsError || resultText(t, result) != pages.FallbackReply {
		t.Errorf("expected fallback reply, got %+v", result)
	}
}

func TestAnalyzeHandler(t *testing.T) {
	an := &fakeAnalyzer{result: &models.AnalysisResult{Prediction: 120}}
	h := AnalyzeHandler(an, nil)

	result, err := h(t.Context(), callRequest(map[string]interface{}{
		"tickers": []interface{}{"aapl", "msft"},
		"weights": []interface{}{0.7, 0.3},
		"period":  "1m",
	}))
	if err != nil || result.IsError {
		t.Fatalf("unexpected failure %v %+v", err, result)
	}
	var got models.AnalysisResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Prediction != 120 {
		t.Errorf("unexpected prediction %v", got.Prediction)
	}
	if an.last.Period != "1m" || an.last.Stocks[0] != "AAPL" || an.last.Weights[1] != 0.3 {
		t.Errorf("unexpected request %+v", an.last)
	}
}

func TestAnalyzeHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"weights sum", map[string]interface{}{"tickers": []interface{}{"A", "B"}, "weights": []interface{}{0.3, 0.3}}, pages.MsgWeightsSum},
		{"period", map[string]interface{}{"tickers": []interface{}{"A"}, "weights": []interface{}{1.0}, "period": "5y"}, pages.MsgInvalidPeriod},
		{"length", map[string]interface{}{"tickers": []interface{}{"A", "B"}, "weights": []interface{}{1.0}}, "same length"},
		{"missing", map[string]interface{}{}, "tickers"},
		{"not numbers", map[string]interface{}{"tickers": []interface{}{"A"}, "weights": []interface{}{"one"}}, "not a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			an := &fakeAnalyzer{}
			result, _ := AnalyzeHandler(an, nil)(t.Context(), callRequest(tt.args))
			if !result.IsError || !strings.Contains(resultText(t, result), tt.want) {
				t.Errorf("expected error containing %q, got %+v", tt.want, result)
			}
			if an.last.Stocks != nil {
				t.Error("analyzer must not be called")
			}
		})
	}
}

func TestMarketOverviewHandler(t *testing.T) {
	result, _ := MarketOverviewHandler(market.NewProvider())(t.Context(), callRequest(nil))
	var out marketOverview
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Overview.Nifty == 0 || len(out.Indices) == 0 || len(out.Trending) == 0 {
		t.Errorf("unexpected overview %+v", out)
	}
}

func TestSearchHandler(t *testing.T) {
	h := SearchHandler(market.NewCatalog())

	result, _ := h(t.Context(), callRequest(map[string]interface{}{"query": "infy"}))
	if result.IsError || !strings.Contains(resultText(t, result), `"symbol":"INFY"`) {
		t.Errorf("unexpected result %+v", result)
	}

	result, _ = h(t.Context(), callRequest(map[string]interface{}{"query": "nope"}))
	if !result.IsError || !strings.Contains(resultText(t, result), pages.MsgNotFound) {
		t.Errorf("expected not found, got %+v", result)
	}
}

func TestVersionHandler(t *testing.T) {
	result, _ := VersionHandler(&fakeAssistant{})(t.Context(), callRequest(nil))
	var out versionResult
	json.Unmarshal([]byte(resultText(t, result)), &out)
	if out.Backend != "ok" || out.Portal.Version == "" {
		t.Errorf("unexpected version %+v", out)
	}

	result, _ = VersionHandler(&fakeAssistant{healthErr: errors.New("down")})(t.Context(), callRequest(nil))
	json.Unmarshal([]byte(resultText(t, result)), &out)
	if out.Backend != "down" {
		t.Errorf("expected down backend, got %s", out.Backend)
	}
}
