package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/portfi/portfi-portal/internal/config"
	"github.com/portfi/portfi-portal/internal/models"
)

func newTestClient(url string) *Client {
	return New(config.BackendConfig{ChatURL: url, AnalysisURL: url, TimeoutSeconds: 10}, nil)
}

func TestHealth_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Healthy() {
		t.Errorf("expected healthy, got %q", status.Status)
	}
}

func TestChat_SendsMessageContextAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body.Message != "What is an ETF?" || body.UserID != "u1" || len(body.Context) != 1 {
			t.Errorf("unexpected request body %+v", body)
		}
		w.Write([]byte(`{"reply":"An exchange traded fund."}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), models.ChatRequest{
		Message: "What is an ETF?",
		Context: []models.ChatMessage{{Role: models.RoleAssistant, Content: "Hi"}},
		UserID:  "u1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "An exchange traded fund." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestChat_CustomReplyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"response":"nested"}}`))
	}))
	defer srv.Close()

	c := New(config.BackendConfig{ChatURL: srv.URL, ReplyPath: "$.data.response"}, nil)
	reply, err := c.Chat(context.Background(), models.ChatRequest{Message: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "nested" {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestChat_MissingReplyIsFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"wrong field"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), models.ChatRequest{Message: "hi"})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestChat_EmptyReplyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reply":""}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), models.ChatRequest{Message: "hi"})
	if err != nil || reply != "" {
		t.Errorf("expected empty reply without error, got %q, %v", reply, err)
	}
}

func TestAnalyzePortfolio_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze-portfolio" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body models.AnalysisRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Stocks) != 3 || body.Period != "1y" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Write([]byte(`{"prediction":0.12,"metrics":{"mse":0.01,"rmse":0.1,"mae":0.08},"portfolio_metrics":{"expected_return":0.15,"volatility":0.2,"sharpe_ratio":0.75}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).AnalyzePortfolio(context.Background(), models.AnalysisRequest{
		Stocks:  []string{"AAPL", "MSFT", "GOOGL"},
		Weights: []float64{0.3, 0.3, 0.4},
		Period:  "1y",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prediction != 0.12 || res.Metrics.RMSE != 0.1 || res.PortfolioMetrics.SharpeRatio != 0.75 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestAnalyzePortfolio_ServiceErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Weights must sum to 1"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzePortfolio(context.Background(), models.AnalysisRequest{})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.Kind != KindStatus || te.StatusCode != 400 {
		t.Errorf("unexpected error %+v", te)
	}
	if te.Error() != "Weights must sum to 1" {
		t.Errorf("expected service message, got %q", te.Error())
	}
}

func TestAnalyzePortfolio_StatusWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzePortfolio(context.Background(), models.AnalysisRequest{})
	if err == nil || err.Error() != "Server returned status 500" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestAnalyzePortfolio_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzePortfolio(context.Background(), models.AnalysisRequest{})
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestAnalyzePrices_ReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio-analysis" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		if body["window_size"] != float64(3) {
			t.Errorf("expected window_size 3, got %v", body["window_size"])
		}
		w.Write([]byte(`{"predictions":{"AAPL":[1,2]}}`))
	}))
	defer srv.Close()

	raw, err := newTestClient(srv.URL).AnalyzePrices(context.Background(), []string{"AAPL"},
		map[string][]float64{"AAPL": {1, 2, 3, 4}}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"predictions":{"AAPL":[1,2]}}` {
		t.Errorf("unexpected body %s", raw)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Health(context.Background())
	if !IsKind(err, KindConnectionRefused) {
		t.Fatalf("expected connection refused, got %v", err)
	}
	if err.Error() != MsgConnectionRefused {
		t.Errorf("expected friendly message, got %q", err.Error())
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).Health(ctx)
	if !IsKind(err, KindTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if err.Error() != MsgTimeout {
		t.Errorf("expected timeout message, got %q", err.Error())
	}
}
