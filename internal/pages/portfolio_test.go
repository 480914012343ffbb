package pages

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/portfi/portfi-portal/internal/client"
	"github.com/portfi/portfi-portal/internal/models"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	last    models.AnalysisRequest
	result  *models.AnalysisResult
	err     error
	release chan struct{}
	entered chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error) {
	f.mu.Lock()
	f.calls++
	f.last = req
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.result, f.err
}

func TestValidateWeights(t *testing.T) {
	ok := []models.Holding{{Ticker: "A", Weight: 0.3}, {Ticker: "B", Weight: 0.3}, {Ticker: "C", Weight: 0.4}}
	bad := []models.Holding{{Ticker: "A", Weight: 0.3}, {Ticker: "B", Weight: 0.3}, {Ticker: "C", Weight: 0.3}}
	edge := []models.Holding{{Ticker: "A", Weight: 0.5}, {Ticker: "B", Weight: 0.51}}
	if err := ValidateWeights(ok); err != nil {
		t.Errorf("expected accepted, got %v", err)
	}
	if err := ValidateWeights(edge); err != nil {
		t.Errorf("1.01 is within tolerance, got %v", err)
	}
	err := ValidateWeights(bad)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "weights" || verr.Message != MsgWeightsSum {
		t.Errorf("expected weights error, got %v", err)
	}
}

func TestPortfolioPage_Defaults(t *testing.T) {
	p := NewPortfolioPage(&fakeAnalyzer{}, "", nil)
	s := p.Snapshot()
	if s.Period != "1y" || len(s.Holdings) != 3 || s.Holdings[2].Ticker != "GOOGL" {
		t.Errorf("unexpected defaults %+v", s)
	}
}

func TestPortfolioPage_SubmitSuccess(t *testing.T) {
	want := &models.AnalysisResult{Prediction: 1}
	a := &fakeAnalyzer{result: want}
	p := NewPortfolioPage(a, "1m", nil)

	got, err := p.Submit(context.Background())
	if err != nil || got != want {
		t.Fatalf("got %v, %v", got, err)
	}
	if a.last.Period != "1m" || len(a.last.Stocks) != 3 || a.last.Weights[2] != 0.4 {
		t.Errorf("unexpected request %+v", a.last)
	}
	if s := p.Snapshot(); s.Result != want || s.Error != "" || s.Busy {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestPortfolioPage_RejectsBadWeightsWithoutRequest(t *testing.T) {
	a := &fakeAnalyzer{}
	p := NewPortfolioPage(a, "1y", nil)
	if err := p.SetHolding(2, "googl", 0.3); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}
	if a.calls != 0 {
		t.Error("analyzer should not be called")
	}
	if s := p.Snapshot(); s.Error != MsgWeightsSum || s.Holdings[2].Ticker != "GOOGL" {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestPortfolioPage_FailureClearsPreviousResult(t *testing.T) {
	a := &fakeAnalyzer{result: &models.AnalysisResult{Prediction: 1}}
	p := NewPortfolioPage(a, "1y", nil)
	if _, err := p.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	a.result = nil
	a.err = &client.TransportError{Kind: client.KindStatus, StatusCode: 400, Message: "Invalid ticker"}
	if _, err := p.Submit(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	s := p.Snapshot()
	if s.Result != nil || s.Error != "Invalid ticker" {
		t.Errorf("unexpected state %+v", s)
	}

	a.err = &client.FormatError{Op: "analyze-portfolio", Err: errors.New("bad json")}
	p.Submit(context.Background())
	if s := p.Snapshot(); s.Error != MsgAnalyzeFailed {
		t.Errorf("expected generic analyze message, got %q", s.Error)
	}
}

func TestPortfolioPage_OneRequestInFlight(t *testing.T) {
	a := &fakeAnalyzer{
		result:  &models.AnalysisResult{},
		release: make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	p := NewPortfolioPage(a, "1y", nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Submit(context.Background())
		done <- err
	}()
	<-a.entered

	if !p.Snapshot().Busy {
		t.Error("expected busy while in flight")
	}
	if _, err := p.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(a.release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.calls != 1 {
		t.Errorf("expected one request, got %d", a.calls)
	}
}

func TestPortfolioPage_EditRows(t *testing.T) {
	p := NewPortfolioPage(&fakeAnalyzer{}, "1y", nil)
	p.AddHolding()
	if n := len(p.Snapshot().Holdings); n != 4 {
		t.Fatalf("expected 4 rows, got %d", n)
	}
	if err := p.RemoveHolding(0); err != nil {
		t.Fatal(err)
	}
	if err := p.RemoveHolding(9); err == nil {
		t.Error("expected out of range error")
	}
	if err := p.SetPeriod("5y"); err == nil {
		t.Error("expected invalid period")
	}
	if err := p.Replace([]models.Holding{{Ticker: " tcs ", Weight: 1}}, "1d"); err != nil {
		t.Fatal(err)
	}
	s := p.Snapshot()
	if len(s.Holdings) != 1 || s.Holdings[0].Ticker != "TCS" || s.Period != "1d" {
		t.Errorf("unexpected state %+v", s)
	}
}
