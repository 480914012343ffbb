package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

type BrowserConfig struct {
	Headless bool
	Timeout  time.Duration
}

func DefaultBrowserConfig() *BrowserConfig {
	return &BrowserConfig{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

func NewBrowserContext(cfg *BrowserConfig) (context.Context, context.CancelFunc) {
	if cfg == nil {
		cfg = DefaultBrowserConfig()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(ctx, cfg.Timeout)

	cancel := func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
	}
	return ctx, cancel
}

// JSErrorCollector records uncaught exceptions and console.error calls.
type JSErrorCollector struct {
	mu     sync.Mutex
	errors []string
}

func NewJSErrorCollector(ctx context.Context) *JSErrorCollector {
	c := &JSErrorCollector{}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		c.mu.Lock()
		defer c.mu.Unlock()

		switch e := ev.(type) {
		case *runtime.EventExceptionThrown:
			desc := e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				desc = e.ExceptionDetails.Exception.Description
			}
			c.errors = append(c.errors, fmt.Sprintf("EXCEPTION: %s", desc))

		case *runtime.EventConsoleAPICalled:
			if e.Type != runtime.APITypeError {
				return
			}
			var parts []string
			for _, arg := range e.Args {
				if arg.Value != nil {
					parts = append(parts, string(arg.Value))
				} else if arg.Description != "" {
					parts = append(parts, arg.Description)
				}
			}
			if msg := strings.Join(parts, " "); msg != "" && !strings.Contains(msg, "favicon") {
				c.errors = append(c.errors, fmt.Sprintf("console.error: %s", msg))
			}
		}
	})

	return c
}

func (c *JSErrorCollector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.errors))
	copy(out, c.errors)
	return out
}

// ServerURL returns PORTFI_TEST_URL, or the configured URL.
func ServerURL() string {
	if url := os.Getenv("PORTFI_TEST_URL"); url != "" {
		return url
	}
	return LoadTestConfig().Server.URL
}

func NavigateAndWait(ctx context.Context, url string, waitMs int) error {
	if waitMs == 0 {
		waitMs = 800
	}
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(time.Duration(waitMs)*time.Millisecond),
	)
}

// SignUp registers a fresh account through the signup form and waits for
// the dashboard.
func SignUp(ctx context.Context, name, email, password string) error {
	var location string
	err := chromedp.Run(ctx,
		chromedp.Navigate(ServerURL()+"/signup"),
		chromedp.WaitVisible(`input[name="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="name"]`, name, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="email"]`, email, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, password, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="confirmPassword"]`, password, chromedp.ByQuery),
		chromedp.SetValue(`input[name="dateOfBirth"]`, "1990-01-01", chromedp.ByQuery),
		chromedp.Submit(`form[action="/auth/register"]`, chromedp.ByQuery),
		chromedp.WaitVisible("h1", chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(location, "/dashboard") {
		return fmt.Errorf("expected dashboard after signup, landed on %s", location)
	}
	return nil
}

func Exists(ctx context.Context, selector string) (bool, error) {
	var exists bool
	err := chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf(`document.querySelector('%s') !== null`, escJS(selector)), &exists),
	)
	return exists, err
}

func ElementCount(ctx context.Context, selector string) (int, error) {
	var count int
	err := chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll('%s').length`, escJS(selector)), &count),
	)
	return count, err
}

func TextContains(ctx context.Context, selector, expected string) (bool, string, error) {
	var actual string
	err := chromedp.Run(ctx,
		chromedp.Evaluate(fmt.Sprintf(`
			(() => {
				const el = document.querySelector('%s');
				return el ? el.textContent.trim() : '';
			})()
		`, escJS(selector)), &actual),
	)
	if err != nil {
		return false, "", err
	}
	return strings.Contains(actual, expected), actual, nil
}

func Click(ctx context.Context, selector string, waitMs int) error {
	if waitMs == 0 {
		waitMs = 300
	}
	return chromedp.Run(ctx,
		chromedp.Click(selector, chromedp.ByQuery),
		chromedp.Sleep(time.Duration(waitMs)*time.Millisecond),
	)
}

// Screenshot saves a full-page PNG under the results directory.
func Screenshot(ctx context.Context, name string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ResultsDir(), name+".png"), buf, 0644)
}

func escJS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
