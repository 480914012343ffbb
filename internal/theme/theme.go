// Package theme holds the portal's light/dark preference.
package theme

import (
	"context"
	"strconv"
	"sync"

	"github.com/portfi/portfi-portal/internal/common"
	"github.com/portfi/portfi-portal/internal/interfaces"
)

const storageKey = "theme.dark"

// Theme is the process-wide dark-mode flag. It is persisted when a
// key-value store is supplied.
type Theme struct {
	mu     sync.RWMutex
	dark   bool
	kv     interfaces.KeyValueStorage
	logger *common.Logger
}

// New loads the saved preference from kv, defaulting to light. kv may be nil.
func New(ctx context.Context, kv interfaces.KeyValueStorage, logger *common.Logger) *Theme {
	t := &Theme{kv: kv, logger: logger}
	if kv != nil {
		if v, err := kv.Get(ctx, storageKey); err == nil {
			t.dark, _ = strconv.ParseBool(v)
		}
	}
	return t
}

// Dark reports whether dark mode is on.
func (t *Theme) Dark() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

// Name returns "dark" or "light".
func (t *Theme) Name() string {
	if t.Dark() {
		return "dark"
	}
	return "light"
}

// Toggle flips the flag and returns the new value.
func (t *Theme) Toggle(ctx context.Context) bool {
	t.mu.Lock()
	t.dark = !t.dark
	dark := t.dark
	t.mu.Unlock()

	if t.kv != nil {
		if err := t.kv.Set(ctx, storageKey, strconv.FormatBool(dark)); err != nil && t.logger != nil {
			t.logger.Warn().Err(err).Msg("failed to persist theme")
		}
	}
	return dark
}
