package market

import (
	"context"
	"sync"
	"time"

	"github.com/portfi/portfi-portal/internal/models"
)

// Rotator cycles the featured sample instrument on a fixed interval.
// Manual navigation switches it off auto-play for good.
type Rotator struct {
	mu       sync.Mutex
	items    []models.Instrument
	idx      int
	interval time.Duration
	autoplay bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRotator creates a rotator over items. items must not be empty.
func NewRotator(items []models.Instrument, interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Rotator{items: items, interval: interval}
}

// Start begins auto-play. Each tick advances the featured instrument and
// sends it on the returned channel, which closes when auto-play ends.
func (r *Rotator) Start(ctx context.Context) <-chan models.Instrument {
	r.mu.Lock()
	defer r.mu.Unlock()

	updates := make(chan models.Instrument, 1)
	if r.cancel != nil {
		close(updates)
		return updates
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.autoplay = true
	r.done = make(chan struct{})

	go r.run(ctx, updates, r.done)
	return updates
}

func (r *Rotator) run(ctx context.Context, updates chan<- models.Instrument, done chan struct{}) {
	defer close(done)
	defer close(updates)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			if !r.autoplay {
				r.mu.Unlock()
				return
			}
			r.idx = (r.idx + 1) % len(r.items)
			current := r.items[r.idx]
			r.mu.Unlock()

			select {
			case updates <- current:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Current returns the featured instrument.
func (r *Rotator) Current() models.Instrument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[r.idx]
}

// Autoplay reports whether the rotator is still advancing on its own.
func (r *Rotator) Autoplay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.autoplay
}

// Next switches to manual mode and advances one instrument.
func (r *Rotator) Next() models.Instrument {
	return r.step(1)
}

// Prev switches to manual mode and goes back one instrument.
func (r *Rotator) Prev() models.Instrument {
	return r.step(-1)
}

func (r *Rotator) step(delta int) models.Instrument {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	n := len(r.items)
	r.idx = ((r.idx+delta)%n + n) % n
	return r.items[r.idx]
}

// stopLocked ends auto-play without waiting for the timer goroutine.
func (r *Rotator) stopLocked() {
	r.autoplay = false
	if r.cancel != nil {
		r.cancel()
	}
}

// Stop ends auto-play and waits for the timer goroutine to exit.
func (r *Rotator) Stop() {
	r.mu.Lock()
	r.stopLocked()
	done := r.done
	r.mu.Unlock()

	if done != nil {
		<-done
	}
}
