package auth

import (
	"sync"

	"github.com/portfi/portfi-portal/internal/models"
)

// Event announces an identity change. A nil Identity means signed out.
type Event struct {
	Identity *models.Identity
}

type subscriber struct {
	ch   chan Event
	done chan struct{}
}

// Notifier fans identity-change events out to subscribers.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

// NewNotifier creates a notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]*subscriber)}
}

// Subscribe registers a listener. The returned function unsubscribes it
// and is safe to call more than once.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++
	sub := &subscriber{ch: make(chan Event, 8), done: make(chan struct{})}
	n.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(sub.done)
		})
	}
}

// Publish delivers ev to every current subscriber and returns how many
// received it. A subscriber that unsubscribes mid-delivery is skipped.
func (n *Notifier) Publish(ev Event) int {
	n.mu.Lock()
	subs := make([]*subscriber, 0, len(n.subs))
	for _, s := range n.subs {
		subs = append(subs, s)
	}
	n.mu.Unlock()

	delivered := 0
	for _, s := range subs {
		select {
		case s.ch <- ev:
			delivered++
		case <-s.done:
		}
	}
	return delivered
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
