// Package live fans out change signals to subscribers of a user's data.
package live

import (
	"strings"
	"sync"

	"github.com/MrJamesThe3rd/spendly/internal/metrics"
)

// Topics double as the Postgres NOTIFY channels the migrations publish on.
const (
	TopicExpenses   = "expense_changes"
	TopicCategories = "category_changes"
)

// Key identifies the change stream of one topic for one user.
func Key(topic, userID string) string {
	return topic + ":" + userID
}

func topicOf(key string) string {
	topic, _, _ := strings.Cut(key, ":")
	return topic
}

// Hub delivers coalesced change signals. A slow watcher sees at most one pending signal.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[chan struct{}]struct{})}
}

// Watch registers for changes on key. The returned func stops the watch; it is safe to call twice.
func (h *Hub) Watch(key string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	set, ok := h.watchers[key]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.watchers[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	metrics.SubscriptionOpened(topicOf(key))

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers[key], ch)
			if len(h.watchers[key]) == 0 {
				delete(h.watchers, key)
			}
			h.mu.Unlock()

			metrics.SubscriptionClosed(topicOf(key))
		})
	}
}

// Notify signals every watcher of key without blocking.
func (h *Hub) Notify(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.watchers[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watchers returns the number of open watches on key.
func (h *Hub) Watchers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.watchers[key])
}
