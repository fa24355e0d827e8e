package live_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/spendly/internal/live"
)

func received(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestHub_NotifyReachesWatchersOfKey(t *testing.T) {
	hub := live.NewHub()

	a, stopA := hub.Watch(live.Key(live.TopicExpenses, "u1"))
	defer stopA()

	b, stopB := hub.Watch(live.Key(live.TopicExpenses, "u2"))
	defer stopB()

	hub.Notify(live.Key(live.TopicExpenses, "u1"))

	assert.True(t, received(a))
	assert.False(t, received(b))
}

func TestHub_CoalescesPendingSignals(t *testing.T) {
	hub := live.NewHub()
	key := live.Key(live.TopicCategories, "u1")

	ch, stop := hub.Watch(key)
	defer stop()

	for range 5 {
		hub.Notify(key)
	}

	assert.True(t, received(ch))
	assert.False(t, received(ch))
}

func TestHub_StopRemovesWatcher(t *testing.T) {
	hub := live.NewHub()
	key := live.Key(live.TopicExpenses, "u1")

	ch, stop := hub.Watch(key)
	assert.Equal(t, 1, hub.Watchers(key))

	stop()
	stop()

	assert.Equal(t, 0, hub.Watchers(key))

	hub.Notify(key)
	assert.False(t, received(ch))
}
