package live_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/database/dbtest"
	"github.com/MrJamesThe3rd/spendly/internal/live"
)

func TestListener_ForwardsTriggerNotifications(t *testing.T) {
	db, connStr := dbtest.New(t)

	hub := live.NewHub()
	changes, stop := hub.Watch(live.Key(live.TopicExpenses, "u1"))
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- live.NewListener(connStr, hub, slog.Default()).Run(ctx)
	}()

	// Keep writing until the listener has subscribed and forwards one.
	deadline := time.After(10 * time.Second)

	for {
		_, err := db.Exec(`
			INSERT INTO expenses (user_id, amount, description, occurred_on)
			VALUES ('u1', 10, 'coffee', NOW())`)
		require.NoError(t, err)

		select {
		case <-changes:
			cancel()
			assert.NoError(t, <-done)

			return
		case <-time.After(200 * time.Millisecond):
		case <-deadline:
			t.Fatal("no notification forwarded")
		}
	}
}

type ctxKey struct{}

// contextRecorder keeps the context each record was logged with.
type contextRecorder struct {
	mu       sync.Mutex
	contexts []context.Context
	logged   chan struct{}
}

func (h *contextRecorder) Enabled(context.Context, slog.Level) bool { return true }
func (h *contextRecorder) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *contextRecorder) WithGroup(string) slog.Handler            { return h }

func (h *contextRecorder) Handle(ctx context.Context, _ slog.Record) error {
	h.mu.Lock()
	h.contexts = append(h.contexts, ctx)
	h.mu.Unlock()

	select {
	case h.logged <- struct{}{}:
	default:
	}

	return nil
}

func TestListener_LogsWithRunContext(t *testing.T) {
	h := &contextRecorder{logged: make(chan struct{}, 1)}

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "run"))
	defer cancel()

	done := make(chan error, 1)

	go func() {
		// Nothing listens on port 1, so the first connect fails and the listener logs the retry.
		done <- live.NewListener("postgres://spendly@127.0.0.1:1/spendly?connect_timeout=1", live.NewHub(), slog.New(h)).Run(ctx)
	}()

	select {
	case <-h.logged:
	case <-time.After(10 * time.Second):
		t.Fatal("listener logged nothing")
	}

	cancel()
	require.NoError(t, <-done)

	h.mu.Lock()
	defer h.mu.Unlock()

	require.NotEmpty(t, h.contexts)
	assert.Equal(t, "run", h.contexts[0].Value(ctxKey{}))
}
