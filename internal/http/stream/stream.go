// Package stream pushes subscription snapshots to browsers as server-sent events.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// KeepAlive is how often an idle stream writes a comment so proxies keep it open.
var KeepAlive = 15 * time.Second

type closingKey struct{}

// WithClosing marks ctx so that streams served under it end once closing is closed. Other
// requests sharing ctx run to completion.
func WithClosing(ctx context.Context, closing <-chan struct{}) context.Context {
	return context.WithValue(ctx, closingKey{}, closing)
}

// closingFrom returns nil when ctx carries no signal, which blocks forever in a select.
func closingFrom(ctx context.Context) <-chan struct{} {
	closing, _ := ctx.Value(closingKey{}).(<-chan struct{})
	return closing
}

// Serve writes each value received from updates as a "snapshot" event, rendered through render,
// until updates is closed or the request ends. A closing signal from WithClosing ends it too.
func Serve[T, R any](w http.ResponseWriter, r *http.Request, updates <-chan T, render func(T) R) {
	rc := http.NewResponseController(w)

	// The server write timeout would otherwise cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		slog.ErrorContext(r.Context(), "streaming not supported", "error", err)
		return
	}

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	closing := closingFrom(r.Context())

	for id := 1; ; {
		select {
		case <-r.Context().Done():
			return
		case <-closing:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
		case snapshot, ok := <-updates:
			if !ok {
				return
			}

			data, err := json.Marshal(render(snapshot))
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to encode snapshot", "error", err)
				return
			}

			if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", id, data); err != nil {
				return
			}

			id++
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}
