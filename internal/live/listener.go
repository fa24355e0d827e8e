package live

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

const reconnectDelay = 2 * time.Second

// Listener forwards Postgres notifications to a Hub, so writes made by any process reach
// the subscribers of this one.
type Listener struct {
	connString string
	hub        *Hub
	channels   []string
	logger     *slog.Logger
}

func NewListener(connString string, hub *Hub, logger *slog.Logger) *Listener {
	return &Listener{
		connString: connString,
		hub:        hub,
		channels:   []string{TopicExpenses, TopicCategories},
		logger:     logger,
	}
}

// Run listens until ctx is done, reconnecting after connection failures.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}

		l.logger.WarnContext(ctx, "listener disconnected", "error", err, "retry_in", reconnectDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("connecting listener: %w", err)
	}
	defer conn.Close(context.Background())

	for _, channel := range l.channels {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return fmt.Errorf("listening on %s: %w", channel, err)
		}
	}

	l.logger.InfoContext(ctx, "listening for changes", "channels", l.channels)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("waiting for notification: %w", err)
		}

		l.hub.Notify(Key(n.Channel, n.Payload))
	}
}
