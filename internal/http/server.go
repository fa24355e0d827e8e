package http

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/spendly/internal/http/stream"
)

type ServerOptions struct {
	Addr     string
	Timeout  time.Duration
	ErrorLog *log.Logger
}

// NewServer wraps handler in an http.Server whose Shutdown also ends open event streams.
func NewServer(handler http.Handler, opts ServerOptions) *http.Server {
	closing := make(chan struct{})

	server := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: opts.Timeout,
		WriteTimeout:      opts.Timeout,
		IdleTimeout:       2 * opts.Timeout,
		ErrorLog:          opts.ErrorLog,
		BaseContext: func(net.Listener) context.Context {
			return stream.WithClosing(context.Background(), closing)
		},
	}

	server.RegisterOnShutdown(sync.OnceFunc(func() { close(closing) }))

	return server
}
