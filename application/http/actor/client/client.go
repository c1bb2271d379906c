// Package client performs HTTP/1.1 transfers over a [transport.ConnDialer].
// It implements [transport.Opener].
package client

import (
	"context"
	"log/slog"
	"sync"

	"httpwrap/application/http"
	"httpwrap/application/util/domain"
	"httpwrap/transport"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

type Client struct {
	opts Options

	logger *slog.Logger
	clock  clock.Clock

	lookuper   domain.Lookuper
	connDialer transport.ConnDialer
}

var _ transport.Opener = (*Client)(nil)

func New(
	d transport.ConnDialer,
	lookuper domain.Lookuper,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	if opts.Redirect.MaxRedirects == 0 {
		opts.Redirect.MaxRedirects = DefaultMaxRedirects
	}
	if opts.Receive.Decode == (http.DecodeOptions{}) {
		opts.Receive.Decode = http.DefaultDecodeOptions
	}

	return &Client{
		connDialer: d,
		lookuper:   lookuper,
		logger:     logger,
		clock:      clock,
		opts:       opts,
	}
}

// Open returns a new session. Sessions dial a fresh connection per request.
func (c *Client) Open(ctx context.Context) (transport.Session, error) {
	s := &session{
		id:     uuid.NewString(),
		client: c,
	}
	s.logger = c.logger.With(slog.String("session", s.id))
	s.logger.DebugContext(ctx, "session opened")

	return s, nil
}

type session struct {
	id     string
	client *Client
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.logger.Debug("session closed")
	}
	return nil
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
