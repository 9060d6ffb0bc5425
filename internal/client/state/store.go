// Package state holds the process scoped client state: the session identity and the
// notification queue.
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ojclient/internal/api"
	"ojclient/internal/client/dispatch"
)

// Config sizes the notification queue.
type Config struct {
	Capacity     int           `yaml:"capacity"`
	ShowDuration time.Duration `yaml:"showDuration"`
}

// Store is created once per process and injected where needed. Its parts are built
// lazily on first access.
type Store struct {
	ctx context.Context
	d   *dispatch.Dispatcher
	cfg Config

	authOnce sync.Once
	auth     *dispatch.Result[api.Identity]

	messagesOnce sync.Once
	messages     *MessageQueue
}

// New creates a store and routes reactive call errors of d into its message queue.
func New(ctx context.Context, d *dispatch.Dispatcher, cfg Config) *Store {
	s := &Store{ctx: ctx, d: d, cfg: cfg}
	d.SetErrorSink(s.reportError)
	return s
}

// Auth returns the reactive session identity bound to GET /auth/info.
func (s *Store) Auth() *dispatch.Result[api.Identity] {
	s.authOnce.Do(func() {
		s.auth = dispatch.Bind(s.ctx, s.d, api.AuthInfo, dispatch.NewInput(api.NoPayload{}))
	})
	return s.auth
}

// Messages returns the notification queue.
func (s *Store) Messages() *MessageQueue {
	s.messagesOnce.Do(func() {
		s.messages = NewMessageQueue(s.cfg.Capacity, s.cfg.ShowDuration)
	})
	return s.messages
}

// Close releases timers. Only tests need it; the store lives as long as the process.
func (s *Store) Close() {
	if s.auth != nil {
		s.auth.Close()
	}
	if s.messages != nil {
		s.messages.Close()
	}
}

func (s *Store) reportError(_ context.Context, sig api.Signature, err error) {
	s.Messages().Error(fmt.Sprintf("%s: %v", sig, err))
}
