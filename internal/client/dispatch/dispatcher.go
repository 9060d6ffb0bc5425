// Package dispatch executes typed endpoint calls, imperatively or bound to a reactive input.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ojclient/internal/api"
	"ojclient/internal/client/transport"
	appErr "ojclient/pkg/errors"
)

// Sender performs one HTTP exchange. *transport.Client implements it.
type Sender interface {
	Do(ctx context.Context, req transport.Request) (transport.Response, error)
}

// RacePolicy decides which of two overlapping reactive calls writes the result.
type RacePolicy int

const (
	// LastSettledWins applies every settle in arrival order; a slow older response can
	// overwrite a newer one.
	LastSettledWins RacePolicy = iota
	// LatestIssuedWins discards settles of calls superseded by a newer issue.
	LatestIssuedWins
)

func (p RacePolicy) String() string {
	if p == LatestIssuedWins {
		return "latest-issued-wins"
	}
	return "last-settled-wins"
}

// ParseRacePolicy accepts the names printed by String; empty means LastSettledWins.
func ParseRacePolicy(s string) (RacePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-settled-wins":
		return LastSettledWins, nil
	case "latest-issued-wins":
		return LatestIssuedWins, nil
	}
	return LastSettledWins, appErr.ValidationError("racePolicy", fmt.Sprintf("unknown policy %q", s))
}

// ErrorSink receives every error a reactive call settles with.
type ErrorSink func(ctx context.Context, sig api.Signature, err error)

// Dispatcher owns the per-signature fetching flags and cached reactive results.
type Dispatcher struct {
	sender Sender
	policy RacePolicy

	mu      sync.Mutex
	sink    ErrorSink
	flags   map[string]*FetchingFlag
	results map[string]any
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithRacePolicy(p RacePolicy) Option {
	return func(d *Dispatcher) {
		d.policy = p
	}
}

func WithErrorSink(sink ErrorSink) Option {
	return func(d *Dispatcher) {
		d.sink = sink
	}
}

// New creates a dispatcher sending through sender.
func New(sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		flags:   make(map[string]*FetchingFlag),
		results: make(map[string]any),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Policy returns the race policy of reactive results.
func (d *Dispatcher) Policy() RacePolicy {
	return d.policy
}

// SetErrorSink replaces the reactive error sink.
func (d *Dispatcher) SetErrorSink(sink ErrorSink) {
	d.mu.Lock()
	d.sink = sink
	d.mu.Unlock()
}

// Flag returns the shared fetching flag of sig, creating it on first use.
func (d *Dispatcher) Flag(sig api.Signature) *FetchingFlag {
	key := sig.Key()
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.flags[key]
	if !ok {
		f = newFlag(sig)
		d.flags[key] = f
	}
	return f
}

// Fetching reports whether any call on sig is outstanding.
func (d *Dispatcher) Fetching(sig api.Signature) bool {
	return d.Flag(sig).Fetching()
}

func (d *Dispatcher) report(ctx context.Context, sig api.Signature, err error) {
	d.mu.Lock()
	sink := d.sink
	d.mu.Unlock()
	if sink != nil && err != nil {
		sink(ctx, sig, err)
	}
}

func (d *Dispatcher) forget(key string, r any) {
	d.mu.Lock()
	if d.results[key] == r {
		delete(d.results, key)
	}
	d.mu.Unlock()
}
