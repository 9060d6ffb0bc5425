package dispatch

import (
	"context"
	"sync"

	"ojclient/internal/api"
)

// FetchingFlag tells whether some call on a signature is outstanding.
// It counts calls so overlapping calls cannot clear it early.
type FetchingFlag struct {
	sig api.Signature

	mu   sync.Mutex
	n    int
	idle chan struct{}
}

func newFlag(sig api.Signature) *FetchingFlag {
	return &FetchingFlag{sig: sig}
}

// Signature returns the signature the flag belongs to.
func (f *FetchingFlag) Signature() api.Signature {
	return f.sig
}

// Fetching is true iff at least one call is outstanding.
func (f *FetchingFlag) Fetching() bool {
	return f.Outstanding() > 0
}

// Outstanding returns the number of calls not settled yet.
func (f *FetchingFlag) Outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

// WaitIdle blocks until no call is outstanding.
func (f *FetchingFlag) WaitIdle(ctx context.Context) error {
	f.mu.Lock()
	idle := f.idle
	f.mu.Unlock()
	if idle == nil {
		return nil
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FetchingFlag) start() {
	f.mu.Lock()
	if f.n == 0 {
		f.idle = make(chan struct{})
	}
	f.n++
	f.mu.Unlock()
}

func (f *FetchingFlag) done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.n == 0 {
		return
	}
	f.n--
	if f.n == 0 {
		close(f.idle)
		f.idle = nil
	}
}
