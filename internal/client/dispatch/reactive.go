package dispatch

import (
	"context"
	"sync"

	"ojclient/internal/api"
	"ojclient/pkg/utils/contextkey"
	"ojclient/pkg/utils/logger"

	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"
)

// Input is a mutable payload. Every Set notifies the results bound to it.
type Input[P any] struct {
	mu    sync.Mutex
	value P
	next  int
	subs  map[int]func(P)
}

// NewInput creates an input holding initial.
func NewInput[P any](initial P) *Input[P] {
	return &Input[P]{value: initial, subs: make(map[int]func(P))}
}

// Get returns the current value.
func (in *Input[P]) Get() P {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

// Set stores v and notifies subscribers.
func (in *Input[P]) Set(v P) {
	in.mu.Lock()
	in.value = v
	subs := make([]func(P), 0, len(in.subs))
	for _, fn := range in.subs {
		subs = append(subs, fn)
	}
	in.mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

// Update replaces the value with fn applied to it.
func (in *Input[P]) Update(fn func(P) P) {
	in.Set(fn(in.Get()))
}

func (in *Input[P]) subscribe(fn func(P)) func() {
	in.mu.Lock()
	defer in.mu.Unlock()
	id := in.next
	in.next++
	in.subs[id] = fn
	return func() {
		in.mu.Lock()
		delete(in.subs, id)
		in.mu.Unlock()
	}
}

// FetchStatus is the life cycle state of a reactive result.
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusPending FetchStatus = "pending"
	StatusSuccess FetchStatus = "success"
	StatusError   FetchStatus = "error"
)

// Result is a live view of the latest settled call on one signature. Results are shared
// by every Bind on the same signature.
type Result[R any] struct {
	d    *Dispatcher
	sig  api.Signature
	ctx  context.Context
	flag *FetchingFlag
	own  *FetchingFlag

	mu       sync.Mutex
	data     R
	err      error
	settled  bool
	issued   uint64
	call     func(ctx context.Context) (R, error)
	onSettle []func(R, error)
	cancels  []func()
	closed   bool
}

// Bind returns the shared result of e and binds input to it. The call fires now and
// again on every change of input; calls run until ctx is done or the result is closed.
func Bind[P, R any](ctx context.Context, d *Dispatcher, e api.Endpoint[P, R], input *Input[P]) *Result[R] {
	sig := e.Signature()
	key := sig.Key()
	flag := d.Flag(sig)

	d.mu.Lock()
	r, ok := d.results[key].(*Result[R])
	if !ok || r.isClosed() || r.ctx.Err() != nil {
		if existing, found := d.results[key]; found && !ok {
			logger.Warn(ctx, "signature bound with another return type", zap.String("signature", key), zap.Any("cached", existing))
		}
		r = &Result[R]{
			d:    d,
			sig:  sig,
			ctx:  context.WithValue(ctx, contextkey.Signature, key),
			flag: flag,
			own:  newFlag(sig),
		}
		d.results[key] = r
	}
	d.mu.Unlock()

	issue := func(p P) {
		r.fire(func(ctx context.Context) (R, error) {
			return send(ctx, d, e, p)
		})
	}
	r.mu.Lock()
	r.cancels = append(r.cancels, input.subscribe(issue))
	r.mu.Unlock()
	issue(input.Get())
	return r
}

// Signature returns the signature the result is bound to.
func (r *Result[R]) Signature() api.Signature {
	return r.sig
}

// Data returns the latest data; the zero value before the first success or after an error.
func (r *Result[R]) Data() R {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// Err returns the error of the latest applied settle.
func (r *Result[R]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Pending reports whether a call issued by this result is outstanding.
func (r *Result[R]) Pending() bool {
	return r.own.Fetching()
}

// Fetching reports whether any call on the signature is outstanding, from any caller.
func (r *Result[R]) Fetching() bool {
	return r.flag.Fetching()
}

// Status summarises Pending, Err and whether anything has settled yet.
func (r *Result[R]) Status() FetchStatus {
	if r.Pending() {
		return StatusPending
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.err != nil:
		return StatusError
	case r.settled:
		return StatusSuccess
	default:
		return StatusIdle
	}
}

// Refresh re-issues the latest call and waits for it to settle.
func (r *Result[R]) Refresh(ctx context.Context) error {
	r.mu.Lock()
	call := r.call
	r.mu.Unlock()
	if call == nil {
		return nil
	}
	done := r.fire(call)
	select {
	case <-done:
		return r.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute is Refresh.
func (r *Result[R]) Execute(ctx context.Context) error {
	return r.Refresh(ctx)
}

// Wait blocks until no call of this result is outstanding.
func (r *Result[R]) Wait(ctx context.Context) error {
	return r.own.WaitIdle(ctx)
}

// OnSettle registers fn to run after every applied settle.
func (r *Result[R]) OnSettle(fn func(data R, err error)) {
	r.mu.Lock()
	r.onSettle = append(r.onSettle, fn)
	r.mu.Unlock()
}

// Close unbinds every input. Outstanding calls still settle but are not applied.
func (r *Result[R]) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	cancels := r.cancels
	r.cancels = nil
	r.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
	r.d.forget(r.sig.Key(), r)
}

func (r *Result[R]) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Result[R]) fire(call func(ctx context.Context) (R, error)) <-chan struct{} {
	done := make(chan struct{})
	r.mu.Lock()
	if r.closed || r.ctx.Err() != nil {
		r.mu.Unlock()
		close(done)
		return done
	}
	r.call = call
	r.issued++
	gen := r.issued
	r.mu.Unlock()

	r.flag.start()
	r.own.start()
	threading.GoSafe(func() {
		defer close(done)
		defer r.flag.done()
		defer r.own.done()
		data, err := call(r.ctx)
		r.settle(gen, data, err)
	})
	return done
}

func (r *Result[R]) settle(gen uint64, data R, err error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.d.policy == LatestIssuedWins && gen < r.issued {
		latest := r.issued
		r.mu.Unlock()
		logger.Warn(r.ctx, "discard stale response", zap.Uint64("generation", gen), zap.Uint64("latest", latest), zap.Error(err))
		return
	}
	if err != nil {
		var zero R
		r.data = zero
	} else {
		r.data = data
	}
	r.err = err
	r.settled = true
	listeners := append(([]func(R, error))(nil), r.onSettle...)
	r.mu.Unlock()

	if err != nil {
		r.d.report(r.ctx, r.sig, err)
	}
	for _, fn := range listeners {
		fn(data, err)
	}
}
