package smooch

import (
	"context"
	"sync"
)

// Properties is a free form appUser property payload. It resolves to itself.
type Properties map[string]any

// Resolve implements Payload.
func (p Properties) Resolve(ctx context.Context) (any, error) {
	return p, nil
}

type resolvedPayload struct {
	value any
}

func (r resolvedPayload) Resolve(ctx context.Context) (any, error) {
	return r.value, nil
}

// Resolved wraps any JSON serializable value as an already settled Payload.
func Resolved(value any) Payload {
	return resolvedPayload{value: value}
}

// Static returns a Transform that ignores the identity and sends payload.
func Static(payload Payload) Transform {
	return func(ctx context.Context, identity Identity) (Payload, error) {
		return payload, nil
	}
}

// Deferred is a Payload that settles once, possibly from another goroutine.
type Deferred struct {
	once  sync.Once
	done  chan struct{}
	value any
	err   error
}

var _ Payload = (*Deferred)(nil)

// NewDeferred returns an unsettled Deferred.
func NewDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

// Defer runs fn in its own goroutine and settles the returned Deferred with
// its result.
func Defer(ctx context.Context, fn func(ctx context.Context) (any, error)) *Deferred {
	d := NewDeferred()
	go func() {
		value, err := fn(ctx)
		if err != nil {
			d.Reject(err)
			return
		}
		d.Fulfill(value)
	}()
	return d
}

// Fulfill settles d with value. Only the first Fulfill or Reject wins.
func (d *Deferred) Fulfill(value any) {
	d.once.Do(func() {
		d.value = value
		close(d.done)
	})
}

// Reject settles d with err. Only the first Fulfill or Reject wins.
func (d *Deferred) Reject(err error) {
	d.once.Do(func() {
		d.err = err
		close(d.done)
	})
}

var settled = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Done is closed once d has settled. A nil Deferred counts as settled.
func (d *Deferred) Done() <-chan struct{} {
	if d == nil {
		return settled
	}
	return d.done
}

// Resolve blocks until d settles or ctx is done. A nil Deferred resolves to
// nil, which is sent as an empty object.
func (d *Deferred) Resolve(ctx context.Context) (any, error) {
	if d == nil {
		return nil, nil
	}
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func resolvePayload(ctx context.Context, payload Payload) (any, error) {
	if payload == nil {
		return nil, nil
	}
	return payload.Resolve(ctx)
}
