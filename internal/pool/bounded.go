package pool

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ErrExhausted is returned by a non-blocking Bounded pool when every value is checked out.
var ErrExhausted = errors.New("pool: all pooled values are in use")

// Bounded hands out at most size values of T at a time.
//
// It exists for scratch state that must never be shared by two goroutines, such as
// the working buffers of a block codec. Values are created lazily by newFn and kept
// for reuse after Put. A value is owned by exactly one borrower between Get and Put.
//
// When the pool is exhausted, Get blocks until a value is returned, or, for a pool
// created with blocking set to false, fails immediately with ErrExhausted.
type Bounded[T any] struct {
	sem      *semaphore.Weighted
	newFn    func() T
	blocking bool
	size     int

	mu   sync.Mutex
	idle []T
}

// NewBounded creates a pool holding at most size values. size below 1 is treated as 1.
func NewBounded[T any](size int, blocking bool, newFn func() T) *Bounded[T] {
	if size < 1 {
		size = 1
	}

	return &Bounded[T]{
		sem:      semaphore.NewWeighted(int64(size)),
		newFn:    newFn,
		blocking: blocking,
		size:     size,
		idle:     make([]T, 0, size),
	}
}

// Size returns the maximum number of values that can be checked out at once.
func (p *Bounded[T]) Size() int {
	return p.size
}

// Get checks out a value. Every successful Get must be paired with exactly one Put.
func (p *Bounded[T]) Get(ctx context.Context) (T, error) {
	return p.get(ctx, p.blocking)
}

func (p *Bounded[T]) get(ctx context.Context, blocking bool) (T, error) {
	var zero T

	if blocking {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return zero, err
		}
	} else if !p.sem.TryAcquire(1) {
		return zero, ErrExhausted
	}

	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		v := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()

		return v, nil
	}
	p.mu.Unlock()

	return p.newFn(), nil
}

// Put returns a value obtained from Get.
func (p *Bounded[T]) Put(v T) {
	p.mu.Lock()
	p.idle = append(p.idle, v)
	p.mu.Unlock()

	p.sem.Release(1)
}

// Do borrows a value for the duration of fn and returns it afterwards,
// including when fn panics or returns an error.
func (p *Bounded[T]) Do(ctx context.Context, fn func(T) error) error {
	v, err := p.Get(ctx)
	if err != nil {
		return err
	}
	defer p.Put(v)

	return fn(v)
}

// DoBlocking is like Do but waits for a value even when the pool was created
// non-blocking. It still fails when ctx is done.
func (p *Bounded[T]) DoBlocking(ctx context.Context, fn func(T) error) error {
	v, err := p.get(ctx, true)
	if err != nil {
		return err
	}
	defer p.Put(v)

	return fn(v)
}
