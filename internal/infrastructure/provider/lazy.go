package provider

import (
	"context"
	"errors"
	"sync"
)

var errNoBuilder = errors.New("provider: handle has no builder")

// Lazy builds a shared handle on first use and keeps it for the process
// lifetime. Concurrent first callers wait for a single construction; a failed
// construction is not cached, so the next caller tries again.
type Lazy[T any] struct {
	build func(context.Context) (T, error)

	mu    sync.Mutex
	value T
	ready bool
}

func NewLazy[T any](build func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{build: build}
}

// Ready returns a Lazy that already holds value.
func Ready[T any](value T) *Lazy[T] {
	return &Lazy[T]{value: value, ready: true}
}

func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ready {
		return l.value, nil
	}
	var zero T
	if l.build == nil {
		return zero, errNoBuilder
	}
	value, err := l.build(ctx)
	if err != nil {
		return zero, err
	}
	l.value = value
	l.ready = true
	return value, nil
}
