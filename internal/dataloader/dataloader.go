// Package dataloader coalesces individual key lookups into bulk fetches.
//
// A Loader collects keys into an open batch. The batch is fetched with a
// single call to its BatchFunc when one of the following happens first:
//   - a Thunk belonging to the batch is invoked (Wait == 0)
//   - the Wait timer started by the first key fires (Wait > 0)
//   - MaxBatch distinct keys are pending
//
// Results are cached per key for the lifetime of the Loader, which is meant
// to be a single request. Cached entries are never replaced. Failed fetches
// are not cached.
package dataloader

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BatchFunc fetches values for keys. It must return exactly one value per
// key, in key order. Keys passed to a BatchFunc are distinct.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, error)

// Thunk returns a loaded value, blocking until its batch has been fetched.
type Thunk[V any] func() (V, error)

// Config controls batch windows.
type Config struct {
	// Wait is how long a batch stays open after its first key.
	// Zero closes the batch on the first Thunk call.
	Wait time.Duration

	// MaxBatch caps distinct keys per fetch. Zero means unlimited.
	MaxBatch int

	// OnDispatch is called after every fetch. Optional.
	OnDispatch func(size int, elapsed time.Duration, err error)
}

// Loader batches and caches lookups of V by K.
type Loader[K comparable, V any] struct {
	fetch BatchFunc[K, V]
	cfg   Config

	mu    sync.Mutex
	cache map[K]*entry[K, V]
	batch *batch[K, V]
}

type entry[K comparable, V any] struct {
	batch *batch[K, V]
	pos   int
}

type batch[K comparable, V any] struct {
	ctx    context.Context
	keys   []K
	values []V
	err    error
	once   sync.Once
	done   chan struct{}
}

// New creates a Loader around fetch.
func New[K comparable, V any](fetch BatchFunc[K, V], cfg Config) *Loader[K, V] {
	if cfg.MaxBatch < 0 {
		cfg.MaxBatch = 0
	}
	return &Loader[K, V]{
		fetch: fetch,
		cfg:   cfg,
		cache: make(map[K]*entry[K, V]),
	}
}

// Load enqueues key and returns a Thunk for its value.
// The context of the first key in a batch is used for the fetch.
func (l *Loader[K, V]) Load(ctx context.Context, key K) Thunk[V] {
	l.mu.Lock()

	if e, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return l.thunk(e)
	}

	if l.batch == nil {
		l.batch = &batch[K, V]{ctx: ctx, done: make(chan struct{})}
		if l.cfg.Wait > 0 {
			go l.startTimer(l.batch)
		}
	}

	b := l.batch
	e := &entry[K, V]{batch: b, pos: len(b.keys)}
	b.keys = append(b.keys, key)
	l.cache[key] = e

	full := l.cfg.MaxBatch > 0 && len(b.keys) >= l.cfg.MaxBatch
	if full {
		l.batch = nil
	}
	l.mu.Unlock()

	if full && l.cfg.Wait > 0 {
		go l.dispatch(b)
	}

	return l.thunk(e)
}

// LoadMany loads all keys and returns their values in key order.
// Duplicate keys share one fetched value. The first error wins.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, error) {
	thunks := make([]Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = l.Load(ctx, key)
	}

	values := make([]V, len(keys))
	var firstErr error
	for i, thunk := range thunks {
		v, err := thunk()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		values[i] = v
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return values, nil
}

func (l *Loader[K, V]) thunk(e *entry[K, V]) Thunk[V] {
	return func() (V, error) {
		if l.cfg.Wait <= 0 {
			l.dispatch(e.batch)
		}
		<-e.batch.done

		if e.batch.err != nil {
			var zero V
			return zero, e.batch.err
		}
		return e.batch.values[e.pos], nil
	}
}

func (l *Loader[K, V]) startTimer(b *batch[K, V]) {
	t := time.NewTimer(l.cfg.Wait)
	defer t.Stop()

	select {
	case <-t.C:
	case <-b.done:
		return
	}
	l.dispatch(b)
}

// dispatch closes b to new keys and fetches it. Only the first call fetches.
func (l *Loader[K, V]) dispatch(b *batch[K, V]) {
	b.once.Do(func() {
		l.mu.Lock()
		if l.batch == b {
			l.batch = nil
		}
		l.mu.Unlock()

		start := time.Now()
		b.values, b.err = l.call(b)
		if l.cfg.OnDispatch != nil {
			l.cfg.OnDispatch(len(b.keys), time.Since(start), b.err)
		}

		if b.err != nil {
			l.forget(b)
		}
		close(b.done)
	})
}

func (l *Loader[K, V]) call(b *batch[K, V]) (values []V, err error) {
	defer func() {
		if r := recover(); r != nil {
			values, err = nil, fmt.Errorf("dataloader: batch function panicked: %v", r)
		}
	}()

	values, err = l.fetch(b.ctx, b.keys)
	if err != nil {
		return nil, err
	}
	if len(values) != len(b.keys) {
		return nil, fmt.Errorf("dataloader: batch function returned %d values for %d keys", len(values), len(b.keys))
	}
	return values, nil
}

// forget drops cache entries of a failed batch so later loads refetch.
func (l *Loader[K, V]) forget(b *batch[K, V]) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range b.keys {
		if e, ok := l.cache[key]; ok && e.batch == b {
			delete(l.cache, key)
		}
	}
}
