package gencache

import (
	"context"
	"sync"
)

type mutationKind uint8

const (
	mutAdd mutationKind = iota
	mutUpdate
	mutDelete
)

type mutation[T any] struct {
	kind mutationKind
	e    T
}

type applier[T any] interface {
	apply(ctx context.Context, ops []mutation[T])
}

// Batch queues mutations made inside one logical unit of work. Save applies
// write-through per entity in order, then bumps every touched partition
// generation once and the type generation once, however many entities
// share them.
//
// A Batch is safe for concurrent use.
type Batch[T any] struct {
	to applier[T]

	mu  sync.Mutex
	ops []mutation[T]
}

func (b *Batch[T]) Add(e T) error    { return b.push(mutAdd, e) }
func (b *Batch[T]) Update(e T) error { return b.push(mutUpdate, e) }
func (b *Batch[T]) Delete(e T) error { return b.push(mutDelete, e) }

func (b *Batch[T]) push(k mutationKind, e T) error {
	if isNil(e) {
		return ErrNilEntity
	}
	b.mu.Lock()
	b.ops = append(b.ops, mutation[T]{kind: k, e: e})
	b.mu.Unlock()
	return nil
}

// Len is the number of queued mutations.
func (b *Batch[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

// Save applies and drains the queue. Cache faults are logged and reported
// to Hooks, never returned; an empty batch bumps nothing.
func (b *Batch[T]) Save(ctx context.Context) {
	b.mu.Lock()
	ops := b.ops
	b.ops = nil
	b.mu.Unlock()
	if len(ops) == 0 || b.to == nil {
		return
	}
	b.to.apply(ctx, ops)
}

// Discard drops queued mutations without touching the cache.
func (b *Batch[T]) Discard() {
	b.mu.Lock()
	b.ops = nil
	b.mu.Unlock()
}
