package gencache

import (
	"context"

	"github.com/unkn0wn-root/gencache/predicate"
	"github.com/unkn0wn-root/gencache/query"
)

// nop misses every lookup and stores nothing. It is what New returns for
// Options.Disabled and the baseline the caching strategy is measured against.
type nop[T any] struct{}

var _ Strategy[struct{}] = nop[struct{}]{}

// NewNop returns a pass-through Strategy.
func NewNop[T any]() Strategy[T] { return nop[T]{} }

func (nop[T]) TryGetResult(context.Context, []any, query.Selector) (T, Ticket, bool) {
	var zero T
	return zero, Ticket{shape: shapeSingle, op: opGet}, false
}

func (nop[T]) TryGetAllResult(context.Context, *query.Options, query.Selector) (Result[T], Ticket, bool) {
	return Result[T]{}, Ticket{shape: shapeList, op: opGetAll}, false
}

func (nop[T]) TryFindResult(context.Context, predicate.Predicate, *query.Options, query.Selector) (T, Ticket, bool) {
	var zero T
	return zero, Ticket{shape: shapeSingle, op: opFind}, false
}

func (nop[T]) TryFindAllResult(context.Context, predicate.Predicate, *query.Options, query.Selector) (Result[T], Ticket, bool) {
	return Result[T]{}, Ticket{shape: shapeList, op: opFindAll}, false
}

func (nop[T]) TryCountResult(context.Context, predicate.Predicate) (int64, Ticket, bool) {
	return 0, Ticket{shape: shapeCount, op: opCount}, false
}

func (nop[T]) TryAggregateResult(_ context.Context, agg Aggregate, _ string, _ predicate.Predicate) (float64, Ticket, bool) {
	return 0, Ticket{shape: shapeAggregate, op: string(agg)}, false
}

func (nop[T]) SaveGetResult(_ context.Context, t Ticket, _ T) error { return t.check(shapeSingle) }
func (nop[T]) SaveFindResult(_ context.Context, t Ticket, _ T) error {
	return t.check(shapeSingle)
}
func (nop[T]) SaveGetAllResult(_ context.Context, t Ticket, _ Result[T]) error {
	return t.check(shapeList)
}
func (nop[T]) SaveFindAllResult(_ context.Context, t Ticket, _ Result[T]) error {
	return t.check(shapeList)
}
func (nop[T]) SaveCountResult(_ context.Context, t Ticket, _ int64) error {
	return t.check(shapeCount)
}
func (nop[T]) SaveAggregateResult(_ context.Context, t Ticket, _ float64) error {
	return t.check(shapeAggregate)
}

func (nop[T]) Add(_ context.Context, e T) error    { return nilEntity(e) }
func (nop[T]) Update(_ context.Context, e T) error { return nilEntity(e) }
func (nop[T]) Delete(_ context.Context, e T) error { return nilEntity(e) }

func (n nop[T]) Batch() *Batch[T] { return &Batch[T]{to: n} }

func (nop[T]) apply(context.Context, []mutation[T]) {}

func (nop[T]) InvalidatePartition(context.Context, any) error { return nil }
func (nop[T]) ClearAll(context.Context) error                 { return nil }
func (nop[T]) ClearAllTypes(context.Context) error            { return nil }
func (nop[T]) Close(context.Context) error                    { return nil }

func nilEntity[T any](e T) error {
	if isNil(e) {
		return ErrNilEntity
	}
	return nil
}
