package gencache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/gencache/codec"
	"github.com/unkn0wn-root/gencache/generation"
	"github.com/unkn0wn-root/gencache/partition"
	"github.com/unkn0wn-root/gencache/predicate"
	pr "github.com/unkn0wn-root/gencache/provider"
	"github.com/unkn0wn-root/gencache/query"
)

// Strategy caches the results of a repository of T and invalidates them on
// writes by bumping generation counters.
//
// Lookups never fail: provider outages and unfingerprintable criteria are
// reported through Logger and Hooks and surface as a miss. Each lookup
// returns a Ticket; pass it to the matching Save method after running the
// real query. A zero Ticket makes Save a no-op.
type Strategy[T any] interface {
	TryGetResult(ctx context.Context, id []any, sel query.Selector) (T, Ticket, bool)
	SaveGetResult(ctx context.Context, t Ticket, v T) error

	TryGetAllResult(ctx context.Context, opts *query.Options, sel query.Selector) (Result[T], Ticket, bool)
	SaveGetAllResult(ctx context.Context, t Ticket, r Result[T]) error

	TryFindResult(ctx context.Context, crit predicate.Predicate, opts *query.Options, sel query.Selector) (T, Ticket, bool)
	SaveFindResult(ctx context.Context, t Ticket, v T) error

	TryFindAllResult(ctx context.Context, crit predicate.Predicate, opts *query.Options, sel query.Selector) (Result[T], Ticket, bool)
	SaveFindAllResult(ctx context.Context, t Ticket, r Result[T]) error

	TryCountResult(ctx context.Context, crit predicate.Predicate) (int64, Ticket, bool)
	SaveCountResult(ctx context.Context, t Ticket, n int64) error

	TryAggregateResult(ctx context.Context, agg Aggregate, field string, crit predicate.Predicate) (float64, Ticket, bool)
	SaveAggregateResult(ctx context.Context, t Ticket, v float64) error

	// Mutations. Each call is a one-item Batch.
	Add(ctx context.Context, e T) error
	Update(ctx context.Context, e T) error
	Delete(ctx context.Context, e T) error

	// Batch groups mutations so each touched generation is bumped once.
	Batch() *Batch[T]

	// InvalidatePartition abandons every query scoped to value.
	InvalidatePartition(ctx context.Context, value any) error
	// ClearAll abandons every key of this type, write-through entries included.
	ClearAll(ctx context.Context) error
	// ClearAllTypes bumps the cluster generation, abandoning every key of
	// every type that shares the Cluster.
	ClearAllTypes(ctx context.Context) error

	Close(ctx context.Context) error
}

// Result is a multi-row result. Total is the unpaged row count; for unpaged
// queries it equals len(Items).
type Result[T any] struct {
	Items []T
	Total int
}

// Aggregate names a scalar aggregate over one field.
type Aggregate string

const (
	Sum     Aggregate = "Sum"
	Min     Aggregate = "Min"
	Max     Aggregate = "Max"
	Average Aggregate = "Average"
)

// KeyField is one component of T's primary key, in key order.
type KeyField[T any] struct {
	Name  string
	Value func(T) any
}

// Options configure a Strategy.
// Provider and Codec are required; others have sensible defaults.
type Options[T any] struct {
	// Required
	Provider pr.Provider
	Codec    c.Codec[T]

	TypeName  string                 // key segment for T; default is T's Go type name
	Prefix    string                 // default DefaultPrefix
	Key       []KeyField[T]          // required unless DisableWriteThrough
	Partition *partition.Resolver[T] // nil => whole-type invalidation only

	Disabled            bool          // true => New returns the no-op strategy
	DisableWriteThrough bool          // default false => write-through on
	DisableGenerational bool          // default false => query caching on
	MaxResults          int           // GetAll/FindAll bigger than this are not stored; 0 => unbounded
	TTL                 time.Duration // data entries; 0 => provider default / no expiry

	Cluster generation.Cluster // nil => generation.NewLocalCluster()
	Logger  Logger             // if nil, NopLogger is used
	Hooks   Hooks              // if nil, NopHooks is used
}

func New[T any](opts Options[T]) (Strategy[T], error) {
	if opts.Disabled {
		return NewNop[T](), nil
	}
	return newStrategy[T](opts)
}
