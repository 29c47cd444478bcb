package gencache

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	c "github.com/unkn0wn-root/gencache/codec"
	"github.com/unkn0wn-root/gencache/generation"
	"github.com/unkn0wn-root/gencache/internal/keys"
	"github.com/unkn0wn-root/gencache/internal/wire"
	"github.com/unkn0wn-root/gencache/partition"
	"github.com/unkn0wn-root/gencache/predicate"
	pr "github.com/unkn0wn-root/gencache/provider"
	"github.com/unkn0wn-root/gencache/query"
)

const (
	opGet     = "Get"
	opGetAll  = "GetAll"
	opFind    = "Find"
	opFindAll = "FindAll"
	opCount   = "Count"
)

type strategy[T any] struct {
	p       pr.Provider
	codec   c.Codec[T]
	gens    *generation.Manager
	cluster generation.Cluster
	log     Logger
	hooks   Hooks

	typeName string
	prefix   string
	key      []KeyField[T]
	part     *partition.Resolver[T]

	writeThrough bool
	generational bool
	maxResults   int
	ttl          time.Duration
}

var _ Strategy[struct{}] = (*strategy[struct{}])(nil)

func newStrategy[T any](opts Options[T]) (*strategy[T], error) {
	if opts.Provider == nil {
		return nil, &ConfigError{Field: "Provider", Reason: "is required"}
	}
	if opts.Codec == nil {
		return nil, &ConfigError{Field: "Codec", Reason: "is required"}
	}
	if !opts.DisableWriteThrough && len(opts.Key) == 0 {
		return nil, &ConfigError{Field: "Key", Reason: "is required unless DisableWriteThrough is set"}
	}
	for i, k := range opts.Key {
		if k.Value == nil {
			return nil, &ConfigError{Field: fmt.Sprintf("Key[%d]", i), Reason: "has no Value accessor"}
		}
	}
	if opts.Partition != nil && !opts.Partition.Configured() {
		return nil, &ConfigError{Field: "Partition", Reason: "needs both Field and Value"}
	}
	if opts.MaxResults < 0 {
		return nil, &ConfigError{Field: "MaxResults", Reason: "must be >= 0"}
	}
	if opts.TTL < 0 {
		return nil, &ConfigError{Field: "TTL", Reason: "must be >= 0"}
	}

	prefix := coalesce(opts.Prefix, DefaultPrefix)
	if strings.Contains(prefix, "/") {
		return nil, &ConfigError{Field: "Prefix", Reason: "must not contain '/'"}
	}
	typeName := coalesce(opts.TypeName, typeNameOf[T]())
	if typeName == "" {
		return nil, &ConfigError{Field: "TypeName", Reason: "cannot be derived from an unnamed type; set it explicitly"}
	}

	gens, err := generation.NewManager(opts.Provider)
	if err != nil {
		return nil, fmt.Errorf("gencache: %w", err)
	}

	s := &strategy[T]{
		p:            opts.Provider,
		codec:        opts.Codec,
		gens:         gens,
		typeName:     keys.Segment(typeName),
		prefix:       prefix,
		key:          opts.Key,
		part:         opts.Partition,
		writeThrough: !opts.DisableWriteThrough,
		generational: !opts.DisableGenerational,
		maxResults:   opts.MaxResults,
		ttl:          opts.TTL,
	}

	// defaults
	s.log = newTypedLogger(coalesce[Logger](opts.Logger, NopLogger{}), s.typeName)
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	if opts.Cluster != nil {
		s.cluster = opts.Cluster
	} else {
		s.cluster = generation.NewLocalCluster()
	}
	return s, nil
}

func typeNameOf[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return ""
	}
	return t.String()
}

// ==============================
// Lookups
// ==============================

func (s *strategy[T]) TryGetResult(ctx context.Context, id []any, sel query.Selector) (T, Ticket, bool) {
	var zero T
	t := s.getTicket(ctx, id, sel)
	v, ok := s.loadSingle(ctx, t)
	if !ok {
		return zero, t, false
	}
	return v, t, true
}

func (s *strategy[T]) TryGetAllResult(ctx context.Context, opts *query.Options, sel query.Selector) (Result[T], Ticket, bool) {
	t := s.queryTicket(ctx, shapeList, opGetAll, nil, opts.Paged(), func(predicate.Predicate) (string, error) {
		return keys.Fingerprint(nil, opts, sel)
	})
	return s.loadList(ctx, t)
}

func (s *strategy[T]) TryFindResult(ctx context.Context, crit predicate.Predicate, opts *query.Options, sel query.Selector) (T, Ticket, bool) {
	var zero T
	t := s.queryTicket(ctx, shapeSingle, opFind, crit, false, func(bound predicate.Predicate) (string, error) {
		return keys.Fingerprint(bound, opts, sel)
	})
	v, ok := s.loadSingle(ctx, t)
	if !ok {
		return zero, t, false
	}
	return v, t, true
}

func (s *strategy[T]) TryFindAllResult(ctx context.Context, crit predicate.Predicate, opts *query.Options, sel query.Selector) (Result[T], Ticket, bool) {
	t := s.queryTicket(ctx, shapeList, opFindAll, crit, opts.Paged(), func(bound predicate.Predicate) (string, error) {
		return keys.Fingerprint(bound, opts, sel)
	})
	return s.loadList(ctx, t)
}

func (s *strategy[T]) TryCountResult(ctx context.Context, crit predicate.Predicate) (int64, Ticket, bool) {
	t := s.queryTicket(ctx, shapeCount, opCount, crit, false, func(bound predicate.Predicate) (string, error) {
		return keys.Fingerprint(bound, nil, nil)
	})
	n, ok := s.loadScalar(ctx, t.key)
	s.record(t.op, ok)
	return int64(n), t, ok
}

func (s *strategy[T]) TryAggregateResult(ctx context.Context, agg Aggregate, field string, crit predicate.Predicate) (float64, Ticket, bool) {
	op := string(agg)
	if op == "" || field == "" {
		s.record(op, false)
		return 0, Ticket{shape: shapeAggregate, op: op}, false
	}
	t := s.queryTicket(ctx, shapeAggregate, op, crit, false, func(bound predicate.Predicate) (string, error) {
		return keys.Fingerprint(bound, nil, query.Selector{field})
	})
	bits, ok := s.loadScalar(ctx, t.key)
	s.record(t.op, ok)
	return math.Float64frombits(bits), t, ok
}

// getTicket prefers the write-through key for whole-entity reads so Get
// sees writes immediately; projected reads are generation scoped.
func (s *strategy[T]) getTicket(ctx context.Context, id []any, sel query.Selector) Ticket {
	t := Ticket{shape: shapeSingle, op: opGet}
	if len(id) == 0 {
		return t
	}
	if s.writeThrough && sel == nil {
		scope, err := s.scope(ctx)
		if err != nil {
			return t
		}
		key, err := keys.IDKey(scope, s.typeName, id)
		if err != nil {
			s.fingerprintFault(opGet, err)
			return t
		}
		t.key = key
		return t
	}
	return s.queryTicket(ctx, shapeSingle, opGet, nil, false, func(predicate.Predicate) (string, error) {
		ic, err := canonicalID(id)
		if err != nil {
			return "", err
		}
		return keys.Digest(ic, sel.Canonical()), nil
	})
}

// queryTicket builds the generation-scoped key for a query. Lazy operands in
// crit are evaluated once, so the fingerprint and the partition agree. Any
// failure yields a non-cacheable ticket.
func (s *strategy[T]) queryTicket(
	ctx context.Context,
	sh shape,
	op string,
	crit predicate.Predicate,
	paged bool,
	fingerprint func(bound predicate.Predicate) (string, error),
) Ticket {
	t := Ticket{shape: sh, op: op, paged: paged}
	if !s.generational {
		return t
	}
	bound, err := predicate.Bind(crit)
	if err != nil {
		s.fingerprintFault(op, err)
		return t
	}
	fp, err := fingerprint(bound)
	if err != nil {
		s.fingerprintFault(op, err)
		return t
	}
	scope, err := s.scope(ctx)
	if err != nil {
		return t
	}
	seg, err := s.generationSegment(ctx, scope, bound)
	if err != nil {
		return t
	}
	t.key = keys.BuildKey(scope, s.typeName, seg, op, fp)
	return t
}

// scope returns {prefix}{cluster}-{clear} for this type.
func (s *strategy[T]) scope(ctx context.Context) (string, error) {
	cl, err := s.cluster.Current(ctx)
	if err != nil {
		s.providerFault("get", "cluster", err)
		return "", err
	}
	ck := keys.ClearAllKey(s.prefix, s.typeName)
	typeClear, err := s.gens.Lookup(ctx, ck)
	if err != nil {
		s.providerFault("get", ck, err)
		return "", err
	}
	return keys.Prefix(s.prefix, cl, typeClear), nil
}

// generationSegment scopes to the partition crit pins, or to the whole type.
func (s *strategy[T]) generationSegment(ctx context.Context, scope string, crit predicate.Predicate) (string, error) {
	if v, ok := s.part.ResolveFromPredicate(crit); ok {
		pv, err := keys.PartitionValue(v)
		if err != nil {
			return "", err
		}
		gk := keys.PartitionGenerationKey(scope, s.typeName, pv)
		g, err := s.gens.Lookup(ctx, gk)
		if err != nil {
			s.providerFault("get", gk, err)
			return "", err
		}
		return keys.PartitionSegment(pv, g), nil
	}
	gk := keys.GenerationKey(scope, s.typeName)
	g, err := s.gens.Lookup(ctx, gk)
	if err != nil {
		s.providerFault("get", gk, err)
		return "", err
	}
	return keys.GenerationSegment(g), nil
}

func (s *strategy[T]) loadSingle(ctx context.Context, t Ticket) (T, bool) {
	var zero T
	raw, ok := s.get(ctx, t.key)
	if !ok {
		s.record(t.op, false)
		return zero, false
	}
	payload, err := wire.DecodeSingle(raw)
	if err != nil {
		s.corrupt(ctx, t.key, "wire")
		s.record(t.op, false)
		return zero, false
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		s.corrupt(ctx, t.key, "value_decode")
		s.record(t.op, false)
		return zero, false
	}
	s.record(t.op, true)
	return v, true
}

// loadList needs both the page and, for paged queries, its total.
func (s *strategy[T]) loadList(ctx context.Context, t Ticket) (Result[T], Ticket, bool) {
	var zero Result[T]
	raw, ok := s.get(ctx, t.key)
	if !ok {
		s.record(t.op, false)
		return zero, t, false
	}
	payloads, err := wire.DecodeList(raw)
	if err != nil {
		s.corrupt(ctx, t.key, "wire")
		s.record(t.op, false)
		return zero, t, false
	}
	items := make([]T, 0, len(payloads))
	for _, p := range payloads {
		v, err := s.codec.Decode(p)
		if err != nil {
			s.corrupt(ctx, t.key, "value_decode")
			s.record(t.op, false)
			return zero, t, false
		}
		items = append(items, v)
	}
	total := len(items)
	if t.paged {
		n, ok := s.loadScalar(ctx, keys.PagingTotalKey(t.key))
		if !ok {
			s.record(t.op, false)
			return zero, t, false
		}
		total = int(n)
	}
	s.record(t.op, true)
	return Result[T]{Items: items, Total: total}, t, true
}

func (s *strategy[T]) loadScalar(ctx context.Context, key string) (uint64, bool) {
	raw, ok := s.get(ctx, key)
	if !ok {
		return 0, false
	}
	v, err := wire.DecodeScalar(raw)
	if err != nil {
		s.corrupt(ctx, key, "wire")
		return 0, false
	}
	return v, true
}

func (s *strategy[T]) record(op string, hit bool) {
	if hit {
		s.hooks.Hit(s.typeName, op)
	} else {
		s.hooks.Miss(s.typeName, op)
	}
}

// ==============================
// Stores
// ==============================

func (s *strategy[T]) SaveGetResult(ctx context.Context, t Ticket, v T) error {
	return s.saveSingle(ctx, t, v)
}

func (s *strategy[T]) SaveFindResult(ctx context.Context, t Ticket, v T) error {
	return s.saveSingle(ctx, t, v)
}

func (s *strategy[T]) SaveGetAllResult(ctx context.Context, t Ticket, r Result[T]) error {
	return s.saveList(ctx, t, r)
}

func (s *strategy[T]) SaveFindAllResult(ctx context.Context, t Ticket, r Result[T]) error {
	return s.saveList(ctx, t, r)
}

func (s *strategy[T]) SaveCountResult(ctx context.Context, t Ticket, n int64) error {
	if err := t.check(shapeCount); err != nil {
		return err
	}
	if t.Cacheable() {
		s.set(ctx, t.key, wire.EncodeScalar(uint64(n)))
	}
	return nil
}

func (s *strategy[T]) SaveAggregateResult(ctx context.Context, t Ticket, v float64) error {
	if err := t.check(shapeAggregate); err != nil {
		return err
	}
	if t.Cacheable() {
		s.set(ctx, t.key, wire.EncodeScalar(math.Float64bits(v)))
	}
	return nil
}

func (s *strategy[T]) saveSingle(ctx context.Context, t Ticket, v T) error {
	if err := t.check(shapeSingle); err != nil {
		return err
	}
	if !t.Cacheable() {
		return nil
	}
	payload, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("gencache: encode: %w", err)
	}
	s.set(ctx, t.key, wire.EncodeSingle(payload))
	return nil
}

func (s *strategy[T]) saveList(ctx context.Context, t Ticket, r Result[T]) error {
	if err := t.check(shapeList); err != nil {
		return err
	}
	if !t.Cacheable() {
		return nil
	}
	if s.maxResults > 0 && len(r.Items) > s.maxResults {
		s.log.Debug("result larger than MaxResults; not cached", Fields{"key": t.key, "n": len(r.Items), "max": s.maxResults})
		s.hooks.ResultTooLarge(s.typeName, t.op, len(r.Items), s.maxResults)
		return nil
	}
	payloads := make([][]byte, 0, len(r.Items))
	for _, v := range r.Items {
		b, err := s.codec.Encode(v)
		if err != nil {
			return fmt.Errorf("gencache: encode: %w", err)
		}
		payloads = append(payloads, b)
	}
	wireb, err := wire.EncodeList(payloads)
	if err != nil {
		return err
	}
	if t.paged {
		total := r.Total
		if total < len(r.Items) {
			total = len(r.Items)
		}
		if !s.set(ctx, keys.PagingTotalKey(t.key), wire.EncodeScalar(uint64(total))) {
			return nil // page without total is unreadable
		}
	}
	s.set(ctx, t.key, wireb)
	return nil
}

// ==============================
// Mutations
// ==============================

func (s *strategy[T]) Add(ctx context.Context, e T) error    { return s.single(ctx, mutAdd, e) }
func (s *strategy[T]) Update(ctx context.Context, e T) error { return s.single(ctx, mutUpdate, e) }
func (s *strategy[T]) Delete(ctx context.Context, e T) error { return s.single(ctx, mutDelete, e) }

func (s *strategy[T]) single(ctx context.Context, k mutationKind, e T) error {
	if isNil(e) {
		return ErrNilEntity
	}
	s.apply(ctx, []mutation[T]{{kind: k, e: e}})
	return nil
}

func (s *strategy[T]) Batch() *Batch[T] { return &Batch[T]{to: s} }

// apply runs write-through per mutation, then bumps each touched partition
// once and the type generation once.
func (s *strategy[T]) apply(ctx context.Context, ops []mutation[T]) {
	if !s.writeThrough && !s.generational {
		return
	}
	scope, err := s.scope(ctx)
	if err != nil {
		s.log.Error("writes not reflected in cache: scope unavailable", Fields{"count": len(ops), "err": err})
		return
	}

	var touched []string
	seen := make(map[string]struct{})
	note := func(e T) {
		v, ok := s.part.ResolveFromEntity(e)
		if !ok {
			return
		}
		pv, err := keys.PartitionValue(v)
		if err != nil {
			// no query can be scoped to a value that cannot be rendered
			s.log.Warn("partition value not renderable; partition not bumped", Fields{"err": err})
			return
		}
		if _, dup := seen[pv]; dup {
			return
		}
		seen[pv] = struct{}{}
		touched = append(touched, pv)
	}

	for _, m := range ops {
		if s.generational {
			// an update may move the entity out of its old partition
			if m.kind == mutUpdate && s.writeThrough && s.part.Configured() {
				if old, ok := s.cachedEntity(ctx, scope, m.e); ok {
					note(old)
				}
			}
			note(m.e)
		}
		if s.writeThrough {
			s.writeThroughOne(ctx, scope, m)
		}
	}

	if !s.generational {
		return
	}
	for _, pv := range touched {
		s.bump(ctx, keys.PartitionGenerationKey(scope, s.typeName, pv))
	}
	s.bump(ctx, keys.GenerationKey(scope, s.typeName))
}

func (s *strategy[T]) writeThroughOne(ctx context.Context, scope string, m mutation[T]) {
	key, err := keys.IDKey(scope, s.typeName, s.idOf(m.e))
	if err != nil {
		// Get renders ids the same way, so nothing can be cached under it
		s.log.Warn("entity id not renderable; write-through skipped", Fields{"err": err})
		return
	}
	if m.kind == mutDelete {
		s.clear(ctx, key)
		return
	}
	payload, err := s.codec.Encode(m.e)
	if err != nil {
		s.log.Warn("write-through encode failed; evicting", Fields{"key": key, "err": err})
		s.clear(ctx, key)
		return
	}
	if !s.set(ctx, key, wire.EncodeSingle(payload)) {
		// never leave the previous version readable
		s.clear(ctx, key)
	}
}

func (s *strategy[T]) cachedEntity(ctx context.Context, scope string, e T) (T, bool) {
	var zero T
	key, err := keys.IDKey(scope, s.typeName, s.idOf(e))
	if err != nil {
		return zero, false
	}
	raw, ok := s.get(ctx, key)
	if !ok {
		return zero, false
	}
	payload, err := wire.DecodeSingle(raw)
	if err != nil {
		return zero, false
	}
	old, err := s.codec.Decode(payload)
	if err != nil {
		return zero, false
	}
	return old, true
}

func (s *strategy[T]) idOf(e T) []any {
	id := make([]any, len(s.key))
	for i, k := range s.key {
		id[i] = k.Value(e)
	}
	return id
}

func (s *strategy[T]) bump(ctx context.Context, scopeKey string) {
	g, err := s.gens.Increment(ctx, scopeKey)
	if err != nil {
		s.log.Error("generation bump failed", Fields{"key": scopeKey, "err": err})
		s.hooks.GenerationBumpError(scopeKey, err)
		return
	}
	s.log.Debug("generation bumped", Fields{"key": scopeKey, "gen": g})
}

// ==============================
// Explicit invalidation
// ==============================

func (s *strategy[T]) InvalidatePartition(ctx context.Context, value any) error {
	if !s.part.Configured() {
		return ErrNoPartition
	}
	if value == nil {
		return ErrNilArgument
	}
	scope, err := s.scope(ctx)
	if err != nil {
		return err
	}
	pv, err := keys.PartitionValue(value)
	if err != nil {
		return &FingerprintError{Op: "InvalidatePartition", Err: err}
	}
	return s.increment(ctx, keys.PartitionGenerationKey(scope, s.typeName, pv))
}

func (s *strategy[T]) ClearAll(ctx context.Context) error {
	return s.increment(ctx, keys.ClearAllKey(s.prefix, s.typeName))
}

func (s *strategy[T]) ClearAllTypes(ctx context.Context) error {
	g, err := s.cluster.Bump(ctx)
	if err != nil {
		s.hooks.GenerationBumpError("cluster", err)
		return fmt.Errorf("gencache: bump cluster generation: %w", err)
	}
	s.log.Info("cluster generation bumped", Fields{"gen": g})
	return nil
}

func (s *strategy[T]) increment(ctx context.Context, scopeKey string) error {
	g, err := s.gens.Increment(ctx, scopeKey)
	if err != nil {
		s.hooks.GenerationBumpError(scopeKey, err)
		return fmt.Errorf("gencache: bump %q: %w", scopeKey, err)
	}
	s.log.Info("generation bumped", Fields{"key": scopeKey, "gen": g})
	return nil
}

func (s *strategy[T]) Close(ctx context.Context) error {
	return s.p.Close(ctx)
}

// ==============================
// Provider calls (fail-open)
// ==============================

func (s *strategy[T]) get(ctx context.Context, key string) ([]byte, bool) {
	if key == "" {
		return nil, false
	}
	raw, ok, err := s.p.Get(ctx, key)
	if err != nil {
		s.providerFault("get", key, err)
		return nil, false
	}
	return raw, ok
}

func (s *strategy[T]) set(ctx context.Context, key string, b []byte) bool {
	ok, err := s.p.Set(ctx, key, b, pr.PriorityDefault, s.ttl)
	if err != nil {
		s.providerFault("set", key, err)
		return false
	}
	if !ok {
		s.log.Debug("Set rejected by provider (pressure)", Fields{"key": key})
		s.hooks.ProviderSetRejected(key)
	}
	return ok
}

func (s *strategy[T]) clear(ctx context.Context, key string) {
	if err := s.p.Clear(ctx, key); err != nil {
		s.providerFault("clear", key, err)
	}
}

func (s *strategy[T]) corrupt(ctx context.Context, key, reason string) {
	s.clear(ctx, key) // self-heal
	s.log.Debug("cleared corrupt entry", Fields{"key": key, "reason": reason})
	s.hooks.CorruptEntry(key, reason)
}

func (s *strategy[T]) fingerprintFault(op string, err error) {
	fe := &FingerprintError{Op: op, Err: err}
	s.log.Warn("fingerprint failed; query not cached", Fields{"op": op, "err": fe})
	s.hooks.FingerprintError(s.typeName, op, fe)
}

func (s *strategy[T]) providerFault(op, key string, err error) {
	s.log.Warn("provider "+op+" failed; continuing uncached", Fields{"key": key, "err": err})
	s.hooks.ProviderError(op, key, err)
}

func canonicalID(id []any) (string, error) {
	parts := make([]string, len(id))
	for i, v := range id {
		cv, err := predicate.CanonicalValue(v)
		if err != nil {
			return "", fmt.Errorf("id[%d]: %w", i, err)
		}
		parts[i] = cv
	}
	return "id[" + strings.Join(parts, ",") + "]", nil
}

func isNil[T any](e T) bool {
	v := any(e)
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
