// Package partition extracts a single partition value from an entity or from
// filter criteria so invalidation can be scoped below the whole type.
package partition

import (
	"reflect"

	"github.com/unkn0wn-root/gencache/predicate"
)

// Resolver reads the partition field of T. Field is the name predicates use to
// reference it; Value is the compile-time accessor for entity instances.
type Resolver[T any] struct {
	Field string
	Value func(T) any
}

// Configured reports whether r can resolve anything at all.
func (r *Resolver[T]) Configured() bool {
	return r != nil && r.Field != "" && r.Value != nil
}

// ResolveFromEntity returns e's partition value. ok is false when no
// partition is configured or e is a nil pointer/interface.
func (r *Resolver[T]) ResolveFromEntity(e T) (any, bool) {
	if !r.Configured() || isNil(e) {
		return nil, false
	}
	return r.Value(e), true
}

// ResolveFromPredicate returns the partition value p pins the field to.
// It succeeds only when exactly one distinct value is pinned across the tree:
// equality against the field pins the other operand, inequalities and
// ordering comparisons never pin, a negation never pins, and a disjunction
// pins only if every branch pins the same single value. Any operand that
// cannot be evaluated makes resolution fail.
func (r *Resolver[T]) ResolveFromPredicate(p predicate.Predicate) (any, bool) {
	if !r.Configured() || p == nil {
		return nil, false
	}
	s, ok := r.pins(p)
	if !ok || len(s) != 1 {
		return nil, false
	}
	for _, v := range s {
		return v, true
	}
	return nil, false
}

// pinSet maps a value's canonical form to the value.
type pinSet map[string]any

func (s pinSet) add(v any) bool {
	k, err := predicate.CanonicalValue(v)
	if err != nil {
		return false
	}
	s[k] = v
	return true
}

func (r *Resolver[T]) pins(p predicate.Predicate) (pinSet, bool) {
	switch n := p.(type) {
	case predicate.AndExpr:
		out := pinSet{}
		for _, t := range n.Terms {
			s, ok := r.pins(t)
			if !ok {
				return nil, false
			}
			for k, v := range s {
				out[k] = v
			}
		}
		return out, true

	case predicate.OrExpr:
		var common pinSet
		for i, t := range n.Terms {
			s, ok := r.pins(t)
			if !ok {
				return nil, false
			}
			if len(s) != 1 {
				return pinSet{}, true
			}
			if i == 0 {
				common = s
				continue
			}
			if !sameSingle(common, s) {
				return pinSet{}, true
			}
		}
		if common == nil {
			return pinSet{}, true
		}
		return common, true

	case predicate.Comparison:
		if n.Op != predicate.OpEq {
			return pinSet{}, true
		}
		return r.pinEquality(n.Left, n.Right)

	case predicate.MethodCall:
		if n.Method != "Equals" || len(n.Args) != 1 {
			return pinSet{}, true
		}
		return r.pinEquality(n.Target, n.Args[0])

	default:
		// NotExpr, Opaque and anything unknown never pin.
		return pinSet{}, true
	}
}

func (r *Resolver[T]) pinEquality(left, right predicate.Operand) (pinSet, bool) {
	var other predicate.Operand
	switch {
	case r.isPartitionField(left) && !isField(right):
		other = right
	case r.isPartitionField(right) && !isField(left):
		other = left
	default:
		return pinSet{}, true
	}
	v, err := predicate.Eval(other)
	if err != nil {
		return nil, false
	}
	s := pinSet{}
	if !s.add(v) {
		return nil, false
	}
	return s, true
}

func (r *Resolver[T]) isPartitionField(o predicate.Operand) bool {
	f, ok := o.(predicate.FieldRef)
	return ok && f.Name == r.Field
}

func isField(o predicate.Operand) bool {
	_, ok := o.(predicate.FieldRef)
	return ok
}

func sameSingle(a, b pinSet) bool {
	for k := range a {
		_, ok := b[k]
		return ok
	}
	return false
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
