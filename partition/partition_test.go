package partition

import (
	"testing"

	"github.com/unkn0wn-root/gencache/predicate"
)

type contact struct {
	ContactID     int
	ContactTypeID int
}

func resolver() *Resolver[*contact] {
	return &Resolver[*contact]{
		Field: "ContactTypeID",
		Value: func(c *contact) any { return c.ContactTypeID },
	}
}

func TestResolveFromEntity(t *testing.T) {
	r := resolver()
	if v, ok := r.ResolveFromEntity(&contact{ContactTypeID: 7}); !ok || v != 7 {
		t.Fatalf("got v=%v ok=%v", v, ok)
	}
	if _, ok := r.ResolveFromEntity(nil); ok {
		t.Fatalf("nil entity must not resolve")
	}
	var unset *Resolver[*contact]
	if _, ok := unset.ResolveFromEntity(&contact{}); ok {
		t.Fatalf("unconfigured resolver must not resolve")
	}
	if (&Resolver[*contact]{Field: "ContactTypeID"}).Configured() {
		t.Fatalf("resolver without accessor must not be configured")
	}
}

func TestResolveFromPredicate(t *testing.T) {
	r := resolver()
	field := predicate.Field("ContactTypeID")
	captured := 4

	cases := []struct {
		name string
		p    predicate.Predicate
		want any // nil => must not resolve
	}{
		{"equality", predicate.FieldEq("ContactTypeID", 1), 1},
		{"reversed", predicate.Eq(predicate.Value(2), field), 2},
		{"lazy", predicate.Eq(field, predicate.Lazy(func() any { return captured })), 4},
		{"equals call", predicate.Call(field, "Equals", predicate.Value(3)), 3},
		{"conjunction", predicate.And(
			predicate.FieldEq("ContactTypeID", 5),
			predicate.Gt(predicate.Field("Age"), predicate.Value(18)),
		), 5},
		{"repeated same value", predicate.And(
			predicate.FieldEq("ContactTypeID", 5),
			predicate.Eq(predicate.Value(int64(5)), field),
		), 5},
		{"or same value", predicate.Or(
			predicate.And(predicate.FieldEq("ContactTypeID", 6), predicate.FieldEq("Name", "a")),
			predicate.And(predicate.FieldEq("ContactTypeID", 6), predicate.FieldEq("Name", "b")),
		), 6},

		{"nil", nil, nil},
		{"not equal", predicate.Ne(field, predicate.Value(5)), nil},
		{"ordering", predicate.Lt(field, predicate.Value(5)), nil},
		{"or different values", predicate.Or(
			predicate.FieldEq("ContactTypeID", 5),
			predicate.FieldEq("ContactTypeID", 6),
		), nil},
		{"or one branch unscoped", predicate.Or(
			predicate.FieldEq("ContactTypeID", 5),
			predicate.FieldEq("Name", "x"),
		), nil},
		{"and conflicting", predicate.And(
			predicate.FieldEq("ContactTypeID", 5),
			predicate.FieldEq("ContactTypeID", 6),
		), nil},
		{"negated", predicate.Not(predicate.FieldEq("ContactTypeID", 5)), nil},
		{"other method", predicate.Call(field, "Contains", predicate.Value(5)), nil},
		{"opaque", predicate.Other("ContactTypeID IN (5)"), nil},
		{"other field", predicate.FieldEq("ContactID", 5), nil},
		{"field to field", predicate.Eq(field, predicate.Field("OtherTypeID")), nil},
		{"lazy panics", predicate.Eq(field, predicate.Lazy(func() any { panic("boom") })), nil},
		{"and with failing lazy", predicate.And(
			predicate.FieldEq("ContactTypeID", 5),
			predicate.Eq(field, predicate.Lazy(func() any { panic("boom") })),
		), nil},
	}
	for _, tc := range cases {
		v, ok := r.ResolveFromPredicate(tc.p)
		if tc.want == nil {
			if ok {
				t.Fatalf("%s: resolved %v, want no partition", tc.name, v)
			}
			continue
		}
		if !ok {
			t.Fatalf("%s: did not resolve, want %v", tc.name, tc.want)
		}
		if got, want := predicate.FieldEq("x", v), predicate.FieldEq("x", tc.want); !sameCanonical(t, got, want) {
			t.Fatalf("%s: resolved %v, want %v", tc.name, v, tc.want)
		}
	}
}

func sameCanonical(t *testing.T, a, b predicate.Predicate) bool {
	t.Helper()
	ca, err := predicate.Canonical(a)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	cb, err := predicate.Canonical(b)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	return ca == cb
}
