package gencache

type shape uint8

const (
	shapeNone shape = iota
	shapeSingle
	shapeList
	shapeCount
	shapeAggregate
)

// Ticket is the key a lookup was made under. Saving through it writes to the
// generation observed at lookup time, so a result computed across a
// concurrent write lands in abandoned key space.
type Ticket struct {
	shape shape
	op    string
	key   string
	paged bool
}

// Cacheable reports whether Save will attempt to store anything.
func (t Ticket) Cacheable() bool { return t.key != "" }

// Key is the provider key the ticket writes to; empty when not cacheable.
func (t Ticket) Key() string { return t.key }

// Op is the operation tag of the lookup.
func (t Ticket) Op() string { return t.op }

func (t Ticket) check(want ...shape) error {
	if t.shape == shapeNone {
		return nil
	}
	for _, w := range want {
		if t.shape == w {
			return nil
		}
	}
	return ErrTicketKind
}
