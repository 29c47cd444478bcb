// Package predicate models filter criteria as an explicit tagged union instead
// of a general expression AST:
//
//	And | Or | Not | Comparison(op, left, right) | MethodCall | Opaque
//
// Operands are field references, constants, or lazily evaluated values (the
// equivalent of a closure-captured variable). Anything a caller cannot express
// with these nodes is wrapped in Other and is treated as unanalyzable.
//
//	crit := predicate.And(
//	    predicate.FieldEq("ContactTypeID", 1),
//	    predicate.Gt(predicate.Field("Age"), predicate.Value(18)),
//	)
package predicate

// Predicate is a boolean filter node.
type Predicate interface {
	isPredicate()
}

// Operand is one side of a Comparison or an argument of a MethodCall.
type Operand interface {
	isOperand()
}

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

type AndExpr struct{ Terms []Predicate }

type OrExpr struct{ Terms []Predicate }

type NotExpr struct{ Term Predicate }

type Comparison struct {
	Op          Op
	Left, Right Operand
}

// MethodCall is Target.Method(Args...), e.g. x.Status.Equals("open").
type MethodCall struct {
	Target Operand
	Method string
	Args   []Operand
}

// Opaque is a predicate the model cannot represent. Desc must identify it
// uniquely, since it is all the fingerprint sees.
type Opaque struct{ Desc string }

func (AndExpr) isPredicate()    {}
func (OrExpr) isPredicate()     {}
func (NotExpr) isPredicate()    {}
func (Comparison) isPredicate() {}
func (MethodCall) isPredicate() {}
func (Opaque) isPredicate()     {}

// FieldRef is a member access on the entity being filtered.
type FieldRef struct{ Name string }

// Const is a literal value.
type Const struct{ V any }

// LazyValue is evaluated every time the predicate is analyzed or fingerprinted.
type LazyValue struct{ Fn func() any }

func (FieldRef) isOperand()  {}
func (Const) isOperand()     {}
func (LazyValue) isOperand() {}

func And(terms ...Predicate) Predicate { return AndExpr{Terms: terms} }
func Or(terms ...Predicate) Predicate  { return OrExpr{Terms: terms} }
func Not(term Predicate) Predicate     { return NotExpr{Term: term} }

func Field(name string) Operand        { return FieldRef{Name: name} }
func Value(v any) Operand              { return Const{V: v} }
func Lazy(fn func() any) Operand       { return LazyValue{Fn: fn} }
func Other(desc string) Predicate      { return Opaque{Desc: desc} }
func Eq(left, right Operand) Predicate { return Comparison{Op: OpEq, Left: left, Right: right} }
func Ne(left, right Operand) Predicate { return Comparison{Op: OpNe, Left: left, Right: right} }
func Lt(left, right Operand) Predicate { return Comparison{Op: OpLt, Left: left, Right: right} }
func Le(left, right Operand) Predicate { return Comparison{Op: OpLe, Left: left, Right: right} }
func Gt(left, right Operand) Predicate { return Comparison{Op: OpGt, Left: left, Right: right} }
func Ge(left, right Operand) Predicate { return Comparison{Op: OpGe, Left: left, Right: right} }

// FieldEq is shorthand for Eq(Field(name), Value(v)).
func FieldEq(name string, v any) Predicate {
	return Eq(Field(name), Value(v))
}

// Call builds target.method(args...).
func Call(target Operand, method string, args ...Operand) Predicate {
	return MethodCall{Target: target, Method: method, Args: args}
}
