package predicate

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Null is the canonical form of an absent predicate, options or selector.
const Null = "null"

var ErrNilOperand = errors.New("predicate: nil operand")

// canonical CBOR: RFC 8949 core deterministic encoding, so map order and
// integer width never change the bytes.
var detMode = func() cbor.EncMode {
	eo := cbor.CoreDetEncOptions()
	eo.Time = cbor.TimeRFC3339Nano
	em, err := eo.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// Eval resolves an operand to a value. Lazy operands are invoked; a panic
// inside one is returned as an error.
func Eval(o Operand) (v any, err error) {
	switch op := o.(type) {
	case Const:
		return op.V, nil
	case LazyValue:
		if op.Fn == nil {
			return nil, ErrNilOperand
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("predicate: lazy operand panicked: %v", r)
			}
		}()
		return op.Fn(), nil
	case FieldRef:
		return nil, fmt.Errorf("predicate: cannot evaluate field reference %q", op.Name)
	case nil:
		return nil, ErrNilOperand
	default:
		return nil, fmt.Errorf("predicate: unknown operand %T", o)
	}
}

// Bind evaluates every lazy operand in p once and returns a copy holding
// the results as constants, so later walks over the copy agree on the
// values. p itself is not modified.
func Bind(p Predicate) (Predicate, error) {
	switch n := p.(type) {
	case nil:
		return nil, nil
	case AndExpr:
		terms, err := bindTerms(n.Terms)
		if err != nil {
			return nil, err
		}
		return AndExpr{Terms: terms}, nil
	case OrExpr:
		terms, err := bindTerms(n.Terms)
		if err != nil {
			return nil, err
		}
		return OrExpr{Terms: terms}, nil
	case NotExpr:
		term, err := Bind(n.Term)
		if err != nil {
			return nil, err
		}
		return NotExpr{Term: term}, nil
	case Comparison:
		left, err := bindOperand(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := bindOperand(n.Right)
		if err != nil {
			return nil, err
		}
		return Comparison{Op: n.Op, Left: left, Right: right}, nil
	case MethodCall:
		target, err := bindOperand(n.Target)
		if err != nil {
			return nil, err
		}
		var args []Operand
		if n.Args != nil {
			args = make([]Operand, len(n.Args))
		}
		for i, a := range n.Args {
			if args[i], err = bindOperand(a); err != nil {
				return nil, err
			}
		}
		return MethodCall{Target: target, Method: n.Method, Args: args}, nil
	case Opaque:
		return n, nil
	default:
		return nil, fmt.Errorf("predicate: unknown node %T", p)
	}
}

func bindTerms(terms []Predicate) ([]Predicate, error) {
	if terms == nil {
		return nil, nil
	}
	out := make([]Predicate, len(terms))
	for i, t := range terms {
		b, err := Bind(t)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func bindOperand(o Operand) (Operand, error) {
	lv, ok := o.(LazyValue)
	if !ok {
		return o, nil
	}
	v, err := Eval(lv)
	if err != nil {
		return nil, err
	}
	return Const{V: v}, nil
}

// CanonicalValue renders v as hex of its deterministic CBOR encoding. Equal
// values of different integer widths render identically, and a time renders
// by its instant, not its zone or monotonic reading.
func CanonicalValue(v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		v = t.UTC()
	case *time.Time:
		if t != nil {
			v = t.UTC()
		}
	}
	b, err := detMode.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("predicate: cannot encode %T: %w", v, err)
	}
	return hex.EncodeToString(b), nil
}

// Canonical renders p as a stable string. The output never contains a NUL
// byte: names are strconv.Quote'd and values are hex.
func Canonical(p Predicate) (string, error) {
	if p == nil {
		return Null, nil
	}
	var b strings.Builder
	if err := writePredicate(&b, p); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writePredicate(b *strings.Builder, p Predicate) error {
	switch n := p.(type) {
	case nil:
		b.WriteString(Null)
	case AndExpr:
		return writeTerms(b, "and", n.Terms)
	case OrExpr:
		return writeTerms(b, "or", n.Terms)
	case NotExpr:
		b.WriteString("not(")
		if err := writePredicate(b, n.Term); err != nil {
			return err
		}
		b.WriteByte(')')
	case Comparison:
		b.WriteString("cmp(")
		b.WriteString(strconv.Quote(n.Op.String()))
		b.WriteByte(',')
		if err := writeOperand(b, n.Left); err != nil {
			return err
		}
		b.WriteByte(',')
		if err := writeOperand(b, n.Right); err != nil {
			return err
		}
		b.WriteByte(')')
	case MethodCall:
		b.WriteString("call(")
		b.WriteString(strconv.Quote(n.Method))
		b.WriteByte(',')
		if err := writeOperand(b, n.Target); err != nil {
			return err
		}
		for _, a := range n.Args {
			b.WriteByte(',')
			if err := writeOperand(b, a); err != nil {
				return err
			}
		}
		b.WriteByte(')')
	case Opaque:
		b.WriteString("other(")
		b.WriteString(strconv.Quote(n.Desc))
		b.WriteByte(')')
	default:
		return fmt.Errorf("predicate: unknown node %T", p)
	}
	return nil
}

func writeTerms(b *strings.Builder, tag string, terms []Predicate) error {
	b.WriteString(tag)
	b.WriteByte('(')
	for i, t := range terms {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writePredicate(b, t); err != nil {
			return err
		}
	}
	b.WriteByte(')')
	return nil
}

func writeOperand(b *strings.Builder, o Operand) error {
	if f, ok := o.(FieldRef); ok {
		b.WriteString("field(")
		b.WriteString(strconv.Quote(f.Name))
		b.WriteByte(')')
		return nil
	}
	// lazy operands fingerprint by their current value
	v, err := Eval(o)
	if err != nil {
		return err
	}
	s, err := CanonicalValue(v)
	if err != nil {
		return err
	}
	b.WriteString("const(")
	b.WriteString(s)
	b.WriteByte(')')
	return nil
}
