package lisp

// Value is both a node of the syntax tree and a runtime value.
// The set of implementations is closed: Integer, Float, String, Symbol,
// Special, Call, *Cell, *Array, *Native, *Closure and *SpecialForm.
type Value interface {
	value()
}

// Integer is a self-evaluating integer literal.
type Integer int64

// Float is a self-evaluating float literal.
type Float float64

// String is a self-evaluating string literal.
type String string

// Symbol evaluates by environment lookup of its name.
type Symbol string

// Special is a quoted name ('foo). It evaluates to itself.
type Special string

// Call represents (operator arg1 ... argN). It always has an operator.
type Call []Value

// Cell represents a list cell.
// &Cell{car, cdr} works as the "cons" operation.
type Cell struct {
	Car Value
	Cdr Value
}

// Array is a flat sequence read literally.
type Array struct {
	Items []Value
}

// NativeFunc is the calling convention of host functions. args are already
// evaluated.
type NativeFunc = func(env *Env, args []Value) (Value, error)

// Native represents a function implemented in Go.
type Native struct {
	Name string
	Fn   NativeFunc
}

// Closure represents a user function: the environment it was defined in, its
// parameter names and its body forms.
type Closure struct {
	Name   string
	Params []string
	Rest   string // name after &rest, if any
	Body   []Value
	Env    *Env
}

// FormFunc receives the unevaluated operands of a special form.
type FormFunc = func(env *Env, args []Value) (Value, error)

// SpecialForm is the root binding of a special-form name.
type SpecialForm struct {
	Name string
	Fn   FormFunc
}

func (Integer) value()      {}
func (Float) value()        {}
func (String) value()       {}
func (Symbol) value()       {}
func (Special) value()      {}
func (Call) value()         {}
func (*Cell) value()        {}
func (*Array) value()       {}
func (*Native) value()      {}
func (*Closure) value()     {}
func (*SpecialForm) value() {}

// The canonical truth values. There is no separate boolean type.
const (
	Nil Symbol = "NIL"
	T   Symbol = "T"
)

// IsNil reports whether v is NIL.
func IsNil(v Value) bool {
	s, ok := v.(Symbol)
	return ok && s == Nil
}

// Bool converts a Go bool to T or NIL.
func Bool(b bool) Value {
	if b {
		return T
	}
	return Nil
}

// List(a, b, c) builds a chain of Cells (a . (b . (c . NIL))).
func List(items ...Value) Value {
	return ListWithTail(items, Nil)
}

// ListWithTail builds a chain of Cells whose last cdr is tail.
func ListWithTail(items []Value, tail Value) Value {
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = &Cell{items[i], result}
	}
	return result
}

// NewArray constructs an Array of items.
func NewArray(items ...Value) *Array {
	return &Array{Items: items}
}

// IsCallable reports whether v can be applied to arguments.
func IsCallable(v Value) bool {
	switch v.(type) {
	case *Native, *Closure, Special:
		return true
	}
	return false
}

// Equal compares kind and value. Cells, arrays and calls compare
// element-wise; functions compare by identity. A pair of arrays met again
// while being compared counts as equal.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

type arrayPair struct{ a, b *Array }

func equal(a, b Value, seen map[arrayPair]bool) bool {
	switch x := a.(type) {
	case Call:
		y, ok := b.(Call)
		return ok && equalSlices(x, y, seen)
	case *Cell:
		y, ok := b.(*Cell)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		return equal(x.Car, y.Car, seen) && equal(x.Cdr, y.Cdr, seen)
	case *Array:
		y, ok := b.(*Array)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		key := arrayPair{x, y}
		if seen[key] {
			return true
		}
		if seen == nil {
			seen = make(map[arrayPair]bool)
		}
		seen[key] = true
		return equalSlices(x.Items, y.Items, seen)
	case nil:
		return b == nil
	}
	if _, ok := b.(Call); ok {
		return false
	}
	return a == b
}

func equalSlices(a, b []Value, seen map[arrayPair]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal(a[i], b[i], seen) {
			return false
		}
	}
	return true
}

// TypeName returns the user-visible name of v's kind.
func TypeName(v Value) string {
	switch v.(type) {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case String:
		return "STRING"
	case Symbol:
		return "SYMBOL"
	case Special:
		return "SPECIAL"
	case Call:
		return "EXPRESSION"
	case *Cell:
		return "LIST"
	case *Array:
		return "ARRAY"
	case *Native, *Closure:
		return "FUNCTION"
	case *SpecialForm:
		return "SPECIAL-FORM"
	}
	return "UNKNOWN"
}
