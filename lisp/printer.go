package lisp

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Str(v) returns the printed representation of v; strings are quoted.
func Str(v Value) string {
	return str2(v, true, nil)
}

// Princ(v) returns the representation of v with strings unquoted.
func Princ(v Value) string {
	return str2(v, false, nil)
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// printing holds the arrays and lists currently being printed. A container
// met again inside itself prints as "...".
type printing map[Value]bool

func (p printing) enter(v Value) (printing, bool) {
	if p == nil {
		p = make(printing)
	}
	if p[v] {
		return p, false
	}
	p[v] = true
	return p, true
}

func str2(a Value, quoteString bool, printed printing) string {
	switch x := a.(type) {
	case nil:
		return "NIL"
	case Integer:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return formatFloat(float64(x))
	case String:
		if quoteString {
			return `"` + string(x) + `"`
		}
		return string(x)
	case Symbol:
		return string(x)
	case Special:
		return string(x)
	case Call:
		return "(" + strItems(x, quoteString, printed) + ")"
	case *Array:
		printed, ok := printed.enter(x)
		if !ok {
			return "..."
		}
		defer delete(printed, x)
		return "#(" + strItems(x.Items, quoteString, printed) + ")"
	case *Cell:
		printed, ok := printed.enter(x)
		if !ok {
			return "..."
		}
		defer delete(printed, x)
		return "(" + strListBody(x, quoteString, printed) + ")"
	case *Native:
		return "#<FUNCTION " + x.Name + ">"
	case *Closure:
		if x.Name == "" {
			return "#<FUNCTION (LAMBDA)>"
		}
		return "#<FUNCTION " + x.Name + ">"
	case *SpecialForm:
		return "#<SPECIAL-FORM " + x.Name + ">"
	}
	return fmt.Sprintf("%v", a)
}

func strItems(items []Value, quoteString bool, printed printing) string {
	s := make([]string, len(items))
	for i, v := range items {
		s[i] = str2(v, quoteString, printed)
	}
	return strings.Join(s, " ")
}

func strListBody(x *Cell, quoteString bool, printed printing) string {
	s := make([]string, 0, 10)
	var y Value = x
	for {
		c, ok := y.(*Cell)
		if !ok {
			break
		}
		if c != x && printed[c] {
			s = append(s, "...")
			return strings.Join(s, " ")
		}
		s = append(s, str2(c.Car, quoteString, printed))
		y = c.Cdr
	}
	if !IsNil(y) {
		s = append(s, ".", str2(y, quoteString, printed))
	}
	return strings.Join(s, " ")
}

var (
	bracketColor = color.New(color.FgRed)
	kindColor    = color.New(color.FgBlue)
	callColor    = color.New(color.FgYellow)
	valueColor   = color.New(color.FgGreen)
)

// treeLabel returns "<KIND value=[v]>" for a node.
func treeLabel(v Value) string {
	kind := TypeName(v)
	k := kindColor.Sprint(kind)
	if _, ok := v.(Call); ok {
		k = callColor.Sprint(kind)
	}
	s := bracketColor.Sprint("<") + k
	switch v.(type) {
	case Call, *Cell, *Array:
	default:
		s += bracketColor.Sprint(" value=") + "[" + valueColor.Sprint(Princ(v)) + "]"
	}
	return s + bracketColor.Sprint(">")
}

func children(v Value) []Value {
	switch x := v.(type) {
	case Call:
		return x
	case *Array:
		return x.Items
	case *Cell:
		return []Value{x.Car, x.Cdr}
	}
	return nil
}

// WriteTree writes v as an indented tree, one node per line.
// An array already on the path prints as a bare label without children.
func WriteTree(w io.Writer, v Value) error {
	return writeTree(w, v, 0, nil)
}

func writeTree(w io.Writer, v Value, depth int, printed printing) error {
	if _, err := fmt.Fprintln(w, strings.Repeat("    ", depth)+treeLabel(v)); err != nil {
		return err
	}
	if a, ok := v.(*Array); ok {
		var fresh bool
		if printed, fresh = printed.enter(a); !fresh {
			return nil
		}
		defer delete(printed, a)
	}
	for _, c := range children(v) {
		if err := writeTree(w, c, depth+1, printed); err != nil {
			return err
		}
	}
	return nil
}
