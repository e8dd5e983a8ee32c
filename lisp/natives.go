package lisp

import (
	"io"
	"math"
	"strings"
	"unicode/utf8"
)

// Natives

func wantCount(name string, args []Value, n int) error {
	if len(args) != n {
		return typeError("%s: expected %d arguments, got %d", name, n, len(args))
	}
	return nil
}

func isNumber(v Value) bool {
	switch v.(type) {
	case Integer, Float:
		return true
	}
	return false
}

func toFloat(name string, v Value) (float64, error) {
	switch x := v.(type) {
	case Integer:
		return float64(x), nil
	case Float:
		return float64(x), nil
	}
	return 0, typeError("%s: %s is not a number", name, Str(v))
}

// arith folds args left to right, staying in Integer while both sides are
// integers.
func arith(name string, args []Value, x0 Value,
	fi func(a, b int64) (int64, error), ff func(a, b float64) (float64, error)) (Value, error) {
	acc := x0
	if acc == nil {
		if len(args) == 0 {
			return nil, typeError("%s: expected at least 1 argument", name)
		}
		acc, args = args[0], args[1:]
		if !isNumber(acc) {
			return nil, typeError("%s: %s is not a number", name, Str(acc))
		}
	}
	for _, b := range args {
		if ai, ok := acc.(Integer); ok {
			if bi, ok := b.(Integer); ok {
				r, err := fi(int64(ai), int64(bi))
				if err != nil {
					return nil, err
				}
				acc = Integer(r)
				continue
			}
		}
		af, err := toFloat(name, acc)
		if err != nil {
			return nil, err
		}
		bf, err := toFloat(name, b)
		if err != nil {
			return nil, err
		}
		r, err := ff(af, bf)
		if err != nil {
			return nil, err
		}
		acc = Float(r)
	}
	return acc, nil
}

func divisionByZero(name string) error {
	return typeError("%s: division by zero", name)
}

func plus_(env *Env, args []Value) (Value, error) {
	return arith("+", args, Integer(0),
		func(a, b int64) (int64, error) { return a + b, nil },
		func(a, b float64) (float64, error) { return a + b, nil })
}

func star_(env *Env, args []Value) (Value, error) {
	return arith("*", args, Integer(1),
		func(a, b int64) (int64, error) { return a * b, nil },
		func(a, b float64) (float64, error) { return a * b, nil })
}

func minus_(env *Env, args []Value) (Value, error) {
	if len(args) == 1 {
		return arith("-", args, Integer(0),
			func(a, b int64) (int64, error) { return a - b, nil },
			func(a, b float64) (float64, error) { return a - b, nil })
	}
	return arith("-", args, nil,
		func(a, b int64) (int64, error) { return a - b, nil },
		func(a, b float64) (float64, error) { return a - b, nil })
}

// (/ a b...) is true division and always yields a float.
func slash_(env *Env, args []Value) (Value, error) {
	if len(args) == 1 {
		args = append([]Value{Float(1)}, args...)
	}
	if len(args) == 0 {
		return nil, typeError("/: expected at least 1 argument")
	}
	first, err := toFloat("/", args[0])
	if err != nil {
		return nil, err
	}
	return arith("/", args[1:], Float(first), nil,
		func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, divisionByZero("/")
			}
			return a / b, nil
		})
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func floatFloorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func slashSlash_(env *Env, args []Value) (Value, error) {
	return arith("//", args, nil,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, divisionByZero("//")
			}
			return floorDiv(a, b), nil
		},
		func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, divisionByZero("//")
			}
			return math.Floor(a / b), nil
		})
}

// % and mod take the sign of the divisor.
func mod_(env *Env, args []Value) (Value, error) {
	return arith("mod", args, nil,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, divisionByZero("mod")
			}
			return floorMod(a, b), nil
		},
		func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, divisionByZero("mod")
			}
			return floatFloorMod(a, b), nil
		})
}

// rem takes the sign of the dividend.
func rem_(env *Env, args []Value) (Value, error) {
	return arith("rem", args, nil,
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, divisionByZero("rem")
			}
			return a % b, nil
		},
		func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, divisionByZero("rem")
			}
			return math.Mod(a, b), nil
		})
}

func abs_(env *Env, args []Value) (Value, error) {
	if err := wantCount("abs", args, 1); err != nil {
		return nil, err
	}
	switch x := args[0].(type) {
	case Integer:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case Float:
		return Float(math.Abs(float64(x))), nil
	}
	return nil, typeError("abs: %s is not a number", Str(args[0]))
}

func onePlus_(env *Env, args []Value) (Value, error) {
	if err := wantCount("1+", args, 1); err != nil {
		return nil, err
	}
	return plus_(env, []Value{args[0], Integer(1)})
}

func oneMinus_(env *Env, args []Value) (Value, error) {
	if err := wantCount("1-", args, 1); err != nil {
		return nil, err
	}
	return minus_(env, []Value{args[0], Integer(1)})
}

// compare returns -1, 0 or 1. Numbers compare numerically, strings
// lexicographically.
func compare(name string, a, b Value) (int, error) {
	if ai, ok := a.(Integer); ok {
		if bi, ok := b.(Integer); ok {
			switch {
			case ai < bi:
				return -1, nil
			case ai > bi:
				return 1, nil
			}
			return 0, nil
		}
	}
	if isNumber(a) && isNumber(b) {
		af, _ := toFloat(name, a)
		bf, _ := toFloat(name, b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		}
		return 0, nil
	}
	if as, ok := a.(String); ok {
		if bs, ok := b.(String); ok {
			return strings.Compare(string(as), string(bs)), nil
		}
	}
	return 0, typeError("%s: cannot compare %s and %s", name, Str(a), Str(b))
}

// compareAll returns T if fn holds for every adjacent pair of args.
func compareAll(name string, fn func(int) bool) NativeFunc {
	return func(env *Env, args []Value) (Value, error) {
		if len(args) < 1 {
			return nil, typeError("%s: expected at least 1 argument", name)
		}
		for i := 1; i < len(args); i++ {
			c, err := compare(name, args[i-1], args[i])
			if err != nil {
				return nil, err
			}
			if !fn(c) {
				return Nil, nil
			}
		}
		return T, nil
	}
}

// (= a b...) compares numbers numerically and anything else by Equal.
func numEqual_(env *Env, args []Value) (Value, error) {
	for i := 1; i < len(args); i++ {
		a, b := args[i-1], args[i]
		if isNumber(a) && isNumber(b) {
			c, err := compare("=", a, b)
			if err != nil {
				return nil, err
			}
			if c != 0 {
				return Nil, nil
			}
		} else if !Equal(a, b) {
			return Nil, nil
		}
	}
	return T, nil
}

func numNotEqual_(env *Env, args []Value) (Value, error) {
	v, err := numEqual_(env, args)
	if err != nil {
		return nil, err
	}
	return Bool(IsNil(v)), nil
}

func extremum(name string, want int) NativeFunc {
	return func(env *Env, args []Value) (Value, error) {
		if len(args) == 0 {
			return nil, typeError("%s: expected at least 1 argument", name)
		}
		best := args[0]
		for _, x := range args[1:] {
			c, err := compare(name, x, best)
			if err != nil {
				return nil, err
			}
			if c == want {
				best = x
			}
		}
		return best, nil
	}
}

func equal_(env *Env, args []Value) (Value, error) {
	if err := wantCount("equal", args, 2); err != nil {
		return nil, err
	}
	return Bool(Equal(args[0], args[1])), nil
}

// eq compares cells and arrays by identity.
func eq_(env *Env, args []Value) (Value, error) {
	if err := wantCount("eq", args, 2); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *Cell:
		b, ok := args[1].(*Cell)
		return Bool(ok && a == b), nil
	case *Array:
		b, ok := args[1].(*Array)
		return Bool(ok && a == b), nil
	case Call:
		return Nil, nil
	}
	return Bool(Equal(args[0], args[1])), nil
}

func predicate(name string, fn func(Value) bool) NativeFunc {
	return func(env *Env, args []Value) (Value, error) {
		if err := wantCount(name, args, 1); err != nil {
			return nil, err
		}
		return Bool(fn(args[0])), nil
	}
}

func isAtom(v Value) bool {
	_, ok := v.(*Cell)
	return !ok
}

func isList(v Value) bool {
	_, ok := v.(*Cell)
	return ok || IsNil(v)
}

func isString(v Value) bool {
	_, ok := v.(String)
	return ok
}

func car(v Value) (Value, error) {
	switch x := v.(type) {
	case *Cell:
		return x.Car, nil
	case Symbol:
		if x == Nil {
			return Nil, nil
		}
	}
	return nil, typeError("car: %s is not a list", Str(v))
}

func cdr(v Value) (Value, error) {
	switch x := v.(type) {
	case *Cell:
		return x.Cdr, nil
	case Symbol:
		if x == Nil {
			return Nil, nil
		}
	}
	return nil, typeError("cdr: %s is not a list", Str(v))
}

func car_(env *Env, args []Value) (Value, error) {
	if err := wantCount("car", args, 1); err != nil {
		return nil, err
	}
	return car(args[0])
}

func cdr_(env *Env, args []Value) (Value, error) {
	if err := wantCount("cdr", args, 1); err != nil {
		return nil, err
	}
	return cdr(args[0])
}

// cxr builds c[ad]+r by composing car and cdr from the right, so cadr is
// (car (cdr x)).
func cxr(ops string) NativeFunc {
	name := "c" + ops + "r"
	return func(env *Env, args []Value) (Value, error) {
		if err := wantCount(name, args, 1); err != nil {
			return nil, err
		}
		v := args[0]
		for i := len(ops) - 1; i >= 0; i-- {
			var err error
			if ops[i] == 'a' {
				v, err = car(v)
			} else {
				v, err = cdr(v)
			}
			if err != nil {
				return nil, err
			}
		}
		return v, nil
	}
}

// cxrNames returns every combination of a and d of length 2 and 3.
func cxrNames() []string {
	var result []string
	for _, n := range []int{2, 3} {
		for bits := 0; bits < 1<<n; bits++ {
			var sb strings.Builder
			for i := n - 1; i >= 0; i-- {
				if bits&(1<<i) == 0 {
					sb.WriteByte('a')
				} else {
					sb.WriteByte('d')
				}
			}
			result = append(result, sb.String())
		}
	}
	return result
}

func cons_(env *Env, args []Value) (Value, error) {
	if err := wantCount("cons", args, 2); err != nil {
		return nil, err
	}
	return &Cell{args[0], args[1]}, nil
}

func list_(env *Env, args []Value) (Value, error) {
	return List(args...), nil
}

func index(name string, v Value) (int, error) {
	i, ok := v.(Integer)
	if !ok {
		return 0, typeError("%s: %s is not an integer", name, Str(v))
	}
	return int(i), nil
}

func outOfBounds(name string, i, n int) error {
	return newError(IndexError, "%s: Index Out of Bounds: %d (length %d)", name, i, n)
}

// (aref array-or-string i)
func aref_(env *Env, args []Value) (Value, error) {
	if err := wantCount("aref", args, 2); err != nil {
		return nil, err
	}
	i, err := index("aref", args[1])
	if err != nil {
		return nil, err
	}
	switch x := args[0].(type) {
	case *Array:
		if i < 0 || i >= len(x.Items) {
			return nil, outOfBounds("aref", i, len(x.Items))
		}
		return x.Items[i], nil
	case String:
		runes := []rune(string(x))
		if i < 0 || i >= len(runes) {
			return nil, outOfBounds("aref", i, len(runes))
		}
		return String(runes[i]), nil
	}
	return nil, typeError("aref: %s is not an array", Str(args[0]))
}

// (elt sequence i) works on anything Iterate accepts.
func elt_(env *Env, args []Value) (Value, error) {
	if err := wantCount("elt", args, 2); err != nil {
		return nil, err
	}
	i, err := index("elt", args[1])
	if err != nil {
		return nil, err
	}
	items, err := Items(args[0])
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(items) {
		return nil, outOfBounds("elt", i, len(items))
	}
	return items[i], nil
}

// (nth i list)
func nth_(env *Env, args []Value) (Value, error) {
	if err := wantCount("nth", args, 2); err != nil {
		return nil, err
	}
	i, err := index("nth", args[0])
	if err != nil {
		return nil, err
	}
	items, err := Items(args[1])
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(items) {
		return Nil, nil
	}
	return items[i], nil
}

func length_(env *Env, args []Value) (Value, error) {
	if err := wantCount("length", args, 1); err != nil {
		return nil, err
	}
	switch x := args[0].(type) {
	case *Array:
		return Integer(len(x.Items)), nil
	case String:
		return Integer(utf8.RuneCountInString(string(x))), nil
	}
	items, err := Items(args[0])
	if err != nil {
		return nil, err
	}
	return Integer(len(items)), nil
}

func reverse_(env *Env, args []Value) (Value, error) {
	if err := wantCount("reverse", args, 1); err != nil {
		return nil, err
	}
	items, err := Items(args[0])
	if err != nil {
		return nil, err
	}
	reversed := make([]Value, len(items))
	for i, x := range items {
		reversed[len(items)-1-i] = x
	}
	switch args[0].(type) {
	case *Array:
		return NewArray(reversed...), nil
	case String:
		var sb strings.Builder
		for _, r := range reversed {
			sb.WriteString(string(r.(String)))
		}
		return String(sb.String()), nil
	}
	return List(reversed...), nil
}

// (append array x...) pushes onto the array in place and returns it.
// (append list...) returns a new list sharing only the last argument.
func append_(env *Env, args []Value) (Value, error) {
	if len(args) == 0 {
		return Nil, nil
	}
	if a, ok := args[0].(*Array); ok {
		a.Items = append(a.Items, args[1:]...)
		return a, nil
	}
	result := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		items, err := Items(args[i])
		if err != nil {
			return nil, err
		}
		result = ListWithTail(items, result)
	}
	return result, nil
}

func funcall_(env *Env, args []Value) (Value, error) {
	if len(args) == 0 {
		return nil, typeError("funcall: expected a function")
	}
	return Apply(args[0], args[1:], env)
}

// (apply f arg... list)
func apply_(env *Env, args []Value) (Value, error) {
	if len(args) < 2 {
		return nil, typeError("apply: expected a function and a list")
	}
	last, err := Items(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	spread := append(append([]Value{}, args[1:len(args)-1]...), last...)
	return Apply(args[0], spread, env)
}

func typeOf_(env *Env, args []Value) (Value, error) {
	if err := wantCount("type-of", args, 1); err != nil {
		return nil, err
	}
	return Special(TypeName(args[0])), nil
}

func write(env *Env, s string) error {
	_, err := io.WriteString(env.Output(), s)
	return err
}

// (print x) writes x and a newline and returns NIL.
func print_(env *Env, args []Value) (Value, error) {
	if err := wantCount("print", args, 1); err != nil {
		return nil, err
	}
	if err := write(env, Str(args[0])+"\n"); err != nil {
		return nil, err
	}
	return Nil, nil
}

func prin1_(env *Env, args []Value) (Value, error) {
	if err := wantCount("prin1", args, 1); err != nil {
		return nil, err
	}
	return args[0], write(env, Str(args[0]))
}

func princ_(env *Env, args []Value) (Value, error) {
	if err := wantCount("princ", args, 1); err != nil {
		return nil, err
	}
	return args[0], write(env, Princ(args[0]))
}

func terpri_(env *Env, args []Value) (Value, error) {
	return Nil, write(env, "\n")
}

// Format expands ~% (newline), ~s (printed form), ~a (strings unquoted) and
// ~~ in control, consuming args in order.
func Format(control string, args []Value) (string, error) {
	var sb strings.Builder
	next := 0
	arg := func(d rune) (Value, error) {
		if next >= len(args) {
			return nil, typeError("format: no argument for ~%c in %q", d, control)
		}
		next++
		return args[next-1], nil
	}
	runes := []rune(control)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '~' || i+1 == len(runes) {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		switch d := runes[i]; d {
		case '%':
			sb.WriteByte('\n')
		case '~':
			sb.WriteByte('~')
		case 's', 'S':
			v, err := arg(d)
			if err != nil {
				return "", err
			}
			sb.WriteString(Str(v))
		case 'a', 'A', 'd', 'D':
			v, err := arg(d)
			if err != nil {
				return "", err
			}
			sb.WriteString(Princ(v))
		default:
			sb.WriteRune('~')
			sb.WriteRune(d)
		}
	}
	return sb.String(), nil
}

// (format dest control arg...) writes the expansion unless dest is NIL and
// returns it as a string.
func format_(env *Env, args []Value) (Value, error) {
	if len(args) < 2 {
		return nil, typeError("format: expected a destination and a control string")
	}
	control, ok := args[1].(String)
	if !ok {
		return nil, typeError("format: %s is not a string", Str(args[1]))
	}
	out, err := Format(string(control), args[2:])
	if err != nil {
		return nil, err
	}
	if !IsNil(args[0]) {
		if err := write(env, out); err != nil {
			return nil, err
		}
	}
	return String(out), nil
}

func concatenate_(env *Env, args []Value) (Value, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(Princ(a))
	}
	return String(sb.String()), nil
}

func natives() map[string]NativeFunc {
	return map[string]NativeFunc{
		"+":           plus_,
		"-":           minus_,
		"*":           star_,
		"/":           slash_,
		"//":          slashSlash_,
		"%":           mod_,
		"mod":         mod_,
		"rem":         rem_,
		"abs":         abs_,
		"1+":          onePlus_,
		"1-":          oneMinus_,
		"max":         extremum("max", 1),
		"min":         extremum("min", -1),
		"=":           numEqual_,
		"/=":          numNotEqual_,
		"<":           compareAll("<", func(c int) bool { return c < 0 }),
		">":           compareAll(">", func(c int) bool { return c > 0 }),
		"<=":          compareAll("<=", func(c int) bool { return c <= 0 }),
		">=":          compareAll(">=", func(c int) bool { return c >= 0 }),
		"equal":       equal_,
		"eq":          eq_,
		"not":         predicate("not", IsNil),
		"null":        predicate("null", IsNil),
		"atom":        predicate("atom", isAtom),
		"listp":       predicate("listp", isList),
		"numberp":     predicate("numberp", isNumber),
		"stringp":     predicate("stringp", isString),
		"functionp":   predicate("functionp", IsCallable),
		"car":         car_,
		"cdr":         cdr_,
		"cons":        cons_,
		"list":        list_,
		"nth":         nth_,
		"aref":        aref_,
		"elt":         elt_,
		"length":      length_,
		"reverse":     reverse_,
		"append":      append_,
		"funcall":     funcall_,
		"apply":       apply_,
		"type-of":     typeOf_,
		"print":       print_,
		"prin1":       prin1_,
		"princ":       princ_,
		"terpri":      terpri_,
		"format":      format_,
		"concatenate": concatenate_,
	}
}
