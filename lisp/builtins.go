package lisp

import (
	"math"

	"github.com/pkg/errors"
)

func logBase(x float64, base ...float64) (float64, error) {
	switch len(base) {
	case 0:
		return math.Log(x), nil
	case 1:
		return math.Log(x) / math.Log(base[0]), nil
	}
	return 0, errors.New("expected at most 2 arguments")
}

func isqrt(n int64) (int64, error) {
	if n < 0 {
		return 0, errors.New("isqrt() argument must be nonnegative")
	}
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r, nil
}

func factorial(n int64) (int64, error) {
	if n < 0 {
		return 0, errors.New("factorial() not defined for negative values")
	}
	result := int64(1)
	for i := int64(2); i <= n; i++ {
		result *= i
	}
	return result, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func toInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Errorf("cannot convert %v to integer", f)
	}
	return int64(f), nil
}

// mathFuncs are wrapped by reflection; their names follow Python's math
// module.
var mathFuncs = map[string]interface{}{
	"sqrt":      math.Sqrt,
	"sin":       math.Sin,
	"cos":       math.Cos,
	"tan":       math.Tan,
	"asin":      math.Asin,
	"acos":      math.Acos,
	"atan":      math.Atan,
	"atan2":     math.Atan2,
	"sinh":      math.Sinh,
	"cosh":      math.Cosh,
	"tanh":      math.Tanh,
	"asinh":     math.Asinh,
	"acosh":     math.Acosh,
	"atanh":     math.Atanh,
	"exp":       math.Exp,
	"expm1":     math.Expm1,
	"log":       logBase,
	"log2":      math.Log2,
	"log10":     math.Log10,
	"log1p":     math.Log1p,
	"pow":       math.Pow,
	"hypot":     math.Hypot,
	"fabs":      math.Abs,
	"fmod":      math.Mod,
	"copysign":  math.Copysign,
	"erf":       math.Erf,
	"erfc":      math.Erfc,
	"gamma":     math.Gamma,
	"modf":      math.Modf,
	"frexp":     math.Frexp,
	"isnan":     math.IsNaN,
	"isinf":     func(x float64) bool { return math.IsInf(x, 0) },
	"degrees":   func(x float64) float64 { return x * 180 / math.Pi },
	"radians":   func(x float64) float64 { return x * math.Pi / 180 },
	"floor":     func(x float64) (int64, error) { return toInt(math.Floor(x)) },
	"ceil":      func(x float64) (int64, error) { return toInt(math.Ceil(x)) },
	"trunc":     func(x float64) (int64, error) { return toInt(math.Trunc(x)) },
	"isqrt":     isqrt,
	"factorial": factorial,
	"gcd":       gcd,
}

var mathConstants = map[string]Value{
	"pi":  Float(math.Pi),
	"e":   Float(math.E),
	"tau": Float(2 * math.Pi),
	"inf": Float(math.Inf(1)),
	"nan": Float(math.NaN()),
}

// newBuiltinScope constructs the root scope holding every builtin.
func newBuiltinScope(m *machine) *Env {
	root := &Env{vars: make(map[string]Value), builtin: true, m: m}
	for _, name := range []string{"T", "t"} {
		root.vars[name] = T
	}
	for _, name := range []string{"NIL", "nil"} {
		root.vars[name] = Nil
	}
	for name := range specialForms {
		root.vars[name] = &SpecialForm{Name: name, Fn: specialForms[name]}
	}
	for name, fn := range natives() {
		root.vars[name] = &Native{Name: name, Fn: fn}
	}
	for _, ops := range cxrNames() {
		name := "c" + ops + "r"
		root.vars[name] = &Native{Name: name, Fn: cxr(ops)}
	}
	for name, fn := range mathFuncs {
		root.vars[name] = mustWrap(name, fn)
	}
	for name, v := range mathConstants {
		root.vars[name] = v
	}
	return root
}
