package lisp

import (
	"strings"
)

// DefaultMaxDepth is the default limit of nested calls.
const DefaultMaxDepth = 10000

// Eval evaluates x in env.
// Symbols are looked up, calls are applied, an array literal yields a fresh
// copy so the tree stays unchanged, everything else evaluates to itself.
func Eval(x Value, env *Env) (Value, error) {
	switch x := x.(type) {
	case Symbol:
		return env.Get(string(x))
	case Call:
		return evalCall(x, env)
	case *Array:
		return NewArray(append([]Value(nil), x.Items...)...), nil
	case nil:
		return Nil, nil
	}
	return x, nil
}

func evalCall(x Call, env *Env) (Value, error) {
	m := env.m
	if m.maxDepth > 0 && m.depth >= m.maxDepth {
		return nil, newError(DepthError, "maximum recursion depth %d exceeded", m.maxDepth)
	}
	m.depth++
	defer func() { m.depth-- }()

	op, operands := x[0], x[1:]
	if sym, ok := op.(Symbol); ok {
		if form, ok := specialForms[string(sym)]; ok {
			return form(env, operands)
		}
	}
	// A nested call as operator, e.g. ((lambda (x) x) 1), is evaluated the
	// same way: its result is applied to freshly evaluated arguments.
	fn, err := Eval(op, env)
	if err != nil {
		return nil, err
	}
	args, err := evalList(operands, env)
	if err != nil {
		return nil, err
	}
	return Apply(fn, args, env)
}

func evalList(xs []Value, env *Env) ([]Value, error) {
	result := make([]Value, len(xs))
	for i, x := range xs {
		v, err := Eval(x, env)
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

// progn evaluates body in order and returns the last value, or NIL.
func progn(body []Value, env *Env) (Value, error) {
	var result Value = Nil
	for _, x := range body {
		v, err := Eval(x, env)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// Apply calls fn with already evaluated args.
func Apply(fn Value, args []Value, env *Env) (Value, error) {
	switch f := fn.(type) {
	case *Native:
		return f.Fn(env, args)
	case *Closure:
		return f.call(args)
	case Special: // 'name refers to a function by name
		resolved, ok := env.Lookup(string(f))
		if !ok {
			resolved, ok = env.Lookup(strings.ToLower(string(f)))
		}
		if !ok {
			return nil, unboundError(string(f))
		}
		if _, again := resolved.(Special); again {
			return nil, typeError("%s is not a function", Str(resolved))
		}
		return Apply(resolved, args, env)
	case *SpecialForm:
		return nil, typeError("special form %s cannot be applied", f.Name)
	}
	return nil, typeError("%s is not a function", Str(fn))
}

// call binds the parameters positionally in a scope below the defining
// environment and runs the body. Missing arguments are NIL and extra
// arguments are ignored unless &rest collects them.
func (c *Closure) call(args []Value) (Value, error) {
	scope := c.Env.NewScope()
	for i, name := range c.Params {
		var v Value = Nil
		if i < len(args) {
			v = args[i]
		}
		if err := scope.Set(name, v); err != nil {
			return nil, err
		}
	}
	if c.Rest != "" {
		var rest Value = Nil
		if len(args) > len(c.Params) {
			rest = List(args[len(c.Params):]...)
		}
		if err := scope.Set(c.Rest, rest); err != nil {
			return nil, err
		}
	}
	return progn(c.Body, scope)
}

// Iterate calls fn for each element of an Array, each character of a String
// or each car of a list. Any other kind fails.
func Iterate(v Value, fn func(Value) error) error {
	switch x := v.(type) {
	case *Array:
		for _, item := range x.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
		return nil
	case String:
		for _, r := range string(x) {
			if err := fn(String(r)); err != nil {
				return err
			}
		}
		return nil
	case *Cell:
		var j Value = x
		for !IsNil(j) {
			c, ok := j.(*Cell)
			if !ok {
				return typeError("cannot iterate over improper list %s", Str(x))
			}
			if err := fn(c.Car); err != nil {
				return err
			}
			j = c.Cdr
		}
		return nil
	case Symbol:
		if x == Nil {
			return nil
		}
	}
	return typeError("cannot iterate over %s %s", TypeName(v), Str(v))
}

// Items collects the elements Iterate would visit.
func Items(v Value) ([]Value, error) {
	var result []Value
	err := Iterate(v, func(x Value) error {
		result = append(result, x)
		return nil
	})
	return result, err
}
