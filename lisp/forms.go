package lisp

import (
	"github.com/nukata/lisper-in-go/internal/logging"
)

// specialForms maps each special-form name to its handler. Handlers receive
// their operands unevaluated. The table is filled once in init and never
// changes afterwards.
var specialForms map[string]FormFunc

func init() {
	specialForms = map[string]FormFunc{
		"and":     and_,
		"cond":    cond_,
		"defun":   defun_,
		"defvar":  defvar_,
		"do":      do_,
		"dolist":  dolist_,
		"dotimes": dotimes_,
		"if":      if_,
		"lambda":  lambda_,
		"let":     let_,
		"let*":    letStar_,
		"loop":    loop_,
		"or":      or_,
		"progn":   progn_,
		"quote":   quote_,
		"repr":    repr_,
		"setf":    setf_,
		"unless":  unless_,
		"when":    when_,
	}
}

// IsSpecialForm reports whether name is handled by the special-form table.
func IsSpecialForm(name string) bool {
	_, ok := specialForms[name]
	return ok
}

// formItems returns the elements of a parenthesized form; () reads as NIL
// and yields no elements.
func formItems(x Value) ([]Value, bool) {
	switch v := x.(type) {
	case Call:
		return v, true
	case Symbol:
		if v == Nil {
			return nil, true
		}
	}
	return nil, false
}

func symbolName(form string, x Value) (string, error) {
	if s, ok := x.(Symbol); ok {
		return string(s), nil
	}
	return "", newError(NotSymbolError, "%s: %s is not a symbol", form, Str(x))
}

func wantArgs(form string, args []Value, n int) error {
	if len(args) < n {
		return typeError("%s: expected at least %d operands, got %d", form, n, len(args))
	}
	return nil
}

func makeClosure(name string, params Value, body []Value, env *Env) (*Closure, error) {
	items, ok := formItems(params)
	if !ok {
		return nil, typeError("%s is not a parameter list", Str(params))
	}
	c := &Closure{Name: name, Body: body, Env: env}
	for i := 0; i < len(items); i++ {
		p, err := symbolName("parameter", items[i])
		if err != nil {
			return nil, err
		}
		if p == "&rest" {
			if i+1 >= len(items) {
				return nil, typeError("&rest without a parameter name")
			}
			if c.Rest, err = symbolName("&rest", items[i+1]); err != nil {
				return nil, err
			}
			break
		}
		c.Params = append(c.Params, p)
	}
	return c, nil
}

// (defun name (p...) e...)
func defun_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("defun", args, 2); err != nil {
		return nil, err
	}
	name, err := symbolName("defun", args[0])
	if err != nil {
		return nil, err
	}
	c, err := makeClosure(name, args[1], args[2:], env)
	if err != nil {
		return nil, err
	}
	if err := env.Set(name, c); err != nil {
		return nil, err
	}
	logging.Debugf("defun %s (%d params)", name, len(c.Params))
	return c, nil
}

// (lambda (p...) e...)
func lambda_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("lambda", args, 1); err != nil {
		return nil, err
	}
	return makeClosure("", args[0], args[1:], env)
}

// (if cond then [else])
func if_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("if", args, 2); err != nil {
		return nil, err
	}
	c, err := Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	if !IsNil(c) {
		return Eval(args[1], env)
	}
	if len(args) > 2 {
		return Eval(args[2], env)
	}
	return Nil, nil
}

// (when cond e...)
func when_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("when", args, 1); err != nil {
		return nil, err
	}
	c, err := Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	if IsNil(c) {
		return Nil, nil
	}
	return progn(args[1:], env)
}

// (unless cond e...)
func unless_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("unless", args, 1); err != nil {
		return nil, err
	}
	c, err := Eval(args[0], env)
	if err != nil {
		return nil, err
	}
	if !IsNil(c) {
		return Nil, nil
	}
	return progn(args[1:], env)
}

// (cond (test e...)...)
func cond_(env *Env, args []Value) (Value, error) {
	for _, x := range args {
		clause, ok := formItems(x)
		if !ok || len(clause) == 0 {
			return nil, typeError("cond: bad clause %s", Str(x))
		}
		test, err := Eval(clause[0], env)
		if err != nil {
			return nil, err
		}
		if IsNil(test) {
			continue
		}
		if len(clause) == 1 {
			return test, nil
		}
		return progn(clause[1:], env)
	}
	return Nil, nil
}

// binding splits (name value-form) or a bare name.
func binding(form string, x Value) (string, Value, error) {
	if s, ok := x.(Symbol); ok {
		return string(s), Nil, nil
	}
	items, ok := formItems(x)
	if !ok || len(items) == 0 {
		return "", nil, typeError("%s: bad binding %s", form, Str(x))
	}
	name, err := symbolName(form, items[0])
	if err != nil {
		return "", nil, err
	}
	var init Value = Nil
	if len(items) > 1 {
		init = items[1]
	}
	return name, init, nil
}

// (let ((v e)...) e...)
// Every e is evaluated in the outer scope.
func let_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("let", args, 1); err != nil {
		return nil, err
	}
	bindings, ok := formItems(args[0])
	if !ok {
		return nil, typeError("let: bad bindings %s", Str(args[0]))
	}
	scope := env.NewScope()
	for _, b := range bindings {
		name, init, err := binding("let", b)
		if err != nil {
			return nil, err
		}
		v, err := Eval(init, env)
		if err != nil {
			return nil, err
		}
		if err := scope.Set(name, v); err != nil {
			return nil, err
		}
	}
	return progn(args[1:], scope)
}

// (let* ((v e)...) e...)
// Each e sees the bindings before it.
func letStar_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("let*", args, 1); err != nil {
		return nil, err
	}
	bindings, ok := formItems(args[0])
	if !ok {
		return nil, typeError("let*: bad bindings %s", Str(args[0]))
	}
	scope := env.NewScope()
	for _, b := range bindings {
		name, init, err := binding("let*", b)
		if err != nil {
			return nil, err
		}
		v, err := Eval(init, scope)
		if err != nil {
			return nil, err
		}
		if err := scope.Set(name, v); err != nil {
			return nil, err
		}
	}
	return progn(args[1:], scope)
}

// (do ((var init [step])...) (test e...) e...)
func do_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("do", args, 2); err != nil {
		return nil, err
	}
	bindings, ok := formItems(args[0])
	if !ok {
		return nil, typeError("do: bad bindings %s", Str(args[0]))
	}
	end, ok := formItems(args[1])
	if !ok || len(end) == 0 {
		return nil, typeError("do: bad end clause %s", Str(args[1]))
	}
	type stepper struct {
		name string
		step Value
	}
	var steps []stepper
	scope := env.NewScope()
	for _, b := range bindings {
		name, init, err := binding("do", b)
		if err != nil {
			return nil, err
		}
		v, err := Eval(init, env)
		if err != nil {
			return nil, err
		}
		if err := scope.Set(name, v); err != nil {
			return nil, err
		}
		if items, _ := formItems(b); len(items) > 2 {
			steps = append(steps, stepper{name, items[2]})
		}
	}
	for {
		test, err := Eval(end[0], scope)
		if err != nil {
			return nil, err
		}
		if !IsNil(test) {
			break
		}
		if _, err := progn(args[2:], scope); err != nil {
			return nil, err
		}
		// Steps see the old values of every variable.
		next := make([]Value, len(steps))
		for i, s := range steps {
			if next[i], err = Eval(s.step, scope); err != nil {
				return nil, err
			}
		}
		for i, s := range steps {
			if err := scope.Set(s.name, next[i]); err != nil {
				return nil, err
			}
		}
	}
	return progn(end[1:], scope)
}

// loopHeader splits (var form [result]).
func loopHeader(form string, x Value) (string, Value, Value, error) {
	items, ok := formItems(x)
	if !ok || len(items) < 2 {
		return "", nil, nil, typeError("%s: bad header %s", form, Str(x))
	}
	name, err := symbolName(form, items[0])
	if err != nil {
		return "", nil, nil, err
	}
	var result Value
	if len(items) > 2 {
		result = items[2]
	}
	return name, items[1], result, nil
}

// (dotimes (var n [result]) e...)
func dotimes_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("dotimes", args, 1); err != nil {
		return nil, err
	}
	name, countForm, resultForm, err := loopHeader("dotimes", args[0])
	if err != nil {
		return nil, err
	}
	count, err := Eval(countForm, env)
	if err != nil {
		return nil, err
	}
	n, ok := count.(Integer)
	if !ok {
		return nil, typeError("dotimes: %s is not an integer", Str(count))
	}
	scope := env.NewScope()
	var result Value = Nil
	for i := Integer(0); i < n; i++ {
		if err := scope.Set(name, i); err != nil {
			return nil, err
		}
		if result, err = progn(args[1:], scope); err != nil {
			return nil, err
		}
	}
	if resultForm != nil {
		if err := scope.Set(name, n); err != nil {
			return nil, err
		}
		return Eval(resultForm, scope)
	}
	return result, nil
}

// (dolist (var sequence [result]) e...)
func dolist_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("dolist", args, 1); err != nil {
		return nil, err
	}
	name, seqForm, resultForm, err := loopHeader("dolist", args[0])
	if err != nil {
		return nil, err
	}
	seq, err := Eval(seqForm, env)
	if err != nil {
		return nil, err
	}
	scope := env.NewScope()
	var result Value = Nil
	err = Iterate(seq, func(x Value) error {
		if err := scope.Set(name, x); err != nil {
			return err
		}
		v, err := progn(args[1:], scope)
		result = v
		return err
	})
	if err != nil {
		return nil, err
	}
	if resultForm != nil {
		if err := scope.Set(name, Nil); err != nil {
			return nil, err
		}
		return Eval(resultForm, scope)
	}
	return result, nil
}

// (progn e...)
func progn_(env *Env, args []Value) (Value, error) {
	return progn(args, env)
}

// (defvar name [e])
func defvar_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("defvar", args, 1); err != nil {
		return nil, err
	}
	name, err := symbolName("defvar", args[0])
	if err != nil {
		return nil, newError(NotSymbolError, "Variable not a symbol: %s", Str(args[0]))
	}
	var v Value = Nil
	if len(args) > 1 {
		if v, err = Eval(args[1], env); err != nil {
			return nil, err
		}
	}
	if err := env.DefineGlobal(name, v); err != nil {
		return nil, err
	}
	logging.Debugf("defvar %s = %s", name, Str(v))
	return v, nil
}

// (setf name e [name e]...)
func setf_(env *Env, args []Value) (Value, error) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, typeError("setf: expected name/value pairs, got %d operands", len(args))
	}
	var result Value = Nil
	for i := 0; i < len(args); i += 2 {
		name, err := symbolName("setf", args[i])
		if err != nil {
			return nil, err
		}
		v, err := Eval(args[i+1], env)
		if err != nil {
			return nil, err
		}
		if err := env.FindAndSet(name, v); err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// (repr form) prints form as a tree without evaluating it.
func repr_(env *Env, args []Value) (Value, error) {
	if len(args) == 0 {
		return Nil, nil
	}
	if err := WriteTree(env.Output(), args[0]); err != nil {
		return nil, err
	}
	return args[0], nil
}

// (loop f n) evaluates f n times; a callable result is invoked with no
// arguments.
func loop_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("loop", args, 2); err != nil {
		return nil, err
	}
	count, err := Eval(args[1], env)
	if err != nil {
		return nil, err
	}
	n, ok := count.(Integer)
	if !ok {
		return nil, typeError("loop: %s is not an integer", Str(count))
	}
	var result Value = Nil
	for i := Integer(0); i < n; i++ {
		v, err := Eval(args[0], env)
		if err != nil {
			return nil, err
		}
		if IsCallable(v) {
			if v, err = Apply(v, nil, env); err != nil {
				return nil, err
			}
		}
		result = v
	}
	return result, nil
}

// (and e...) stops at the first NIL.
func and_(env *Env, args []Value) (Value, error) {
	var result Value = T
	for _, x := range args {
		v, err := Eval(x, env)
		if err != nil {
			return nil, err
		}
		if IsNil(v) {
			return Nil, nil
		}
		result = v
	}
	return result, nil
}

// (or e...) stops at the first non-NIL.
func or_(env *Env, args []Value) (Value, error) {
	for _, x := range args {
		v, err := Eval(x, env)
		if err != nil {
			return nil, err
		}
		if !IsNil(v) {
			return v, nil
		}
	}
	return Nil, nil
}

// (quote e)
func quote_(env *Env, args []Value) (Value, error) {
	if err := wantArgs("quote", args, 1); err != nil {
		return nil, err
	}
	return args[0], nil
}
