// Package lisp implements a small Lisp dialect: a tokenizer, a
// recursive-descent parser and a tree-walking evaluator over a chain of
// lexical scopes whose root holds the builtins.
package lisp

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/nukata/lisper-in-go/internal/logging"
)

// Option configures the interpreter behind a new environment.
type Option func(*machine)

// WithOutput sets the writer print, format and repr write to.
// It defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(m *machine) {
		m.out = w
	}
}

// WithMaxDepth limits the nesting of calls. 0 disables the limit.
func WithMaxDepth(n int) Option {
	return func(m *machine) {
		m.maxDepth = n
	}
}

// NewEnv constructs a fresh builtin root and returns the global scope
// directly below it, where top-level definitions live.
func NewEnv(opts ...Option) *Env {
	m := &machine{out: os.Stdout, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(m)
	}
	return newBuiltinScope(m).NewScope()
}

// Load tokenizes and parses src into top-level forms.
func Load(src string) ([]Value, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Run evaluates forms in order in env and returns the last value.
func Run(forms []Value, env *Env) (Value, error) {
	var result Value = Nil
	for i, form := range forms {
		logging.Debugf("eval form %d: %s", i+1, Str(form))
		v, err := Eval(form, env)
		if err != nil {
			return nil, errors.Wrapf(err, "form %d %s", i+1, Str(form))
		}
		result = v
	}
	return result, nil
}

// EvalString loads src and runs it in env.
func EvalString(src string, env *Env) (Value, error) {
	forms, err := Load(src)
	if err != nil {
		return nil, err
	}
	return Run(forms, env)
}

// Register binds a host function in the global scope. fn is either a
// NativeFunc, called as is, or any Go function, adapted by Wrap.
func (env *Env) Register(name string, fn interface{}) error {
	var n *Native
	switch f := fn.(type) {
	case NativeFunc:
		n = &Native{Name: name, Fn: f}
	default:
		var err error
		if n, err = Wrap(name, fn); err != nil {
			return err
		}
	}
	return env.DefineGlobal(name, n)
}
