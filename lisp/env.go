package lisp

import (
	"io"
	"sort"
	"strings"
)

// machine is the state shared by every scope of one interpreter.
type machine struct {
	out      io.Writer
	maxDepth int
	depth    int
}

// Env is one scope of the lexical scope chain.
type Env struct {
	vars    map[string]Value
	parent  *Env
	builtin bool
	m       *machine
}

// NewScope constructs an empty scope whose parent is env.
func (env *Env) NewScope() *Env {
	return &Env{vars: make(map[string]Value), parent: env, m: env.m}
}

// Parent returns the enclosing scope, or nil for the root.
func (env *Env) Parent() *Env {
	return env.parent
}

// IsBuiltin reports whether env is the builtin root.
func (env *Env) IsBuiltin() bool {
	return env.builtin
}

// Output returns the writer print and format write to.
func (env *Env) Output() io.Writer {
	return env.m.out
}

func unboundError(name string) error {
	return newError(UnboundError, "The variable %s is unbound", strings.ToUpper(name))
}

// Get retrieves the value of name, searching innermost first.
func (env *Env) Get(name string) (Value, error) {
	for e := env; e != nil; e = e.parent {
		if v, ok := e.vars[name]; ok {
			return v, nil
		}
	}
	return nil, unboundError(name)
}

// Lookup is like Get but reports absence with a bool.
func (env *Env) Lookup(name string) (Value, bool) {
	v, err := env.Get(name)
	return v, err == nil
}

// Set defines or overwrites name in this scope. A scope directly below the
// builtin root may not shadow a root binding.
func (env *Env) Set(name string, v Value) error {
	if env.parent == nil {
		return newError(OverrideError, "cannot define %s in the builtin scope", name)
	}
	if env.parent.builtin {
		if _, ok := env.parent.vars[name]; ok {
			return newError(OverrideError, "Cannot override builtins: %s", name)
		}
	}
	env.vars[name] = v
	return nil
}

// FindAndSet assigns v to the nearest existing binding of name.
func (env *Env) FindAndSet(name string, v Value) error {
	for e := env; e != nil; e = e.parent {
		if _, ok := e.vars[name]; ok {
			if e.builtin {
				return newError(OverrideError, "Cannot override builtins: %s", name)
			}
			e.vars[name] = v
			return nil
		}
	}
	return unboundError(name)
}

// DefineGlobal sets name in the outermost user scope, the one whose parent is
// the builtin root, so that definitions made inside nested scopes are visible
// file-wide.
func (env *Env) DefineGlobal(name string, v Value) error {
	return env.Global().Set(name, v)
}

// Global returns the outermost user scope.
func (env *Env) Global() *Env {
	e := env
	for e.parent != nil && !e.parent.builtin {
		e = e.parent
	}
	return e
}

// Names returns every name visible from env, sorted.
func (env *Env) Names() []string {
	seen := make(map[string]bool)
	for e := env; e != nil; e = e.parent {
		for name := range e.vars {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Local returns the bindings held directly by this scope.
func (env *Env) Local() map[string]Value {
	result := make(map[string]Value, len(env.vars))
	for k, v := range env.vars {
		result[k] = v
	}
	return result
}
