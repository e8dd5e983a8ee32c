package lisp

import (
	"reflect"

	"github.com/pkg/errors"
)

var (
	valueType = reflect.TypeOf((*Value)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// Wrap adapts an ordinary Go function to the native calling convention.
// Each argument is unwrapped to its scalar (int64, float64, string, bool or
// []interface{}) and converted to the parameter type; the results are
// wrapped back. A trailing error result becomes an evaluation error.
// Parameters of type Value receive the argument unchanged.
func Wrap(name string, fn interface{}) (*Native, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, errors.Errorf("cannot wrap %s: %T is not a function", name, fn)
	}
	ft := fv.Type()
	return &Native{Name: name, Fn: func(env *Env, args []Value) (Value, error) {
		in, err := convertArgs(name, ft, args)
		if err != nil {
			return nil, err
		}
		return wrapResults(name, fv.Call(in))
	}}, nil
}

func mustWrap(name string, fn interface{}) *Native {
	n, err := Wrap(name, fn)
	if err != nil {
		panic(err)
	}
	return n
}

func convertArgs(name string, ft reflect.Type, args []Value) ([]reflect.Value, error) {
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, typeError("%s: expected at least %d arguments, got %d", name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, typeError("%s: expected %d arguments, got %d", name, fixed, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var t reflect.Type
		if i < fixed {
			t = ft.In(i)
		} else {
			t = ft.In(fixed).Elem()
		}
		v, err := convert(arg, t)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: argument %d", name, i+1)
		}
		in[i] = v
	}
	return in, nil
}

// Unwrap returns the Go scalar underlying v. An array nested inside itself
// is left as the *Array at the point of recursion.
func Unwrap(v Value) interface{} {
	return unwrap(v, nil)
}

func unwrap(v Value, active map[*Array]bool) interface{} {
	switch x := v.(type) {
	case Integer:
		return int64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case Special:
		return string(x)
	case Symbol:
		switch x {
		case T:
			return true
		case Nil:
			return false
		}
		return string(x)
	case *Array:
		if active[x] {
			return x
		}
		if active == nil {
			active = make(map[*Array]bool)
		}
		active[x] = true
		defer delete(active, x)
		result := make([]interface{}, len(x.Items))
		for i, item := range x.Items {
			result[i] = unwrap(item, active)
		}
		return result
	case *Cell:
		items, err := Items(x)
		if err != nil {
			return x
		}
		result := make([]interface{}, len(items))
		for i, item := range items {
			result[i] = unwrap(item, active)
		}
		return result
	}
	return v
}

func convert(v Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(&v).Elem(), nil
	}
	if t.Kind() == reflect.Bool {
		return reflect.ValueOf(!IsNil(v)).Convert(t), nil
	}
	x := Unwrap(v)
	switch t.Kind() {
	case reflect.Interface:
		if x == nil {
			return reflect.Zero(t), nil
		}
		xv := reflect.ValueOf(x)
		if xv.Type().Implements(t) {
			return xv.Convert(t), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		switch x.(type) {
		case int64, float64:
			return reflect.ValueOf(x).Convert(t), nil
		}
	case reflect.String:
		if s, ok := x.(string); ok {
			return reflect.ValueOf(s).Convert(t), nil
		}
	case reflect.Slice:
		var elems []Value
		ok := IsNil(v)
		switch s := v.(type) {
		case *Array:
			elems, ok = s.Items, true
		case *Cell:
			var err error
			if elems, err = Items(s); err != nil {
				return reflect.Value{}, err
			}
			ok = true
		}
		if ok {
			s := reflect.MakeSlice(t, len(elems), len(elems))
			for i, e := range elems {
				ev, err := convert(e, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				s.Index(i).Set(ev)
			}
			return s, nil
		}
	}
	return reflect.Value{}, typeError("cannot use %s %s as %v", TypeName(v), Str(v), t)
}

func wrapResults(name string, out []reflect.Value) (Value, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, errors.Wrap(out[n-1].Interface().(error), name)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return Nil, nil
	case 1:
		return wrapValue(out[0]), nil
	}
	items := make([]Value, len(out))
	for i, o := range out {
		items[i] = wrapValue(o)
	}
	return NewArray(items...), nil
}

func wrapValue(r reflect.Value) Value {
	if r.Type().Implements(valueType) {
		if r.Kind() == reflect.Interface && r.IsNil() {
			return Nil
		}
		return r.Interface().(Value)
	}
	switch r.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(r.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(int64(r.Uint()))
	case reflect.Float32, reflect.Float64:
		return Float(r.Float())
	case reflect.Bool:
		return Bool(r.Bool())
	case reflect.String:
		return String(r.String())
	case reflect.Slice, reflect.Array:
		items := make([]Value, r.Len())
		for i := range items {
			items[i] = wrapValue(r.Index(i))
		}
		return NewArray(items...)
	case reflect.Interface, reflect.Ptr:
		if r.IsNil() {
			return Nil
		}
		return wrapValue(r.Elem())
	}
	return String(r.String())
}
