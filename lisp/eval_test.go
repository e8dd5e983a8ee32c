package lisp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_Arithmetic(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want Value
	}{
		{"(+ 1 2 3)", Integer(6)},
		{"(* 2 3 4)", Integer(24)},
		{"(/ 1 2)", Float(0.5)},
		{"(/ 4 2)", Float(2)},
		{"(/ 2)", Float(0.5)},
		{"(// 5 2)", Integer(2)},
		{"(// -7 2)", Integer(-4)},
		{"(- 10 3 2)", Integer(5)},
		{"(- 5)", Integer(-5)},
		{"(+ 1 2.5)", Float(3.5)},
		{"(+)", Integer(0)},
		{"(% -7 3)", Integer(2)},
		{"(mod 7 -3)", Integer(-2)},
		{"(rem -7 3)", Integer(-1)},
		{"(abs -3)", Integer(3)},
		{"(1+ 41)", Integer(42)},
		{"(1- 1.5)", Float(0.5)},
		{"(max 1 5.5 3)", Float(5.5)},
		{"(min 4 2 8)", Integer(2)},
	} {
		t.Run(tc.src, func(t *testing.T) {
			env, _ := newTestEnv()
			assert.Equal(t, tc.want, mustEval(t, env, tc.src))
		})
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	env, _ := newTestEnv()
	for _, src := range []string{"(/ 1 0)", "(// 1 0)", "(% 1 0)", "(rem 1.5 0)"} {
		_, err := EvalString(src, env)
		require.Error(t, err, src)
		assert.True(t, IsKind(err, TypeError), src)
		assert.Contains(t, err.Error(), "division by zero")
	}
}

func TestEval_Comparisons(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want Value
	}{
		{"(< 1 2 3)", T},
		{"(< 1 3 2)", Nil},
		{"(>= 3 3 1)", T},
		{"(= 1 1.0)", T},
		{"(= 'a 'a)", T},
		{"(/= 1 2)", T},
		{`(< "a" "b")`, T},
		{"(equal '(1 (2)) '(1 (2)))", T},
		{"(eq 'a 'a)", T},
		{"(not nil)", T},
		{"(null '(1))", Nil},
		{"(atom 1)", T},
		{"(atom '(1))", Nil},
		{"(listp nil)", T},
		{"(numberp 1.5)", T},
		{`(stringp "s")`, T},
	} {
		t.Run(tc.src, func(t *testing.T) {
			env, _ := newTestEnv()
			assert.Equal(t, tc.want, mustEval(t, env, tc.src))
		})
	}
}

func TestEval_LiteralsEvaluateToThemselves(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, String("abc"), mustEval(t, env, `"abc"`))
	assert.Equal(t, Float(3.5), mustEval(t, env, "3.5"))
	assert.Equal(t, Integer(-2), mustEval(t, env, "-2"))
	assert.Equal(t, Special("FOO"), mustEval(t, env, "'foo"))
	assert.Equal(t, "(1 2 3)", Str(mustEval(t, env, "'(1 2 3)")))
	assert.Equal(t, "#(1 x)", Str(mustEval(t, env, "#(1 x)")))
	assert.Equal(t, T, mustEval(t, env, "t"))
	assert.Equal(t, Nil, mustEval(t, env, "()"))
}

func TestEval_Defun(t *testing.T) {
	env, _ := newTestEnv()
	fn := mustEval(t, env, "(defun square (x) (* x x))")
	assert.Equal(t, "#<FUNCTION square>", Str(fn))
	assert.Equal(t, Integer(49), mustEval(t, env, "(square 7)"))
}

func TestEval_LetScopesBindings(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(3), mustEval(t, env, "(let ((x 1) (y 2)) (+ x y))"))

	_, err := EvalString("x", env)
	require.Error(t, err)
	assert.True(t, IsKind(err, UnboundError))
}

func TestEval_LetEvaluatesInitsOutside(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defvar x 1)")
	assert.Equal(t, Integer(1), mustEval(t, env, "(let ((x 10) (y x)) y)"))
	assert.Equal(t, Integer(10), mustEval(t, env, "(let* ((x 10) (y x)) y)"))
}

func TestEval_DefvarInNestedScopeIsGlobal(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(42), mustEval(t, env, "(let ((a 1)) (let ((b 2)) (defvar g 42)))"))
	assert.Equal(t, Integer(42), mustEval(t, env, "g"))
}

func TestEval_SetfMutatesNearestBinding(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defvar x 1)")
	assert.Equal(t, Integer(3), mustEval(t, env, "(let ((x 2)) (setf x 3) x)"))
	assert.Equal(t, Integer(1), mustEval(t, env, "x"))

	assert.Equal(t, Integer(5), mustEval(t, env, "(setf x 4 x 5)"))
	assert.Equal(t, Integer(5), mustEval(t, env, "x"))

	_, err := EvalString("(setf nope 1)", env)
	assert.True(t, IsKind(err, UnboundError))
}

func TestEval_ListPrimitives(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(1), mustEval(t, env, "(car '(1 2 3))"))
	assert.Equal(t, "(2 3)", Str(mustEval(t, env, "(cdr '(1 2 3))")))
	assert.Equal(t, "(1 . 2)", Str(mustEval(t, env, "(cons 1 2)")))
	assert.Equal(t, "(0 1 2)", Str(mustEval(t, env, "(cons 0 '(1 2))")))
	assert.Equal(t, Nil, mustEval(t, env, "(car nil)"))
	assert.Equal(t, Integer(2), mustEval(t, env, "(cadr '(1 2 3))"))
	assert.Equal(t, "(3)", Str(mustEval(t, env, "(cddr '(1 2 3))")))
	assert.Equal(t, Integer(3), mustEval(t, env, "(caddr '(1 2 3))"))
	assert.Equal(t, "(1 2 3)", Str(mustEval(t, env, "(list 1 2 3)")))
	assert.Equal(t, Integer(3), mustEval(t, env, "(length '(a b c))"))
	assert.Equal(t, Integer(2), mustEval(t, env, `(length "hé")`))
	assert.Equal(t, Special("B"), mustEval(t, env, "(nth 1 '('a 'b))"))
	assert.Equal(t, "(3 2 1)", Str(mustEval(t, env, "(reverse '(1 2 3))")))
	assert.Equal(t, "(1 2 3)", Str(mustEval(t, env, "(append '(1) '(2) '(3))")))
}

func TestEval_CarOfNonListFails(t *testing.T) {
	env, _ := newTestEnv()
	_, err := EvalString("(car 5)", env)
	require.Error(t, err)
	assert.True(t, IsKind(err, TypeError))
}

func TestEval_ArrayOperations(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defvar a #(1 2))")
	assert.Equal(t, Integer(2), mustEval(t, env, "(aref a 1)"))
	assert.Equal(t, "#(1 2 3)", Str(mustEval(t, env, "(append a 3)")))
	assert.Equal(t, "#(1 2 3)", Str(mustEval(t, env, "a")))
	assert.Equal(t, String("b"), mustEval(t, env, `(aref "abc" 1)`))
	assert.Equal(t, Integer(3), mustEval(t, env, "(elt a 2)"))

	_, err := EvalString("(aref a 5)", env)
	require.Error(t, err)
	assert.True(t, IsKind(err, IndexError))
	assert.Contains(t, err.Error(), "Index Out of Bounds")
}

func TestEval_ArrayContainingItself(t *testing.T) {
	env, out := newTestEnv()
	mustEval(t, env, "(defvar a #(1))")
	mustEval(t, env, "(defvar b #(1))")
	a := mustEval(t, env, "(append a a)")
	mustEval(t, env, "(append b b)")

	mustEval(t, env, "(print a)")
	assert.Equal(t, "#(1 ...)\n", out.String())
	assert.Equal(t, "#(1 (#(1 ...)))", Str(mustEval(t, env, "(append #(1) (list a))")))

	assert.Equal(t, T, mustEval(t, env, "(equal a b)"))
	assert.Equal(t, Nil, mustEval(t, env, "(equal a #(1))"))
	assert.Equal(t, Integer(2), mustEval(t, env, "(length a)"))

	unwrapped := Unwrap(a).([]interface{})
	require.Len(t, unwrapped, 2)
	assert.Equal(t, int64(1), unwrapped[0])
	assert.Same(t, a, unwrapped[1])

	var sb strings.Builder
	require.NoError(t, WriteTree(&sb, a))
	assert.Equal(t, "<ARRAY>\n    <INTEGER value=[1]>\n    <ARRAY>\n", sb.String())
}

func TestEval_ArrayLiteralIsCopied(t *testing.T) {
	env, _ := newTestEnv()
	forms, err := Load("(defun fresh (x) (append #() x))")
	require.NoError(t, err)
	_, err = Eval(forms[0], env)
	require.NoError(t, err)

	assert.Equal(t, "#(1)", Str(mustEval(t, env, "(fresh 1)")))
	assert.Equal(t, "#(2)", Str(mustEval(t, env, "(fresh 2)")))
	assert.Equal(t, "(defun fresh (x) (append #() x))", Str(forms[0]))

	mustEval(t, env, "(defvar squares #())")
	mustEval(t, env, "(dotimes (i 3) (append squares (* i i)))")
	assert.Equal(t, "#(0 1 4)", Str(mustEval(t, env, "squares")))
}

func TestEval_BuiltinsCannotBeOverridden(t *testing.T) {
	for _, src := range []string{
		"(defun car (x) x)",
		"(defvar car 1)",
		"(setf car 1)",
		"(let ((a 1)) (defvar print 2))",
	} {
		t.Run(src, func(t *testing.T) {
			env, _ := newTestEnv()
			_, err := EvalString(src, env)
			require.Error(t, err)
			assert.True(t, IsKind(err, OverrideError), "%v", err)
		})
	}
}

func TestEval_BuiltinsMayBeShadowedLocally(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(7), mustEval(t, env, "(let ((car 7)) car)"))
	assert.Equal(t, Integer(1), mustEval(t, env, "(car '(1))"))
}

func TestEval_UnboundVariable(t *testing.T) {
	env, _ := newTestEnv()
	_, err := EvalString("(+ 1 undefined)", env)
	require.Error(t, err)
	assert.True(t, IsKind(err, UnboundError))
	assert.Contains(t, err.Error(), "The variable UNDEFINED is unbound")
}

func TestEval_DotimesPrintsAndReturnsNil(t *testing.T) {
	env, out := newTestEnv()
	assert.Equal(t, Nil, mustEval(t, env, "(dotimes (i 3) (print i))"))
	assert.Equal(t, "0\n1\n2\n", out.String())
}

func TestEval_DotimesResultForm(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(3), mustEval(t, env, "(dotimes (i 3 i))"))
	assert.Equal(t, Nil, mustEval(t, env, "(dotimes (i 0) 1)"))
}

func TestEval_Dolist(t *testing.T) {
	env, out := newTestEnv()
	assert.Equal(t, Integer(6), mustEval(t, env, "(let ((s 0)) (dolist (x #(1 2 3)) (setf s (+ s x))) s)"))
	mustEval(t, env, `(dolist (c "ab") (princ c))`)
	assert.Equal(t, "ab", out.String())
	assert.Equal(t, Nil, mustEval(t, env, "(dolist (x '(1 2) x))"))

	_, err := EvalString("(dolist (x 5) x)", env)
	require.Error(t, err)
	assert.True(t, IsKind(err, TypeError))
}

func TestEval_Do(t *testing.T) {
	env, _ := newTestEnv()
	v := mustEval(t, env, "(do ((i 0 (+ i 1)) (acc 0 (+ acc i))) ((= i 4) acc))")
	assert.Equal(t, Integer(6), v)
	// Steps use the previous values of every variable.
	v = mustEval(t, env, "(do ((a 1 b) (b 2 a) (n 0 (1+ n))) ((= n 1) (list a b)))")
	assert.Equal(t, "(2 1)", Str(v))
}

func TestEval_Conditionals(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(1), mustEval(t, env, "(if t 1 2)"))
	assert.Equal(t, Integer(2), mustEval(t, env, "(if nil 1 2)"))
	assert.Equal(t, Nil, mustEval(t, env, "(if nil 1)"))
	assert.Equal(t, Integer(3), mustEval(t, env, "(when t 1 2 3)"))
	assert.Equal(t, Nil, mustEval(t, env, "(when nil 1)"))
	assert.Equal(t, Integer(1), mustEval(t, env, "(unless nil 1)"))
	assert.Equal(t, Special("B"), mustEval(t, env, "(cond ((= 1 2) 'a) ((= 1 1) 'b))"))
	assert.Equal(t, Integer(5), mustEval(t, env, "(cond (nil 1) (5))"))
	assert.Equal(t, Nil, mustEval(t, env, "(cond (nil 1))"))
}

func TestEval_AndOrShortCircuit(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(1), mustEval(t, env, "(or nil 1 (undefined))"))
	assert.Equal(t, Nil, mustEval(t, env, "(and 1 nil (undefined))"))
	assert.Equal(t, Integer(3), mustEval(t, env, "(and 1 2 3)"))
	assert.Equal(t, T, mustEval(t, env, "(and)"))
	assert.Equal(t, Nil, mustEval(t, env, "(or)"))
}

func TestEval_Closures(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defun make-adder (n) (lambda (x) (+ x n)))")
	assert.Equal(t, Integer(7), mustEval(t, env, "(funcall (make-adder 3) 4)"))
	assert.Equal(t, Integer(7), mustEval(t, env, "((make-adder 3) 4)"))
	assert.Equal(t, Integer(3), mustEval(t, env, "((lambda (x) x) 3)"))
	assert.Equal(t, "#<FUNCTION (LAMBDA)>", Str(mustEval(t, env, "(lambda () 1)")))
}

func TestEval_ClosureArguments(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defun pair (a b) (list a b))")
	assert.Equal(t, "(1 NIL)", Str(mustEval(t, env, "(pair 1)")))
	assert.Equal(t, "(1 2)", Str(mustEval(t, env, "(pair 1 2 3)")))

	mustEval(t, env, "(defun tail (a &rest r) r)")
	assert.Equal(t, "(2 3)", Str(mustEval(t, env, "(tail 1 2 3)")))
	assert.Equal(t, Nil, mustEval(t, env, "(tail 1)"))

	assert.Equal(t, Nil, mustEval(t, env, "((lambda ()))"))
}

func TestEval_Recursion(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defun fact (n) (if (<= n 1) 1 (* n (fact (- n 1)))))")
	assert.Equal(t, Integer(3628800), mustEval(t, env, "(fact 10)"))
}

func TestEval_DepthLimit(t *testing.T) {
	env, _ := newTestEnv(WithMaxDepth(50))
	mustEval(t, env, "(defun down (n) (down (+ n 1)))")
	_, err := EvalString("(down 0)", env)
	require.Error(t, err)
	assert.True(t, IsKind(err, DepthError))

	// The counter unwinds after a failure.
	mustEval(t, env, "(defun count (n) (if (= n 0) 0 (+ 1 (count (- n 1)))))")
	assert.Equal(t, Integer(10), mustEval(t, env, "(count 10)"))
}

func TestEval_SpecialNamesAFunction(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defun sq (x) (* x x))")
	assert.Equal(t, Integer(9), mustEval(t, env, "(funcall 'sq 3)"))
	assert.Equal(t, Integer(6), mustEval(t, env, "(apply '+ 1 '(2 3))"))
}

func TestEval_NotAFunction(t *testing.T) {
	env, _ := newTestEnv()
	_, err := EvalString("(1 2)", env)
	require.Error(t, err)
	assert.True(t, IsKind(err, TypeError))
	assert.Contains(t, err.Error(), "1 is not a function")

	_, err = EvalString("(funcall 'nothing)", env)
	assert.True(t, IsKind(err, UnboundError))
}

func TestEval_Loop(t *testing.T) {
	env, _ := newTestEnv()
	mustEval(t, env, "(defvar n 0)")
	assert.Equal(t, Integer(3), mustEval(t, env, "(loop (lambda () (setf n (+ n 1))) 3)"))
	assert.Equal(t, Integer(3), mustEval(t, env, "n"))
	assert.Equal(t, Nil, mustEval(t, env, "(loop (setf n 0) 0)"))
	assert.Equal(t, Integer(3), mustEval(t, env, "n"))
}

func TestEval_Progn(t *testing.T) {
	env, _ := newTestEnv()
	assert.Equal(t, Integer(2), mustEval(t, env, "(progn 1 2)"))
	assert.Equal(t, Nil, mustEval(t, env, "(progn)"))
	assert.Equal(t, "(a b)", Str(mustEval(t, env, "(quote (a b))")))
}

func TestEval_Repr(t *testing.T) {
	env, out := newTestEnv()
	v := mustEval(t, env, "(repr (+ 1 2))")
	assert.Equal(t, "(+ 1 2)", Str(v))
	assert.Equal(t, "<EXPRESSION>\n"+
		"    <SYMBOL value=[+]>\n"+
		"    <INTEGER value=[1]>\n"+
		"    <INTEGER value=[2]>\n", out.String())
}

func TestEval_NotASymbol(t *testing.T) {
	env, _ := newTestEnv()
	for _, src := range []string{"(defvar 1 2)", "(defun 1 () 2)", "(lambda (1) 1)", "(setf 1 2)"} {
		_, err := EvalString(src, env)
		require.Error(t, err, src)
		assert.True(t, IsKind(err, NotSymbolError), "%s: %v", src, err)
	}
}

func TestRun_WrapsErrorWithForm(t *testing.T) {
	env, _ := newTestEnv()
	_, err := EvalString("(print 1)\n(car 5)", env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "form 2 (car 5)")
}
