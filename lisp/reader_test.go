package lisp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_PeekNextSkip(t *testing.T) {
	c := NewCursor([]rune("abc"))

	r, ok := c.Peek(1)
	require.True(t, ok)
	assert.Equal(t, 'a', r)
	r, ok = c.Peek(3)
	require.True(t, ok)
	assert.Equal(t, 'c', r)
	_, ok = c.Peek(4)
	assert.False(t, ok)

	r, ok = c.Next(2)
	require.True(t, ok)
	assert.Equal(t, 'b', r)
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, []rune("c"), c.Rest())

	_, ok = c.Next(2)
	assert.False(t, ok)
	assert.Equal(t, 2, c.Index())

	assert.True(t, c.Skip(5).Done())
	assert.Empty(t, c.Rest())
}

func load(t *testing.T, src string) []Value {
	forms, err := Load(src)
	require.NoError(t, err)
	return forms
}

func TestParse_Forms(t *testing.T) {
	for _, tc := range []struct {
		src  string
		want Value
	}{
		{"42", Integer(42)},
		{"2.5", Float(2.5)},
		{`"hi"`, String("hi")},
		{"x", Symbol("x")},
		{"'foo", Special("FOO")},
		{"()", Nil},
		{"(+ 1 2)", Call{Symbol("+"), Integer(1), Integer(2)}},
		{"((f) x)", Call{Call{Symbol("f")}, Symbol("x")}},
		{"(f ())", Call{Symbol("f"), Nil}},
		{"'(1 2)", List(Integer(1), Integer(2))},
		{"'()", Nil},
		{"'(a (b c))", List(Symbol("a"), Special("(b c)"))},
		{`#(1 "a")`, NewArray(Integer(1), String("a"))},
		{"#()", NewArray()},
	} {
		t.Run(tc.src, func(t *testing.T) {
			forms := load(t, tc.src)
			require.Len(t, forms, 1)
			assert.True(t, Equal(tc.want, forms[0]), "got %s, want %s", Str(forms[0]), Str(tc.want))
		})
	}
}

func TestParse_OneNodePerTopLevelForm(t *testing.T) {
	forms := load(t, "(defun f (x) x)\n(f 1) 'a\n")
	require.Len(t, forms, 3)
	assert.Equal(t, "(defun f (x) x)", Str(forms[0]))
	assert.Equal(t, "(f 1)", Str(forms[1]))
	assert.Equal(t, Special("A"), forms[2])
}

func TestParse_SyntaxErrors(t *testing.T) {
	_, err := Load(")")
	require.Error(t, err)
	assert.True(t, IsKind(err, SyntaxError))
	assert.Contains(t, err.Error(), `unexpected ")" at: [<CLOSING_BRACKET>]`)

	_, err = Load("(+ 1")
	require.Error(t, err)
	assert.True(t, IsKind(err, SyntaxError))
	assert.Contains(t, err.Error(), `")" expected`)

	_, err = Load("(a))")
	require.Error(t, err)
	assert.True(t, IsKind(err, SyntaxError))
}

func TestParse_ReadErrorsPassThrough(t *testing.T) {
	_, err := Load(`"open`)
	require.Error(t, err)
	assert.True(t, IsKind(err, ReadError))
}

func TestIsIncomplete(t *testing.T) {
	for src, want := range map[string]bool{
		"(+ 1":      true,
		`"open`:     true,
		"'(1 2":     true,
		"#(1 (2":    true,
		")":         false,
		"(a [b])":   false,
		"1.2.3":     false,
		"(print 1)": false,
	} {
		_, err := Load(src)
		assert.Equal(t, want, IsIncomplete(err), src)
	}
}

func TestWriteTree(t *testing.T) {
	forms := load(t, "(f 1 'a)")
	var sb strings.Builder
	require.NoError(t, WriteTree(&sb, forms[0]))
	assert.Equal(t, "<EXPRESSION>\n"+
		"    <SYMBOL value=[f]>\n"+
		"    <INTEGER value=[1]>\n"+
		"    <SPECIAL value=[A]>\n", sb.String())
}
