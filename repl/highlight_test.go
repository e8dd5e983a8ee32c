package repl

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestHighlight_PlainWithoutColor(t *testing.T) {
	src := "(defun f (x) ; note\n  (+ x 1.5 \"s\" 'q))"
	assert.Equal(t, src, Highlight(src, nil))
}

func TestHighlight_ColorsTokens(t *testing.T) {
	color.NoColor = false
	defer func() { color.NoColor = true }()

	got := Highlight(`(if x "s") ; c`, map[string]bool{"car": true})
	assert.Contains(t, got, formColor.Sprint("if"))
	assert.Contains(t, got, stringColor.Sprint(`"s"`))
	assert.Contains(t, got, bracketColor.Sprint("("))
	assert.Contains(t, got, commentColor.Sprint("; c"))
	assert.Contains(t, got, " x ")

	got = Highlight("(car 'e)", map[string]bool{"car": true})
	assert.Contains(t, got, builtinColor.Sprint("car"))
}

func TestHighlight_UnreadableSourceUnchanged(t *testing.T) {
	color.NoColor = false
	defer func() { color.NoColor = true }()

	src := `(print "open`
	assert.Equal(t, src, Highlight(src, nil))
}
