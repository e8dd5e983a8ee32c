package repl

import (
	"strings"

	"github.com/fatih/color"

	"github.com/nukata/lisper-in-go/lisp"
)

var (
	bracketColor = color.New(color.FgHiBlack)
	numberColor  = color.New(color.FgCyan)
	stringColor  = color.New(color.FgGreen)
	formColor    = color.New(color.FgMagenta, color.Bold)
	builtinColor = color.New(color.FgBlue)
	quoteColor   = color.New(color.FgYellow)
	commentColor = color.New(color.FgHiBlack, color.Italic)
	errorColor   = color.New(color.FgRed)
	resultColor  = color.New(color.FgCyan)
)

func tokenColor(tok lisp.Token, builtins map[string]bool) *color.Color {
	switch tok.Kind {
	case lisp.OpenBracketToken, lisp.CloseBracketToken:
		return bracketColor
	case lisp.IntegerToken, lisp.FloatToken:
		return numberColor
	case lisp.StringToken:
		return stringColor
	case lisp.SpecialToken, lisp.ListToken, lisp.ArrayToken:
		return quoteColor
	case lisp.SymbolToken:
		name, _ := tok.Value.(string)
		if lisp.IsSpecialForm(name) {
			return formColor
		}
		if builtins[name] {
			return builtinColor
		}
	}
	return nil
}

// Highlight returns src with ANSI colors applied per token. builtins names
// the symbols to show as library functions and may be nil. Source that does
// not tokenize is returned unchanged.
func Highlight(src string, builtins map[string]bool) string {
	tokens, err := lisp.Tokenize(src)
	if err != nil {
		return src
	}
	runes := []rune(src)
	var sb strings.Builder
	last := 0
	for _, tok := range tokens {
		writeGap(&sb, string(runes[last:tok.Pos]))
		text := string(runes[tok.Pos:tok.End])
		if c := tokenColor(tok, builtins); c != nil {
			text = c.Sprint(text)
		}
		sb.WriteString(text)
		last = tok.End
	}
	writeGap(&sb, string(runes[last:]))
	return sb.String()
}

// writeGap writes the text between tokens, which is blanks and comments.
func writeGap(sb *strings.Builder, gap string) {
	for gap != "" {
		i := strings.IndexByte(gap, ';')
		if i < 0 {
			sb.WriteString(gap)
			return
		}
		sb.WriteString(gap[:i])
		gap = gap[i:]
		j := strings.IndexByte(gap, '\n')
		if j < 0 {
			j = len(gap)
		}
		sb.WriteString(commentColor.Sprint(gap[:j]))
		gap = gap[j:]
	}
}
