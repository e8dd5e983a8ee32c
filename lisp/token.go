package lisp

import (
	"fmt"
	"strings"
)

// TokenKind is the type of a Token.
type TokenKind int

const (
	IntegerToken TokenKind = iota
	FloatToken
	StringToken
	OpenBracketToken
	CloseBracketToken
	SymbolToken
	SpecialToken
	ListToken
	ArrayToken
)

var tokenKindNames = [...]string{
	IntegerToken:      "INTEGER",
	FloatToken:        "FLOAT",
	StringToken:       "STRING",
	OpenBracketToken:  "OPEN_BRACKET",
	CloseBracketToken: "CLOSING_BRACKET",
	SymbolToken:       "SYMBOL",
	SpecialToken:      "SPECIAL",
	ListToken:         "LIST",
	ArrayToken:        "ARRAY",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsAtom is true for every kind except the two brackets.
func (k TokenKind) IsAtom() bool {
	return k != OpenBracketToken && k != CloseBracketToken
}

// Token is a lexical unit. Value holds int64, float64 or string for scalar
// kinds; List and Array tokens carry their embedded sequence in Tokens.
// Pos and End are rune offsets of the token's source text.
type Token struct {
	Kind   TokenKind
	Value  interface{}
	Tokens []Token
	Pos    int
	End    int
}

// IsAtom reports whether tok may stand alone as a form.
func (tok Token) IsAtom() bool {
	return tok.Kind.IsAtom()
}

// tok.String() returns "<KIND value=[v]>".
func (tok Token) String() string {
	switch tok.Kind {
	case OpenBracketToken, CloseBracketToken:
		return fmt.Sprintf("<%v>", tok.Kind)
	case ListToken, ArrayToken:
		s := make([]string, len(tok.Tokens))
		for i, t := range tok.Tokens {
			s[i] = t.String()
		}
		return fmt.Sprintf("<%v value=[%s]>", tok.Kind, strings.Join(s, " "))
	}
	return fmt.Sprintf("<%v value=[%v]>", tok.Kind, tok.Value)
}
