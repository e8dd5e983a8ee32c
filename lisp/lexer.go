package lisp

import (
	"strconv"
	"strings"
)

// symbolPunctuation lists the non-alphanumeric runes allowed in symbols.
const symbolPunctuation = "+-=/><*%?&"

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isSymbolRune(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || isDigit(r) ||
		strings.ContainsRune(symbolPunctuation, r)
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// Lexer converts source text into tokens.
// Token offsets count runes from the start of the outermost source.
type Lexer struct {
	src    []rune
	base   int
	cur    *Cursor[rune]
	tokens []Token
}

func newLexer(src []rune, base int) *Lexer {
	return &Lexer{src: src, base: base, cur: NewCursor(src)}
}

// Tokenize reads every token of src.
// It fails with a ReadError on the first character no rule accepts.
func Tokenize(src string) ([]Token, error) {
	return newLexer([]rune(src), 0).read()
}

func (l *Lexer) pos() int {
	return l.base + l.cur.Index()
}

func (l *Lexer) peekIs(k int, r rune) bool {
	x, ok := l.cur.Peek(k)
	return ok && x == r
}

func (l *Lexer) read() ([]Token, error) {
	rules := []func() (bool, error){
		l.bracket, l.array, l.list, l.special, l.number, l.str, l.symbol, l.comment,
	}
	for {
		for {
			r, ok := l.cur.Peek(1)
			if !ok || !isBlank(r) {
				break
			}
			l.cur.Skip(1)
		}
		r, ok := l.cur.Peek(1)
		if !ok {
			return l.tokens, nil
		}
		matched := false
		for _, rule := range rules {
			ok, err := rule()
			if err != nil {
				return nil, err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			return nil, newError(ReadError, "unexpected character %q at offset %d", r, l.pos())
		}
	}
}

func (l *Lexer) emit(kind TokenKind, value interface{}, start int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Value: value, Pos: start, End: l.pos()})
}

func (l *Lexer) bracket() (bool, error) {
	start := l.pos()
	switch r, _ := l.cur.Peek(1); r {
	case '(':
		l.cur.Skip(1)
		l.emit(OpenBracketToken, nil, start)
	case ')':
		l.cur.Skip(1)
		l.emit(CloseBracketToken, nil, start)
	default:
		return false, nil
	}
	return true, nil
}

func (l *Lexer) number() (bool, error) {
	r, _ := l.cur.Peek(1)
	if !isDigit(r) && r != '.' && r != '-' {
		return false, nil
	}
	if r == '-' {
		if r2, ok := l.cur.Peek(2); !ok || !isDigit(r2) {
			return false, nil
		}
	}
	// Names such as 1+ start with a digit but are symbols. A run with a dot
	// stays a number, so 1.5a reads as 1.5 and a.
	dotted := r == '.'
	for k := 2; ; k++ {
		x, ok := l.cur.Peek(k)
		if !ok || !(isSymbolRune(x) || x == '.') {
			break
		}
		if x == '.' {
			dotted = true
		} else if !isDigit(x) && !dotted {
			return false, nil
		}
	}
	start := l.pos()
	var sb strings.Builder
	r, _ = l.cur.Next(1)
	sb.WriteRune(r)
	for {
		r, ok := l.cur.Peek(1)
		if !ok || !(isDigit(r) || r == '.') {
			break
		}
		l.cur.Skip(1)
		sb.WriteRune(r)
	}
	s := sb.String()
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false, newError(ReadError, "malformed number %q at offset %d", s, start)
		}
		l.emit(FloatToken, f, start)
	} else {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false, newError(ReadError, "malformed number %q at offset %d", s, start)
		}
		l.emit(IntegerToken, n, start)
	}
	return true, nil
}

// skipString consumes a string literal including both quotes.
func (l *Lexer) skipString() error {
	start := l.pos()
	l.cur.Skip(1)
	for {
		r, ok := l.cur.Next(1)
		if !ok {
			return atEndError(ReadError, "unterminated string at offset %d", start)
		}
		if r == '"' {
			return nil
		}
	}
}

func (l *Lexer) str() (bool, error) {
	if !l.peekIs(1, '"') {
		return false, nil
	}
	start := l.pos()
	if err := l.skipString(); err != nil {
		return false, err
	}
	// Strip the quotes; there are no escape sequences.
	s := string(l.src[start-l.base+1 : l.cur.Index()-1])
	l.emit(StringToken, s, start)
	return true, nil
}

func (l *Lexer) symbolRun() string {
	var sb strings.Builder
	for {
		r, ok := l.cur.Peek(1)
		if !ok || !isSymbolRune(r) {
			return sb.String()
		}
		l.cur.Skip(1)
		sb.WriteRune(r)
	}
}

func (l *Lexer) symbol() (bool, error) {
	r, _ := l.cur.Peek(1)
	if !isSymbolRune(r) {
		return false, nil
	}
	start := l.pos()
	l.emit(SymbolToken, l.symbolRun(), start)
	return true, nil
}

// special reads 'name as an upper-cased quoted name.
func (l *Lexer) special() (bool, error) {
	if !l.peekIs(1, '\'') {
		return false, nil
	}
	start := l.pos()
	if r, ok := l.cur.Peek(2); !ok || !isSymbolRune(r) {
		return false, newError(ReadError, "quote without a name at offset %d", start)
	}
	l.cur.Skip(1)
	l.emit(SpecialToken, strings.ToUpper(l.symbolRun()), start)
	return true, nil
}

func (l *Lexer) comment() (bool, error) {
	if !l.peekIs(1, ';') {
		return false, nil
	}
	l.skipComment()
	return true, nil
}

func (l *Lexer) skipComment() {
	for {
		r, ok := l.cur.Peek(1)
		if !ok || r == '\n' {
			return
		}
		l.cur.Skip(1)
	}
}

func (l *Lexer) list() (bool, error) {
	return l.literal('\'', ListToken)
}

func (l *Lexer) array() (bool, error) {
	return l.literal('#', ArrayToken)
}

// startsGroup reports whether a nested parenthesized form begins here,
// optionally introduced by ' or #.
func (l *Lexer) startsGroup() bool {
	if l.peekIs(1, '(') {
		return true
	}
	return (l.peekIs(1, '\'') || l.peekIs(1, '#')) && l.peekIs(2, '(')
}

// skipGroup consumes one nested form up to its matching close paren.
func (l *Lexer) skipGroup() error {
	start := l.pos()
	if !l.peekIs(1, '(') {
		l.cur.Skip(1)
	}
	depth := 0
	for {
		r, ok := l.cur.Peek(1)
		if !ok {
			return atEndError(ReadError, "unbalanced parenthesis at offset %d", start)
		}
		switch r {
		case '"':
			if err := l.skipString(); err != nil {
				return err
			}
			continue
		case ';':
			l.skipComment()
			continue
		case '(':
			depth++
		case ')':
			depth--
		}
		l.cur.Skip(1)
		if depth == 0 {
			return nil
		}
	}
}

// literal reads '(...) or #(...). Nested forms inside are kept whole as
// Special tokens holding their source text; everything else is tokenized by
// a fresh Lexer.
func (l *Lexer) literal(prefix rune, kind TokenKind) (bool, error) {
	if !l.peekIs(1, prefix) || !l.peekIs(2, '(') {
		return false, nil
	}
	start := l.pos()
	l.cur.Skip(2)
	var tokens []Token
	seg := l.cur.Index()
	flush := func() error {
		end := l.cur.Index()
		if end > seg {
			sub, err := newLexer(l.src[seg:end], l.base+seg).read()
			if err != nil {
				return err
			}
			tokens = append(tokens, sub...)
		}
		return nil
	}
	for {
		r, ok := l.cur.Peek(1)
		if !ok {
			return false, atEndError(ReadError, "unterminated %v literal at offset %d", kind, start)
		}
		switch {
		case r == ')':
			if err := flush(); err != nil {
				return false, err
			}
			l.cur.Skip(1)
			l.tokens = append(l.tokens, Token{Kind: kind, Tokens: tokens, Pos: start, End: l.pos()})
			return true, nil
		case r == '"':
			if err := l.skipString(); err != nil {
				return false, err
			}
		case r == ';':
			l.skipComment()
		case l.startsGroup():
			if err := flush(); err != nil {
				return false, err
			}
			gstart := l.cur.Index()
			if err := l.skipGroup(); err != nil {
				return false, err
			}
			text := string(l.src[gstart:l.cur.Index()])
			tokens = append(tokens, Token{Kind: SpecialToken, Value: text, Pos: l.base + gstart, End: l.pos()})
			seg = l.cur.Index()
		default:
			l.cur.Skip(1)
		}
	}
}
