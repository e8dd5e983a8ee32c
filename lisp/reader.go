package lisp

import (
	"strings"
)

// Parser builds syntax-tree nodes from a token sequence by recursive descent.
type Parser struct {
	cur *Cursor[Token]
}

// NewParser constructs a parser over tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{cur: NewCursor(tokens)}
}

// Parse returns one node per top-level form in tokens.
func Parse(tokens []Token) ([]Value, error) {
	return NewParser(tokens).ParseAll()
}

// ParseAll parses forms until the tokens run out.
func (p *Parser) ParseAll() ([]Value, error) {
	var forms []Value
	for !p.cur.Done() {
		x, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, x)
	}
	return forms, nil
}

func (p *Parser) newSyntaxError(msg string) error {
	rest := p.cur.Rest()
	s := make([]string, len(rest))
	for i, t := range rest {
		s[i] = t.String()
	}
	return newError(SyntaxError, "%s at: [%s]", msg, strings.Join(s, " "))
}

// ParseForm parses exactly one form.
func (p *Parser) ParseForm() (Value, error) {
	tok, ok := p.cur.Peek(1)
	if !ok {
		return nil, p.newSyntaxError("unexpected end of input")
	}
	switch {
	case tok.Kind == SpecialToken: // 'name
		p.cur.Skip(1)
		return Special(tok.Value.(string)), nil
	case tok.IsAtom():
		p.cur.Skip(1)
		return atomNode(tok), nil
	case tok.Kind == OpenBracketToken: // (a b c)
		p.cur.Skip(1)
		return p.parseCallBody()
	}
	return nil, p.newSyntaxError(`unexpected ")"`)
}

func (p *Parser) parseCallBody() (Value, error) {
	var forms Call
	for {
		tok, ok := p.cur.Peek(1)
		if !ok {
			err := p.newSyntaxError(`")" expected`).(*Error)
			err.AtEnd = true
			return nil, err
		}
		if tok.Kind == CloseBracketToken {
			p.cur.Skip(1)
			break
		}
		x, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, x)
	}
	if len(forms) == 0 { // () reads as NIL
		return Nil, nil
	}
	return forms, nil
}

// atomNode converts an atomic token to its literal node. List and array
// tokens become a NIL-terminated cell chain and an Array respectively; their
// elements are never looked up.
func atomNode(tok Token) Value {
	switch tok.Kind {
	case ListToken:
		return List(literalNodes(tok.Tokens)...)
	case ArrayToken:
		return NewArray(literalNodes(tok.Tokens)...)
	case IntegerToken:
		return Integer(tok.Value.(int64))
	case FloatToken:
		return Float(tok.Value.(float64))
	case StringToken:
		return String(tok.Value.(string))
	case SpecialToken:
		return Special(tok.Value.(string))
	}
	return Symbol(tok.Value.(string))
}

func literalNodes(tokens []Token) []Value {
	items := make([]Value, len(tokens))
	for i, t := range tokens {
		items[i] = atomNode(t)
	}
	return items
}
