package syntax

import (
	"strconv"
	"strings"
	"unicode"
)

// datum is one s-expression read from source text.
type datum interface {
	loc() Location
}

type symbol struct {
	at   Location
	name string
}

type number struct {
	at    Location
	value int
}

type quoted struct {
	at   Location
	name string
}

type list struct {
	at    Location
	items []datum
}

func (d *symbol) loc() Location { return d.at }
func (d *number) loc() Location { return d.at }
func (d *quoted) loc() Location { return d.at }
func (d *list) loc() Location   { return d.at }

type tokenKind int

const (
	tokOpen tokenKind = iota
	tokClose
	tokQuote
	tokSymbol
	tokEOF
)

type token struct {
	kind   tokenKind
	text   string
	at     Location
	offset int
}

type tokenizer struct {
	filename string
	input    []rune
	pos      int
	line     int
	col      int
}

func newTokenizer(filename, input string) *tokenizer {
	return &tokenizer{filename: filename, input: []rune(input), line: 1, col: 1}
}

func (t *tokenizer) peek() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	return t.input[t.pos]
}

func (t *tokenizer) advance() rune {
	if t.pos >= len(t.input) {
		return 0
	}
	r := t.input[t.pos]
	t.pos++
	if r == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	return r
}

func (t *tokenizer) here() Location {
	return Location{Filename: t.filename, Line: t.line, Column: t.col}
}

func (t *tokenizer) skipWhitespace() {
	for t.pos < len(t.input) {
		c := t.peek()
		if c == ';' {
			for t.pos < len(t.input) && t.peek() != '\n' {
				t.advance()
			}
		} else if unicode.IsSpace(c) {
			t.advance()
		} else {
			break
		}
	}
}

func isDelimiter(c rune) bool {
	switch c {
	case '(', ')', '[', ']', '\'', ';':
		return true
	}
	return unicode.IsSpace(c)
}

func (t *tokenizer) next() token {
	t.skipWhitespace()

	at := t.here()
	offset := t.pos
	if t.pos >= len(t.input) {
		return token{kind: tokEOF, at: at, offset: offset}
	}

	switch t.advance() {
	case '(', '[':
		return token{kind: tokOpen, at: at, offset: offset}
	case ')', ']':
		return token{kind: tokClose, at: at, offset: offset}
	case '\'':
		return token{kind: tokQuote, at: at, offset: offset}
	}

	var sb strings.Builder
	sb.WriteRune(t.input[t.pos-1])
	for t.pos < len(t.input) && !isDelimiter(t.peek()) {
		sb.WriteRune(t.advance())
	}
	at.Length = t.pos - offset
	return token{kind: tokSymbol, text: sb.String(), at: at, offset: offset}
}

type reader struct {
	tokenizer *tokenizer
	current   token
}

func newReader(filename, input string) *reader {
	r := &reader{tokenizer: newTokenizer(filename, input)}
	r.current = r.tokenizer.next()
	return r
}

func (r *reader) advance() token {
	tok := r.current
	r.current = r.tokenizer.next()
	return tok
}

func (r *reader) readAll() ([]datum, error) {
	var data []datum
	for r.current.kind != tokEOF {
		d, err := r.read()
		if err != nil {
			return nil, err
		}
		data = append(data, d)
	}
	return data, nil
}

func (r *reader) read() (datum, error) {
	switch r.current.kind {
	case tokOpen:
		open := r.advance()
		var items []datum
		for r.current.kind != tokClose {
			if r.current.kind == tokEOF {
				err := parseErrorf(open.at, "unclosed parenthesis")
				err.Incomplete = true
				return nil, err
			}
			item, err := r.read()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		end := r.advance()
		at := open.at
		if end.at.Line == open.at.Line {
			at.Length = end.offset - open.offset + 1
		}
		return &list{at: at, items: items}, nil

	case tokQuote:
		quote := r.advance()
		if r.current.kind == tokEOF {
			err := parseErrorf(quote.at, "expected an atom after '")
			err.Incomplete = true
			return nil, err
		}
		if r.current.kind != tokSymbol {
			return nil, parseErrorf(r.current.at, "expected an atom after '")
		}
		sym := r.advance()
		at := quote.at
		at.Length = sym.at.Length + 1
		return &quoted{at: at, name: sym.text}, nil

	case tokSymbol:
		tok := r.advance()
		if isNumeral(tok.text) {
			n, err := strconv.Atoi(tok.text)
			if err != nil {
				return nil, parseErrorf(tok.at, "bad number %s: %v", tok.text, err)
			}
			return &number{at: tok.at, value: n}, nil
		}
		return &symbol{at: tok.at, name: tok.text}, nil

	case tokClose:
		return nil, parseErrorf(r.current.at, "unexpected closing parenthesis")

	default:
		err := parseErrorf(r.current.at, "unexpected end of input")
		err.Incomplete = true
		return nil, err
	}
}

func isNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ReadProgram reads every top-level declaration of a program.
func ReadProgram(filename, input string) ([]Decl, error) {
	data, err := newReader(filename, input).readAll()
	if err != nil {
		return nil, err
	}
	decls := make([]Decl, 0, len(data))
	for _, d := range data {
		decl, err := parseDecl(d)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// ReadExpr reads exactly one expression.
func ReadExpr(filename, input string) (Source, error) {
	data, err := newReader(filename, input).readAll()
	if err != nil {
		return nil, err
	}
	if len(data) != 1 {
		return nil, parseErrorf(Location{Filename: filename, Line: 1, Column: 1},
			"expected one expression, found %d", len(data))
	}
	return parseExpr(data[0])
}
