// Package parser implements a recursive-descent parser: grouped token
// stream -> typed AST.
package parser

import (
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/lexer"
	"github.com/SamJeffrey8/helios/source"
)

// cursor walks a flat slice of (possibly Group-typed) tokens. Parsing is
// fatal at the first error: every parse method returns as
// soon as it hits one.
type cursor struct {
	unit *source.Unit
	toks []lexer.Token
	pos  int
}

func newCursor(unit *source.Unit, toks []lexer.Token) *cursor {
	return &cursor{unit: unit, toks: toks}
}

func (c *cursor) eof() bool { return c.pos >= len(c.toks) }

func (c *cursor) peek() lexer.Token {
	if c.eof() {
		return lexer.Token{Kind: lexer.EOF, Site: c.endSite()}
	}
	return c.toks[c.pos]
}

func (c *cursor) peekAt(n int) lexer.Token {
	if c.pos+n >= len(c.toks) {
		return lexer.Token{Kind: lexer.EOF, Site: c.endSite()}
	}
	return c.toks[c.pos+n]
}

func (c *cursor) endSite() source.Site {
	if len(c.toks) == 0 {
		return source.Site{Unit: c.unit}
	}
	return c.toks[len(c.toks)-1].Site
}

func (c *cursor) advance() lexer.Token {
	t := c.peek()
	if !c.eof() {
		c.pos++
	}
	return t
}

// atWord reports whether the current token is the word `text`.
func (c *cursor) atWord(text string) bool {
	t := c.peek()
	return t.Kind == lexer.Word && t.Text == text
}

// atSymbol reports whether the current token is the symbol `text`.
func (c *cursor) atSymbol(text string) bool {
	t := c.peek()
	return t.Kind == lexer.Symbol && t.Text == text
}

func (c *cursor) expectWord(text string) (lexer.Token, error) {
	if !c.atWord(text) {
		return lexer.Token{}, &errs.SyntaxError{Site: c.peek().Site, Message: "expected '" + text + "'"}
	}
	return c.advance(), nil
}

func (c *cursor) expectSymbol(text string) (lexer.Token, error) {
	if !c.atSymbol(text) {
		return lexer.Token{}, &errs.SyntaxError{Site: c.peek().Site, Message: "expected '" + text + "'"}
	}
	return c.advance(), nil
}

func (c *cursor) expectIdent() (lexer.Token, error) {
	t := c.peek()
	if t.Kind != lexer.Word || isKeyword(t.Text) {
		return lexer.Token{}, &errs.SyntaxError{Site: t.Site, Message: "expected identifier"}
	}
	return c.advance(), nil
}

// expectGroup consumes the current token as a Group of the given bracket
// kind, or errors.
func (c *cursor) expectGroup(b lexer.Bracket) (lexer.Token, error) {
	t := c.peek()
	if t.Kind != lexer.Group || t.Bracket != b {
		return lexer.Token{}, &errs.SyntaxError{Site: t.Site, Message: "expected '" + b.Open() + "'"}
	}
	return c.advance(), nil
}

var keywords = map[string]bool{
	"const": true, "func": true, "struct": true, "enum": true, "impl": true,
	"import": true, "if": true, "else": true, "switch": true, "let": true,
	"from": true,
}

func isKeyword(s string) bool { return keywords[s] }
