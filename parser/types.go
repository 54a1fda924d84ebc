package parser

import (
	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/lexer"
)

func (c *cursor) atGroup(b lexer.Bracket) bool {
	t := c.peek()
	return t.Kind == lexer.Group && t.Bracket == b
}

// parseType parses a type expression. Syntax mirrors expression syntax:
// `[]T`, `Map[K]V` (or `Map[K, V]`), `Option[T]`, `(A, B)` tuple,
// `(A) -> B` function type, `T::Variant`.
func (c *cursor) parseType() (ast.TypeExpr, error) {
	start := c.peek().Site

	// `[]T` sugar for `List[T]`: the lexer groups an adjacent `[]` with no
	// fields into a single empty Group token.
	if c.atGroup(lexer.Square) && len(c.peek().Fields) == 0 {
		c.advance()
		elem, err := c.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.NamedType{Base: ast.At(start), Name: "List", Args: []ast.TypeExpr{elem}}, nil
	}

	if c.atGroup(lexer.Paren) {
		group, _ := c.expectGroup(lexer.Paren)
		var elems []ast.TypeExpr
		for _, field := range group.Fields {
			sub := newCursor(c.unit, field)
			t, err := sub.parseType()
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		if c.atSymbol("->") {
			c.advance()
			ret, err := c.parseType()
			if err != nil {
				return nil, err
			}
			return &ast.FuncType{Base: ast.At(start), Params: elems, Ret: ret}, nil
		}
		return &ast.TupleType{Base: ast.At(start), Elems: elems}, nil
	}

	nameTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	name := nameTok.Text
	variant := ""

	if c.atSymbol("::") {
		c.advance()
		vTok, err := c.expectIdent()
		if err != nil {
			return nil, err
		}
		variant = vTok.Text
	}

	var args []ast.TypeExpr
	if c.atGroup(lexer.Square) {
		group, _ := c.expectGroup(lexer.Square)
		for _, field := range group.Fields {
			sub := newCursor(c.unit, field)
			t, err := sub.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, t)
		}
		// `Map[K]V`: one bracketed key type followed by the value type.
		if name == "Map" && len(args) == 1 && !c.eof() && (c.peek().Kind == lexer.Word || c.atGroup(lexer.Square)) {
			v, err := c.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
	}

	return &ast.NamedType{Base: ast.At(start), Name: name, Variant: variant, Args: args}, nil
}
