package parser

import (
	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/lexer"
	"github.com/SamJeffrey8/helios/source"
)

// parseExpr parses a full expression. Precedence, loosest to tightest:
// `||` then `&&` then comparisons then additive then multiplicative then
// unary then postfix.
func (c *cursor) parseExpr() (ast.Expr, error) {
	if c.atWord("let") {
		return c.parseLet()
	}
	if c.atWord("if") {
		return c.parseIf()
	}
	if c.atWord("switch") {
		return c.parseSwitch()
	}
	return c.parseOr()
}

func (c *cursor) parseLet() (ast.Expr, error) {
	start := c.peek().Site
	c.advance() // "let"
	nameTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	var typ ast.TypeExpr
	if c.atSymbol(":") {
		c.advance()
		typ, err = c.parseType()
		if err != nil {
			return nil, err
		}
	}
	if _, err := c.expectSymbol("="); err != nil {
		return nil, err
	}
	value, err := c.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := c.expectSymbol(";"); err != nil {
		return nil, err
	}
	body, err := c.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.LetExpr{Base: ast.At(start), Name: nameTok.Text, Type: typ, Value: value, Body: body}, nil
}

func (c *cursor) parseIf() (ast.Expr, error) {
	start := c.peek().Site
	c.advance() // "if"
	group, err := c.expectGroup(lexer.Paren)
	if err != nil {
		return nil, err
	}
	if len(group.Fields) != 1 {
		return nil, &errs.SyntaxError{Site: group.Site, Message: "if condition must be a single expression"}
	}
	cond, err := newCursor(c.unit, group.Fields[0]).fullExpr()
	if err != nil {
		return nil, err
	}
	then, err := c.parseBraceExpr()
	if err != nil {
		return nil, err
	}
	if _, err := c.expectWord("else"); err != nil {
		return nil, err
	}
	var elseExpr ast.Expr
	if c.atWord("if") {
		elseExpr, err = c.parseIf()
	} else {
		elseExpr, err = c.parseBraceExpr()
	}
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Base: ast.At(start), Cond: cond, Then: then, Else: elseExpr}, nil
}

// parseBraceExpr parses a `{ ... }` block as a single result expression.
func (c *cursor) parseBraceExpr() (ast.Expr, error) {
	group, err := c.expectGroup(lexer.Brace)
	if err != nil {
		return nil, err
	}
	return parseBlockBody(c.unit, group)
}

func (c *cursor) parseSwitch() (ast.Expr, error) {
	start := c.peek().Site
	c.advance() // "switch"
	group, err := c.expectGroup(lexer.Paren)
	if err != nil {
		return nil, err
	}
	if len(group.Fields) != 1 {
		return nil, &errs.SyntaxError{Site: group.Site, Message: "switch scrutinee must be a single expression"}
	}
	scrutinee, err := newCursor(c.unit, group.Fields[0]).fullExpr()
	if err != nil {
		return nil, err
	}
	body, err := c.expectGroup(lexer.Brace)
	if err != nil {
		return nil, err
	}

	sw := &ast.SwitchExpr{Base: ast.At(start), Scrutinee: scrutinee}
	for _, field := range body.Fields {
		cs, isElse, err := parseSwitchCase(c.unit, field)
		if err != nil {
			return nil, err
		}
		if isElse {
			sw.Else = cs.Body
		} else {
			sw.Cases = append(sw.Cases, cs)
		}
	}
	return sw, nil
}

func parseSwitchCase(unit *source.Unit, toks []lexer.Token) (ast.SwitchCase, bool, error) {
	cc := newCursor(unit, toks)
	start := cc.peek().Site
	if cc.atWord("else") {
		cc.advance()
		if _, err := cc.expectSymbol("->"); err != nil {
			return ast.SwitchCase{}, false, err
		}
		body, err := cc.fullExpr()
		if err != nil {
			return ast.SwitchCase{}, false, err
		}
		return ast.SwitchCase{Body: body, Site: start}, true, nil
	}
	nameTok, err := cc.expectIdent()
	if err != nil {
		return ast.SwitchCase{}, false, err
	}
	var binds []string
	if cc.peek().Kind == lexer.Group && cc.peek().Bracket == lexer.Brace {
		g, _ := cc.expectGroup(lexer.Brace)
		for _, f := range g.Fields {
			bc := newCursor(unit, f)
			bt, err := bc.expectIdent()
			if err != nil {
				return ast.SwitchCase{}, false, err
			}
			binds = append(binds, bt.Text)
		}
	}
	if _, err := cc.expectSymbol("->"); err != nil {
		return ast.SwitchCase{}, false, err
	}
	bodyExpr, err := cc.fullExpr()
	if err != nil {
		return ast.SwitchCase{}, false, err
	}
	return ast.SwitchCase{Variant: nameTok.Text, Binds: binds, Body: bodyExpr, Site: start}, false, nil
}

// fullExpr parses an expression and requires the cursor to be fully
// consumed afterward, for use on an isolated token sub-slice (a Group
// field).
func (c *cursor) fullExpr() (ast.Expr, error) {
	e, err := c.parseExpr()
	if err != nil {
		return nil, err
	}
	if !c.eof() {
		return nil, &errs.SyntaxError{Site: c.peek().Site, Message: "unexpected trailing tokens"}
	}
	return e, nil
}

func (c *cursor) parseOr() (ast.Expr, error) {
	left, err := c.parseAnd()
	if err != nil {
		return nil, err
	}
	for c.atSymbol("||") {
		site := c.advance().Site
		right, err := c.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.At(site), Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseAnd() (ast.Expr, error) {
	left, err := c.parseEquality()
	if err != nil {
		return nil, err
	}
	for c.atSymbol("&&") {
		site := c.advance().Site
		right, err := c.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.At(site), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseEquality() (ast.Expr, error) {
	left, err := c.parseRelational()
	if err != nil {
		return nil, err
	}
	for c.atSymbol("==") || c.atSymbol("!=") {
		tok := c.advance()
		op := ast.OpEq
		if tok.Text == "!=" {
			op = ast.OpNeq
		}
		right, err := c.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.At(tok.Site), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseRelational() (ast.Expr, error) {
	left, err := c.parseAdditive()
	if err != nil {
		return nil, err
	}
	for c.atSymbol("<") || c.atSymbol("<=") || c.atSymbol(">") || c.atSymbol(">=") {
		tok := c.advance()
		var op ast.BinaryOp
		switch tok.Text {
		case "<":
			op = ast.OpLt
		case "<=":
			op = ast.OpLte
		case ">":
			op = ast.OpGt
		case ">=":
			op = ast.OpGte
		}
		right, err := c.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.At(tok.Site), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseAdditive() (ast.Expr, error) {
	left, err := c.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for c.atSymbol("+") || c.atSymbol("-") {
		tok := c.advance()
		op := ast.OpAdd
		if tok.Text == "-" {
			op = ast.OpSub
		}
		right, err := c.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.At(tok.Site), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseMultiplicative() (ast.Expr, error) {
	left, err := c.parseUnary()
	if err != nil {
		return nil, err
	}
	for c.atSymbol("*") || c.atSymbol("/") || c.atSymbol("%") {
		tok := c.advance()
		var op ast.BinaryOp
		switch tok.Text {
		case "*":
			op = ast.OpMul
		case "/":
			op = ast.OpDiv
		case "%":
			op = ast.OpMod
		}
		right, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.At(tok.Site), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (c *cursor) parseUnary() (ast.Expr, error) {
	if c.atSymbol("-") || c.atSymbol("!") {
		tok := c.advance()
		op := ast.OpNeg
		if tok.Text == "!" {
			op = ast.OpNot
		}
		x, err := c.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.At(tok.Site), Op: op, X: x}, nil
	}
	return c.parsePostfix()
}

func (c *cursor) parsePostfix() (ast.Expr, error) {
	x, err := c.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		if c.atSymbol(".") {
			site := c.advance().Site
			nameTok, err := c.expectIdent()
			if err != nil {
				return nil, err
			}
			x = &ast.MemberExpr{Base: ast.At(site), X: x, Name: nameTok.Text}
			continue
		}
		if c.peek().Kind == lexer.Group && c.peek().Bracket == lexer.Paren {
			group := c.advance()
			var args []ast.Expr
			for _, field := range group.Fields {
				a, err := newCursor(c.unit, field).fullExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
			}
			x = &ast.CallExpr{Base: ast.At(group.Site), Fn: x, Args: args}
			continue
		}
		if c.peek().Kind == lexer.Group && c.peek().Bracket == lexer.Square {
			// Explicit generic instantiation f[T](args).
			group := c.advance()
			var typeArgs []ast.TypeExpr
			for _, field := range group.Fields {
				t, err := newCursor(c.unit, field).typeOnly()
				if err != nil {
					return nil, err
				}
				typeArgs = append(typeArgs, t)
			}
			callGroup, err := c.expectGroup(lexer.Paren)
			if err != nil {
				return nil, err
			}
			var args []ast.Expr
			for _, field := range callGroup.Fields {
				a, err := newCursor(c.unit, field).fullExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
			}
			x = &ast.CallExpr{Base: ast.At(group.Site), Fn: x, TypeArgs: typeArgs, Args: args}
			continue
		}
		break
	}
	return x, nil
}

func (c *cursor) typeOnly() (ast.TypeExpr, error) {
	t, err := c.parseType()
	if err != nil {
		return nil, err
	}
	if !c.eof() {
		return nil, &errs.SyntaxError{Site: c.peek().Site, Message: "unexpected trailing tokens in type argument"}
	}
	return t, nil
}

func (c *cursor) parsePrimary() (ast.Expr, error) {
	t := c.peek()
	switch t.Kind {
	case lexer.IntLiteral:
		c.advance()
		return &ast.Literal{Base: ast.At(t.Site), Kind: ast.LitInt, Int: t.Int}, nil
	case lexer.BoolLiteral:
		c.advance()
		return &ast.Literal{Base: ast.At(t.Site), Kind: ast.LitBool, Bool: t.Bool}, nil
	case lexer.StringLiteral:
		c.advance()
		return &ast.Literal{Base: ast.At(t.Site), Kind: ast.LitString, Str: t.Str}, nil
	case lexer.ByteArrayLiteral:
		c.advance()
		return &ast.Literal{Base: ast.At(t.Site), Kind: ast.LitByteArray, Bytes: t.Byte}, nil
	case lexer.Word:
		if isKeyword(t.Text) {
			return nil, &errs.SyntaxError{Site: t.Site, Message: "unexpected keyword '" + t.Text + "'"}
		}
		c.advance()
		if c.atSymbol("::") {
			c.advance()
			variantTok, err := c.expectIdent()
			if err != nil {
				return nil, err
			}
			return &ast.VariantExpr{Base: ast.At(t.Site), Enum: t.Text, Variant: variantTok.Text}, nil
		}
		return &ast.NameExpr{Base: ast.At(t.Site), Name: t.Text}, nil
	case lexer.Group:
		if t.Bracket == lexer.Paren {
			return c.parseParenOrLambda()
		}
		if t.Bracket == lexer.Square {
			c.advance()
			var elems []ast.Expr
			for _, field := range t.Fields {
				e, err := newCursor(c.unit, field).fullExpr()
				if err != nil {
					return nil, err
				}
				elems = append(elems, e)
			}
			return &ast.ListLitExpr{Base: ast.At(t.Site), Elems: elems}, nil
		}
	}
	return nil, &errs.SyntaxError{Site: t.Site, Message: "unexpected token " + t.String()}
}

// parseParenOrLambda disambiguates `(expr)` from a lambda head
// `(params) -> RetType { body }`, since both start with a Paren group.
func (c *cursor) parseParenOrLambda() (ast.Expr, error) {
	group := c.advance()
	if c.atSymbol("->") {
		start := group.Site
		c.advance()
		var params []ast.Param
		for _, field := range group.Fields {
			p, err := parseParam(c.unit, field)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		}
		retType, err := c.parseType()
		if err != nil {
			return nil, err
		}
		body, err := c.parseBraceExpr()
		if err != nil {
			return nil, err
		}
		return &ast.LambdaExpr{Base: ast.At(start), Params: params, RetType: retType, Body: body}, nil
	}
	if len(group.Fields) != 1 {
		return nil, &errs.SyntaxError{Site: group.Site, Message: "expected a single parenthesized expression"}
	}
	return newCursor(c.unit, group.Fields[0]).fullExpr()
}

func parseParam(unit *source.Unit, toks []lexer.Token) (ast.Param, error) {
	cc := newCursor(unit, toks)
	nameTok, err := cc.expectIdent()
	if err != nil {
		return ast.Param{}, err
	}
	p := ast.Param{Name: nameTok.Text}
	if cc.atSymbol(":") {
		cc.advance()
		p.Type, err = cc.typeOnly()
		if err != nil {
			return ast.Param{}, err
		}
	}
	return p, nil
}
