package parser

import (
	"github.com/SamJeffrey8/helios/ast"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/lexer"
	"github.com/SamJeffrey8/helios/source"
)

// Parse tokenizes and parses an entire source unit into a Program.
// The grammar is fixed: a purpose keyword, a script name,
// then a sequence of top-level declarations.
func Parse(u *source.Unit) (*ast.Program, error) {
	toks, err := lexer.Tokenize(u)
	if err != nil {
		return nil, err
	}
	c := newCursor(u, toks)
	return c.parseProgram()
}

var purposes = map[string]ast.Purpose{
	"testing":  ast.PurposeTesting,
	"spending": ast.PurposeSpending,
	"minting":  ast.PurposeMinting,
	"staking":  ast.PurposeStaking,
	"module":   ast.PurposeModule,
}

func (c *cursor) parseProgram() (*ast.Program, error) {
	start := c.peek().Site
	purposeTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	purpose, ok := purposes[purposeTok.Text]
	if !ok {
		return nil, &errs.SyntaxError{Site: purposeTok.Site, Message: "unknown purpose '" + purposeTok.Text + "'; expected testing, spending, minting, staking, or module"}
	}
	nameTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}

	var decls []ast.Stmt
	for !c.eof() {
		d, err := c.parseTopLevelDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}

	return ast.NewProgram(purpose, nameTok.Text, decls, start), nil
}

func (c *cursor) parseTopLevelDecl() (ast.Stmt, error) {
	switch {
	case c.atWord("const"):
		return c.parseConst()
	case c.atWord("func"):
		return c.parseFunc()
	case c.atWord("struct"):
		return c.parseStruct()
	case c.atWord("enum"):
		return c.parseEnum()
	case c.atWord("impl"):
		return c.parseImpl()
	case c.atWord("import"):
		return c.parseImport()
	default:
		return nil, &errs.SyntaxError{Site: c.peek().Site, Message: "expected a top-level declaration (const, func, struct, enum, impl, import)"}
	}
}

func (c *cursor) parseConst() (*ast.ConstDecl, error) {
	start := c.advance().Site // "const"
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
	return &ast.ConstDecl{Base: ast.At(start), Name: nameTok.Text, Type: typ, Value: value}, nil
}

func (c *cursor) parseTypeParams() ([]string, error) {
	if !c.atGroup(lexer.Square) {
		return nil, nil
	}
	group, _ := c.expectGroup(lexer.Square)
	var params []string
	for _, field := range group.Fields {
		tok, err := newCursor(c.unit, field).expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, tok.Text)
	}
	return params, nil
}

func (c *cursor) parseFunc() (*ast.FuncDecl, error) {
	start := c.advance().Site // "func"
	nameTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	typeParams, err := c.parseTypeParams()
	if err != nil {
		return nil, err
	}
	group, err := c.expectGroup(lexer.Paren)
	if err != nil {
		return nil, err
	}
	var params []ast.Param
	for _, field := range group.Fields {
		p, err := parseParam(c.unit, field)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	var retType ast.TypeExpr
	if c.atSymbol("->") {
		c.advance()
		retType, err = c.parseType()
		if err != nil {
			return nil, err
		}
	}
	body, err := c.parseBraceExpr()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDecl{Base: ast.At(start), Name: nameTok.Text, TypeParams: typeParams, Params: params, RetType: retType, Body: body}, nil
}

func parseFields(unit *source.Unit, group lexer.Token) ([]ast.Field, error) {
	var fields []ast.Field
	for _, field := range group.Fields {
		cc := newCursor(unit, field)
		nameTok, err := cc.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := cc.expectSymbol(":"); err != nil {
			return nil, err
		}
		typ, err := cc.typeOnly()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.Field{Name: nameTok.Text, Type: typ})
	}
	return fields, nil
}

func (c *cursor) parseStruct() (*ast.StructDecl, error) {
	start := c.advance().Site // "struct"
	nameTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	typeParams, err := c.parseTypeParams()
	if err != nil {
		return nil, err
	}
	group, err := c.expectGroup(lexer.Brace)
	if err != nil {
		return nil, err
	}
	fields, err := parseFields(c.unit, group)
	if err != nil {
		return nil, err
	}
	return &ast.StructDecl{Base: ast.At(start), Name: nameTok.Text, TypeParams: typeParams, Fields: fields}, nil
}

func (c *cursor) parseEnum() (*ast.EnumDecl, error) {
	start := c.advance().Site // "enum"
	nameTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	typeParams, err := c.parseTypeParams()
	if err != nil {
		return nil, err
	}
	group, err := c.expectGroup(lexer.Brace)
	if err != nil {
		return nil, err
	}
	var variants []ast.EnumVariant
	for _, field := range group.Fields {
		cc := newCursor(c.unit, field)
		vTok, err := cc.expectIdent()
		if err != nil {
			return nil, err
		}
		var vFields []ast.Field
		if cc.peek().Kind == lexer.Group && cc.peek().Bracket == lexer.Brace {
			g := cc.advance()
			vFields, err = parseFields(c.unit, g)
			if err != nil {
				return nil, err
			}
		}
		variants = append(variants, ast.EnumVariant{Name: vTok.Text, Fields: vFields, Site: vTok.Site})
	}
	return &ast.EnumDecl{Base: ast.At(start), Name: nameTok.Text, TypeParams: typeParams, Variants: variants}, nil
}

func (c *cursor) parseImpl() (*ast.ImplBlock, error) {
	start := c.advance().Site // "impl"
	target, err := c.parseType()
	if err != nil {
		return nil, err
	}
	group, err := c.expectGroup(lexer.Brace)
	if err != nil {
		return nil, err
	}
	if len(group.Fields) != 1 {
		return nil, &errs.SyntaxError{Site: group.Site, Message: "impl block body must not use top-level commas"}
	}
	body := newCursor(c.unit, group.Fields[0])
	impl := &ast.ImplBlock{Base: ast.At(start), Target: target}
	for !body.eof() {
		switch {
		case body.atWord("func"):
			f, err := body.parseFunc()
			if err != nil {
				return nil, err
			}
			impl.Methods = append(impl.Methods, f)
		case body.atWord("const"):
			cd, err := body.parseConst()
			if err != nil {
				return nil, err
			}
			impl.Consts = append(impl.Consts, cd)
		default:
			return nil, &errs.SyntaxError{Site: body.peek().Site, Message: "expected func or const inside impl block"}
		}
	}
	return impl, nil
}

func (c *cursor) parseImport() (*ast.ImportDecl, error) {
	start := c.advance().Site // "import"
	group, err := c.expectGroup(lexer.Brace)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, field := range group.Fields {
		tok, err := newCursor(c.unit, field).expectIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Text)
	}
	if _, err := c.expectWord("from"); err != nil {
		return nil, err
	}
	moduleTok, err := c.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := c.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &ast.ImportDecl{Base: ast.At(start), Names: names, Module: moduleTok.Text}, nil
}

// parseBlockBody parses a `{ ... }` group's single field as zero or more
// `const` bindings followed by a result expression.
func parseBlockBody(unit *source.Unit, group lexer.Token) (ast.Expr, error) {
	if len(group.Fields) == 0 {
		return nil, &errs.SyntaxError{Site: group.Site, Message: "empty block body"}
	}
	if len(group.Fields) != 1 {
		return nil, &errs.SyntaxError{Site: group.Site, Message: "block body must not use top-level commas"}
	}
	cc := newCursor(unit, group.Fields[0])
	var consts []*ast.ConstDecl
	for cc.atWord("const") {
		cd, err := cc.parseConst()
		if err != nil {
			return nil, err
		}
		consts = append(consts, cd)
	}
	result, err := cc.fullExpr()
	if err != nil {
		return nil, err
	}
	if len(consts) == 0 {
		return result, nil
	}
	return &ast.BlockExpr{Base: ast.At(group.Site), Consts: consts, Result: result}, nil
}
