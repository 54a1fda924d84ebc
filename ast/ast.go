// Package ast defines the typed Abstract Syntax Tree produced by the
// parser: expressions, type expressions, and top-level statements.
package ast

import (
	"math/big"

	"github.com/SamJeffrey8/helios/source"
)

// Node is implemented by every AST node; every node carries a non-null
// site.
type Node interface {
	Site() source.Site
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// TypeExpr is a type expression as written in source, before resolution.
type TypeExpr interface {
	Node
	typeNode()
}

// Stmt is a top-level or impl-block statement.
type Stmt interface {
	Node
	stmtNode()
}

// Base carries a node's site and satisfies Node, so node structs only
// need to embed it rather than implement Site() individually. Exported so
// the parser (a different package) can construct literal node values.
type Base struct{ NodeSite source.Site }

func (b Base) Site() source.Site { return b.NodeSite }

// At is shorthand for Base{NodeSite: s}.
func At(s source.Site) Base { return Base{NodeSite: s} }

// ---- Expressions ----

// LiteralKind distinguishes the primitive shape of a Literal expression.
type LiteralKind int

const (
	LitBool LiteralKind = iota
	LitInt
	LitString
	LitByteArray
)

type Literal struct {
	Base
	Kind  LiteralKind
	Bool  bool
	Int   *big.Int
	Str   string
	Bytes []byte
}

func (*Literal) exprNode() {}

// NameExpr references a variable, const, or (unqualified) function by
// name; scope resolution fills in the binding during type checking.
type NameExpr struct {
	Base
	Name string
}

func (*NameExpr) exprNode() {}

type BinaryOp string

const (
	OpOr  BinaryOp = "||"
	OpAnd BinaryOp = "&&"
	OpEq  BinaryOp = "=="
	OpNeq BinaryOp = "!="
	OpLt  BinaryOp = "<"
	OpLte BinaryOp = "<="
	OpGt  BinaryOp = ">"
	OpGte BinaryOp = ">="
	OpAdd BinaryOp = "+"
	OpSub BinaryOp = "-"
	OpMul BinaryOp = "*"
	OpDiv BinaryOp = "/"
	OpMod BinaryOp = "%"
)

type BinaryExpr struct {
	Base
	Op          BinaryOp
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

type UnaryExpr struct {
	Base
	Op UnaryOp
	X  Expr
}

func (*UnaryExpr) exprNode() {}

// CallExpr applies Fn to Args; method-call syntax `recv.method(args)` is
// parsed as MemberExpr wrapped in CallExpr, which the IR builder lowers to
// a receiver-as-first-argument call.
type CallExpr struct {
	Base
	Fn       Expr
	TypeArgs []TypeExpr // explicit generic instantiation, e.g. f[Int](x)
	Args     []Expr
}

func (*CallExpr) exprNode() {}

// MemberExpr accesses a field or method of X by name.
type MemberExpr struct {
	Base
	X    Expr
	Name string
}

func (*MemberExpr) exprNode() {}

// VariantExpr names an enum variant, either qualified (`Option::Some`) or
// bare (`Some`, `None`) when the variant name is unambiguous in scope;
// used standalone for a no-field variant or as a CallExpr's Fn for a
// variant that takes fields.
type VariantExpr struct {
	Base
	Enum    string // "" if written bare and resolved by name alone
	Variant string
}

func (*VariantExpr) exprNode() {}

type Param struct {
	Name string
	Type TypeExpr // nil for lambda params without annotations
}

type LambdaExpr struct {
	Base
	Params  []Param
	RetType TypeExpr // optional
	Body    Expr
}

func (*LambdaExpr) exprNode() {}

type IfExpr struct {
	Base
	Cond, Then, Else Expr
}

func (*IfExpr) exprNode() {}

// SwitchCase is one arm of a SwitchExpr: either a named enum variant with
// bound fields, or an else/default arm when Variant == "".
type SwitchCase struct {
	Variant string
	Binds   []string // field bindings in declaration order
	Body    Expr
	Site    source.Site
}

type SwitchExpr struct {
	Base
	Scrutinee Expr
	Cases     []SwitchCase
	Else      Expr // nil if every variant has an explicit case
}

func (*SwitchExpr) exprNode() {}

// LetExpr models `let x = e1; e2`, parsed as a dedicated node and lowered
// by the IR builder to `(\x. e2) e1`.
type LetExpr struct {
	Base
	Name  string
	Type  TypeExpr // optional annotation
	Value Expr
	Body  Expr
}

func (*LetExpr) exprNode() {}

// BlockExpr is a sequence of const-bindings terminated by a result
// expression.
type BlockExpr struct {
	Base
	Consts []*ConstDecl
	Result Expr
}

func (*BlockExpr) exprNode() {}

// ListLitExpr is a bracketed list literal `[e1, e2, ...]`, including the
// empty literal `[]`.
type ListLitExpr struct {
	Base
	Elems []Expr
}

func (*ListLitExpr) exprNode() {}

// ---- Type expressions ----

// NamedType is `Ident` or `Ident[Arg1, Arg2, ...]`, and also represents
// enum-variant type syntax `T::Variant` via a non-empty Variant field.
type NamedType struct {
	Base
	Name    string
	Variant string // "" unless this names an enum variant, e.g. Option::Some
	Args    []TypeExpr
}

func (*NamedType) typeNode() {}

type FuncType struct {
	Base
	Params []TypeExpr
	Ret    TypeExpr
}

func (*FuncType) typeNode() {}

// TupleType is the `(A, B)` syntax used for multi-value function returns.
type TupleType struct {
	Base
	Elems []TypeExpr
}

func (*TupleType) typeNode() {}

// ---- Statements ----

type ConstDecl struct {
	Base
	Name  string
	Type  TypeExpr // optional
	Value Expr
}

func (*ConstDecl) stmtNode() {}

type FuncDecl struct {
	Base
	Name       string
	TypeParams []string
	Params     []Param
	RetType    TypeExpr // optional, inferred if nil
	Body       Expr
}

func (*FuncDecl) stmtNode() {}

type Field struct {
	Name string
	Type TypeExpr
}

type StructDecl struct {
	Base
	Name       string
	TypeParams []string
	Fields     []Field
}

func (*StructDecl) stmtNode() {}

type EnumVariant struct {
	Name   string
	Fields []Field
	Site   source.Site
}

type EnumDecl struct {
	Base
	Name       string
	TypeParams []string
	Variants   []EnumVariant
}

func (*EnumDecl) stmtNode() {}

// ImplBlock attaches methods and associated constants to a named type.
type ImplBlock struct {
	Base
	Target  TypeExpr
	Methods []*FuncDecl
	Consts  []*ConstDecl
}

func (*ImplBlock) stmtNode() {}

// ImportDecl textually includes exported declarations from another source
// unit.
type ImportDecl struct {
	Base
	Names  []string
	Module string
}

func (*ImportDecl) stmtNode() {}

// Purpose is the declared role of a script, determining main's signature.
type Purpose string

const (
	PurposeTesting  Purpose = "testing"
	PurposeSpending Purpose = "spending"
	PurposeMinting  Purpose = "minting"
	PurposeStaking  Purpose = "staking"
	PurposeModule   Purpose = "module"
)

// Program is the root of a parsed source unit.
type Program struct {
	Base
	Purpose Purpose
	Name    string
	Decls   []Stmt
}

// NewProgram constructs a Program node; used by the parser.
func NewProgram(purpose Purpose, name string, decls []Stmt, site source.Site) *Program {
	return &Program{Base: At(site), Purpose: purpose, Name: name, Decls: decls}
}
