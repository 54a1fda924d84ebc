// Package types implements Helios's nominal type system: type
// declarations, parametric instantiation, monomorphisation, and the
// `is_data` / `serialize` capability every value type exposes.
package types

import "strings"

// DeclKind distinguishes what shape a Decl's members take.
type DeclKind int

const (
	KindPrimitive DeclKind = iota
	KindStruct
	KindEnum
	KindFunc // function-as-value type, never user-declared
	KindDomain
)

// Decl is a type declaration: a primitive, a user struct/enum, or one of
// the closed set of blockchain-domain types. Generic
// declarations carry TypeParams > 0; each concrete instantiation with a
// distinct Args tuple is a distinct monomorphic Type (see monomorph.go).
type Decl struct {
	Name       string
	TypeParams []string
	Kind       DeclKind
	Fields     []FieldDecl            // KindStruct
	Variants   []VariantDecl          // KindEnum
	NotData    bool                   // true for types with no is_data capability (function types)
}

type FieldDecl struct {
	Name string
	Type *Type
}

type VariantDecl struct {
	Name string
	Tag  int // Constr tag, assigned by declaration order starting at 0
	Fields []FieldDecl
}

// Type is a resolved nominal type: a reference to a Decl plus a concrete
// type-argument list. Two Types are equal iff they reference the same
// Decl and have pointwise-equal Args.
type Type struct {
	Decl    *Decl
	Args    []*Type
	Variant string // "" unless this narrows to one enum variant (switch binding)

	// Func-type-only fields; Decl is FuncDecl when Params != nil.
	Params []*Type
	Ret    *Type
}

// Equal reports structural equality of two resolved types.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Decl == FuncDecl || o.Decl == FuncDecl {
		if t.Decl != FuncDecl || o.Decl != FuncDecl {
			return false
		}
		if len(t.Params) != len(o.Params) || !t.Ret.Equal(o.Ret) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(o.Params[i]) {
				return false
			}
		}
		return true
	}
	if t.Decl != o.Decl || t.Variant != o.Variant {
		return false
	}
	if len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

// IsData reports whether values of this type implement the `serializable
// data` capability: every declared value type does, except
// function types.
func (t *Type) IsData() bool {
	if t.Decl == FuncDecl {
		return false
	}
	return !t.Decl.NotData
}

// String renders a type for diagnostics, e.g. "Map[Int]Bool" or
// "Option[Int]".
func (t *Type) String() string {
	if t.Decl == FuncDecl {
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + t.Ret.String()
	}
	name := t.Decl.Name
	if t.Variant != "" {
		name += "::" + t.Variant
	}
	if len(t.Args) == 0 {
		return name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	if t.Decl == MapDecl {
		return name + "[" + parts[0] + "]" + parts[1]
	}
	return name + "[" + strings.Join(parts, ", ") + "]"
}

// Builtin primitive and domain declarations.
var (
	IntDecl       = &Decl{Name: "Int", Kind: KindPrimitive}
	BoolDecl      = &Decl{Name: "Bool", Kind: KindPrimitive}
	StringDecl    = &Decl{Name: "String", Kind: KindPrimitive}
	ByteArrayDecl = &Decl{Name: "ByteArray", Kind: KindPrimitive}
	DataDecl      = &Decl{Name: "Data", Kind: KindPrimitive}
	ListDecl      = &Decl{Name: "List", Kind: KindPrimitive, TypeParams: []string{"T"}}
	MapDecl       = &Decl{Name: "Map", Kind: KindPrimitive, TypeParams: []string{"K", "V"}}
	OptionDecl    = &Decl{Name: "Option", Kind: KindEnum, TypeParams: []string{"T"},
		Variants: []VariantDecl{
			{Name: "Some", Tag: 0, Fields: []FieldDecl{{Name: "value", Type: nil}}}, // Type filled at instantiation
			{Name: "None", Tag: 1},
		},
	}
	FuncDecl = &Decl{Name: "<func>", Kind: KindFunc, NotData: true}
)

// Domain types: a closed set of blockchain-domain types. Field shapes are
// simplified to what a spending validator's scenario exercises; this is a
// closed catalogue, not meant to model every on-chain field.
var (
	ValueDecl        = &Decl{Name: "Value", Kind: KindDomain}
	AddressDecl      = &Decl{Name: "Address", Kind: KindDomain}
	CredentialDecl   = &Decl{Name: "Credential", Kind: KindDomain}
	TxIdDecl         = &Decl{Name: "TxId", Kind: KindDomain}
	TxOutputIdDecl   = &Decl{Name: "TxOutputId", Kind: KindDomain}
	DatumHashDecl    = &Decl{Name: "DatumHash", Kind: KindDomain}
	TxInputDecl      = &Decl{Name: "TxInput", Kind: KindDomain}
	TxOutputDecl     = &Decl{Name: "TxOutput", Kind: KindDomain}
	TxDecl           = &Decl{Name: "Tx", Kind: KindDomain}
	ScriptContextDecl = &Decl{Name: "ScriptContext", Kind: KindDomain}
)

func init() {
	TxInputDecl.Fields = []FieldDecl{
		{Name: "output_id", Type: Named(TxOutputIdDecl)},
		{Name: "output", Type: Named(TxOutputDecl)},
	}
	TxOutputDecl.Fields = []FieldDecl{
		{Name: "address", Type: Named(AddressDecl)},
		{Name: "value", Type: Named(ValueDecl)},
		{Name: "datum_hash", Type: Instantiate(OptionDecl, Named(DatumHashDecl))},
	}
	TxDecl.Fields = []FieldDecl{
		{Name: "inputs", Type: Instantiate(ListDecl, Named(TxInputDecl))},
		{Name: "outputs", Type: Instantiate(ListDecl, Named(TxOutputDecl))},
		{Name: "fee", Type: Named(ValueDecl)},
		{Name: "minted", Type: Named(ValueDecl)},
	}
	ScriptContextDecl.Fields = []FieldDecl{
		{Name: "tx", Type: Named(TxDecl)},
	}
}

// Named builds a zero-argument Type reference to decl.
func Named(decl *Decl) *Type { return &Type{Decl: decl} }

// Instantiate builds a concrete generic instantiation of decl with args.
func Instantiate(decl *Decl, args ...*Type) *Type { return &Type{Decl: decl, Args: args} }

// Func builds a function type value.
func Func(params []*Type, ret *Type) *Type { return &Type{Decl: FuncDecl, Params: params, Ret: ret} }

// Builtins is the table of predeclared names available without an import,
// consulted by the type checker's global scope.
var Builtins = map[string]*Decl{
	"Int": IntDecl, "Bool": BoolDecl, "String": StringDecl, "ByteArray": ByteArrayDecl,
	"Data": DataDecl, "List": ListDecl, "Map": MapDecl, "Option": OptionDecl,
	"Value": ValueDecl, "Address": AddressDecl, "Credential": CredentialDecl,
	"TxId": TxIdDecl, "TxOutputId": TxOutputIdDecl, "DatumHash": DatumHashDecl,
	"TxInput": TxInputDecl, "TxOutput": TxOutputDecl, "Tx": TxDecl,
	"ScriptContext": ScriptContextDecl,
}
