// Package data implements Helios's runtime Data value: the
// tagged Int/Bytes/List/Map/Constr tree every on-chain value reduces to,
// plus its canonical CBOR wire encoding.
package data

import (
	"fmt"
	"math/big"
	"strings"
)

// Kind distinguishes the five Data shapes: Int, Bytes, List, Map, Constr.
type Kind int

const (
	KindInt Kind = iota
	KindBytes
	KindList
	KindMap
	KindConstr
)

// Pair is one key/value entry of a Map value. Order is significant and
// duplicates are preserved verbatim (DESIGN.md "Duplicate Map keys").
type Pair struct {
	Key *Value
	Val *Value
}

// Value is the tagged Data tree. Exactly one of the payload fields is
// meaningful for a given Kind.
type Value struct {
	Kind   Kind
	Int    *big.Int
	Bytes  []byte
	List   []*Value
	Map    []Pair
	Tag    int
	Fields []*Value
}

func Int(n *big.Int) *Value   { return &Value{Kind: KindInt, Int: n} }
func IntFromInt64(n int64) *Value { return Int(big.NewInt(n)) }
func Bytes(b []byte) *Value   { return &Value{Kind: KindBytes, Bytes: b} }
func List(items []*Value) *Value { return &Value{Kind: KindList, List: items} }
func Map(pairs []Pair) *Value { return &Value{Kind: KindMap, Map: pairs} }
func Constr(tag int, fields []*Value) *Value {
	return &Value{Kind: KindConstr, Tag: tag, Fields: fields}
}

// Bool constructors: Bool is encoded as Constr(0,[]) for True and
// Constr(1,[]) for False, matching the Plutus convention.
func True() *Value  { return Constr(0, nil) }
func False() *Value { return Constr(1, nil) }

func BoolValue(b bool) *Value {
	if b {
		return True()
	}
	return False()
}

// IsTrue reports whether v is the Constr(0,[]) encoding of True.
func (v *Value) IsTrue() bool {
	return v.Kind == KindConstr && v.Tag == 0 && len(v.Fields) == 0
}

// Option constructors: Some(x) is Constr(0,[x]), None is Constr(1,[]).
func Some(x *Value) *Value { return Constr(0, []*Value{x}) }
func None() *Value         { return Constr(1, nil) }

// IsNone reports whether v is the Constr(1,[]) encoding of Option's None.
func (v *Value) IsNone() bool {
	return v.Kind == KindConstr && v.Tag == 1 && len(v.Fields) == 0
}

// Equal reports structural, recursive equality.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return a.Int.Cmp(b.Int) == 0
	case KindBytes:
		return string(a.Bytes) == string(b.Bytes)
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for i := range a.Map {
			if !Equal(a.Map[i].Key, b.Map[i].Key) || !Equal(a.Map[i].Val, b.Map[i].Val) {
				return false
			}
		}
		return true
	case KindConstr:
		if a.Tag != b.Tag || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if !Equal(a.Fields[i], b.Fields[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders v for diagnostics and property-test failure messages.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Kind {
	case KindInt:
		return v.Int.String()
	case KindBytes:
		return fmt.Sprintf("#%x", v.Bytes)
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, len(v.Map))
		for i, p := range v.Map {
			parts[i] = p.Key.String() + ": " + p.Val.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindConstr:
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			parts[i] = f.String()
		}
		return fmt.Sprintf("Constr%d(%s)", v.Tag, strings.Join(parts, ", "))
	}
	return "<invalid>"
}
