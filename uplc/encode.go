package uplc

import (
	"fmt"
	"math/big"

	"golang.org/x/mod/semver"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/ir"
)

// LanguageVersion identifies the bytecode dialect this emitter writes,
// validated against golang.org/x/mod/semver's grammar.
const LanguageVersion = "v1.0.0"

func init() {
	if !semver.IsValid(LanguageVersion) {
		panic("uplc: invalid LanguageVersion " + LanguageVersion)
	}
}

// term tags
const (
	tagVar     = 0
	tagDelay   = 1
	tagLambda  = 2
	tagApply   = 3
	tagConst   = 4
	tagForce   = 5
	tagError   = 6
	tagBuiltin = 7
)

// Program is a bytecode term plus its semver header.
type Program struct {
	Major, Minor, Patch int
	Body                Term
}

// Encode linearises a header plus term tree to bytes using a bit-packed
// format: a 4-bit node tag, ULEB128 De Bruijn indices, fixed 7-bit
// builtin ids, zig-zag ULEB128 integers, length-prefixed byte strings, and
// recursive encoding for list/map/constr constants.
func Encode(p *Program) []byte {
	w := &bitWriter{}
	w.writeBigULEB128(big.NewInt(int64(p.Major)))
	w.writeBigULEB128(big.NewInt(int64(p.Minor)))
	w.writeBigULEB128(big.NewInt(int64(p.Patch)))
	encodeTerm(w, p.Body)
	return w.flush()
}

// Decode reverses Encode.
func Decode(b []byte) (*Program, error) {
	r := &bitReader{buf: b}
	major, err := r.readBigULEB128()
	if err != nil {
		return nil, err
	}
	minor, err := r.readBigULEB128()
	if err != nil {
		return nil, err
	}
	patch, err := r.readBigULEB128()
	if err != nil {
		return nil, err
	}
	body, err := decodeTerm(r)
	if err != nil {
		return nil, err
	}
	return &Program{Major: int(major.Int64()), Minor: int(minor.Int64()), Patch: int(patch.Int64()), Body: body}, nil
}

func encodeTerm(w *bitWriter, t Term) {
	switch v := t.(type) {
	case *Var:
		w.writeBits(tagVar, 4)
		w.writeBigULEB128(big.NewInt(int64(v.Index)))
	case *Delay:
		w.writeBits(tagDelay, 4)
		encodeTerm(w, v.Body)
	case *Lambda:
		w.writeBits(tagLambda, 4)
		encodeTerm(w, v.Body)
	case *Apply:
		w.writeBits(tagApply, 4)
		encodeTerm(w, v.Fn)
		encodeTerm(w, v.Arg)
	case *Constant:
		w.writeBits(tagConst, 4)
		w.writeConstant(v.Value)
	case *Force:
		w.writeBits(tagForce, 4)
		encodeTerm(w, v.Body)
	case *ErrorTerm:
		w.writeBits(tagError, 4)
	case *BuiltinTerm:
		w.writeBits(tagBuiltin, 4)
		w.writeBits(uint64(v.ID), 7)
	}
}

func decodeTerm(r *bitReader) (Term, error) {
	tag, err := r.readBits(4)
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagVar:
		idx, err := r.readBigULEB128()
		if err != nil {
			return nil, err
		}
		return &Var{Index: int(idx.Int64())}, nil
	case tagDelay:
		body, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		return &Delay{Body: body}, nil
	case tagLambda:
		body, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		return &Lambda{Body: body}, nil
	case tagApply:
		fn, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		arg, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		return &Apply{Fn: fn, Arg: arg}, nil
	case tagConst:
		v, err := r.readConstant()
		if err != nil {
			return nil, err
		}
		return &Constant{Value: v}, nil
	case tagForce:
		body, err := decodeTerm(r)
		if err != nil {
			return nil, err
		}
		return &Force{Body: body}, nil
	case tagError:
		return &ErrorTerm{}, nil
	case tagBuiltin:
		id, err := r.readBits(7)
		if err != nil {
			return nil, err
		}
		return &BuiltinTerm{ID: ir.Builtin(id)}, nil
	}
	return nil, fmt.Errorf("uplc: unknown term tag %d", tag)
}

// ---- constant payload ----

func (w *bitWriter) writeConstant(v *data.Value) {
	w.writeBits(uint64(v.Kind), 3)
	switch v.Kind {
	case data.KindInt:
		w.writeBigULEB128(zigzag(v.Int))
	case data.KindBytes:
		w.padToByte()
		w.writeBigULEB128(big.NewInt(int64(len(v.Bytes))))
		for _, by := range v.Bytes {
			w.writeBits(uint64(by), 8)
		}
	case data.KindList:
		w.writeBigULEB128(big.NewInt(int64(len(v.List))))
		for _, e := range v.List {
			w.writeConstant(e)
		}
	case data.KindMap:
		w.writeBigULEB128(big.NewInt(int64(len(v.Map))))
		for _, p := range v.Map {
			w.writeConstant(p.Key)
			w.writeConstant(p.Val)
		}
	case data.KindConstr:
		w.writeBigULEB128(big.NewInt(int64(v.Tag)))
		w.writeBigULEB128(big.NewInt(int64(len(v.Fields))))
		for _, f := range v.Fields {
			w.writeConstant(f)
		}
	}
}

func (r *bitReader) readConstant() (*data.Value, error) {
	kind, err := r.readBits(3)
	if err != nil {
		return nil, err
	}
	switch data.Kind(kind) {
	case data.KindInt:
		z, err := r.readBigULEB128()
		if err != nil {
			return nil, err
		}
		return data.Int(unzigzag(z)), nil
	case data.KindBytes:
		r.padToByte()
		n, err := r.readBigULEB128()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n.Int64())
		for i := range buf {
			b, err := r.readBits(8)
			if err != nil {
				return nil, err
			}
			buf[i] = byte(b)
		}
		return data.Bytes(buf), nil
	case data.KindList:
		n, err := r.readBigULEB128()
		if err != nil {
			return nil, err
		}
		items := make([]*data.Value, n.Int64())
		for i := range items {
			items[i], err = r.readConstant()
			if err != nil {
				return nil, err
			}
		}
		return data.List(items), nil
	case data.KindMap:
		n, err := r.readBigULEB128()
		if err != nil {
			return nil, err
		}
		pairs := make([]data.Pair, n.Int64())
		for i := range pairs {
			k, err := r.readConstant()
			if err != nil {
				return nil, err
			}
			v, err := r.readConstant()
			if err != nil {
				return nil, err
			}
			pairs[i] = data.Pair{Key: k, Val: v}
		}
		return data.Map(pairs), nil
	case data.KindConstr:
		tag, err := r.readBigULEB128()
		if err != nil {
			return nil, err
		}
		n, err := r.readBigULEB128()
		if err != nil {
			return nil, err
		}
		fields := make([]*data.Value, n.Int64())
		for i := range fields {
			fields[i], err = r.readConstant()
			if err != nil {
				return nil, err
			}
		}
		return data.Constr(int(tag.Int64()), fields), nil
	}
	return nil, fmt.Errorf("uplc: unknown constant kind %d", kind)
}

func zigzag(n *big.Int) *big.Int {
	if n.Sign() >= 0 {
		return new(big.Int).Lsh(n, 1)
	}
	t := new(big.Int).Lsh(new(big.Int).Neg(n), 1)
	return t.Sub(t, big.NewInt(1))
}

func unzigzag(z *big.Int) *big.Int {
	if z.Bit(0) == 0 {
		return new(big.Int).Rsh(z, 1)
	}
	t := new(big.Int).Add(z, big.NewInt(1))
	return t.Neg(t.Rsh(t, 1))
}
