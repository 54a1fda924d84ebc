package ir

import (
	"math/big"
	"unicode/utf8"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
)

// Builtin is one of the fixed catalogue entries of the builtin calling
// convention. IDs are stable within a compile (the bytecode wire format
// encodes them as a fixed-width 7-bit field) but not guaranteed stable across
// Helios versions.
type Builtin int

const (
	AddInteger Builtin = iota
	SubtractInteger
	MultiplyInteger
	DivideInteger
	ModInteger
	EqualsInteger
	LessThanInteger
	LessThanEqualsInteger
	AppendByteString
	LengthOfByteString
	SliceByteString
	EncodeUtf8
	DecodeUtf8
	EqualsByteString
	IfThenElse
	ConstrData
	UnConstrData
	IData
	UnIData
	BData
	UnBData
	ListData
	UnListData
	MapData
	UnMapData
	EqualsData
	MkCons
	HeadList
	TailList
	NullList
	ChooseList
	Trace
	MkPairMap
	NullMap
	HeadMapKey
	HeadMapVal
	TailMap
	SerialiseData
	DeserialiseData

	builtinCount
)

var builtinNames = [...]string{
	"addInteger", "subtractInteger", "multiplyInteger", "divideInteger",
	"modInteger", "equalsInteger", "lessThanInteger", "lessThanEqualsInteger",
	"appendByteString", "lengthOfByteString", "sliceByteString", "encodeUtf8",
	"decodeUtf8", "equalsByteString", "ifThenElse", "constrData",
	"unConstrData", "iData", "unIData", "bData", "unBData", "listData",
	"unListData", "mapData", "unMapData", "equalsData", "mkCons", "headList",
	"tailList", "nullList", "chooseList", "trace", "mkPairMap", "nullMap",
	"headMapKey", "headMapVal", "tailMap", "serialiseData", "deserialiseData",
}

func (b Builtin) String() string {
	if int(b) < 0 || int(b) >= len(builtinNames) {
		return "<invalid builtin>"
	}
	return builtinNames[b]
}

// Arity is the fixed number of arguments a builtin consumes, used by the
// evaluator to know when a builtin application is fully saturated and by the
// optimizer's constant-folding pass to know when it has all its operands.
func (b Builtin) Arity() int {
	switch b {
	case LengthOfByteString, EncodeUtf8, DecodeUtf8, UnConstrData, UnIData,
		UnBData, UnListData, UnMapData, HeadList, TailList, NullList,
		NullMap, HeadMapKey, HeadMapVal, TailMap, SerialiseData, DeserialiseData:
		return 1
	case AddInteger, SubtractInteger, MultiplyInteger, DivideInteger,
		ModInteger, EqualsInteger, LessThanInteger, LessThanEqualsInteger,
		AppendByteString, EqualsByteString, ConstrData, IData, BData,
		ListData, MapData, EqualsData, MkCons:
		return 2
	case MkPairMap:
		return 3
	case SliceByteString:
		return 3
	case IfThenElse:
		return 3
	case ChooseList:
		return 3
	case Trace:
		return 2
	}
	return 0
}

// Pure reports whether evaluating b can be done at compile time purely
// from its argument values, with no observable side effect beyond a
// possible failure. trace is excluded since its diagnostic
// message is a side effect the optimizer must not silently perform.
func (b Builtin) Pure() bool { return b != Trace && b != IfThenElse }

// floorDivMod divides a by b using floored division (quotient rounds
// toward negative infinity, remainder takes the divisor's sign), the
// Plutus divideInteger/modInteger convention. big.Int's own Div/Mod pair
// implements Euclidean division (remainder always non-negative) and
// Quo/Rem implements truncated division, neither of which matches floored
// division when a and b have opposite signs.
func floorDivMod(a, b *big.Int) (q, m *big.Int) {
	q = new(big.Int)
	m = new(big.Int)
	q.QuoRem(a, b, m)
	if m.Sign() != 0 && (m.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		m.Add(m, b)
	}
	return q, m
}

// Eval is the one reference implementation shared by the IR optimizer's
// constant-folding pass and the runtime evaluator. args must already be
// forced data.Value literals; ifThenElse and trace are handled specially
// by their callers since they involve deferred/diagnostic arguments.
func Eval(b Builtin, args []*data.Value, site source.Site) (*data.Value, error) {
	switch b {
	case AddInteger:
		return data.Int(new(big.Int).Add(args[0].Int, args[1].Int)), nil
	case SubtractInteger:
		return data.Int(new(big.Int).Sub(args[0].Int, args[1].Int)), nil
	case MultiplyInteger:
		return data.Int(new(big.Int).Mul(args[0].Int, args[1].Int)), nil
	case DivideInteger:
		if args[1].Int.Sign() == 0 {
			return nil, &errs.RuntimeError{Info: errs.InfoDivisionByZero, Site: site}
		}
		q, _ := floorDivMod(args[0].Int, args[1].Int)
		return data.Int(q), nil
	case ModInteger:
		if args[1].Int.Sign() == 0 {
			return nil, &errs.RuntimeError{Info: errs.InfoDivisionByZero, Site: site}
		}
		_, m := floorDivMod(args[0].Int, args[1].Int)
		return data.Int(m), nil
	case EqualsInteger:
		return data.BoolValue(args[0].Int.Cmp(args[1].Int) == 0), nil
	case LessThanInteger:
		return data.BoolValue(args[0].Int.Cmp(args[1].Int) < 0), nil
	case LessThanEqualsInteger:
		return data.BoolValue(args[0].Int.Cmp(args[1].Int) <= 0), nil
	case AppendByteString:
		out := make([]byte, 0, len(args[0].Bytes)+len(args[1].Bytes))
		out = append(out, args[0].Bytes...)
		out = append(out, args[1].Bytes...)
		return data.Bytes(out), nil
	case LengthOfByteString:
		return data.IntFromInt64(int64(len(args[0].Bytes))), nil
	case SliceByteString:
		start := args[0].Int.Int64()
		length := args[1].Int.Int64()
		b := args[2].Bytes
		if start < 0 {
			start = 0
		}
		end := start + length
		if start > int64(len(b)) {
			start = int64(len(b))
		}
		if end > int64(len(b)) {
			end = int64(len(b))
		}
		if end < start {
			end = start
		}
		return data.Bytes(append([]byte(nil), b[start:end]...)), nil
	case EncodeUtf8:
		return data.Bytes([]byte(string(args[0].Bytes))), nil
	case DecodeUtf8:
		if !utf8.Valid(args[0].Bytes) {
			return nil, &errs.RuntimeError{Info: errs.InfoInvalidUTF8, Site: site}
		}
		return data.Bytes(append([]byte(nil), args[0].Bytes...)), nil
	case EqualsByteString:
		return data.BoolValue(string(args[0].Bytes) == string(args[1].Bytes)), nil
	case ConstrData:
		return data.Constr(int(args[0].Int.Int64()), args[1].List), nil
	case UnConstrData:
		if args[0].Kind != data.KindConstr {
			return nil, &errs.RuntimeError{Info: "not a constr", Site: site}
		}
		return data.List([]*data.Value{data.IntFromInt64(int64(args[0].Tag)), data.List(args[0].Fields)}), nil
	case IData:
		return args[0], nil
	case UnIData:
		if args[0].Kind != data.KindInt {
			return nil, &errs.RuntimeError{Info: "not an integer", Site: site}
		}
		return args[0], nil
	case BData:
		return args[0], nil
	case UnBData:
		if args[0].Kind != data.KindBytes {
			return nil, &errs.RuntimeError{Info: "not bytes", Site: site}
		}
		return args[0], nil
	case ListData:
		return args[0], nil
	case UnListData:
		if args[0].Kind != data.KindList {
			return nil, &errs.RuntimeError{Info: "not a list", Site: site}
		}
		return args[0], nil
	case MapData:
		return args[0], nil
	case UnMapData:
		if args[0].Kind != data.KindMap {
			return nil, &errs.RuntimeError{Info: "not a map", Site: site}
		}
		return args[0], nil
	case EqualsData:
		return data.BoolValue(data.Equal(args[0], args[1])), nil
	case MkCons:
		return data.List(append([]*data.Value{args[0]}, args[1].List...)), nil
	case HeadList:
		if len(args[0].List) == 0 {
			return nil, &errs.RuntimeError{Info: errs.InfoEmptyList, Site: site}
		}
		return args[0].List[0], nil
	case TailList:
		if len(args[0].List) == 0 {
			return nil, &errs.RuntimeError{Info: errs.InfoEmptyList, Site: site}
		}
		return data.List(args[0].List[1:]), nil
	case NullList:
		return data.BoolValue(len(args[0].List) == 0), nil
	case MkPairMap:
		pair := data.Pair{Key: args[0], Val: args[1]}
		return data.Map(append([]data.Pair{pair}, args[2].Map...)), nil
	case NullMap:
		return data.BoolValue(len(args[0].Map) == 0), nil
	case HeadMapKey:
		if len(args[0].Map) == 0 {
			return nil, &errs.RuntimeError{Info: errs.InfoEmptyList, Site: site}
		}
		return args[0].Map[0].Key, nil
	case HeadMapVal:
		if len(args[0].Map) == 0 {
			return nil, &errs.RuntimeError{Info: errs.InfoEmptyList, Site: site}
		}
		return args[0].Map[0].Val, nil
	case TailMap:
		if len(args[0].Map) == 0 {
			return nil, &errs.RuntimeError{Info: errs.InfoEmptyList, Site: site}
		}
		return data.Map(args[0].Map[1:]), nil
	case SerialiseData:
		enc, err := data.EncodeCanonical(args[0])
		if err != nil {
			return nil, &errs.RuntimeError{Info: "serialiseData: " + err.Error(), Site: site}
		}
		return data.Bytes(enc), nil
	case DeserialiseData:
		v, err := data.DecodeCanonical(args[0].Bytes)
		if err != nil {
			return nil, &errs.RuntimeError{Info: "deserialiseData: " + err.Error(), Site: site}
		}
		return v, nil
	}
	return nil, &errs.RuntimeError{Info: "unsupported constant-fold of " + b.String(), Site: site}
}
