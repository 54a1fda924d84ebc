package data

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// canonicalMode encodes scalar leaves (Int, Bytes) in RFC 8949 canonical
// form: shortest-form length headers, via cbor.CanonicalEncOptions() for
// deterministic hashing. Collections get their own hand-written headers
// below, since Plutus's Data wire form requires indefinite-length framing
// for non-empty lists/maps and a non-standard Constr tag scheme that no
// general CBOR library models.
var canonicalMode cbor.EncMode

func init() {
	m, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	canonicalMode = m
}

const byteChunkSize = 64

// EncodeCanonical renders v as canonical Plutus Data CBOR:
// integers as major type 0/1 or a tagged bignum, byte strings as major
// type 2 (64-byte chunked past byteChunkSize), lists/maps as major type
// 4/5 using indefinite-length framing when non-empty, and Constr values
// tagged 121+tag for tag 0..6, 1280+(tag-7) for tag 7..127, and a
// [tag, fields] pair under tag 102 otherwise.
func EncodeCanonical(v *Value) ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return canonicalMode.Marshal(v.Int)
	case KindBytes:
		return encodeBytes(v.Bytes), nil
	case KindList:
		return encodeList(v.List)
	case KindMap:
		return encodeMapPairs(v.Map)
	case KindConstr:
		return encodeConstr(v.Tag, v.Fields)
	default:
		return nil, fmt.Errorf("data: unknown value kind %d", v.Kind)
	}
}

func majorHeader(major byte, n uint64) []byte {
	switch {
	case n < 24:
		return []byte{major<<5 | byte(n)}
	case n <= 0xff:
		return []byte{major<<5 | 24, byte(n)}
	case n <= 0xffff:
		b := make([]byte, 3)
		b[0] = major<<5 | 25
		binary.BigEndian.PutUint16(b[1:], uint16(n))
		return b
	case n <= 0xffffffff:
		b := make([]byte, 5)
		b[0] = major<<5 | 26
		binary.BigEndian.PutUint32(b[1:], uint32(n))
		return b
	default:
		b := make([]byte, 9)
		b[0] = major<<5 | 27
		binary.BigEndian.PutUint64(b[1:], n)
		return b
	}
}

func encodeBytes(b []byte) []byte {
	if len(b) <= byteChunkSize {
		return append(majorHeader(2, uint64(len(b))), b...)
	}
	var buf bytes.Buffer
	buf.WriteByte(0x5f) // indefinite byte string
	for i := 0; i < len(b); i += byteChunkSize {
		end := i + byteChunkSize
		if end > len(b) {
			end = len(b)
		}
		chunk := b[i:end]
		buf.Write(majorHeader(2, uint64(len(chunk))))
		buf.Write(chunk)
	}
	buf.WriteByte(0xff)
	return buf.Bytes()
}

func encodeList(items []*Value) ([]byte, error) {
	var buf bytes.Buffer
	if len(items) == 0 {
		buf.WriteByte(0x80) // definite, length 0
		return buf.Bytes(), nil
	}
	buf.WriteByte(0x9f) // indefinite array
	for _, it := range items {
		b, err := EncodeCanonical(it)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(0xff)
	return buf.Bytes(), nil
}

func encodeMapPairs(pairs []Pair) ([]byte, error) {
	var buf bytes.Buffer
	if len(pairs) == 0 {
		buf.WriteByte(0xa0) // definite, length 0
		return buf.Bytes(), nil
	}
	buf.WriteByte(0xbf) // indefinite map
	for _, p := range pairs {
		kb, err := EncodeCanonical(p.Key)
		if err != nil {
			return nil, err
		}
		vb, err := EncodeCanonical(p.Val)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.Write(vb)
	}
	buf.WriteByte(0xff)
	return buf.Bytes(), nil
}

func encodeConstr(tag int, fields []*Value) ([]byte, error) {
	arr, err := encodeList(fields)
	if err != nil {
		return nil, err
	}
	var tagNum uint64
	switch {
	case tag >= 0 && tag <= 6:
		tagNum = uint64(121 + tag)
	case tag >= 7 && tag <= 127:
		tagNum = uint64(1280 + (tag - 7))
	default:
		inner, err := encodePair(tag, arr)
		if err != nil {
			return nil, err
		}
		return append(majorHeader(6, 102), inner...), nil
	}
	return append(majorHeader(6, tagNum), arr...), nil
}

// encodePair builds the fallback [tag, fields] pair used for Constr tags
// outside the 121-127/1280-1400 ranges.
func encodePair(tag int, fieldsArr []byte) ([]byte, error) {
	tagBytes, err := canonicalMode.Marshal(tag)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte(0x9f)
	buf.Write(tagBytes)
	buf.Write(fieldsArr)
	buf.WriteByte(0xff)
	return buf.Bytes(), nil
}

// DecodeCanonical is the inverse of EncodeCanonical: it parses a Plutus
// Data CBOR encoding back into a Value, the builtin deserialiseData's one
// job. It accepts any well-formed CBOR a conforming encoder could produce,
// not just the exact indefinite-length shapes EncodeCanonical emits, since
// a deserialised value may have travelled through another implementation.
func DecodeCanonical(b []byte) (*Value, error) {
	v, n, err := decodeValue(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, fmt.Errorf("data: %d trailing byte(s) after value", len(b)-n)
	}
	return v, nil
}

// readUint parses the length/tag/value encoded in a header's additional-info
// field, the scheme shared by major types 0, 1, 2, 4, 5, and 6 alike; it
// returns the decoded value and the number of header bytes consumed.
func readUint(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("data: unexpected end of input")
	}
	ai := b[0] & 0x1f
	switch {
	case ai < 24:
		return uint64(ai), 1, nil
	case ai == 24:
		if len(b) < 2 {
			return 0, 0, fmt.Errorf("data: truncated length")
		}
		return uint64(b[1]), 2, nil
	case ai == 25:
		if len(b) < 3 {
			return 0, 0, fmt.Errorf("data: truncated length")
		}
		return uint64(binary.BigEndian.Uint16(b[1:3])), 3, nil
	case ai == 26:
		if len(b) < 5 {
			return 0, 0, fmt.Errorf("data: truncated length")
		}
		return uint64(binary.BigEndian.Uint32(b[1:5])), 5, nil
	case ai == 27:
		if len(b) < 9 {
			return 0, 0, fmt.Errorf("data: truncated length")
		}
		return binary.BigEndian.Uint64(b[1:9]), 9, nil
	}
	return 0, 0, fmt.Errorf("data: unsupported additional info %d", ai)
}

func decodeValue(b []byte) (*Value, int, error) {
	if len(b) == 0 {
		return nil, 0, fmt.Errorf("data: unexpected end of input")
	}
	switch b[0] >> 5 {
	case 0:
		n, sz, err := readUint(b)
		if err != nil {
			return nil, 0, err
		}
		return Int(new(big.Int).SetUint64(n)), sz, nil
	case 1:
		n, sz, err := readUint(b)
		if err != nil {
			return nil, 0, err
		}
		v := new(big.Int).SetUint64(n)
		v.Neg(v.Add(v, big.NewInt(1)))
		return Int(v), sz, nil
	case 2:
		return decodeBytes(b)
	case 4:
		return decodeList(b)
	case 5:
		return decodeMap(b)
	case 6:
		return decodeTagged(b)
	}
	return nil, 0, fmt.Errorf("data: unsupported major type %d", b[0]>>5)
}

func decodeBytes(b []byte) (*Value, int, error) {
	if b[0] != 0x5f {
		n, sz, err := readUint(b)
		if err != nil {
			return nil, 0, err
		}
		end := sz + int(n)
		if end > len(b) {
			return nil, 0, fmt.Errorf("data: byte string truncated")
		}
		return Bytes(append([]byte(nil), b[sz:end]...)), end, nil
	}
	pos := 1
	var out []byte
	for {
		if pos >= len(b) {
			return nil, 0, fmt.Errorf("data: unterminated indefinite byte string")
		}
		if b[pos] == 0xff {
			pos++
			break
		}
		if b[pos]>>5 != 2 {
			return nil, 0, fmt.Errorf("data: indefinite byte string chunk must itself be a byte string")
		}
		n, sz, err := readUint(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		start := pos + sz
		end := start + int(n)
		if end > len(b) {
			return nil, 0, fmt.Errorf("data: byte string chunk truncated")
		}
		out = append(out, b[start:end]...)
		pos = end
	}
	return Bytes(out), pos, nil
}

func decodeList(b []byte) (*Value, int, error) {
	if b[0] == 0x80 {
		return List(nil), 1, nil
	}
	if b[0] != 0x9f {
		n, sz, err := readUint(b)
		if err != nil {
			return nil, 0, err
		}
		pos := sz
		items := make([]*Value, 0, n)
		for i := uint64(0); i < n; i++ {
			v, vsz, err := decodeValue(b[pos:])
			if err != nil {
				return nil, 0, err
			}
			items = append(items, v)
			pos += vsz
		}
		return List(items), pos, nil
	}
	pos := 1
	var items []*Value
	for {
		if pos >= len(b) {
			return nil, 0, fmt.Errorf("data: unterminated indefinite array")
		}
		if b[pos] == 0xff {
			pos++
			break
		}
		v, vsz, err := decodeValue(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
		pos += vsz
	}
	return List(items), pos, nil
}

func decodeMap(b []byte) (*Value, int, error) {
	if b[0] == 0xa0 {
		return Map(nil), 1, nil
	}
	if b[0] != 0xbf {
		n, sz, err := readUint(b)
		if err != nil {
			return nil, 0, err
		}
		pos := sz
		pairs := make([]Pair, 0, n)
		for i := uint64(0); i < n; i++ {
			k, ksz, err := decodeValue(b[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += ksz
			v, vsz, err := decodeValue(b[pos:])
			if err != nil {
				return nil, 0, err
			}
			pos += vsz
			pairs = append(pairs, Pair{Key: k, Val: v})
		}
		return Map(pairs), pos, nil
	}
	pos := 1
	var pairs []Pair
	for {
		if pos >= len(b) {
			return nil, 0, fmt.Errorf("data: unterminated indefinite map")
		}
		if b[pos] == 0xff {
			pos++
			break
		}
		k, ksz, err := decodeValue(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += ksz
		v, vsz, err := decodeValue(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += vsz
		pairs = append(pairs, Pair{Key: k, Val: v})
	}
	return Map(pairs), pos, nil
}

// decodeTagged handles major type 6: bignums (tags 2/3) and every Constr
// tag scheme encodeConstr produces (121-127, 1280-1400, and the 102
// [tag, fields] fallback).
func decodeTagged(b []byte) (*Value, int, error) {
	tagNum, sz, err := readUint(b)
	if err != nil {
		return nil, 0, err
	}
	rest := b[sz:]
	switch {
	case tagNum == 2 || tagNum == 3:
		bv, bsz, err := decodeValue(rest)
		if err != nil {
			return nil, 0, err
		}
		if bv.Kind != KindBytes {
			return nil, 0, fmt.Errorf("data: bignum tag %d requires a byte string payload", tagNum)
		}
		n := new(big.Int).SetBytes(bv.Bytes)
		if tagNum == 3 {
			n.Neg(n.Add(n, big.NewInt(1)))
		}
		return Int(n), sz + bsz, nil
	case tagNum >= 121 && tagNum <= 127:
		fields, fsz, err := decodeFieldsArray(rest, tagNum)
		if err != nil {
			return nil, 0, err
		}
		return Constr(int(tagNum-121), fields), sz + fsz, nil
	case tagNum >= 1280 && tagNum <= 1400:
		fields, fsz, err := decodeFieldsArray(rest, tagNum)
		if err != nil {
			return nil, 0, err
		}
		return Constr(int(tagNum-1280+7), fields), sz + fsz, nil
	case tagNum == 102:
		pair, psz, err := decodeValue(rest)
		if err != nil {
			return nil, 0, err
		}
		if pair.Kind != KindList || len(pair.List) != 2 {
			return nil, 0, fmt.Errorf("data: constr fallback tag 102 requires a 2-element array")
		}
		tagField, fieldsField := pair.List[0], pair.List[1]
		if tagField.Kind != KindInt || fieldsField.Kind != KindList {
			return nil, 0, fmt.Errorf("data: malformed constr fallback payload")
		}
		return Constr(int(tagField.Int.Int64()), fieldsField.List), sz + psz, nil
	}
	return nil, 0, fmt.Errorf("data: unsupported tag %d", tagNum)
}

func decodeFieldsArray(b []byte, tagNum uint64) ([]*Value, int, error) {
	v, n, err := decodeValue(b)
	if err != nil {
		return nil, 0, err
	}
	if v.Kind != KindList {
		return nil, 0, fmt.Errorf("data: constr tag %d requires an array of fields", tagNum)
	}
	return v.List, n, nil
}
