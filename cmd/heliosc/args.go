package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/SamJeffrey8/helios/data"
)

// parseArgs decodes a JSON array into a sequence of Data arguments: JSON
// numbers become Int, JSON strings prefixed with "0x" become Bytes (the
// rest become Bytes of their UTF-8 encoding, since String is represented
// identically to ByteArray at the Data level), JSON arrays become List,
// and JSON booleans become Bool.
func parseArgs(raw string) ([]*data.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing --args: %w", err)
	}
	out := make([]*data.Value, len(items))
	for i, it := range items {
		v, err := jsonToData(it)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func jsonToData(v interface{}) (*data.Value, error) {
	switch x := v.(type) {
	case json.Number:
		n, ok := new(big.Int).SetString(x.String(), 10)
		if !ok {
			return nil, fmt.Errorf("not an integer: %s", x)
		}
		return data.Int(n), nil
	case bool:
		return data.BoolValue(x), nil
	case string:
		if strings.HasPrefix(x, "0x") {
			b, err := hex.DecodeString(x[2:])
			if err != nil {
				return nil, fmt.Errorf("decoding hex string %q: %w", x, err)
			}
			return data.Bytes(b), nil
		}
		return data.Bytes([]byte(x)), nil
	case []interface{}:
		items := make([]*data.Value, len(x))
		for i, e := range x {
			dv, err := jsonToData(e)
			if err != nil {
				return nil, err
			}
			items[i] = dv
		}
		return data.List(items), nil
	case nil:
		return data.None(), nil
	}
	return nil, fmt.Errorf("unsupported argument value %v (%T)", v, v)
}
