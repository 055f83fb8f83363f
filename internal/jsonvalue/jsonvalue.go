// Package jsonvalue decodes a JSON document into a CalKu value.Value tree,
// used by the CLI's --target flag to build a target for eval/properties
// without hand-rolling a second literal-promotion path. JSON strings are
// re-run through valueparser.Parse so an ISO8601/US-format string in a
// JSON document promotes to a Date the same way it would if written as a
// naked literal in an expression.
package jsonvalue

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/internal/value"
	"github.com/cwbudde/go-calku/internal/valueparser"
)

// Decode parses raw JSON text into a value.Value. zone and resolve drive
// date-lexeme resolution for embedded-offset-free date strings, the same
// arguments Expression passes to the lexer; pass
// valueparser.UTCResolver and "" for UTC-only decoding.
func Decode(raw []byte, zone string, resolve valueparser.ZoneResolver) (value.Value, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("jsonvalue: %w", err)
	}
	return fromAny(data, zone, resolve), nil
}

func fromAny(data any, zone string, resolve valueparser.ZoneResolver) value.Value {
	switch v := data.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Boolean{Val: v}
	case float64:
		return value.Number{Val: v}
	case string:
		return valueparser.Parse(v, token.Naked, zone, resolve)
	case []any:
		elems := make([]value.Value, len(v))
		for i, e := range v {
			elems[i] = fromAny(e, zone, resolve)
		}
		return &value.Array{Elems: elems}
	case map[string]any:
		obj := value.NewObject()
		for k, e := range v {
			obj.Set(k, fromAny(e, zone, resolve))
		}
		return obj
	default:
		return value.Undefined{}
	}
}
