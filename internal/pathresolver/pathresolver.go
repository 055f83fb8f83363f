// Package pathresolver implements CalKu's property path resolver: safe
// traversal of a target Value by a dot/colon path, walking one segment at
// a time and treating a nil/absent intermediate as a terminal Undefined
// rather than a panic.
package pathresolver

import (
	"strconv"

	"github.com/cwbudde/go-calku/internal/calkuerrors"
	"github.com/cwbudde/go-calku/internal/value"
)

var forbiddenSegments = map[string]bool{
	"prototype":   true,
	"constructor": true,
	"__proto__":   true,
}

// splitPath breaks path on '.' and ':' while keeping track of which
// separator preceded each segment (':' means "numeric index", '.' means
// "object key"). The first segment has no preceding separator.
func splitPath(path string) (segments []string, seps []byte) {
	start := 0
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == '.' || c == ':' {
			segments = append(segments, path[start:i])
			seps = append(seps, c)
			start = i + 1
		}
	}
	segments = append(segments, path[start:])
	seps = append(seps, 0)
	return
}

// Resolve walks path against target and returns the resolved Value,
// following these rules:
//   - path must be non-empty
//   - empty segments (a..b, a.b:) are a path error
//   - segments named prototype/constructor/__proto__ are rejected
//     unconditionally (prototype-pollution hardening)
//   - Null/Undefined mid-path short-circuits to Undefined
//   - a final Null resolves to Null; a final Undefined to Undefined
func Resolve(target value.Value, path string) (value.Value, error) {
	if path == "" {
		return nil, calkuerrors.New(0, path, "property path must not be empty")
	}

	segments, seps := splitPath(path)
	for _, seg := range segments {
		if seg == "" {
			return nil, calkuerrors.New(0, path, "property path %q has an empty segment", path)
		}
		if forbiddenSegments[seg] {
			return nil, calkuerrors.New(0, path, "property path segment %q is not allowed", seg)
		}
	}

	cur := target
	for i, seg := range segments {
		switch c := cur.(type) {
		case nil:
			return value.Undefined{}, nil
		case value.Null, value.Undefined:
			return value.Undefined{}, nil
		case *value.Object:
			v, ok := c.Get(seg)
			if !ok {
				return value.Undefined{}, nil
			}
			cur = v
		case *value.Array:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c.Elems) {
				return value.Undefined{}, nil
			}
			cur = c.Elems[idx]
		case value.String:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len([]rune(c.Val)) {
				return value.Undefined{}, nil
			}
			cur = value.String{Val: string([]rune(c.Val)[idx])}
		default:
			return value.Undefined{}, nil
		}
		_ = seps[i]
	}

	switch cur.(type) {
	case value.Null:
		return value.Null{}, nil
	case value.Undefined, nil:
		return value.Undefined{}, nil
	default:
		return cur, nil
	}
}

// The resolver treats '.' and ':' identically when deciding what to do
// with a segment: object key vs array/string index is determined by the
// runtime type of cur, not by which separator preceded it. Both a
// numeric index into an array and a 0-based character index into a
// string are handled above by trying strconv.Atoi whenever cur is an
// Array or String, regardless of which separator preceded the segment.
// seps is retained on Resolve's stack only to make that equivalence
// explicit to a reader stepping through the loop.
