// Package validator implements CalKu's chainable predicate builder, used
// by the operator and function catalogs to validate argument values
// before dispatch.
//
// The chaining style — a session object threading (value, failure state)
// through a sequence of predicate calls, each a no-op once a prior
// predicate has failed — is a fluent API over CalKu's own Value model
// rather than reflection over Go struct fields.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cwbudde/go-calku/internal/value"
)

// Session carries one value through a chain of predicate calls. Once a
// predicate fails, every subsequent predicate is a no-op (message prefix is
// applied once, at read time).
type Session struct {
	val     value.Value
	name    string
	failed  bool
	message string
	bypass  bool // set by Allowed on match: remaining predicates short-circuit to success
}

// New starts a validation session over v.
func New(v value.Value) *Session {
	return &Session{val: v}
}

// Named attaches a name used in the failure message prefix.
func (s *Session) Named(name string) *Session {
	s.name = name
	return s
}

// Reset clears failure state and optionally replaces the carried value
// and/or name.
func (s *Session) Reset(v value.Value, name string) *Session {
	s.val = v
	s.name = name
	s.failed = false
	s.message = ""
	s.bypass = false
	return s
}

func (s *Session) fail(format string, args ...any) {
	if s.failed || s.bypass {
		return
	}
	s.failed = true
	s.message = fmt.Sprintf(format, args...)
}

// Valid reports whether every predicate so far has passed.
func (s *Session) Valid() bool { return !s.failed }

// Message returns the first failure's prefixed sentence, or "" if valid.
func (s *Session) Message() string {
	if !s.failed {
		return ""
	}
	prefix := "The value "
	if s.name != "" {
		prefix = fmt.Sprintf("The value for %q ", s.name)
	}
	return prefix + s.message
}

// Err converts the first failure into an error, or nil if valid.
func (s *Session) Err() error {
	if !s.failed {
		return nil
	}
	return fmt.Errorf("%s", s.Message())
}

// Required rejects Null, Undefined, whitespace-only strings, and empty
// arrays.
func (s *Session) Required() *Session {
	if s.failed || s.bypass {
		return s
	}
	switch t := s.val.(type) {
	case value.Null, value.Undefined:
		s.fail("is required")
	case value.String:
		if strings.TrimSpace(t.Val) == "" {
			s.fail("is required")
		}
	case *value.Array:
		if len(t.Elems) == 0 {
			s.fail("is required")
		}
	}
	return s
}

// Anything always passes.
func (s *Session) Anything() *Session { return s }

// tagMatches reports whether v's runtime tag matches the recognised tag
// token: "boolean", "number", "string", "object", "array", "date",
// or "null". Unknown tags and "undefined" are rejected by the caller as a
// definition error, not here.
func tagMatches(v value.Value, tag string) bool {
	switch tag {
	case "boolean":
		_, ok := v.(value.Boolean)
		return ok
	case "number":
		_, ok := v.(value.Number)
		return ok
	case "string":
		_, ok := v.(value.String)
		return ok
	case "object":
		_, ok := v.(*value.Object)
		return ok
	case "array":
		_, ok := v.(*value.Array)
		return ok
	case "date":
		_, ok := v.(value.Date)
		return ok
	case "null":
		_, ok := v.(value.Null)
		return ok
	default:
		return false
	}
}

var knownTags = map[string]bool{
	"boolean": true, "number": true, "string": true, "object": true,
	"array": true, "date": true, "null": true,
}

// InstanceOf accepts v if it matches any of types. An unknown tag token or
// "undefined" is a definition error and panics (definition
// errors propagate unconditionally and are programmer-facing, never
// surfaced as an expression value).
//
// When "array" is present alongside other tags, every element of an Array
// value must itself satisfy the full type list, recursively.
func (s *Session) InstanceOf(types ...string) *Session {
	for _, t := range types {
		if t == "undefined" || !knownTags[t] {
			panic(fmt.Sprintf("validator: InstanceOf: unrecognised type tag %q", t))
		}
	}
	if s.failed || s.bypass {
		return s
	}
	if !instanceOfMatches(s.val, types) {
		s.fail("must be one of: %s", strings.Join(types, ", "))
	}
	return s
}

func instanceOfMatches(v value.Value, types []string) bool {
	for _, t := range types {
		if tagMatches(v, t) {
			if t == "array" && len(types) > 1 {
				arr := v.(*value.Array)
				for _, el := range arr.Elems {
					if !instanceOfMatches(el, types) {
						return false
					}
				}
			}
			return true
		}
	}
	return false
}

// Array, Boolean, Number, String, Object are single-tag shorthand checks.
func (s *Session) Array() *Session   { return s.InstanceOf("array") }
func (s *Session) Boolean() *Session { return s.InstanceOf("boolean") }
func (s *Session) Number() *Session  { return s.InstanceOf("number") }
func (s *Session) Str() *Session {
	return s.InstanceOf("string")
}
func (s *Session) Object() *Session { return s.InstanceOf("object") }

// Integer requires the value be a Number whose floor equals itself.
func (s *Session) Integer() *Session {
	if s.failed || s.bypass {
		return s
	}
	n, ok := s.val.(value.Number)
	if !ok {
		s.fail("must be an integer")
		return s
	}
	if n.Val != float64(int64(n.Val)) {
		s.fail("must be an integer")
	}
	return s
}

// Length validates string/array length against inclusive bounds. A nil
// bound is unbounded on that side.
func (s *Session) Length(min, max *int) *Session {
	if s.failed || s.bypass {
		return s
	}
	var n int
	switch t := s.val.(type) {
	case value.String:
		n = len([]rune(t.Val))
	case *value.Array:
		n = len(t.Elems)
	default:
		s.fail("must be a string or array")
		return s
	}
	if min != nil && n < *min {
		s.fail("must have a length of at least %d", *min)
	} else if max != nil && n > *max {
		s.fail("must have a length of at most %d", *max)
	}
	return s
}

// Range validates a Number against inclusive bounds. A nil bound is
// unbounded on that side.
func (s *Session) Range(min, max *float64) *Session {
	if s.failed || s.bypass {
		return s
	}
	n, ok := s.val.(value.Number)
	if !ok {
		s.fail("must be a number")
		return s
	}
	if min != nil && n.Val < *min {
		s.fail("must be at least %g", *min)
	} else if max != nil && n.Val > *max {
		s.fail("must be at most %g", *max)
	}
	return s
}

// Regexp requires a String value matching pattern.
func (s *Session) Regexp(pattern string) *Session {
	if s.failed || s.bypass {
		return s
	}
	str, ok := s.val.(value.String)
	if !ok {
		s.fail("must be a string")
		return s
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("validator: Regexp: invalid pattern %q: %v", pattern, err))
	}
	if !re.MatchString(str.Val) {
		s.fail("must match pattern %s", pattern)
	}
	return s
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailAddress requires a plausible email shape.
func (s *Session) EmailAddress() *Session {
	if s.failed || s.bypass {
		return s
	}
	str, ok := s.val.(value.String)
	if !ok || !emailRe.MatchString(str.Val) {
		s.fail("must be a valid email address")
	}
	return s
}

var (
	phoneRe          = regexp.MustCompile(`^\+?[0-9][0-9().\-\s]{6,}[0-9]$`)
	phoneExtensionRe = regexp.MustCompile(`^\+?[0-9][0-9().\-\s]{6,}[0-9](\s*(x|ext\.?)\s*\d+)?$`)
)

// PhoneNumber requires a plausible phone number shape; allowExtension
// permits a trailing "x1234"/"ext. 1234".
func (s *Session) PhoneNumber(allowExtension bool) *Session {
	if s.failed || s.bypass {
		return s
	}
	str, ok := s.val.(value.String)
	re := phoneRe
	if allowExtension {
		re = phoneExtensionRe
	}
	if !ok || !re.MatchString(str.Val) {
		s.fail("must be a valid phone number")
	}
	return s
}

var postalRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// PostalCode requires a US ZIP ("12345" or "12345-6789").
func (s *Session) PostalCode() *Session {
	if s.failed || s.bypass {
		return s
	}
	str, ok := s.val.(value.String)
	if !ok || !postalRe.MatchString(str.Val) {
		s.fail("must be a valid postal code")
	}
	return s
}

// Custom invokes fn, which returns "" on success or a failure sentence.
func (s *Session) Custom(fn func(value.Value) string) *Session {
	if s.failed || s.bypass {
		return s
	}
	if msg := fn(s.val); msg != "" {
		s.fail("%s", msg)
	}
	return s
}

// Allowed short-circuits the remainder of the chain to success if v
// strictly equals any listed value.
func (s *Session) Allowed(values ...value.Value) *Session {
	if s.failed || s.bypass {
		return s
	}
	for _, v := range values {
		if value.Equal(s.val, v) {
			s.bypass = true
			return s
		}
	}
	return s
}
