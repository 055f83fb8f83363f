// Package operators implements CalKu's operator catalog: the
// registry of binary operators with their symbols, precedence, argument
// validators, and evaluators, plus the symbol-matcher and
// precedence-group facades the lexer and evaluator consult.
//
// The catalog is a read-only data map plus a free-standing module of pure
// functions over it, with a Recycle hook for the memoised derived tables.
package operators

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/cwbudde/go-calku/internal/calkuerrors"
	"github.com/cwbudde/go-calku/internal/validator"
	"github.com/cwbudde/go-calku/internal/value"
)

// Type classifies an operator's semantic category and, constrains
// its declared output class.
type Type int

const (
	Math Type = iota
	Logic
	Compare
	Consolidate
)

// ArgValidator validates one operand, returning "" on success or a
// failure message.
type ArgValidator func(v value.Value) string

// Spec is one operator catalog entry.
type Spec struct {
	Key         string
	Type        Type
	Symbols     []string // longest/most specific should be listed first
	Precedence  int       // smaller = higher priority
	LeftValid   ArgValidator
	RightValid  ArgValidator
	Eval        func(left, right value.Value) value.Value
}

func typedValidator(tags ...string) ArgValidator {
	return func(v value.Value) string {
		s := validator.New(v).InstanceOf(tags...)
		return s.Message()
	}
}

func numericStr(v value.Value) string {
	switch t := v.(type) {
	case value.Number:
		return t.String()
	case value.Boolean:
		if t.Val {
			return "true"
		}
		return "false"
	case value.Null:
		return ""
	default:
		return v.String()
	}
}

func coerceNum(v value.Value) float64 { return value.ToNumber(v) }

func containsValid(v value.Value) string {
	return typedValidator("array", "string", "number", "boolean", "null")(v)
}

func containsRightValid(v value.Value) string {
	return typedValidator("string", "number", "boolean", "null")(v)
}

func substringOf(left value.Value, right value.Value) bool {
	switch l := left.(type) {
	case *value.Array:
		for _, el := range l.Elems {
			if value.Equal(el, right) {
				return true
			}
		}
		return false
	default:
		s := leftDecimalString(left)
		return strings.Contains(s, rightDecimalString(right))
	}
}

func leftDecimalString(v value.Value) string {
	if _, ok := v.(value.String); ok {
		return v.(value.String).Val
	}
	return numericStr(v)
}

func rightDecimalString(v value.Value) string {
	if _, ok := v.(value.String); ok {
		return v.(value.String).Val
	}
	return numericStr(v)
}

// catalog is the read-only operator spec table, keyed by Key.
var catalog = map[string]*Spec{}

// order preserves catalog construction order for deterministic iteration.
var order []string

func register(s *Spec) {
	if _, dup := catalog[s.Key]; dup {
		panic(calkuerrors.NewDefinition("operators: duplicate key %q", s.Key).Error())
	}
	for _, sym := range s.Symbols {
		for _, other := range catalog {
			for _, otherSym := range other.Symbols {
				if strings.EqualFold(sym, otherSym) {
					panic(calkuerrors.NewDefinition(
						"operators: symbol %q of %q collides with %q", sym, s.Key, other.Key).Error())
				}
			}
		}
	}
	catalog[s.Key] = s
	order = append(order, s.Key)
}

func init() {
	register(&Spec{
		Key: "EXPONENTIATION", Type: Math, Symbols: []string{"^"}, Precedence: 50,
		LeftValid: typedValidator("number", "boolean", "null"), RightValid: typedValidator("number", "boolean", "null"),
		Eval: func(l, r value.Value) value.Value {
			return value.Number{Val: math.Pow(coerceNum(l), coerceNum(r))}
		},
	})
	register(&Spec{
		Key: "DIVISION", Type: Math, Symbols: []string{"/"}, Precedence: 100,
		LeftValid: typedValidator("number", "boolean", "null"), RightValid: typedValidator("number", "boolean", "null"),
		Eval: func(l, r value.Value) value.Value {
			rv := coerceNum(r)
			if rv == 0 {
				return value.Number{Val: math.NaN()}
			}
			return value.Number{Val: coerceNum(l) / rv}
		},
	})
	register(&Spec{
		Key: "MODULO", Type: Math, Symbols: []string{"%"}, Precedence: 100,
		LeftValid: typedValidator("number", "boolean", "null"), RightValid: typedValidator("number", "boolean", "null"),
		Eval: func(l, r value.Value) value.Value {
			rv := coerceNum(r)
			if rv == 0 {
				return value.Number{Val: math.NaN()}
			}
			return value.Number{Val: math.Mod(coerceNum(l), rv)}
		},
	})
	register(&Spec{
		Key: "MULTIPLICATION", Type: Math, Symbols: []string{"*"}, Precedence: 100,
		LeftValid: typedValidator("number", "boolean", "null"), RightValid: typedValidator("number", "boolean", "null"),
		Eval: func(l, r value.Value) value.Value {
			return value.Number{Val: coerceNum(l) * coerceNum(r)}
		},
	})
	register(&Spec{
		Key: "ADDITION", Type: Math, Symbols: []string{"+"}, Precedence: 120,
		LeftValid: typedValidator("number", "boolean", "null"), RightValid: typedValidator("number", "boolean", "null"),
		Eval: func(l, r value.Value) value.Value {
			return value.Number{Val: coerceNum(l) + coerceNum(r)}
		},
	})
	register(&Spec{
		Key: "SUBTRACTION", Type: Math, Symbols: []string{"-"}, Precedence: 120,
		LeftValid: typedValidator("number", "boolean", "null"), RightValid: typedValidator("number", "boolean", "null"),
		Eval: func(l, r value.Value) value.Value {
			return value.Number{Val: coerceNum(l) - coerceNum(r)}
		},
	})
	register(&Spec{
		Key: "AND", Type: Logic, Symbols: []string{"and", "&&"}, Precedence: 200,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: value.IsTruthy(l) && value.IsTruthy(r)}
		},
	})
	register(&Spec{
		Key: "OR", Type: Logic, Symbols: []string{"or", "||"}, Precedence: 205,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: value.IsTruthy(l) || value.IsTruthy(r)}
		},
	})
	register(&Spec{
		Key: "LESSTHAN", Type: Compare, Symbols: []string{"lt", "<"}, Precedence: 300,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: value.Less(l, r)}
		},
	})
	register(&Spec{
		Key: "LESSTHANOREQUAL", Type: Compare, Symbols: []string{"lte", "<="}, Precedence: 305,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: sameTagEqual(l, r) || value.Less(l, r)}
		},
	})
	register(&Spec{
		Key: "GREATERTHAN", Type: Compare, Symbols: []string{"gt", ">"}, Precedence: 310,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: value.Less(r, l)}
		},
	})
	register(&Spec{
		Key: "GREATERTHANOREQUAL", Type: Compare, Symbols: []string{"gte", ">="}, Precedence: 315,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: sameTagEqual(l, r) || value.Less(r, l)}
		},
	})
	register(&Spec{
		Key: "EQUALS", Type: Compare, Symbols: []string{"eq", "=="}, Precedence: 320,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: value.Equal(l, r)}
		},
	})
	register(&Spec{
		Key: "NOTEQUALS", Type: Compare, Symbols: []string{"neq", "<>", "!="}, Precedence: 325,
		Eval: func(l, r value.Value) value.Value {
			return value.Boolean{Val: !value.Equal(l, r)}
		},
	})
	register(&Spec{
		Key: "CONTAINS", Type: Compare, Symbols: []string{"contains", "~~"}, Precedence: 330,
		LeftValid: containsValid, RightValid: containsRightValid,
		Eval: func(l, r value.Value) value.Value {
			if isNull(l) && isNull(r) {
				return value.Boolean{Val: true}
			}
			return value.Boolean{Val: substringOf(l, r)}
		},
	})
	register(&Spec{
		Key: "DOESNOTCONTAIN", Type: Compare, Symbols: []string{"doesnotcontain", "!~~"}, Precedence: 330,
		LeftValid: containsValid, RightValid: containsRightValid,
		Eval: func(l, r value.Value) value.Value {
			if isNull(l) && isNull(r) {
				return value.Boolean{Val: false}
			}
			return value.Boolean{Val: !substringOf(l, r)}
		},
	})
	register(&Spec{
		Key: "ENDSWITH", Type: Compare, Symbols: []string{"endswith"}, Precedence: 330,
		LeftValid: containsValid, RightValid: containsRightValid,
		Eval: func(l, r value.Value) value.Value {
			if isNull(l) && isNull(r) {
				return value.Boolean{Val: true}
			}
			return value.Boolean{Val: strings.HasSuffix(leftDecimalString(l), rightDecimalString(r))}
		},
	})
	register(&Spec{
		Key: "STARTSWITH", Type: Compare, Symbols: []string{"startswith"}, Precedence: 330,
		LeftValid: containsValid, RightValid: containsRightValid,
		Eval: func(l, r value.Value) value.Value {
			if isNull(l) && isNull(r) {
				return value.Boolean{Val: true}
			}
			return value.Boolean{Val: strings.HasPrefix(leftDecimalString(l), rightDecimalString(r))}
		},
	})
	register(&Spec{
		Key: "CONCATENATE", Type: Consolidate, Symbols: []string{"&"}, Precedence: 99999,
		LeftValid:  typedValidator("string", "number", "boolean", "date", "null"),
		RightValid: typedValidator("string", "number", "boolean", "date", "null"),
		Eval: func(l, r value.Value) value.Value {
			return value.String{Val: value.ToDisplayString(l) + value.ToDisplayString(r)}
		},
	})
}

func isNull(v value.Value) bool { _, ok := v.(value.Null); return ok }
func sameTagEqual(l, r value.Value) bool {
	if _, ok := l.(value.Null); ok {
		if _, ok2 := r.(value.Null); ok2 {
			return true
		}
	}
	return value.Equal(l, r)
}

// Get returns the spec for key, or nil.
func Get(key string) *Spec { return catalog[key] }

// MatchResult is what SymbolMatcher.Match returns on a hit.
type MatchResult struct {
	Key    string
	Length int // length, in bytes, of the matched symbol
}

// SymbolMatcher matches the longest operator symbol at a lexer position,
// requiring a trailing whitespace/parenthesis/EOF boundary.
type SymbolMatcher struct {
	// patterns maps each included operator key to a compiled,
	// case-insensitive, boundary-anchored regexp over its symbols.
	patterns map[string]*regexp.Regexp
	keys     []string // in catalog order, for deterministic longest-match scanning
}

// NewSymbolMatcher builds a matcher over the operators whose Type is in
// types; an empty types list includes every operator.
func NewSymbolMatcher(types ...Type) *SymbolMatcher {
	allowed := map[Type]bool{}
	for _, t := range types {
		allowed[t] = true
	}
	m := &SymbolMatcher{patterns: map[string]*regexp.Regexp{}}
	for _, key := range order {
		spec := catalog[key]
		if len(types) > 0 && !allowed[spec.Type] {
			continue
		}
		m.keys = append(m.keys, key)
		var alts []string
		for _, sym := range spec.Symbols {
			alts = append(alts, regexp.QuoteMeta(sym))
		}
		pattern := fmt.Sprintf(`(?i)^(?:%s)(?:\s|[()]|$)`, strings.Join(alts, "|"))
		m.patterns[key] = regexp.MustCompile(pattern)
	}
	return m
}

// Match tries every included operator at the start of s, returning the
// longest matching symbol (ties broken by catalog order).
func (m *SymbolMatcher) Match(s string) (MatchResult, bool) {
	best := MatchResult{}
	found := false
	for _, key := range m.keys {
		re := m.patterns[key]
		loc := re.FindStringSubmatchIndex(s)
		if loc == nil {
			continue
		}
		// loc[1] includes the trailing boundary rune/string if any; the
		// matched symbol itself is the text up to the boundary, computed
		// by re-matching the operator's longest symbol at position 0.
		for _, sym := range catalog[key].Symbols {
			if len(sym) <= len(s) && strings.EqualFold(s[:len(sym)], sym) {
				if !found || len(sym) > best.Length {
					best = MatchResult{Key: key, Length: len(sym)}
					found = true
				}
				break
			}
		}
	}
	return best, found
}

// PrecedenceGroup is one element of the sequence returned by
// PrecedenceGroups: either a single key or a tie set evaluated left to
// right by the evaluator.
type PrecedenceGroup struct {
	Precedence int
	Keys       []string
}

var memoGroups []PrecedenceGroup

// PrecedenceGroups returns the memoised, ascending-precedence sequence of
// tie groups.
func PrecedenceGroups() []PrecedenceGroup {
	if memoGroups != nil {
		return memoGroups
	}
	byPrec := map[int][]string{}
	for _, key := range order {
		p := catalog[key].Precedence
		byPrec[p] = append(byPrec[p], key)
	}
	var precs []int
	for p := range byPrec {
		precs = append(precs, p)
	}
	sort.Ints(precs)
	for _, p := range precs {
		memoGroups = append(memoGroups, PrecedenceGroup{Precedence: p, Keys: byPrec[p]})
	}
	return memoGroups
}

// Recycle invalidates the memoised precedence-group table;
// intended for test-time catalog mutation only.
func Recycle() {
	memoGroups = nil
}

// ValidateArgs enforces exactly two arguments and applies opKey's
// per-side validators, returning the verdict and, on failure, the error in
// both modes. throwOnFailure only makes an unknown opKey panic.
func ValidateArgs(opKey string, args []value.Value, throwOnFailure bool) (bool, error) {
	spec := catalog[opKey]
	if spec == nil {
		err := calkuerrors.NewDefinition("operators: unknown key %q", opKey)
		if throwOnFailure {
			panic(err.Error())
		}
		return false, err
	}
	if len(args) != 2 {
		err := fmt.Errorf("operator %s requires exactly 2 arguments, got %d", opKey, len(args))
		if throwOnFailure {
			return false, err
		}
		return false, err
	}
	if spec.LeftValid != nil {
		if msg := spec.LeftValid(args[0]); msg != "" {
			err := fmt.Errorf("%s: left operand %s", opKey, msg)
			if throwOnFailure {
				return false, err
			}
			return false, err
		}
	}
	if spec.RightValid != nil {
		if msg := spec.RightValid(args[1]); msg != "" {
			err := fmt.Errorf("%s: right operand %s", opKey, msg)
			if throwOnFailure {
				return false, err
			}
			return false, err
		}
	}
	return true, nil
}
