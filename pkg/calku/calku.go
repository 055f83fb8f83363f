// Package calku is CalKu's public facade: an Expression binding
// source text and a time zone, caching its lexed tree and exposing
// properties()/value()/values(), plus the thin one-shot convenience
// wrappers and the directly-exposed property-path resolver. The cache is
// a single-writer cache cleared by every setter.
package calku

import (
	"fmt"
	"sync"
	"time"

	"github.com/cwbudde/go-calku/internal/evaluator"
	"github.com/cwbudde/go-calku/internal/lexer"
	"github.com/cwbudde/go-calku/internal/operators"
	"github.com/cwbudde/go-calku/internal/pathresolver"
	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/internal/value"
)

// Expression binds source text and a time zone, lazily lexing and caching
// the token tree on first use.
type Expression struct {
	mu       sync.Mutex
	source   string
	timeZone string

	cached    []token.Token
	cachedErr error
	hasCache  bool
}

// Option configures a new Expression.
type Option func(*Expression)

// WithTimeZone sets the IANA zone name used to resolve offset-free date
// lexemes; the default is UTC.
func WithTimeZone(tz string) Option {
	return func(e *Expression) { e.timeZone = tz }
}

// New builds an Expression bound to source.
func New(source string, opts ...Option) *Expression {
	e := &Expression{source: source, timeZone: "UTC"}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetExpression replaces the source text, invalidating the cached tree.
func (e *Expression) SetExpression(source string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.source = source
	e.invalidate()
}

// SetTimeZone replaces the time zone, invalidating the cached tree (date
// lexemes without an embedded offset re-resolve against the new zone).
func (e *Expression) SetTimeZone(tz string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timeZone = tz
	e.invalidate()
}

// SourceText returns the bound expression source.
func (e *Expression) SourceText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// TimeZone returns the bound time zone name.
func (e *Expression) TimeZone() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timeZone
}

func (e *Expression) invalidate() {
	e.cached = nil
	e.cachedErr = nil
	e.hasCache = false
}

// ResolveZone turns an IANA zone name into its "±HH:MM" offset at the
// current instant, defaulting to UTC. Exposed so the
// CLI can resolve JSON-supplied date strings against the same
// zone the Expression itself would use.
func ResolveZone(zone string) (string, error) {
	if zone == "" {
		return "+00:00", nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", err
	}
	_, offsetSeconds := time.Now().In(loc).Zone()
	sign := "+"
	if offsetSeconds < 0 {
		sign = "-"
		offsetSeconds = -offsetSeconds
	}
	hh := offsetSeconds / 3600
	mm := (offsetSeconds % 3600) / 60
	return fmt.Sprintf("%s%02d:%02d", sign, hh, mm), nil
}

// tree lexes and caches the token tree, re-lexing only after a setter
// invalidated the cache.
func (e *Expression) tree() ([]token.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasCache {
		return e.cached, e.cachedErr
	}
	opts := lexer.Options{
		OperatorMatcher: operators.NewSymbolMatcher(),
		Zone:            e.timeZone,
		ResolveZone:     ResolveZone,
	}
	tree, err := lexer.Lex(e.source, opts)
	e.cached, e.cachedErr, e.hasCache = tree, err, true
	return tree, err
}

// Properties returns the distinct property-reference paths observed
// anywhere in the expression, in order of first appearance.
// Unlike Value, lexer errors here propagate rather than being caught
//.
func (e *Expression) Properties() ([]string, error) {
	tree, err := e.tree()
	if err != nil {
		return nil, err
	}
	return evaluator.Properties(tree), nil
}

// Value evaluates the expression once against target. Lexing and
// evaluation errors are caught and returned as the result's value rather
// than as a Go error.
func (e *Expression) Value(target value.Value) value.Value {
	tree, err := e.tree()
	if err != nil {
		return &value.Error{Err: err}
	}
	return evaluator.Eval(tree, target)
}

// Values maps Value over targets.
func (e *Expression) Values(targets []value.Value) []value.Value {
	out := make([]value.Value, len(targets))
	for i, t := range targets {
		out[i] = e.Value(t)
	}
	return out
}

// EvalValue is a one-shot convenience wrapper: construct a transient
// Expression, call Value, return. Production code evaluating many targets
// against the same source should prefer New/(*Expression).Value instead,
// which amortizes the lex across every target.
func EvalValue(source string, target value.Value, tz string) value.Value {
	e := New(source, WithTimeZone(tz))
	return e.Value(target)
}

// EvalValues is the one-shot convenience wrapper for multiple targets.
func EvalValues(source string, targets []value.Value, tz string) []value.Value {
	e := New(source, WithTimeZone(tz))
	return e.Values(targets)
}

// ValueAt exposes the property path resolver directly as a static
// valueAt(target, path) call.
func ValueAt(target value.Value, path string) value.Value {
	v, err := pathresolver.Resolve(target, path)
	if err != nil {
		return &value.Error{Err: err}
	}
	return v
}
