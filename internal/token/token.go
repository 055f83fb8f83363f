// Package token defines CalKu's tagged-variant Token tree, the output
// of the lexer and the input the evaluator walks.
//
// As with the value package, each variant is its own Go type implementing
// Token rather than one struct with an optional-field union, so each node
// kind only carries the fields it actually needs.
package token

import "github.com/cwbudde/go-calku/internal/value"

// Token is the interface every node in the tree implements. Start/End are
// source byte offsets used for error messages.
type Token interface {
	Start() int
	End() int
}

// base carries the start/end span shared by every token variant.
type base struct {
	start, end int
}

func (b base) Start() int { return b.start }
func (b base) End() int   { return b.end }

// LiteralStyle distinguishes a naked literal (subject to value-parser auto-typing)
// from a quoted one (always a String, never re-typed).
type LiteralStyle int

const (
	Naked LiteralStyle = iota
	Quoted
)

// Literal is a scalar already promoted to a typed Value by the value parser.
type Literal struct {
	base
	Value value.Value
	Style LiteralStyle
}

// NewLiteral builds a Literal token.
func NewLiteral(start, end int, v value.Value, style LiteralStyle) *Literal {
	return &Literal{base: base{start, end}, Value: v, Style: style}
}

// PropertyRef is a `{dot/colon.path}` reference into the target object.
type PropertyRef struct {
	base
	Path string
}

// NewPropertyRef builds a PropertyRef token.
func NewPropertyRef(start, end int, path string) *PropertyRef {
	return &PropertyRef{base: base{start, end}, Path: path}
}

// Operator references an entry in the operator catalog by key.
type Operator struct {
	base
	Key string
}

// NewOperator builds an Operator token.
func NewOperator(start, end int, key string) *Operator {
	return &Operator{base: base{start, end}, Key: key}
}

// Comment is a `// ...` line comment, kept in the tree but ignored by the evaluator.
type Comment struct {
	base
	Text string
}

// NewComment builds a Comment token.
func NewComment(start, end int, text string) *Comment {
	return &Comment{base: base{start, end}, Text: text}
}

// Group is a parenthesised sub-expression; Children are evaluated to a
// single scalar by recursing into the evaluator's operator-collapse step.
type Group struct {
	base
	Children []Token
}

// NewGroup builds a Group token.
func NewGroup(start, end int, children []Token) *Group {
	return &Group{base: base{start, end}, Children: children}
}

// Func is a named function call; each entry in Args is itself evaluated as
// a Group (an operator-and-value sequence collapsing to one scalar).
type Func struct {
	base
	Name string
	Args [][]Token
}

// NewFunc builds a Func token.
func NewFunc(start, end int, name string, args [][]Token) *Func {
	return &Func{base: base{start, end}, Name: name, Args: args}
}

// The remaining variants are structural delimiters produced by the first
// lexer pass and consumed while building the tree in the second pass; they
// never survive into a finished Group/Func's Children.
type (
	GroupStart        struct{ base }
	GroupEnd          struct{ base }
	FuncArgsStart     struct{ base }
	FuncArgsEnd       struct{ base }
	FuncArgsSeparator struct{ base }
)

func NewGroupStart(start, end int) *GroupStart { return &GroupStart{base{start, end}} }
func NewGroupEnd(start, end int) *GroupEnd     { return &GroupEnd{base{start, end}} }
func NewFuncArgsStart(start, end int) *FuncArgsStart {
	return &FuncArgsStart{base{start, end}}
}
func NewFuncArgsEnd(start, end int) *FuncArgsEnd { return &FuncArgsEnd{base{start, end}} }
func NewFuncArgsSeparator(start, end int) *FuncArgsSeparator {
	return &FuncArgsSeparator{base{start, end}}
}
