// Package lexer implements CalKu's lexer: a single left-to-right,
// UTF-8-aware scan of the source text into a flat token stream, followed
// by a second pass that nests Group/Func children into a tree. The two
// passes exist because a naked literal's final shape — a plain value or a
// function name — isn't known until the scanner reaches the boundary rune
// (or end of input) that follows it.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cwbudde/go-calku/internal/calkuerrors"
	"github.com/cwbudde/go-calku/internal/functions"
	"github.com/cwbudde/go-calku/internal/operators"
	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/internal/valueparser"
)

// funcNameToken is an internal-only flat-stream marker recording that a
// naked literal turned out to be the name of a function call; it is consumed and discarded while building the tree.
type funcNameToken struct {
	start, end int
	name       string
}

func (f *funcNameToken) Start() int { return f.start }
func (f *funcNameToken) End() int   { return f.end }

// rawLiteral is a flat-stream placeholder for a Literal whose string
// payload has not yet been promoted to a typed Value by the value parser.
type rawLiteral struct {
	start, end int
	text       string
	style      token.LiteralStyle
}

func (r *rawLiteral) Start() int { return r.start }
func (r *rawLiteral) End() int   { return r.end }

type openKind int

const (
	openNone openKind = iota
	openLiteral
	openPropertyRef
	openComment
)

type frameKind int

const (
	frameGroup frameKind = iota
	frameFunc
)

// Options bundles the tunables the lexer needs from outside its own
// package: the operator symbol table and the time zone used to resolve
// offset-free date lexemes. Function names are looked up in the functions
// catalog directly.
type Options struct {
	OperatorMatcher *operators.SymbolMatcher
	Zone            string
	ResolveZone     valueparser.ZoneResolver
}

// DefaultOptions builds lexer Options over every operator and a UTC zone.
func DefaultOptions() Options {
	return Options{
		OperatorMatcher: operators.NewSymbolMatcher(),
		Zone:            "UTC",
		ResolveZone:     valueparser.UTCResolver,
	}
}

// Lex scans source into its flat token stream, then builds the nested
// tree, returning the root sequence of tokens.
func Lex(source string, opts Options) ([]token.Token, error) {
	flat, err := scan(source, opts)
	if err != nil {
		return nil, err
	}
	promoted := promoteLiterals(flat, opts)
	return buildTree(promoted, source)
}

// scan performs the single left-to-right pass.
func scan(source string, opts Options) ([]token.Token, error) {
	var out []token.Token
	// groupStack tracks 'G' for GroupStart, 'F' for FuncArgsStart.
	var groupStack []byte

	pos := 0
	openState := openNone
	var buf strings.Builder
	openStart := 0

	peekRune := func(p int) (rune, int) {
		if p >= len(source) {
			return 0, 0
		}
		r, size := utf8.DecodeRuneInString(source[p:])
		return r, size
	}

	// nextNonSpace returns the position of the next non-whitespace rune
	// at or after p, and whether one was found before EOF.
	nextNonSpace := func(p int) (int, bool) {
		for p < len(source) {
			r, size := peekRune(p)
			if !unicode.IsSpace(r) {
				return p, true
			}
			p += size
		}
		return p, false
	}

	// closeNakedLiteral finalizes the open naked literal at endPos; only
	// called from the naked-literal branch below, so the style is always
	// Naked (a quoted literal closes itself inline on its closing quote).
	closeNakedLiteral := func(endPos int) {
		out = append(out, &rawLiteral{start: openStart, end: endPos, text: buf.String(), style: token.Naked})
		buf.Reset()
		openState = openNone
	}

	isBoundaryRune := func(r rune) bool {
		return unicode.IsSpace(r) || r == '(' || r == ')' || r == '[' || r == ']' || r == '{' || r == '}'
	}

	for pos < len(source) {
		r, size := peekRune(pos)

		switch openState {
		case openPropertyRef:
			if r == '\\' {
				if nr, nsize := peekRune(pos + size); nr == '}' {
					buf.WriteRune('}')
					pos += size + nsize
					continue
				}
			}
			if r == '}' {
				out = append(out, token.NewPropertyRef(openStart, pos+size, buf.String()))
				buf.Reset()
				openState = openNone
				pos += size
				continue
			}
			buf.WriteRune(r)
			pos += size
			continue

		case openComment:
			if r == '\n' {
				out = append(out, token.NewComment(openStart, pos, buf.String()))
				buf.Reset()
				openState = openNone
				continue // reprocess the newline as whitespace
			}
			buf.WriteRune(r)
			pos += size
			continue

		case openLiteral:
			isQuoted := strings.HasPrefix(source[openStart:], `"`)
			if isQuoted {
				if r == '\\' {
					if nr, nsize := peekRune(pos + size); nr == '"' {
						buf.WriteRune('"')
						pos += size + nsize
						continue
					}
				}
				if r == '"' {
					out = append(out, &rawLiteral{start: openStart, end: pos + size, text: buf.String(), style: token.Quoted})
					buf.Reset()
					openState = openNone
					pos += size
					continue
				}
				buf.WriteRune(r)
				pos += size
				continue
			}

			// Naked literal.
			isFuncBoundary := r == '('
			var skipTo int
			if unicode.IsSpace(r) {
				if np, found := nextNonSpace(pos); found {
					if nr, _ := peekRune(np); nr == '(' {
						isFuncBoundary = true
						skipTo = np
					}
				}
			}
			if isFuncBoundary {
				name := buf.String()
				buf.Reset()
				if functions.Get(name) == nil {
					return nil, calkuerrors.New(openStart, source, "unknown function %q", name)
				}
				parenPos := skipTo
				if parenPos == 0 {
					parenPos = pos
				}
				_, parenSize := peekRune(parenPos)
				out = append(out, &funcNameToken{start: openStart, end: parenPos + parenSize, name: name})
				out = append(out, token.NewFuncArgsStart(parenPos, parenPos+parenSize))
				groupStack = append(groupStack, 'F')
				openState = openNone
				pos = parenPos + parenSize
				continue
			}
			if isBoundaryRune(r) {
				closeNakedLiteral(pos)
				continue // reprocess r with no open token
			}
			if r == ',' && len(groupStack) > 0 && groupStack[len(groupStack)-1] == 'F' {
				closeNakedLiteral(pos)
				continue // reprocess the comma with no open token
			}
			buf.WriteRune(r)
			pos += size
			continue
		}

		// No open token.
		switch {
		case r == '(':
			out = append(out, token.NewGroupStart(pos, pos+size))
			groupStack = append(groupStack, 'G')
			pos += size
		case r == ')':
			if len(groupStack) == 0 {
				return nil, calkuerrors.New(pos, source, "unmatched ')'")
			}
			top := groupStack[len(groupStack)-1]
			groupStack = groupStack[:len(groupStack)-1]
			if top == 'G' {
				out = append(out, token.NewGroupEnd(pos, pos+size))
			} else {
				out = append(out, token.NewFuncArgsEnd(pos, pos+size))
			}
			pos += size
		case r == '{':
			openState = openPropertyRef
			openStart = pos + size
			pos += size
		case r == '/' && strings.HasPrefix(source[pos:], "//"):
			openState = openComment
			_, size2 := peekRune(pos + size)
			openStart = pos + size + size2
			pos += size + size2
		case r == ',' && len(groupStack) > 0 && groupStack[len(groupStack)-1] == 'F':
			out = append(out, token.NewFuncArgsSeparator(pos, pos+size))
			pos += size
		case unicode.IsSpace(r):
			pos += size
		default:
			if m, ok := opts.OperatorMatcher.Match(source[pos:]); ok {
				out = append(out, token.NewOperator(pos, pos+m.Length, m.Key))
				pos += m.Length
				continue
			}
			openState = openLiteral
			openStart = pos
			if r == '"' {
				pos += size // opening quote is not part of the value
			} else {
				buf.WriteRune(r)
				pos += size
			}
		}
	}

	switch openState {
	case openLiteral:
		isQuoted := strings.HasPrefix(source[openStart:], `"`)
		if isQuoted {
			return nil, calkuerrors.New(openStart, source, "unterminated string literal")
		}
		out = append(out, &rawLiteral{start: openStart, end: len(source), text: buf.String(), style: token.Naked})
	case openPropertyRef:
		return nil, calkuerrors.New(openStart, source, "unterminated property reference")
	case openComment:
		out = append(out, token.NewComment(openStart, len(source), buf.String()))
	}

	if len(groupStack) > 0 {
		return nil, calkuerrors.New(len(source), source, "unexpected end of input: unclosed grouping")
	}

	return out, nil
}

// promoteLiterals converts every rawLiteral in flat into a *token.Literal
// via the value parser.
func promoteLiterals(flat []token.Token, opts Options) []token.Token {
	out := make([]token.Token, len(flat))
	for i, t := range flat {
		if raw, ok := t.(*rawLiteral); ok {
			v := valueparser.Parse(raw.text, raw.style, opts.Zone, opts.ResolveZone)
			out[i] = token.NewLiteral(raw.start, raw.end, v, raw.style)
			continue
		}
		out[i] = t
	}
	return out
}

// frame is a group/func builder used while nesting the flat stream.
type frame struct {
	kind     frameKind
	start    int
	name     string
	children []token.Token   // frameGroup accumulation
	args     [][]token.Token // frameFunc: finalized args
	current  []token.Token   // frameFunc: in-progress arg
	sawAny   bool            // frameFunc: whether current or args has content
}

// buildTree converts the flat, literal-promoted sequence into the nested
// tree.
func buildTree(flat []token.Token, source string) ([]token.Token, error) {
	var root []token.Token
	var stack []*frame
	var pendingFuncName *funcNameToken

	appendChild := func(t token.Token) {
		if len(stack) == 0 {
			root = append(root, t)
			return
		}
		top := stack[len(stack)-1]
		if top.kind == frameGroup {
			top.children = append(top.children, t)
		} else {
			top.current = append(top.current, t)
			top.sawAny = true
		}
	}

	for _, t := range flat {
		switch tt := t.(type) {
		case *funcNameToken:
			pendingFuncName = tt

		case *token.GroupStart:
			stack = append(stack, &frame{kind: frameGroup, start: tt.Start()})

		case *token.GroupEnd:
			if len(stack) == 0 || stack[len(stack)-1].kind != frameGroup {
				return nil, calkuerrors.New(tt.Start(), source, "unmatched ')'")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			appendChild(token.NewGroup(top.start, tt.End(), top.children))

		case *token.FuncArgsStart:
			if pendingFuncName == nil {
				return nil, calkuerrors.New(tt.Start(), source, "function call missing name")
			}
			stack = append(stack, &frame{kind: frameFunc, start: pendingFuncName.Start(), name: pendingFuncName.name})
			pendingFuncName = nil

		case *token.FuncArgsSeparator:
			if len(stack) == 0 || stack[len(stack)-1].kind != frameFunc {
				return nil, calkuerrors.New(tt.Start(), source, "unexpected ','")
			}
			top := stack[len(stack)-1]
			top.args = append(top.args, top.current)
			top.current = nil
			top.sawAny = true

		case *token.FuncArgsEnd:
			if len(stack) == 0 || stack[len(stack)-1].kind != frameFunc {
				return nil, calkuerrors.New(tt.Start(), source, "unmatched ')'")
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.sawAny || len(top.current) > 0 {
				top.args = append(top.args, top.current)
			}
			appendChild(token.NewFunc(top.start, tt.End(), top.name, top.args))

		default:
			appendChild(t)
		}
	}

	if len(stack) > 0 {
		return nil, calkuerrors.New(len(source), source, "unexpected end of input: unclosed grouping")
	}
	return root, nil
}
