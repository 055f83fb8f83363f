// Package calkuerrors formats CalKu's lexer and evaluation errors with
// source context: a line/column position plus a caret pointing at the
// offending rune.
package calkuerrors

import (
	"fmt"
	"strings"
)

// SourceError is a CalKu error anchored to a byte offset in source text.
// Lexer syntax errors and property-path errors use it.
type SourceError struct {
	Message string
	Index   int
	Source  string
}

// New builds a SourceError.
func New(index int, source, format string, args ...any) *SourceError {
	return &SourceError{Message: fmt.Sprintf(format, args...), Index: index, Source: source}
}

func (e *SourceError) Error() string {
	return e.Format()
}

// Format renders "error at LINE:COL: message" plus the source line and a
// caret line pointing at the offending rune.
func (e *SourceError) Format() string {
	line, col, lineText := locate(e.Source, e.Index)

	var sb strings.Builder
	fmt.Fprintf(&sb, "error at %d:%d: %s\n", line, col, e.Message)
	if lineText != "" {
		prefix := fmt.Sprintf("%4d | ", line)
		sb.WriteString(prefix)
		sb.WriteString(lineText)
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		sb.WriteByte('^')
	}
	return sb.String()
}

// locate converts a byte index into 1-based line/column numbers and
// returns the text of that line.
func locate(source string, index int) (line, col int, lineText string) {
	line = 1
	lineStart := 0
	for i := 0; i < index && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = index - lineStart + 1

	lines := strings.Split(source, "\n")
	if line-1 < len(lines) {
		lineText = lines[line-1]
	}
	return
}

// DefinitionError marks a programmer-facing catalog misconfiguration: an
// invalid spread configuration or malformed validator. It always
// propagates unconditionally and is never caught by Expression.Value.
type DefinitionError struct {
	Message string
}

func (e *DefinitionError) Error() string { return e.Message }

// NewDefinition builds a DefinitionError.
func NewDefinition(format string, args ...any) *DefinitionError {
	return &DefinitionError{Message: fmt.Sprintf(format, args...)}
}
