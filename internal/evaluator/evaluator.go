// Package evaluator implements CalKu's evaluator: depth-first
// resolution of the token tree's literals/property-refs/function-calls,
// followed by operator-precedence collapse at each level.
//
// This package never panics across Eval's boundary; every failure becomes
// a *value.Error instead, so a bad expression can't take down a caller
// evaluating many targets in a loop.
package evaluator

import (
	"fmt"

	"github.com/cwbudde/go-calku/internal/functions"
	"github.com/cwbudde/go-calku/internal/operators"
	"github.com/cwbudde/go-calku/internal/pathresolver"
	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/internal/value"
)

// Eval walks root depth-first against target (may be nil for no target)
// and collapses operators by precedence, returning the single resulting
// Value. Any failure is returned as a *value.Error rather than panicking
// — the caller decides whether to surface it as-is or treat it as a Go
// error.
func Eval(root []token.Token, target value.Value) value.Value {
	v, err := evalSequence(root, target)
	if err != nil {
		return &value.Error{Err: err}
	}
	return v
}

// evalSequence resolves every token in seq to a value (dropping comments),
// then collapses the resulting operator/value list by precedence. A
// single-token level short-circuits to that token's value directly.
func evalSequence(seq []token.Token, target value.Value) (value.Value, error) {
	// Step 1: resolve every non-operator, non-comment token to a value.
	type cell struct {
		isOperator bool
		opKey      string
		val        value.Value
	}
	var cells []cell

	for _, t := range seq {
		switch tt := t.(type) {
		case *token.Comment:
			continue
		case *token.Operator:
			cells = append(cells, cell{isOperator: true, opKey: tt.Key})
		case *token.Literal:
			cells = append(cells, cell{val: tt.Value})
		case *token.PropertyRef:
			v, err := pathresolver.Resolve(target, tt.Path)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell{val: v})
		case *token.Group:
			v, err := evalSequence(tt.Children, target)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell{val: v})
		case *token.Func:
			v, err := evalFunc(tt, target)
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell{val: v})
		default:
			return nil, fmt.Errorf("evaluator: unexpected token %T", t)
		}
	}

	if len(cells) == 0 {
		return value.Undefined{}, nil
	}
	if len(cells) == 1 {
		if cells[0].isOperator {
			return nil, fmt.Errorf("evaluator: operator %s has no operands", cells[0].opKey)
		}
		return cells[0].val, nil
	}

	// Step 3: collapse by ascending precedence group, sweeping
	// left-to-right and restarting after every application.
	for _, group := range operators.PrecedenceGroups() {
		inGroup := map[string]bool{}
		for _, k := range group.Keys {
			inGroup[k] = true
		}

		for {
			applied := false
			for i := 0; i < len(cells); i++ {
				if !cells[i].isOperator || !inGroup[cells[i].opKey] {
					continue
				}
				if i == 0 || i == len(cells)-1 {
					return nil, fmt.Errorf("evaluator: operator %s at invalid position", cells[i].opKey)
				}
				left, right := cells[i-1], cells[i+1]
				if left.isOperator || right.isOperator {
					return nil, fmt.Errorf("evaluator: operator %s missing an operand", cells[i].opKey)
				}
				if _, err := operators.ValidateArgs(cells[i].opKey, []value.Value{left.val, right.val}, true); err != nil {
					return nil, err
				}
				result := operators.Get(cells[i].opKey).Eval(left.val, right.val)
				newCells := make([]cell, 0, len(cells)-2)
				newCells = append(newCells, cells[:i-1]...)
				newCells = append(newCells, cell{val: result})
				newCells = append(newCells, cells[i+2:]...)
				cells = newCells
				applied = true
				break // restart the sweep at position 0
			}
			if !applied {
				break
			}
		}
	}

	if len(cells) != 1 {
		return nil, fmt.Errorf("evaluator: expression did not collapse to a single value")
	}
	return cells[0].val, nil
}

// evalFunc evaluates each argument expression (itself effectively a
// Group) to a value, validates the collected values against the
// function's spec, and dispatches.
func evalFunc(f *token.Func, target value.Value) (value.Value, error) {
	args := make([]value.Value, len(f.Args))
	for i, argSeq := range f.Args {
		v, err := evalSequence(argSeq, target)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if err := functions.ValidateArgs(f.Name, args, true); err != nil {
		return nil, err
	}
	return functions.Call(f.Name, args)
}

// Properties returns the distinct property-reference paths observed in
// root, in order of first appearance, walking groups and function
// arguments as well as the top level.
func Properties(root []token.Token) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(seq []token.Token)
	walk = func(seq []token.Token) {
		for _, t := range seq {
			switch tt := t.(type) {
			case *token.PropertyRef:
				if !seen[tt.Path] {
					seen[tt.Path] = true
					order = append(order, tt.Path)
				}
			case *token.Group:
				walk(tt.Children)
			case *token.Func:
				for _, a := range tt.Args {
					walk(a)
				}
			}
		}
	}
	walk(root)
	return order
}
