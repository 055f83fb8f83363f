package token_test

import (
	"testing"

	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/internal/value"
)

func TestConstructorsCarrySpan(t *testing.T) {
	lit := token.NewLiteral(0, 3, value.Number{Val: 42}, token.Naked)
	if lit.Start() != 0 || lit.End() != 3 {
		t.Errorf("Literal span = %d,%d, want 0,3", lit.Start(), lit.End())
	}

	ref := token.NewPropertyRef(1, 5, "a.b")
	if ref.Path != "a.b" {
		t.Errorf("PropertyRef.Path = %q, want a.b", ref.Path)
	}

	op := token.NewOperator(0, 1, "ADDITION")
	if op.Key != "ADDITION" {
		t.Errorf("Operator.Key = %q, want ADDITION", op.Key)
	}

	cmt := token.NewComment(0, 10, "a note")
	if cmt.Text != "a note" {
		t.Errorf("Comment.Text = %q, want %q", cmt.Text, "a note")
	}

	grp := token.NewGroup(0, 5, []token.Token{lit})
	if len(grp.Children) != 1 {
		t.Errorf("Group.Children has %d entries, want 1", len(grp.Children))
	}

	fn := token.NewFunc(0, 10, "SUM", [][]token.Token{{lit}, {op}})
	if fn.Name != "SUM" || len(fn.Args) != 2 {
		t.Errorf("Func = %+v, want Name SUM with 2 args", fn)
	}
}

func TestStructuralDelimitersCarrySpan(t *testing.T) {
	delims := []token.Token{
		token.NewGroupStart(0, 1),
		token.NewGroupEnd(1, 2),
		token.NewFuncArgsStart(2, 3),
		token.NewFuncArgsEnd(3, 4),
		token.NewFuncArgsSeparator(4, 5),
	}
	for i, d := range delims {
		if d.Start() != i || d.End() != i+1 {
			t.Errorf("delimiter %d span = %d,%d, want %d,%d", i, d.Start(), d.End(), i, i+1)
		}
	}
}

func TestLiteralStyleDistinguishesQuoting(t *testing.T) {
	naked := token.NewLiteral(0, 1, value.Number{Val: 1}, token.Naked)
	quoted := token.NewLiteral(0, 1, value.String{Val: "1"}, token.Quoted)
	if naked.Style != token.Naked {
		t.Errorf("naked literal Style = %v, want Naked", naked.Style)
	}
	if quoted.Style != token.Quoted {
		t.Errorf("quoted literal Style = %v, want Quoted", quoted.Style)
	}
}
