package evaluator_test

import (
	"testing"

	"github.com/cwbudde/go-calku/internal/evaluator"
	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/internal/value"
)

func num(n float64) value.Value { return value.Number{Val: n} }

func lit(v value.Value) *token.Literal { return token.NewLiteral(0, 0, v, token.Naked) }

func op(key string) *token.Operator { return token.NewOperator(0, 0, key) }

func TestEvalEmptySequenceIsUndefined(t *testing.T) {
	got := evaluator.Eval(nil, nil)
	if _, ok := got.(value.Undefined); !ok {
		t.Errorf("Eval(nil) = %#v, want Undefined", got)
	}
}

func TestEvalSingleTokenFastPath(t *testing.T) {
	got := evaluator.Eval([]token.Token{lit(num(7))}, nil)
	n, ok := got.(value.Number)
	if !ok || n.Val != 7 {
		t.Errorf("Eval([7]) = %#v, want Number(7)", got)
	}
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	// 10 + 5 - 12 / 3 * 2  => 10 + 5 - (12/3*2) => 15 - 8 => 7
	seq := []token.Token{
		lit(num(10)), op("ADDITION"), lit(num(5)), op("SUBTRACTION"),
		lit(num(12)), op("DIVISION"), lit(num(3)), op("MULTIPLICATION"), lit(num(2)),
	}
	got := evaluator.Eval(seq, nil)
	n, ok := got.(value.Number)
	if !ok || n.Val != 7 {
		t.Errorf("Eval(10+5-12/3*2) = %#v, want Number(7)", got)
	}
}

func TestEvalLogicalPrecedence(t *testing.T) {
	// false AND true OR (true AND false) => (false AND true) OR (true AND false) => false OR false => false
	inner := token.NewGroup(0, 0, []token.Token{lit(value.Boolean{Val: true}), op("AND"), lit(value.Boolean{Val: false})})
	seq := []token.Token{
		lit(value.Boolean{Val: false}), op("AND"), lit(value.Boolean{Val: true}), op("OR"), inner,
	}
	got := evaluator.Eval(seq, nil)
	b, ok := got.(value.Boolean)
	if !ok || b.Val != false {
		t.Errorf("Eval(false AND true OR (true AND false)) = %#v, want Boolean(false)", got)
	}
}

func TestEvalOperatorAtStartIsError(t *testing.T) {
	seq := []token.Token{op("ADDITION"), lit(num(1))}
	got := evaluator.Eval(seq, nil)
	if _, ok := got.(*value.Error); !ok {
		t.Errorf("Eval(operator-first) = %#v, want *value.Error", got)
	}
}

func TestEvalOperatorAtEndIsError(t *testing.T) {
	seq := []token.Token{lit(num(1)), op("ADDITION")}
	got := evaluator.Eval(seq, nil)
	if _, ok := got.(*value.Error); !ok {
		t.Errorf("Eval(operator-last) = %#v, want *value.Error", got)
	}
}

func TestEvalAdjacentOperatorsIsError(t *testing.T) {
	seq := []token.Token{lit(num(1)), op("ADDITION"), op("SUBTRACTION"), lit(num(2))}
	got := evaluator.Eval(seq, nil)
	if _, ok := got.(*value.Error); !ok {
		t.Errorf("Eval(adjacent operators) = %#v, want *value.Error", got)
	}
}

func TestEvalPropertyRefResolvesAgainstTarget(t *testing.T) {
	target := value.NewObject()
	target.Set("x", num(3))
	seq := []token.Token{token.NewPropertyRef(0, 0, "x"), op("ADDITION"), lit(num(4))}
	got := evaluator.Eval(seq, target)
	n, ok := got.(value.Number)
	if !ok || n.Val != 7 {
		t.Errorf("Eval({x}+4) = %#v, want Number(7)", got)
	}
}

func TestEvalFuncCallDispatches(t *testing.T) {
	fn := token.NewFunc(0, 0, "SUM", [][]token.Token{{lit(num(1))}, {lit(num(2))}, {lit(num(3))}})
	got := evaluator.Eval([]token.Token{fn}, nil)
	n, ok := got.(value.Number)
	if !ok || n.Val != 6 {
		t.Errorf("Eval(SUM(1,2,3)) = %#v, want Number(6)", got)
	}
}

func TestEvalFuncArgErrorPropagates(t *testing.T) {
	fn := token.NewFunc(0, 0, "SUM", [][]token.Token{{lit(num(1)), op("ADDITION")}})
	got := evaluator.Eval([]token.Token{fn}, nil)
	if _, ok := got.(*value.Error); !ok {
		t.Errorf("Eval(SUM with malformed arg) = %#v, want *value.Error", got)
	}
}

func TestEvalUnknownFunctionNameIsError(t *testing.T) {
	fn := token.NewFunc(0, 0, "BOGUS", nil)
	got := evaluator.Eval([]token.Token{fn}, nil)
	if _, ok := got.(*value.Error); !ok {
		t.Errorf("Eval(BOGUS()) = %#v, want *value.Error", got)
	}
}

func TestEvalGroupCollapsesBeforeOuterOperators(t *testing.T) {
	group := token.NewGroup(0, 0, []token.Token{lit(num(1)), op("ADDITION"), lit(num(2))})
	seq := []token.Token{group, op("MULTIPLICATION"), lit(num(3))}
	got := evaluator.Eval(seq, nil)
	n, ok := got.(value.Number)
	if !ok || n.Val != 9 {
		t.Errorf("Eval((1+2)*3) = %#v, want Number(9)", got)
	}
}

func TestPropertiesDistinctInFirstAppearanceOrder(t *testing.T) {
	root := []token.Token{
		token.NewPropertyRef(0, 0, "a.b"),
		op("ADDITION"),
		token.NewPropertyRef(0, 0, "a.b"),
		op("ADDITION"),
		token.NewPropertyRef(0, 0, "c"),
	}
	got := evaluator.Properties(root)
	want := []string{"a.b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Properties() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Properties()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPropertiesWalksGroupsAndFuncArgs(t *testing.T) {
	group := token.NewGroup(0, 0, []token.Token{token.NewPropertyRef(0, 0, "g")})
	fn := token.NewFunc(0, 0, "SUM", [][]token.Token{{token.NewPropertyRef(0, 0, "f1")}, {token.NewPropertyRef(0, 0, "f2")}})
	got := evaluator.Properties([]token.Token{group, fn})
	want := map[string]bool{"g": true, "f1": true, "f2": true}
	if len(got) != len(want) {
		t.Fatalf("Properties() = %v, want 3 distinct paths", got)
	}
	for _, p := range got {
		if !want[p] {
			t.Errorf("unexpected property path %q", p)
		}
	}
}

func TestEvalCommentsIgnored(t *testing.T) {
	seq := []token.Token{lit(num(1)), op("ADDITION"), lit(num(2)), token.NewComment(0, 0, "trailing")}
	got := evaluator.Eval(seq, nil)
	n, ok := got.(value.Number)
	if !ok || n.Val != 3 {
		t.Errorf("Eval(1+2 // comment) = %#v, want Number(3)", got)
	}
}
