package functions_test

import (
	"math"
	"testing"

	"github.com/cwbudde/go-calku/internal/functions"
	"github.com/cwbudde/go-calku/internal/value"
)

func num(n float64) value.Value { return value.Number{Val: n} }
func str(s string) value.Value  { return value.String{Val: s} }

func TestSumAndAverageFlatten(t *testing.T) {
	nested := &value.Array{Elems: []value.Value{
		num(1),
		&value.Array{Elems: []value.Value{num(3), num(4)}},
	}}
	got, err := functions.Call("SUM", []value.Value{nested, num(8), num(5)})
	if err != nil {
		t.Fatalf("Call(SUM) error: %v", err)
	}
	if n, ok := got.(value.Number); !ok || n.Val != 21 {
		t.Errorf("SUM([1,[3,4]],8,5) = %v, want 21", got)
	}

	got, err = functions.Call("AVERAGE", []value.Value{num(2), num(4), num(6)})
	if err != nil {
		t.Fatalf("Call(AVERAGE) error: %v", err)
	}
	if n, ok := got.(value.Number); !ok || n.Val != 4 {
		t.Errorf("AVERAGE(2,4,6) = %v, want 4", got)
	}
}

func TestCountIgnoresNaN(t *testing.T) {
	got, err := functions.Call("COUNT", []value.Value{num(1), value.String{Val: "x"}, num(2)})
	if err != nil {
		t.Fatalf("Call(COUNT) error: %v", err)
	}
	if n, ok := got.(value.Number); !ok || n.Val != 2 {
		t.Errorf("COUNT = %v, want 2", got)
	}
}

func TestIfBranches(t *testing.T) {
	got, err := functions.Call("IF", []value.Value{value.Boolean{Val: true}, num(1), num(2)})
	if err != nil {
		t.Fatalf("Call(IF) error: %v", err)
	}
	if n, ok := got.(value.Number); !ok || n.Val != 1 {
		t.Errorf("IF(true,1,2) = %v, want 1", got)
	}

	got, err = functions.Call("IF", []value.Value{value.Boolean{Val: false}, num(1), num(2)})
	if err != nil {
		t.Fatalf("Call(IF) error: %v", err)
	}
	if n, ok := got.(value.Number); !ok || n.Val != 2 {
		t.Errorf("IF(false,1,2) = %v, want 2", got)
	}
}

func TestHelloWorldNoArgs(t *testing.T) {
	got, err := functions.Call("HELLOWORLD", nil)
	if err != nil {
		t.Fatalf("Call(HELLOWORLD) error: %v", err)
	}
	if s, ok := got.(value.String); !ok || s.Val != "Hello world." {
		t.Errorf("HELLOWORLD() = %v, want %q", got, "Hello world.")
	}
	if _, err := functions.Call("HELLOWORLD", []value.Value{num(1)}); err == nil {
		t.Errorf("HELLOWORLD(1) should fail arity validation")
	}
}

func TestMathFunctions(t *testing.T) {
	tests := []struct {
		name string
		arg  float64
		want float64
	}{
		{"ABS", -5, 5},
		{"CEIL", 1.2, 2},
		{"FLOOR", 1.8, 1},
		{"SQRT", 16, 4},
		{"TRUNCATE", 1.9, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := functions.Call(tt.name, []value.Value{num(tt.arg)})
			if err != nil {
				t.Fatalf("Call(%s) error: %v", tt.name, err)
			}
			if n, ok := got.(value.Number); !ok || n.Val != tt.want {
				t.Errorf("%s(%v) = %v, want %v", tt.name, tt.arg, got, tt.want)
			}
		})
	}
}

func TestStringFunctions(t *testing.T) {
	left, err := functions.Call("LEFT", []value.Value{str("hello"), num(3)})
	if err != nil || left.(value.String).Val != "hel" {
		t.Errorf("LEFT(hello,3) = %v, %v, want hel", left, err)
	}

	right, err := functions.Call("RIGHT", []value.Value{str("hello"), num(3)})
	if err != nil || right.(value.String).Val != "llo" {
		t.Errorf("RIGHT(hello,3) = %v, %v, want llo", right, err)
	}

	mid, err := functions.Call("MID", []value.Value{str("hello"), num(1), num(3)})
	if err != nil || mid.(value.String).Val != "ell" {
		t.Errorf("MID(hello,1,3) = %v, %v, want ell", mid, err)
	}

	midOverflow, err := functions.Call("MID", []value.Value{str("hi"), num(0), num(99)})
	if err != nil || midOverflow.(value.String).Val != "hi" {
		t.Errorf("MID(hi,0,99) = %v, %v, want hi (clamped)", midOverflow, err)
	}
}

func TestLenAcrossTags(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want float64
	}{
		{"string", str("hello"), 5},
		{"array", &value.Array{Elems: []value.Value{num(1), num(2)}}, 2},
		{"null", value.Null{}, 0},
		{"boolean", value.Boolean{Val: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := functions.Call("LEN", []value.Value{tt.v})
			if err != nil {
				t.Fatalf("Call(LEN) error: %v", err)
			}
			if n, ok := got.(value.Number); !ok || n.Val != tt.want {
				t.Errorf("LEN(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestIsPredicates(t *testing.T) {
	if got, _ := functions.Call("ISARRAY", []value.Value{&value.Array{}}); !got.(value.Boolean).Val {
		t.Errorf("ISARRAY(array) should be true")
	}
	if got, _ := functions.Call("ISNULL", []value.Value{value.Null{}}); !got.(value.Boolean).Val {
		t.Errorf("ISNULL(null) should be true")
	}
	if got, _ := functions.Call("ISNOTNULL", []value.Value{num(1)}); !got.(value.Boolean).Val {
		t.Errorf("ISNOTNULL(1) should be true")
	}
	if got, _ := functions.Call("ISEMPTY", []value.Value{str("   ")}); !got.(value.Boolean).Val {
		t.Errorf("ISEMPTY(whitespace) should be true")
	}
	if got, _ := functions.Call("ISNOTEMPTY", []value.Value{str("x")}); !got.(value.Boolean).Val {
		t.Errorf("ISNOTEMPTY(x) should be true")
	}
}

func TestTextJoinIgnoreEmpty(t *testing.T) {
	got, err := functions.Call("TEXTJOIN", []value.Value{
		str(","), value.Boolean{Val: true}, str("a"), value.Null{}, str("b"),
	})
	if err != nil {
		t.Fatalf("Call(TEXTJOIN) error: %v", err)
	}
	if s, ok := got.(value.String); !ok || s.Val != "a,b" {
		t.Errorf("TEXTJOIN = %v, want a,b", got)
	}
}

func TestValidateArgsArity(t *testing.T) {
	if err := functions.ValidateArgs("ABS", []value.Value{num(1), num(2)}, false); err == nil {
		t.Errorf("ABS with 2 args should fail arity validation")
	}
	if err := functions.ValidateArgs("SUM", nil, false); err != nil {
		t.Errorf("SUM with 0 args should be valid (spread allows zero), got %v", err)
	}
}

func TestUnknownFunctionErrors(t *testing.T) {
	if _, err := functions.Call("BOGUS", nil); err == nil {
		t.Errorf("expected error for unknown function")
	}
}

func TestNamesSorted(t *testing.T) {
	names := functions.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() not sorted at %d: %s > %s", i, names[i-1], names[i])
		}
	}
	if functions.Get("sum") == nil {
		t.Errorf("Get should be case-insensitive")
	}
}

func TestAbsOfNegativeIsNotNaN(t *testing.T) {
	got, err := functions.Call("ABS", []value.Value{num(-1)})
	if err != nil {
		t.Fatalf("Call(ABS) error: %v", err)
	}
	if n := got.(value.Number).Val; math.IsNaN(n) {
		t.Errorf("ABS(-1) should not be NaN")
	}
}
