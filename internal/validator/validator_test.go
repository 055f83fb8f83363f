package validator_test

import (
	"testing"

	"github.com/cwbudde/go-calku/internal/validator"
	"github.com/cwbudde/go-calku/internal/value"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"null fails", value.Null{}, false},
		{"undefined fails", value.Undefined{}, false},
		{"blank string fails", value.String{Val: "   "}, false},
		{"empty array fails", &value.Array{}, false},
		{"nonempty string passes", value.String{Val: "x"}, true},
		{"number passes", value.Number{Val: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validator.New(tt.v).Required()
			if got := s.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v (message: %q)", got, tt.want, s.Message())
			}
		})
	}
}

func TestInstanceOf(t *testing.T) {
	if !validator.New(value.Number{Val: 1}).InstanceOf("number", "string").Valid() {
		t.Errorf("number should satisfy InstanceOf(number, string)")
	}
	if validator.New(value.Boolean{Val: true}).InstanceOf("number", "string").Valid() {
		t.Errorf("boolean should not satisfy InstanceOf(number, string)")
	}
}

func TestInstanceOfRecursesIntoArrays(t *testing.T) {
	arr := &value.Array{Elems: []value.Value{value.Number{Val: 1}, value.Number{Val: 2}}}
	if !validator.New(arr).InstanceOf("array", "number").Valid() {
		t.Errorf("array of numbers should satisfy InstanceOf(array, number)")
	}

	mixed := &value.Array{Elems: []value.Value{value.Number{Val: 1}, value.String{Val: "x"}}}
	if validator.New(mixed).InstanceOf("array", "number").Valid() {
		t.Errorf("mixed array should not satisfy InstanceOf(array, number)")
	}
}

func TestInstanceOfUnknownTagPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for unknown tag")
		}
	}()
	validator.New(value.Null{}).InstanceOf("bogus")
}

func TestInstanceOfUndefinedTagPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for 'undefined' tag")
		}
	}()
	validator.New(value.Null{}).InstanceOf("undefined")
}

func TestShorthands(t *testing.T) {
	if !validator.New(&value.Array{}).Array().Valid() {
		t.Errorf("Array() should accept an Array value")
	}
	if !validator.New(value.Boolean{Val: true}).Boolean().Valid() {
		t.Errorf("Boolean() should accept a Boolean value")
	}
	if !validator.New(value.Number{Val: 1}).Number().Valid() {
		t.Errorf("Number() should accept a Number value")
	}
	if !validator.New(value.String{Val: "x"}).Str().Valid() {
		t.Errorf("Str() should accept a String value")
	}
	if !validator.New(value.NewObject()).Object().Valid() {
		t.Errorf("Object() should accept an Object value")
	}
}

func TestIntegerRejectsFractional(t *testing.T) {
	if !validator.New(value.Number{Val: 4}).Integer().Valid() {
		t.Errorf("4 should be a valid integer")
	}
	if validator.New(value.Number{Val: 4.5}).Integer().Valid() {
		t.Errorf("4.5 should not be a valid integer")
	}
}

func TestLengthBounds(t *testing.T) {
	min, max := 2, 4
	if !validator.New(value.String{Val: "abc"}).Length(&min, &max).Valid() {
		t.Errorf("length 3 should satisfy [2,4]")
	}
	if validator.New(value.String{Val: "a"}).Length(&min, &max).Valid() {
		t.Errorf("length 1 should violate minimum 2")
	}
	if validator.New(value.String{Val: "abcde"}).Length(&min, &max).Valid() {
		t.Errorf("length 5 should violate maximum 4")
	}
}

func TestRangeBounds(t *testing.T) {
	min, max := 0.0, 10.0
	if !validator.New(value.Number{Val: 5}).Range(&min, &max).Valid() {
		t.Errorf("5 should satisfy [0,10]")
	}
	if validator.New(value.Number{Val: -1}).Range(&min, &max).Valid() {
		t.Errorf("-1 should violate minimum 0")
	}
	if validator.New(value.Number{Val: 11}).Range(&min, &max).Valid() {
		t.Errorf("11 should violate maximum 10")
	}
}

func TestEmailAddress(t *testing.T) {
	if !validator.New(value.String{Val: "a@b.com"}).EmailAddress().Valid() {
		t.Errorf("a@b.com should be a valid email")
	}
	if validator.New(value.String{Val: "not-an-email"}).EmailAddress().Valid() {
		t.Errorf("not-an-email should be invalid")
	}
}

func TestAllowedShortCircuits(t *testing.T) {
	s := validator.New(value.Null{}).Allowed(value.Null{}).Str()
	if !s.Valid() {
		t.Errorf("Null allowed via Allowed() should bypass the subsequent Str() check")
	}
}

func TestChainStopsAtFirstFailure(t *testing.T) {
	s := validator.New(value.Number{Val: 5}).Named("x").Required().Str()
	if s.Valid() {
		t.Errorf("number should fail Str() after Required() passes")
	}
	if got := s.Message(); got == "" {
		t.Errorf("expected a failure message")
	}
	if s.Err() == nil {
		t.Errorf("Err() should be non-nil once failed")
	}
}

func TestMessageIncludesName(t *testing.T) {
	s := validator.New(value.Null{}).Named("amount").Required()
	if got := s.Message(); got != `The value for "amount" is required` {
		t.Errorf("Message() = %q", got)
	}
}
