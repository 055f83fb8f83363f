package calkuerrors_test

import (
	"strings"
	"testing"

	"github.com/cwbudde/go-calku/internal/calkuerrors"
)

func TestSourceErrorFormat(t *testing.T) {
	source := "1 + BOGUS(2)"
	err := calkuerrors.New(4, source, "unknown function %q", "BOGUS")

	if !strings.Contains(err.Error(), "BOGUS") {
		t.Errorf("Error() = %q, want it to mention BOGUS", err.Error())
	}
	if !strings.Contains(err.Error(), "1:5") {
		t.Errorf("Error() = %q, want column reported at 1:5", err.Error())
	}
	if !strings.Contains(err.Format(), source) {
		t.Errorf("Format() = %q, want it to echo the source line", err.Format())
	}
	if !strings.Contains(err.Format(), "^") {
		t.Errorf("Format() = %q, want a caret line", err.Format())
	}
}

func TestSourceErrorMultilineLocate(t *testing.T) {
	source := "first line\nsecond line with BOGUS"
	idx := strings.Index(source, "BOGUS")
	err := calkuerrors.New(idx, source, "unknown function %q", "BOGUS")

	if !strings.Contains(err.Error(), "2:") {
		t.Errorf("Error() = %q, want it to report line 2", err.Error())
	}
}

func TestDefinitionError(t *testing.T) {
	err := calkuerrors.NewDefinition("operator %q has no symbols", "ADDITION")
	if !strings.Contains(err.Error(), "ADDITION") {
		t.Errorf("Error() = %q, want it to mention ADDITION", err.Error())
	}
}
