package cmd

import (
	"os"

	"github.com/cwbudde/go-calku/internal/jsonvalue"
	"github.com/cwbudde/go-calku/internal/value"
	"github.com/cwbudde/go-calku/pkg/calku"
)

// loadTarget decodes --target's JSON document into a Value, or returns
// Undefined when path is empty (no target supplied).
func loadTarget(path, tz string) (value.Value, error) {
	if path == "" {
		return value.Undefined{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jsonvalue.Decode(raw, tz, calku.ResolveZone)
}
