// Package flags implements ports.FeatureFlags from the features section of
// the loaded configuration.
package flags

import (
	"context"
	"maps"
	"strings"
)

// Static answers flag lookups from a fixed map. Flag names are matched
// case-insensitively and "-" and "_" are interchangeable, so the config key
// strict_collection_validation answers "strict-collection-validation".
type Static struct {
	values map[string]bool
}

// NewStatic copies values into a new Static.
func NewStatic(values map[string]bool) *Static {
	normalized := make(map[string]bool, len(values))
	for k, v := range values {
		normalized[normalize(k)] = v
	}
	return &Static{values: normalized}
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	if s == nil {
		return defaultValue
	}

	if v, ok := s.values[normalize(flag)]; ok {
		return v
	}

	return defaultValue
}

// All returns a copy of the normalized flag values.
func (s *Static) All() map[string]bool {
	return maps.Clone(s.values)
}

func normalize(flag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(flag)), "_", "-")
}
