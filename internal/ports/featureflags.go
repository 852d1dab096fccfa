package ports

import (
	"context"
)

// FeatureFlags defines the contract for feature flag evaluation.
// This port allows the application to check feature enablement without
// knowing where the flags come from (static config, a flag service, etc.).
//
// Example usage:
//
//	if flags.IsEnabled(ctx, "strict-collection-validation", false) {
//	    items = dropInvalid(items)
//	}
type FeatureFlags interface {
	// IsEnabled checks if a boolean feature flag is enabled.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
}
