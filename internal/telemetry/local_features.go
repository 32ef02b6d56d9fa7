package telemetry

import (
	"context"

	"github.com/petasbytes/marvin/internal/metrics"
)

// EmitLocalFeatures records the shape of an utterance, not its text.
func EmitLocalFeatures(ctx context.Context, utterance string) {
	if !ObserveEnabled() {
		return
	}
	EmitTurn(ctx, "local_features", map[string]any{
		"features_version": "2",
		"user":             metrics.CountFeatures(utterance).Map(),
	})
}
