package telemetry

import (
	"os"
)

const defaultArtifactsDir = ".marvin"

var observeEnabled bool

func init() {
	// Read once at process start. Mid-run environment changes have no effect,
	// except the explicit opt-in honoured by ObserveEnabled.
	observeEnabled = os.Getenv("MARVIN_OBSERVE_JSON") == "1"
}

// ObserveEnabled reports whether JSONL emission is on.
func ObserveEnabled() bool {
	// Allow tests to enable mid-run via env override.
	if os.Getenv("MARVIN_OBSERVE_JSON") == "1" {
		return true
	}
	return observeEnabled
}

// ArtifactsDir is where events.jsonl is written: $MARVIN_ARTIFACTS_DIR or .marvin.
func ArtifactsDir() string {
	if v := os.Getenv("MARVIN_ARTIFACTS_DIR"); v != "" {
		return v
	}
	return defaultArtifactsDir
}
