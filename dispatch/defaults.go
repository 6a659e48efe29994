package dispatch

import "github.com/ygrebnov/oneshot/metrics"

// defaultConfig centralizes default values for config.
// These defaults are the base that New applies options on top of.
func defaultConfig() config {
	return config{
		metrics:     metrics.NewNoopProvider(),
		stopOnError: false,
		wakeBuffer:  1,
	}
}

// validateConfig performs lightweight invariants checks.
// It returns nil for all currently valid states; reserved for future validation expansions.
func validateConfig(_ *config) error {
	// Options already reject nil providers and zero buffers at apply time.
	return nil
}
