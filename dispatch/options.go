package dispatch

import (
	"fmt"

	"github.com/ygrebnov/oneshot/metrics"
)

// Option configures a Dispatcher. Use New(opts...) to construct one.
type Option func(*config)

// config holds Dispatcher configuration assembled from options.
type config struct {
	// metrics receives dispatcher instrumentation. Default: noop provider.
	metrics metrics.Provider

	// stopOnError makes Run return on the first task failure instead of
	// polling the remaining tasks to completion.
	// Default: false
	stopOnError bool

	// wakeBuffer is the capacity of the internal wake signal channel.
	// Default: 1
	wakeBuffer uint
}

// WithMetricsProvider installs a metrics provider recording dispatcher
// activity (tasks spawned, polls, wake-ups, live tasks, poll durations).
func WithMetricsProvider(p metrics.Provider) Option {
	return func(c *config) {
		if p == nil {
			panic("WithMetricsProvider requires a non-nil provider")
		}
		c.metrics = p
	}
}

// WithStopOnError makes Run return on the first task failure.
func WithStopOnError() Option {
	return func(c *config) { c.stopOnError = true }
}

// WithWakeBuffer sets the capacity of the wake signal channel (must be > 0).
// The default of 1 is sufficient; a larger buffer only reduces contention on
// the non-blocking poke under very heavy cross-goroutine waking.
func WithWakeBuffer(n uint) Option {
	return func(c *config) {
		if n == 0 {
			panic("WithWakeBuffer requires n > 0")
		}
		c.wakeBuffer = n
	}
}

// buildConfig assembles a config from defaults and options.
func buildConfig(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("nil dispatch option")
		}
		opt(&cfg)
	}

	if err := validateConfig(&cfg); err != nil {
		panic(fmt.Errorf("invalid dispatch config: %w", err))
	}

	return &cfg
}
