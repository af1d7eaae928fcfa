package streamflux

import (
	"log/slog"

	"github.com/hupe1980/streamflux/geometry"
	"github.com/hupe1980/streamflux/snapshot"
	"github.com/hupe1980/streamflux/spatial"
)

type options struct {
	tolerance        geometry.Tolerance
	minBranch        int
	maxBranch        int
	sweepWorkers     int
	compression      snapshot.Compression
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures engine construction.
type Option func(*options)

// WithTolerance configures the degeneracy tolerance of the footprint
// builder. The zero value falls back to geometry.DefaultTolerance.
//
// Data calibrated against the legacy fixed absolute tolerance can pass
// geometry.Tolerance{Abs: 0.1}.
func WithTolerance(tol geometry.Tolerance) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithTreeBranching configures the R-tree branching factors of the
// broad-phase index.
func WithTreeBranching(minBranch, maxBranch int) Option {
	return func(o *options) {
		o.minBranch = minBranch
		o.maxBranch = maxBranch
	}
}

// WithSweepWorkers bounds the number of cells processed concurrently during
// Sweep. Defaults to GOMAXPROCS.
func WithSweepWorkers(workers int) Option {
	return func(o *options) {
		o.sweepWorkers = workers
	}
}

// WithSnapshotCompression selects the compression used by SaveSnapshot and
// WriteSnapshot. Defaults to ZSTD.
func WithSnapshotCompression(c snapshot.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &streamflux.BasicMetricsCollector{}
//	sf, _ := streamflux.NewFromFile("streams.dat", streamflux.WithMetricsCollector(metrics))
//	// ... run queries ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

// WithLogger configures structured logging for operations.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		minBranch:        spatial.DefaultMinBranch,
		maxBranch:        spatial.DefaultMaxBranch,
		compression:      snapshot.CompressionZSTD,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
