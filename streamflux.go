package streamflux

import (
	"context"
	"io"
	"time"

	"github.com/ctessum/geom"
	"github.com/hupe1980/streamflux/blobstore"
	"github.com/hupe1980/streamflux/catalog"
	"github.com/hupe1980/streamflux/engine"
	"github.com/hupe1980/streamflux/geometry"
	"github.com/hupe1980/streamflux/snapshot"
	"github.com/hupe1980/streamflux/spatial"
)

// StreamFlux couples a stream catalog onto mesh-cell footprints. It is
// immutable after construction; all query methods are safe for concurrent
// use.
type StreamFlux struct {
	catalog     *catalog.Catalog
	coupler     *engine.Coupler
	compression snapshot.Compression
	metrics     MetricsCollector
	logger      *Logger
	workers     int
}

// New builds an engine over an already-constructed catalog.
func New(cat *catalog.Catalog, optFns ...Option) (*StreamFlux, error) {
	if cat == nil {
		return nil, ErrEmptyCatalog
	}
	opts := applyOptions(optFns)
	return newStreamFlux(cat, opts), nil
}

// NewFromReader loads the stream definition format from r and builds the
// engine. A malformed input fails the whole load.
func NewFromReader(r io.Reader, optFns ...Option) (*StreamFlux, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	cat, err := catalog.Load(r, catalogOptions(opts))
	if err != nil {
		err = translateError(err)
		opts.metricsCollector.RecordLoad(0, time.Since(start), err)
		opts.logger.LogCatalogLoad(context.Background(), 0, 0, err)
		return nil, err
	}

	opts.metricsCollector.RecordLoad(cat.Len(), time.Since(start), nil)
	opts.logger.LogCatalogLoad(context.Background(), cat.Len(), cat.Degenerate(), nil)
	return newStreamFlux(cat, opts), nil
}

// NewFromFile loads a stream definition file and builds the engine.
func NewFromFile(path string, optFns ...Option) (*StreamFlux, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	cat, err := catalog.LoadFile(path, catalogOptions(opts))
	if err != nil {
		err = translateError(err)
		opts.metricsCollector.RecordLoad(0, time.Since(start), err)
		opts.logger.LogCatalogLoad(context.Background(), 0, 0, err)
		return nil, err
	}

	opts.metricsCollector.RecordLoad(cat.Len(), time.Since(start), nil)
	opts.logger.LogCatalogLoad(context.Background(), cat.Len(), cat.Degenerate(), nil)
	return newStreamFlux(cat, opts), nil
}

// NewFromSnapshot restores a catalog snapshot from a blob store and builds
// the engine.
func NewFromSnapshot(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*StreamFlux, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	cat, err := snapshot.LoadFrom(ctx, bs, name, func(o *snapshot.StoreOptions) {
		o.Catalog = []func(*catalog.Options){catalogOptions(opts)}
	})
	if err != nil {
		err = translateError(err)
		opts.metricsCollector.RecordLoad(0, time.Since(start), err)
		opts.logger.LogSnapshot(ctx, "load", name, err)
		return nil, err
	}

	opts.metricsCollector.RecordLoad(cat.Len(), time.Since(start), nil)
	opts.logger.LogSnapshot(ctx, "load", name, nil)
	return newStreamFlux(cat, opts), nil
}

func newStreamFlux(cat *catalog.Catalog, opts options) *StreamFlux {
	coupler := engine.New(cat, func(o *engine.Options) {
		o.Logger = opts.logger.Logger
		o.Index = []func(*spatial.Options){func(so *spatial.Options) {
			so.MinBranch = opts.minBranch
			so.MaxBranch = opts.maxBranch
		}}
	})

	return &StreamFlux{
		catalog:     cat,
		coupler:     coupler,
		compression: opts.compression,
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
		workers:     opts.sweepWorkers,
	}
}

func catalogOptions(opts options) func(o *catalog.Options) {
	return func(o *catalog.Options) {
		o.Builder = geometry.NewBuilder(opts.tolerance)
		o.Logger = opts.logger.Logger
	}
}

// Catalog returns the underlying stream catalog.
func (sf *StreamFlux) Catalog() *catalog.Catalog {
	return sf.catalog
}

// RateAt returns the rate of the first stream, in catalog order, whose
// footprint contains p, or 0 when no footprint does. See
// engine.Coupler.RateAt for the first-match semantics.
func (sf *StreamFlux) RateAt(ctx context.Context, p geom.Point) float64 {
	start := time.Now()
	rate := sf.coupler.RateAt(p)
	sf.metrics.RecordRateQuery(time.Since(start), rate != 0)
	sf.logger.LogRateQuery(ctx, p.X, p.Y, rate)
	return rate
}

// RechargeForCell computes the recharge contributions of all streams whose
// footprints overlap the given cell footprint.
//
// found is bounding-box-level truth (at least one broad-phase candidate),
// not "has nonzero recharge": it can be true with an empty contribution
// list.
func (sf *StreamFlux) RechargeForCell(ctx context.Context, cell geom.Polygon) (bool, []engine.Contribution) {
	start := time.Now()
	found, contributions := sf.coupler.RechargeForCell(cell)
	sf.metrics.RecordRechargeQuery(len(contributions), time.Since(start))
	sf.logger.LogRechargeQuery(ctx, found, len(contributions))
	return found, contributions
}

// Sweep runs RechargeForCell over every cell footprint concurrently and
// aggregates the results.
func (sf *StreamFlux) Sweep(ctx context.Context, cells []geom.Polygon) (*engine.SweepResult, error) {
	start := time.Now()
	result, err := sf.coupler.Sweep(ctx, cells, func(o *engine.SweepOptions) {
		o.Workers = sf.workers
	})
	sf.metrics.RecordSweep(len(cells), time.Since(start), err)
	if err != nil {
		sf.logger.LogSweep(ctx, len(cells), 0, 0, err)
		return nil, err
	}
	sf.logger.LogSweep(ctx, len(cells), result.ContributingCells, result.TotalRecharge, nil)
	return result, nil
}

// Stats describes the built engine.
type Stats struct {
	Segments           int
	DegenerateSegments int
	IndexedTriangles   int
}

// Stats returns statistics about the catalog and broad-phase index.
func (sf *StreamFlux) Stats() Stats {
	return Stats{
		Segments:           sf.catalog.Len(),
		DegenerateSegments: sf.catalog.Degenerate(),
		IndexedTriangles:   sf.coupler.IndexedTriangles(),
	}
}

// WriteSnapshot encodes the catalog to w using the configured compression.
func (sf *StreamFlux) WriteSnapshot(w io.Writer) error {
	return snapshot.Write(w, sf.catalog, sf.compression)
}

// SaveSnapshot encodes the catalog and stores it in the blob store under
// name.
func (sf *StreamFlux) SaveSnapshot(ctx context.Context, bs blobstore.BlobStore, name string) error {
	err := snapshot.SaveTo(ctx, bs, name, sf.catalog, func(o *snapshot.StoreOptions) {
		o.Compression = sf.compression
	})
	sf.logger.LogSnapshot(ctx, "save", name, err)
	return err
}
