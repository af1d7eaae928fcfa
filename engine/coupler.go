// Package engine implements the narrow-phase coupling of stream footprints
// onto mesh cells: point-rate classification and exact overlap-weighted
// recharge contributions.
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/ctessum/geom"
	"github.com/hupe1980/streamflux/catalog"
	"github.com/hupe1980/streamflux/spatial"
)

// Contribution is one stream's recharge contribution to a mesh cell:
// the centroid of the exact overlap polygon and the overlap area multiplied
// by the stream's rate.
type Contribution struct {
	StreamID     uint32
	Centroid     geom.Point
	WeightedRate float64
}

// Options configures a Coupler.
type Options struct {
	// Logger receives per-candidate diagnostics (clip failures, skipped
	// degenerate footprints). Defaults to discard.
	Logger *slog.Logger

	// Index configures the broad-phase index build.
	Index []func(o *spatial.Options)
}

// Coupler answers rate and recharge queries against an immutable catalog.
// All methods are read-only and safe for concurrent use once New returns.
type Coupler struct {
	cat    *catalog.Catalog
	index  *spatial.Index
	logger *slog.Logger
}

// New builds the broad-phase index over the catalog and returns a Coupler.
func New(cat *catalog.Catalog, optFns ...func(o *Options)) *Coupler {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	index := spatial.New(opts.Index...)
	for seg := range cat.All() {
		index.Insert(seg.ID, &seg.Footprint)
	}

	return &Coupler{
		cat:    cat,
		index:  index,
		logger: opts.Logger,
	}
}

// Catalog returns the underlying catalog.
func (c *Coupler) Catalog() *catalog.Catalog {
	return c.cat
}

// IndexedTriangles returns the number of triangles in the broad-phase index.
func (c *Coupler) IndexedTriangles() int {
	return c.index.Len()
}

// RateAt returns the rate of the first segment, in catalog order, whose
// footprint contains p, or 0 when no footprint does.
//
// First match wins deliberately: footprints are assumed disjoint by the data
// provider, and overlapping footprints resolve to the lower catalog id.
func (c *Coupler) RateAt(p geom.Point) float64 {
	for seg := range c.cat.All() {
		if seg.Footprint.ContainsPoint(p) {
			return seg.Rate
		}
	}
	return 0
}

// RechargeForCell computes the recharge contributions of all streams whose
// footprints overlap the given cell footprint.
//
// The returned found flag is bounding-box-level truth: it reports whether the
// broad phase produced at least one candidate, independent of whether any
// narrow-phase clip yielded nonzero area. A clip failure on one candidate is
// logged and skipped; it never aborts the query.
func (c *Coupler) RechargeForCell(cell geom.Polygon) (bool, []Contribution) {
	candidates := c.index.Search(cell.Bounds())
	if candidates.IsEmpty() {
		return false, nil
	}

	var contributions []Contribution

	it := candidates.Iterator()
	for it.HasNext() {
		id := it.Next()
		seg := c.cat.Segment(id)
		if seg == nil {
			continue
		}
		if !seg.Footprint.Complete() {
			c.logger.Debug("skipping degenerate footprint in recharge query",
				"segment", id,
			)
			continue
		}

		overlap, err := clip(cell, seg.Footprint.Ring())
		if err != nil {
			c.logger.Warn("polygon clip failed, skipping candidate",
				"segment", id,
				"error", err,
			)
			continue
		}
		if len(overlap) == 0 {
			continue
		}

		area := math.Abs(overlap.Area())
		if area == 0 {
			continue
		}

		contributions = append(contributions, Contribution{
			StreamID:     id,
			Centroid:     overlap.Centroid(),
			WeightedRate: area * seg.Rate,
		})
	}

	return true, contributions
}

// clip intersects the cell with a footprint ring, converting any panic in
// the clipping library on numerically degenerate input into an error so one
// bad candidate cannot abort a mesh sweep.
func clip(cell geom.Polygon, ring geom.Polygon) (overlap geom.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			overlap = nil
			err = fmt.Errorf("polygon clip: %v", r)
		}
	}()
	return cell.Intersection(ring).(geom.Polygon), nil
}
