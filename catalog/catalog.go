package catalog

import (
	"iter"
	"log/slog"
	"math"

	"github.com/ctessum/geom"
	"github.com/hupe1980/streamflux/geometry"
)

// Record is the raw definition of one stream segment, before any geometry is
// derived. HalfWidth is the half-width of the footprint strip, not the full
// width.
type Record struct {
	A, B      geom.Point
	Rate      float64
	HalfWidth float64
}

// Segment is one stream segment with its derived geometry. Identity is the
// load-order index. Immutable after catalog construction.
type Segment struct {
	ID        uint32
	A, B      geom.Point
	Rate      float64
	HalfWidth float64
	Length    float64
	Footprint geometry.Footprint
}

// Options configures catalog construction.
type Options struct {
	// Builder derives footprints. Defaults to a builder with
	// geometry.DefaultTolerance.
	Builder *geometry.Builder

	// Logger receives degenerate-geometry diagnostics. Defaults to discard.
	Logger *slog.Logger
}

// Catalog is the immutable set of loaded stream segments.
type Catalog struct {
	segments   []Segment
	degenerate int
	bounds     *geom.Bounds
}

// New builds a catalog from raw records. Degenerate segments (zero length,
// failed corner derivation) are kept but tagged, logged and counted; they
// never contribute geometry.
func New(records []Record, optFns ...func(o *Options)) *Catalog {
	opts := applyOptions(optFns)

	c := &Catalog{
		segments: make([]Segment, 0, len(records)),
	}

	for i, rec := range records {
		id := uint32(i)

		fp, err := opts.Builder.Build(rec.A, rec.B, rec.HalfWidth)
		if err != nil {
			c.degenerate++
			opts.Logger.Warn("degenerate stream segment, footprint unusable",
				"segment", id,
				"error", err,
			)
		}

		seg := Segment{
			ID:        id,
			A:         rec.A,
			B:         rec.B,
			Rate:      rec.Rate,
			HalfWidth: rec.HalfWidth,
			Length:    math.Hypot(rec.B.X-rec.A.X, rec.B.Y-rec.A.Y),
			Footprint: fp,
		}
		c.segments = append(c.segments, seg)

		if fp.Complete() {
			c.extendBounds(fp.Bounds())
		}
	}

	return c
}

func (c *Catalog) extendBounds(b *geom.Bounds) {
	if c.bounds == nil {
		cp := *b
		c.bounds = &cp
		return
	}
	c.bounds.Min.X = math.Min(c.bounds.Min.X, b.Min.X)
	c.bounds.Min.Y = math.Min(c.bounds.Min.Y, b.Min.Y)
	c.bounds.Max.X = math.Max(c.bounds.Max.X, b.Max.X)
	c.bounds.Max.Y = math.Max(c.bounds.Max.Y, b.Max.Y)
}

// Len returns the number of loaded segments, degenerate ones included.
func (c *Catalog) Len() int {
	return len(c.segments)
}

// Degenerate returns the number of segments without a usable footprint.
func (c *Catalog) Degenerate() int {
	return c.degenerate
}

// Segment returns the segment with the given id, or nil if out of range.
func (c *Catalog) Segment(id uint32) *Segment {
	if int(id) >= len(c.segments) {
		return nil
	}
	return &c.segments[id]
}

// All iterates the segments in catalog order. The yielded pointers alias the
// catalog's backing array and stay valid for the catalog's lifetime, so
// callers may retain them (the broad-phase index does).
func (c *Catalog) All() iter.Seq[*Segment] {
	return func(yield func(*Segment) bool) {
		for i := range c.segments {
			if !yield(&c.segments[i]) {
				return
			}
		}
	}
}

// Records returns the raw definitions of all segments, in catalog order.
// Used by snapshot encoding; footprints are rederived on decode.
func (c *Catalog) Records() []Record {
	records := make([]Record, len(c.segments))
	for i, seg := range c.segments {
		records[i] = Record{A: seg.A, B: seg.B, Rate: seg.Rate, HalfWidth: seg.HalfWidth}
	}
	return records
}

// Bounds returns the bounding box over all complete footprints, or nil when
// the catalog holds none.
func (c *Catalog) Bounds() *geom.Bounds {
	return c.bounds
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Builder == nil {
		opts.Builder = geometry.NewBuilder(geometry.DefaultTolerance)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return opts
}
