// Package testutil provides deterministic generators for stream and mesh
// test fixtures.
package testutil

import (
	"math/rand"
	"sync"

	"github.com/ctessum/geom"
	"github.com/hupe1980/streamflux/catalog"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Float64Range returns a pseudo-random number in [lo, hi).
func (r *RNG) Float64Range(lo, hi float64) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rand.Float64()*(hi-lo)
}

// Intn returns a non-negative pseudo-random number in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// SegmentRecords generates n random stream records inside bounds. Segment
// lengths and half-widths are scaled to the bounds diagonal so footprints
// stay well-formed under the default tolerance.
func (r *RNG) SegmentRecords(n int, bounds geom.Bounds) []catalog.Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	dx := bounds.Max.X - bounds.Min.X
	dy := bounds.Max.Y - bounds.Min.Y

	records := make([]catalog.Record, n)
	for i := range records {
		a := geom.Point{
			X: bounds.Min.X + r.rand.Float64()*dx,
			Y: bounds.Min.Y + r.rand.Float64()*dy,
		}
		b := geom.Point{
			X: a.X + (r.rand.Float64()-0.5)*dx*0.2,
			Y: a.Y + (r.rand.Float64()-0.5)*dy*0.2,
		}
		records[i] = catalog.Record{
			A:         a,
			B:         b,
			Rate:      r.rand.Float64() * 10,
			HalfWidth: (0.001 + r.rand.Float64()*0.01) * dx,
		}
	}
	return records
}

// CellGrid builds an nx-by-ny grid of rectangular cell footprints covering
// bounds, row-major from the lower-left corner.
func CellGrid(bounds geom.Bounds, nx, ny int) []geom.Polygon {
	dx := (bounds.Max.X - bounds.Min.X) / float64(nx)
	dy := (bounds.Max.Y - bounds.Min.Y) / float64(ny)

	cells := make([]geom.Polygon, 0, nx*ny)
	for j := range ny {
		for i := range nx {
			x0 := bounds.Min.X + float64(i)*dx
			y0 := bounds.Min.Y + float64(j)*dy
			cells = append(cells, Rect(x0, y0, x0+dx, y0+dy))
		}
	}
	return cells
}

// Rect builds a rectangular polygon from two opposite corners.
func Rect(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}}
}
