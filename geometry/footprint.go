package geometry

import (
	"errors"
	"math"

	"github.com/ctessum/geom"
)

var (
	// ErrZeroLengthSegment is returned when both endpoints coincide within
	// the configured tolerance.
	ErrZeroLengthSegment = errors.New("zero-length segment")

	// ErrIncompleteFootprint is returned when fewer than four corners could
	// be derived for a general-slope segment.
	ErrIncompleteFootprint = errors.New("incomplete footprint")

	// ErrNonPositiveWidth is returned when the half-width is not positive.
	ErrNonPositiveWidth = errors.New("half-width must be positive")
)

// FootprintState tags whether a footprint is usable for narrow-phase work.
type FootprintState uint8

const (
	// StateDegenerate marks a footprint that must not be clipped against:
	// the segment was zero-length or a corner derivation failed.
	StateDegenerate FootprintState = iota

	// StateComplete marks a well-formed four-corner footprint.
	StateComplete
)

// Footprint is the offset strip of half-width w centered on a segment.
//
// Corners holds the builder's emission order (endpoint-major, matching the
// input format documentation); ring holds the same points in boundary order
// for clipping. Both are immutable after Build.
type Footprint struct {
	State   FootprintState
	Corners []geom.Point

	ring   geom.Polygon
	bounds *geom.Bounds
}

// Complete reports whether the footprint is usable for exact geometry.
func (f *Footprint) Complete() bool {
	return f.State == StateComplete
}

// Ring returns the footprint boundary as a single-ring polygon.
// Returns nil for a degenerate footprint.
func (f *Footprint) Ring() geom.Polygon {
	return f.ring
}

// Bounds returns the axis-aligned bounding box of the footprint, or nil for
// a degenerate footprint.
func (f *Footprint) Bounds() *geom.Bounds {
	return f.bounds
}

// Area returns the footprint area. Degenerate footprints have zero area.
func (f *Footprint) Area() float64 {
	if !f.Complete() {
		return 0
	}
	return math.Abs(f.ring.Area())
}

// Centroid returns the footprint centroid. Only valid for complete footprints.
func (f *Footprint) Centroid() geom.Point {
	return f.ring.Centroid()
}

// Triangles splits the footprint along one diagonal into two triangles for
// bounding-volume indexing. Only valid for complete footprints.
func (f *Footprint) Triangles() [2]geom.Polygon {
	r := f.ring[0]
	return [2]geom.Polygon{
		{{r[0], r[1], r[2]}},
		{{r[0], r[2], r[3]}},
	}
}

// ContainsPoint reports whether p lies inside or on the edge of the
// footprint. The bounding box is checked first; both checks are inclusive.
func (f *Footprint) ContainsPoint(p geom.Point) bool {
	if !f.Complete() {
		return false
	}
	b := f.bounds
	if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
		return false
	}
	return p.Within(f.ring) != geom.Outside
}

// Builder derives footprints from segments.
type Builder struct {
	tol Tolerance
}

// NewBuilder creates a Builder with the given tolerance. A zero Tolerance
// falls back to DefaultTolerance.
func NewBuilder(tol Tolerance) *Builder {
	if tol == (Tolerance{}) {
		tol = DefaultTolerance
	}
	return &Builder{tol: tol}
}

// Tolerance returns the builder's tolerance.
func (bl *Builder) Tolerance() Tolerance {
	return bl.tol
}

// Build derives the footprint for the segment a-b with the given half-width.
//
// On failure the returned footprint is tagged StateDegenerate together with a
// non-nil error; callers are expected to log and carry on, treating the
// stream as non-contributing.
func (bl *Builder) Build(a, b geom.Point, halfWidth float64) (Footprint, error) {
	if halfWidth <= 0 {
		return Footprint{State: StateDegenerate}, ErrNonPositiveWidth
	}

	dx := b.X - a.X
	dy := b.Y - a.Y
	eps := bl.tol.Eps(dx, dy)

	switch {
	// Coincident endpoints make eps zero under a purely relative
	// tolerance, so exact equality is part of the zero-length test.
	case dx == 0 && dy == 0,
		math.Abs(dx) < eps && math.Abs(dy) < eps:
		return Footprint{State: StateDegenerate}, ErrZeroLengthSegment

	case math.Abs(dx) < eps:
		// Near-vertical: offset horizontally.
		corners := []geom.Point{
			{X: a.X - halfWidth, Y: a.Y},
			{X: a.X + halfWidth, Y: a.Y},
			{X: b.X - halfWidth, Y: b.Y},
			{X: b.X + halfWidth, Y: b.Y},
		}
		return complete(corners, []geom.Point{corners[0], corners[1], corners[3], corners[2]}), nil

	case math.Abs(dy) < eps:
		// Near-horizontal: offset vertically.
		corners := []geom.Point{
			{X: a.X, Y: a.Y - halfWidth},
			{X: a.X, Y: a.Y + halfWidth},
			{X: b.X, Y: b.Y - halfWidth},
			{X: b.X, Y: b.Y + halfWidth},
		}
		return complete(corners, []geom.Point{corners[0], corners[1], corners[3], corners[2]}), nil

	default:
		return bl.buildSloped(a, b, dx, dy, halfWidth)
	}
}

// buildSloped handles the general-slope case: two lines parallel to a-b at
// perpendicular distance w, crossed with the perpendiculars through a and b.
func (bl *Builder) buildSloped(a, b geom.Point, dx, dy, halfWidth float64) (Footprint, error) {
	m := dy / dx
	intercept := a.Y - m*a.X

	// Offset intercepts at perpendicular distance halfWidth.
	off := halfWidth * math.Sqrt(m*m+1)
	b1 := intercept - off
	b2 := intercept + off

	// Perpendiculars through each endpoint.
	mp := -1 / m
	cA := a.Y - mp*a.X
	cB := b.Y - mp*b.X

	corners := make([]geom.Point, 0, 4)
	for _, pair := range [4][2]float64{
		{cA, b1},
		{cA, b2},
		{cB, b2},
		{cB, b1},
	} {
		p, ok := lineIntersection(mp, pair[0], m, pair[1])
		if ok {
			corners = append(corners, p)
		}
	}

	if len(corners) < 4 {
		return Footprint{State: StateDegenerate, Corners: corners}, ErrIncompleteFootprint
	}

	// The pairwise order above already walks the boundary.
	return complete(corners, corners), nil
}

// lineIntersection intersects y = m1*x + c1 with y = m2*x + c2.
func lineIntersection(m1, c1, m2, c2 float64) (geom.Point, bool) {
	den := m1 - m2
	if den == 0 || math.IsInf(den, 0) || math.IsNaN(den) {
		return geom.Point{}, false
	}
	x := (c2 - c1) / den
	y := m1*x + c1
	if math.IsInf(x, 0) || math.IsNaN(x) || math.IsInf(y, 0) || math.IsNaN(y) {
		return geom.Point{}, false
	}
	return geom.Point{X: x, Y: y}, true
}

func complete(corners, ring []geom.Point) Footprint {
	return Footprint{
		State:   StateComplete,
		Corners: corners,
		ring:    geom.Polygon{ring},
		bounds:  pointBounds(ring),
	}
}

func pointBounds(pts []geom.Point) *geom.Bounds {
	b := &geom.Bounds{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}
