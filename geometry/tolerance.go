package geometry

import "math"

// Tolerance controls the degeneracy checks of the footprint builder.
//
// The effective epsilon for a segment is Abs + Rel*max(|dx|,|dy|), so the
// classification scales with the segment instead of being tied to one
// coordinate unit. Legacy data calibrated against a fixed absolute tolerance
// can set Abs and leave Rel at zero.
type Tolerance struct {
	// Abs is an absolute floor on the epsilon, in coordinate units.
	Abs float64

	// Rel scales the epsilon with the segment extent.
	Rel float64
}

// DefaultTolerance is used when no tolerance is configured.
var DefaultTolerance = Tolerance{Abs: 0, Rel: 1e-6}

// Eps returns the effective epsilon for a segment with the given coordinate
// deltas.
func (t Tolerance) Eps(dx, dy float64) float64 {
	return t.Abs + t.Rel*math.Max(math.Abs(dx), math.Abs(dy))
}
