// Package geometry builds stream footprints: the quadrilateral strip of a
// given half-width centered on a stream segment.
//
// A footprint is derived once per segment at load time. Construction branches
// on the segment orientation (near-vertical, near-horizontal, general slope)
// and tags the result as complete or degenerate, so downstream narrow-phase
// code must handle an unusable footprint explicitly instead of assuming four
// corners.
package geometry
