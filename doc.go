// Package streamflux couples linear hydrologic stream features onto an
// unstructured mesh used by a steady-state flow solver.
//
// Each stream segment carries a rate and a half-width. At load time the
// segment is expanded into its footprint, the rectangle-like strip of the
// given half-width centered on the segment, and the footprints are indexed
// in a bounding-volume tree. Queries then run in two phases: a broad phase
// over bounding boxes and a narrow phase computing the exact polygon overlap
// between a mesh cell's footprint and each candidate stream footprint. The
// overlap area times the stream rate is the weighted source contribution
// handed to the caller's assembly code.
//
// # Quick start
//
//	sf, err := streamflux.NewFromFile("streams.dat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Ambient rate at a point.
//	rate := sf.RateAt(ctx, geom.Point{X: 5, Y: 0})
//
//	// Recharge contributions for one mesh cell footprint.
//	found, contributions := sf.RechargeForCell(ctx, cellFootprint)
//
//	// Parallel sweep over many cells.
//	result, err := sf.Sweep(ctx, cellFootprints)
//
// The catalog and index are immutable once built, so all queries are safe
// for concurrent use.
//
// # Input format
//
// Line 1 holds the segment count N, followed by N lines of
//
//	X_start Y_start X_end Y_end Q_rate Width
//
// where Width is the half-width of the footprint strip. A malformed file
// fails the load entirely; a geometrically degenerate segment does not, it
// is tagged, logged and treated as non-contributing.
//
// Catalogs can also be published as compressed binary snapshots in a blob
// store (memory, local disk, S3, MinIO); see the snapshot and blobstore
// packages.
package streamflux
