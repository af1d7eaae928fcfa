// Package spatial provides the broad-phase bounding-volume index over
// triangulated stream footprints.
//
// Each complete footprint is split into two triangles tagged with the owning
// stream id and inserted into an R-tree. Queries are bounding-box only: a hit
// means the boxes intersect, not that the shapes truly overlap. The index is
// built once and is safe for concurrent queries afterwards.
package spatial

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/hupe1980/streamflux/geometry"
)

const (
	// DefaultMinBranch and DefaultMaxBranch are the R-tree branching factors.
	DefaultMinBranch = 25
	DefaultMaxBranch = 50
)

// Options configures the index.
type Options struct {
	// MinBranch and MaxBranch are the R-tree node branching factors.
	MinBranch int
	MaxBranch int
}

// Index answers broad-phase candidate queries over stream footprints.
type Index struct {
	tree    *rtree.Rtree
	entries int
}

// triangleEntry is one indexed triangle with a back-reference to its owning
// stream. Embedding the polygon makes the entry a geom.Geom, which is what
// the tree stores and returns.
type triangleEntry struct {
	geom.Polygon
	streamID uint32
}

// New creates an empty index.
func New(optFns ...func(o *Options)) *Index {
	opts := Options{
		MinBranch: DefaultMinBranch,
		MaxBranch: DefaultMaxBranch,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Index{
		tree: rtree.NewTree(opts.MinBranch, opts.MaxBranch),
	}
}

// Insert adds the two triangles of a complete footprint, both tagged with the
// owning stream id. Degenerate footprints are ignored.
func (ix *Index) Insert(streamID uint32, fp *geometry.Footprint) {
	if !fp.Complete() {
		return
	}
	for _, tri := range fp.Triangles() {
		ix.tree.Insert(&triangleEntry{
			Polygon:  tri,
			streamID: streamID,
		})
		ix.entries++
	}
}

// Len returns the number of indexed triangles (two per complete footprint).
func (ix *Index) Len() int {
	return ix.entries
}

// Search returns the distinct stream ids whose indexed triangles have
// bounding boxes intersecting b. The bitmap iterates in ascending id order,
// which is catalog order. An empty index yields an empty bitmap.
func (ix *Index) Search(b *geom.Bounds) *roaring.Bitmap {
	candidates := roaring.New()
	if ix.entries == 0 {
		return candidates
	}
	for _, hit := range ix.tree.SearchIntersect(b) {
		candidates.Add(hit.(*triangleEntry).streamID)
	}
	return candidates
}
