package streamflux

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/hupe1980/streamflux/blobstore"
	"github.com/hupe1980/streamflux/catalog"
	"github.com/hupe1980/streamflux/geometry"
	"github.com/hupe1980/streamflux/snapshot"
	"github.com/hupe1980/streamflux/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInput = `2
0 0 10 0 5 1
3 2 3 8 2 0.5
`

func TestNewFromReader(t *testing.T) {
	sf, err := NewFromReader(strings.NewReader(sampleInput))
	require.NoError(t, err)

	stats := sf.Stats()
	assert.Equal(t, 2, stats.Segments)
	assert.Equal(t, 0, stats.DegenerateSegments)
	assert.Equal(t, 4, stats.IndexedTriangles)
}

func TestNewNilCatalog(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestNewFromReaderMalformed(t *testing.T) {
	_, err := NewFromReader(strings.NewReader("1\n0 0 ten 0 5 1\n"))
	require.ErrorIs(t, err, ErrLoadFailed)

	var malformed *ErrMalformedInput
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, 2, malformed.Line)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streams.dat")
	require.NoError(t, os.WriteFile(path, []byte(sampleInput), 0o600))

	sf, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, sf.Catalog().Len())

	_, err = NewFromFile(filepath.Join(t.TempDir(), "missing.dat"))
	require.ErrorIs(t, err, ErrLoadFailed)
}

func TestRateAt(t *testing.T) {
	sf, err := NewFromReader(strings.NewReader(sampleInput))
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, 5.0, sf.RateAt(ctx, geom.Point{X: 5, Y: 0}))
	assert.Equal(t, 2.0, sf.RateAt(ctx, geom.Point{X: 3, Y: 5}))
	assert.Equal(t, 0.0, sf.RateAt(ctx, geom.Point{X: 50, Y: 50}))
}

func TestRechargeForCell(t *testing.T) {
	sf, err := NewFromReader(strings.NewReader(sampleInput))
	require.NoError(t, err)

	ctx := context.Background()

	found, contributions := sf.RechargeForCell(ctx, testutil.Rect(4, -2, 8, 2))
	require.True(t, found)
	require.Len(t, contributions, 1)
	assert.Equal(t, uint32(0), contributions[0].StreamID)
	assert.InDelta(t, 8*5.0, contributions[0].WeightedRate, 1e-9)

	found, contributions = sf.RechargeForCell(ctx, testutil.Rect(100, 100, 101, 101))
	assert.False(t, found)
	assert.Empty(t, contributions)
}

func TestSweep(t *testing.T) {
	sf, err := NewFromReader(strings.NewReader(sampleInput), WithSweepWorkers(2))
	require.NoError(t, err)

	bounds := geom.Bounds{Min: geom.Point{X: -2, Y: -2}, Max: geom.Point{X: 12, Y: 10}}
	result, err := sf.Sweep(context.Background(), testutil.CellGrid(bounds, 7, 6))
	require.NoError(t, err)

	// Both footprints lie inside the swept bounds, so the total recharge
	// is the sum of area times rate over the catalog.
	assert.InDelta(t, 20*5.0+6*2.0, result.TotalRecharge, 1e-6)
	assert.Greater(t, result.ContributingCells, 0)
}

func TestSnapshotRoundTrip(t *testing.T) {
	sf, err := NewFromReader(strings.NewReader(sampleInput), WithSnapshotCompression(snapshot.CompressionLZ4))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sf.WriteSnapshot(&buf))

	restored, err := snapshot.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, sf.Catalog().Records(), restored.Records())
}

func TestSnapshotBlobStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()

	sf, err := NewFromReader(strings.NewReader(sampleInput))
	require.NoError(t, err)
	require.NoError(t, sf.SaveSnapshot(ctx, bs, "snap-1"))

	restored, err := NewFromSnapshot(ctx, bs, "snap-1")
	require.NoError(t, err)
	assert.Equal(t, sf.Catalog().Records(), restored.Catalog().Records())
	assert.Equal(t, 5.0, restored.RateAt(ctx, geom.Point{X: 5, Y: 0}))

	_, err = NewFromSnapshot(ctx, bs, "missing")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLoadFailed))
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestNewFromSnapshotCorrupt(t *testing.T) {
	ctx := context.Background()
	bs := blobstore.NewMemoryStore()
	require.NoError(t, bs.Put(ctx, "corrupt", []byte("not a snapshot at all")))

	_, err := NewFromSnapshot(ctx, bs, "corrupt")
	require.ErrorIs(t, err, ErrLoadFailed)
	require.ErrorIs(t, err, snapshot.ErrInvalidSnapshot)
}

func TestWithTolerance(t *testing.T) {
	// Legacy absolute tolerance classifies a slightly tilted segment as
	// near-vertical; the default does not change completeness either way.
	input := "1\n0 0 0.05 10 2 1\n"

	sf, err := NewFromReader(strings.NewReader(input), WithTolerance(geometry.Tolerance{Abs: 0.1}))
	require.NoError(t, err)

	seg := sf.Catalog().Segment(0)
	require.True(t, seg.Footprint.Complete())
	assert.InDelta(t, -1.0, seg.Footprint.Corners[0].X, 1e-12)
}

func TestDegenerateSegmentsCounted(t *testing.T) {
	input := "2\n1 1 1 1 9 1\n0 0 10 0 5 1\n"

	sf, err := NewFromReader(strings.NewReader(input))
	require.NoError(t, err)

	stats := sf.Stats()
	assert.Equal(t, 2, stats.Segments)
	assert.Equal(t, 1, stats.DegenerateSegments)
	assert.Equal(t, 2, stats.IndexedTriangles)
}

func TestMetricsCollection(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	sf, err := NewFromReader(strings.NewReader(sampleInput), WithMetricsCollector(metrics))
	require.NoError(t, err)

	ctx := context.Background()
	sf.RateAt(ctx, geom.Point{X: 5, Y: 0})
	sf.RateAt(ctx, geom.Point{X: 50, Y: 50})
	sf.RechargeForCell(ctx, testutil.Rect(4, -2, 8, 2))

	bounds := geom.Bounds{Min: geom.Point{X: -2, Y: -2}, Max: geom.Point{X: 12, Y: 10}}
	_, err = sf.Sweep(ctx, testutil.CellGrid(bounds, 2, 2))
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(0), stats.LoadErrors)
	assert.Equal(t, int64(2), stats.RateQueryCount)
	assert.Equal(t, int64(1), stats.RateQueryHits)
	assert.Equal(t, int64(1), stats.RechargeCount)
	assert.Equal(t, int64(1), stats.SweepCount)
	assert.Equal(t, int64(4), stats.SweepCells)
}

func TestMetricsOnLoadFailure(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	_, err := NewFromReader(strings.NewReader("garbage"), WithMetricsCollector(metrics))
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(1), stats.LoadErrors)
}

func TestConcurrentQueries(t *testing.T) {
	rng := testutil.NewRNG(11)
	bounds := geom.Bounds{Min: geom.Point{X: 0, Y: 0}, Max: geom.Point{X: 500, Y: 500}}

	sf, err := New(catalog.New(rng.SegmentRecords(100, bounds)))
	require.NoError(t, err)

	ctx := context.Background()
	cells := testutil.CellGrid(bounds, 5, 5)

	done := make(chan struct{})
	for range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for _, cell := range cells {
				sf.RechargeForCell(ctx, cell)
			}
			sf.RateAt(ctx, geom.Point{X: 250, Y: 250})
		}()
	}
	for range 8 {
		<-done
	}
}
