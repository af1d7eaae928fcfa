package engine

import (
	"context"
	"runtime"

	"github.com/ctessum/geom"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// CellResult is the recharge outcome for one swept cell.
type CellResult struct {
	// Found is broad-phase truth: the cell's bounding box intersected at
	// least one indexed triangle.
	Found bool

	Contributions []Contribution
}

// SweepResult aggregates a mesh-wide recharge sweep.
type SweepResult struct {
	// Cells holds one result per input cell, in input order.
	Cells []CellResult

	// TotalRecharge is the sum of all weighted rates across all cells.
	TotalRecharge float64

	// CandidateCells counts cells with at least one broad-phase candidate.
	CandidateCells int

	// ContributingCells counts cells with at least one nonzero-area overlap.
	ContributingCells int
}

// SweepOptions configures a mesh sweep.
type SweepOptions struct {
	// Workers bounds the number of cells processed concurrently.
	// Defaults to GOMAXPROCS.
	Workers int
}

// Sweep runs RechargeForCell over every cell footprint concurrently. Cells
// are independent read-only queries, so the only coordination is the worker
// bound. The first context cancellation aborts the sweep.
func (c *Coupler) Sweep(ctx context.Context, cells []geom.Polygon, optFns ...func(o *SweepOptions)) (*SweepResult, error) {
	opts := SweepOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	results := make([]CellResult, len(cells))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, cell := range cells {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, contributions := c.RechargeForCell(cell)
			results[i] = CellResult{Found: found, Contributions: contributions}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sweep := &SweepResult{Cells: results}
	var weights []float64
	for _, cr := range results {
		if cr.Found {
			sweep.CandidateCells++
		}
		if len(cr.Contributions) > 0 {
			sweep.ContributingCells++
		}
		for _, contribution := range cr.Contributions {
			weights = append(weights, contribution.WeightedRate)
		}
	}
	sweep.TotalRecharge = floats.Sum(weights)

	return sweep, nil
}
