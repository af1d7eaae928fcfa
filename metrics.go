package streamflux

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement it to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordLoad is called after a catalog load or snapshot restore.
	RecordLoad(segments int, duration time.Duration, err error)

	// RecordRateQuery is called after each point-rate query.
	// hit reports whether a footprint matched.
	RecordRateQuery(duration time.Duration, hit bool)

	// RecordRechargeQuery is called after each cell recharge query.
	RecordRechargeQuery(contributions int, duration time.Duration)

	// RecordSweep is called after each mesh sweep.
	RecordSweep(cells int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordRateQuery(time.Duration, bool)    {}
func (NoopMetricsCollector) RecordRechargeQuery(int, time.Duration) {}
func (NoopMetricsCollector) RecordSweep(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount           atomic.Int64
	LoadErrors          atomic.Int64
	RateQueryCount      atomic.Int64
	RateQueryHits       atomic.Int64
	RateQueryTotalNanos atomic.Int64
	RechargeCount       atomic.Int64
	RechargeResults     atomic.Int64
	RechargeTotalNanos  atomic.Int64
	SweepCount          atomic.Int64
	SweepErrors         atomic.Int64
	SweepCells          atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(segments int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordRateQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRateQuery(duration time.Duration, hit bool) {
	b.RateQueryCount.Add(1)
	b.RateQueryTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.RateQueryHits.Add(1)
	}
}

// RecordRechargeQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRechargeQuery(contributions int, duration time.Duration) {
	b.RechargeCount.Add(1)
	b.RechargeResults.Add(int64(contributions))
	b.RechargeTotalNanos.Add(duration.Nanoseconds())
}

// RecordSweep implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSweep(cells int, duration time.Duration, err error) {
	b.SweepCount.Add(1)
	b.SweepCells.Add(int64(cells))
	if err != nil {
		b.SweepErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:          b.LoadCount.Load(),
		LoadErrors:         b.LoadErrors.Load(),
		RateQueryCount:     b.RateQueryCount.Load(),
		RateQueryHits:      b.RateQueryHits.Load(),
		RateQueryAvgNanos:  avg(b.RateQueryTotalNanos.Load(), b.RateQueryCount.Load()),
		RechargeCount:      b.RechargeCount.Load(),
		RechargeResults:    b.RechargeResults.Load(),
		RechargeAvgNanos:   avg(b.RechargeTotalNanos.Load(), b.RechargeCount.Load()),
		SweepCount:         b.SweepCount.Load(),
		SweepErrors:        b.SweepErrors.Load(),
		SweepCells:         b.SweepCells.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount         int64
	LoadErrors        int64
	RateQueryCount    int64
	RateQueryHits     int64
	RateQueryAvgNanos int64
	RechargeCount     int64
	RechargeResults   int64
	RechargeAvgNanos  int64
	SweepCount        int64
	SweepErrors       int64
	SweepCells        int64
}
