package maxima

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordSet is called after each SetValue transaction.
	// duration is the total time taken, err is nil if successful.
	RecordSet(duration time.Duration, err error)

	// RecordErase is called after each Erase transaction.
	RecordErase(duration time.Duration, err error)

	// RecordLookup is called after each ValueAt call.
	RecordLookup(duration time.Duration, err error)

	// RecordRollback is called whenever a failed transaction unwinds
	// its recorded index edits.
	RecordRollback()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSet(time.Duration, error)    {}
func (NoopMetricsCollector) RecordErase(time.Duration, error)  {}
func (NoopMetricsCollector) RecordLookup(time.Duration, error) {}
func (NoopMetricsCollector) RecordRollback()                   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SetCount         atomic.Int64
	SetErrors        atomic.Int64
	SetTotalNanos    atomic.Int64
	EraseCount       atomic.Int64
	EraseErrors      atomic.Int64
	EraseTotalNanos  atomic.Int64
	LookupCount      atomic.Int64
	LookupErrors     atomic.Int64
	LookupTotalNanos atomic.Int64
	RollbackCount    atomic.Int64
}

// RecordSet implements MetricsCollector.
func (c *BasicMetricsCollector) RecordSet(duration time.Duration, err error) {
	c.SetCount.Add(1)
	c.SetTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.SetErrors.Add(1)
	}
}

// RecordErase implements MetricsCollector.
func (c *BasicMetricsCollector) RecordErase(duration time.Duration, err error) {
	c.EraseCount.Add(1)
	c.EraseTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.EraseErrors.Add(1)
	}
}

// RecordLookup implements MetricsCollector.
func (c *BasicMetricsCollector) RecordLookup(duration time.Duration, err error) {
	c.LookupCount.Add(1)
	c.LookupTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.LookupErrors.Add(1)
	}
}

// RecordRollback implements MetricsCollector.
func (c *BasicMetricsCollector) RecordRollback() {
	c.RollbackCount.Add(1)
}
