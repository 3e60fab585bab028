package domain

import (
	"context"
	"fmt"
	"time"
)

// TimeLayout is the layout of MetricsSnapshot.Time (YYYY-MM-DD HH:MM:SS, local clock).
const TimeLayout = "2006-01-02 15:04:05"

// MetricsSnapshot is one set of host readings taken at a single instant.
// Percentages are in the range [0,100].
type MetricsSnapshot struct {
	Time   string  `json:"time"`
	CPU    float64 `json:"cpu"`
	Memory float64 `json:"memory"`
	Disk   float64 `json:"disk"`
}

// NewSnapshot stamps the readings with t formatted in TimeLayout.
func NewSnapshot(t time.Time, cpu, memory, disk float64) MetricsSnapshot {
	return MetricsSnapshot{
		Time:   t.Format(TimeLayout),
		CPU:    cpu,
		Memory: memory,
		Disk:   disk,
	}
}

// Collector produces a fresh MetricsSnapshot on every call.
type Collector interface {
	Collect(ctx context.Context) (MetricsSnapshot, error)
}

// CollectorFunc adapts a plain function to Collector.
type CollectorFunc func(ctx context.Context) (MetricsSnapshot, error)

func (f CollectorFunc) Collect(ctx context.Context) (MetricsSnapshot, error) {
	return f(ctx)
}

type Resource string

const (
	ResourceCPU    Resource = "cpu"
	ResourceMemory Resource = "memory"
	ResourceDisk   Resource = "disk"
)

// ResourceQueryError reports that the OS query for one resource failed.
// A snapshot is never returned alongside it.
type ResourceQueryError struct {
	Resource Resource
	Err      error
}

func (e *ResourceQueryError) Error() string {
	return fmt.Sprintf("unable to read %s utilization: %v", e.Resource, e.Err)
}

func (e *ResourceQueryError) Unwrap() error {
	return e.Err
}
