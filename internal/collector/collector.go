// Package collector samples host CPU, memory and root filesystem utilization.
package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"

	"host-metrics/internal/domain"
)

const (
	DefaultCPUInterval = time.Second
	DefaultRootPath    = "/"
)

var errInvalidReading = errors.New("reading is not a finite number")

// Sources are the OS queries behind a snapshot.
type Sources struct {
	CPUPercent    func(ctx context.Context, interval time.Duration) (float64, error)
	MemoryPercent func(ctx context.Context) (float64, error)
	DiskPercent   func(ctx context.Context, path string) (float64, error)
	Now           func() time.Time
}

// HostSources reads the live host through gopsutil.
func HostSources() Sources {
	return Sources{
		CPUPercent:    cpuPercent,
		MemoryPercent: memoryPercent,
		DiskPercent:   diskPercent,
		Now:           time.Now,
	}
}

func cpuPercent(ctx context.Context, interval time.Duration) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, errors.New("no cpu times reported")
	}
	return percents[0], nil
}

func memoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func diskPercent(ctx context.Context, path string) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return usage.UsedPercent, nil
}

// HostCollector implements domain.Collector. It keeps no state between
// calls, so one value may serve any number of concurrent requests.
type HostCollector struct {
	cpuInterval time.Duration
	rootPath    string
	src         Sources
}

type Option func(*HostCollector)

func WithCPUInterval(d time.Duration) Option {
	return func(c *HostCollector) { c.cpuInterval = d }
}

func WithRootPath(path string) Option {
	return func(c *HostCollector) { c.rootPath = path }
}

func WithSources(src Sources) Option {
	return func(c *HostCollector) { c.src = src }
}

func NewHostCollector(opts ...Option) *HostCollector {
	c := &HostCollector{
		cpuInterval: DefaultCPUInterval,
		rootPath:    DefaultRootPath,
		src:         HostSources(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect blocks for the CPU sampling interval. Memory and disk are read
// while the CPU window is open. If any read fails the whole snapshot fails
// with a *domain.ResourceQueryError.
func (c *HostCollector) Collect(ctx context.Context) (domain.MetricsSnapshot, error) {
	now := c.src.Now()

	var cpuPct, memPct, diskPct float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.src.CPUPercent(gctx, c.cpuInterval)
		if err != nil {
			return &domain.ResourceQueryError{Resource: domain.ResourceCPU, Err: err}
		}
		cpuPct, err = normalize(domain.ResourceCPU, v)
		return err
	})
	g.Go(func() error {
		v, err := c.src.MemoryPercent(gctx)
		if err != nil {
			return &domain.ResourceQueryError{Resource: domain.ResourceMemory, Err: err}
		}
		memPct, err = normalize(domain.ResourceMemory, v)
		return err
	})
	g.Go(func() error {
		v, err := c.src.DiskPercent(gctx, c.rootPath)
		if err != nil {
			return &domain.ResourceQueryError{Resource: domain.ResourceDisk, Err: fmt.Errorf("%s: %w", c.rootPath, err)}
		}
		diskPct, err = normalize(domain.ResourceDisk, v)
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.MetricsSnapshot{}, err
	}

	return domain.NewSnapshot(now, cpuPct, memPct, diskPct), nil
}

// normalize clamps v into [0,100]; platforms occasionally report a hair
// outside the range from rounding.
func normalize(res domain.Resource, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &domain.ResourceQueryError{Resource: res, Err: errInvalidReading}
	}
	return math.Min(100, math.Max(0, v)), nil
}
