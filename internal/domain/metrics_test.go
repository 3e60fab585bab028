package domain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSnapshot(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 5, 7, 123, time.Local)

	snap := NewSnapshot(at, 12.5, 40.0, 77.3)

	assert.Equal(t, "2024-01-01 09:05:07", snap.Time)
	assert.Equal(t, 12.5, snap.CPU)
	assert.Equal(t, 40.0, snap.Memory)
	assert.Equal(t, 77.3, snap.Disk)
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`), NewSnapshot(time.Now(), 0, 0, 0).Time)
}

func TestResourceQueryError(t *testing.T) {
	cause := os.ErrPermission
	err := fmt.Errorf("collecting: %w", &ResourceQueryError{Resource: ResourceDisk, Err: cause})

	var rqe *ResourceQueryError
	assert.True(t, errors.As(err, &rqe), "wrapped ResourceQueryError should be found with errors.As")
	assert.Equal(t, ResourceDisk, rqe.Resource)
	assert.True(t, errors.Is(err, os.ErrPermission), "cause should stay reachable")
	assert.Contains(t, err.Error(), "unable to read disk utilization")
}

func TestCollectorFunc(t *testing.T) {
	want := MetricsSnapshot{Time: "2024-01-01 00:00:00", CPU: 1}
	var c Collector = CollectorFunc(func(ctx context.Context) (MetricsSnapshot, error) {
		return want, nil
	})

	got, err := c.Collect(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}
