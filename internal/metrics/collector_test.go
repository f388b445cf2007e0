package metrics_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsRequests(t *testing.T) {
	c := metrics.NewCollector()

	c.RecordRequest(metrics.OpResearchList, 10*time.Millisecond, nil)
	c.RecordRequest(metrics.OpResearchList, 30*time.Millisecond, nil)
	c.RecordRequest(metrics.OpResearchList, 20*time.Millisecond, errors.New("boom"))
	c.RecordRequest(metrics.OpCurationGet, 5*time.Millisecond, nil)

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 2)

	// sorted by op name
	assert.Equal(t, metrics.OpCurationGet, snap.Operations[0].Op)
	list := snap.Operations[1]
	assert.Equal(t, metrics.OpResearchList, list.Op)
	assert.Equal(t, int64(3), list.Count)
	assert.Equal(t, int64(1), list.Errors)
	assert.Equal(t, int64(10), list.MinTimeMs)
	assert.Equal(t, int64(30), list.MaxTimeMs)
	assert.InDelta(t, 20.0, list.AvgTimeMs, 0.01)

	requests, errs := snap.Total()
	assert.Equal(t, int64(4), requests)
	assert.Equal(t, int64(1), errs)
}

func TestCollectorEmpty(t *testing.T) {
	snap := metrics.NewCollector().Snapshot()
	assert.Empty(t, snap.Operations)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *metrics.Collector
	c.RecordRequest(metrics.OpHealth, time.Millisecond, nil)
	assert.Empty(t, c.Snapshot().Operations)
}

func TestCollectorConcurrent(t *testing.T) {
	c := metrics.NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordRequest(metrics.OpProductionGet, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 1)
	assert.Equal(t, int64(50), snap.Operations[0].Count)
}
