package store

import (
	"context"
	"sync"

	"github.com/i474232898/cctv-weather/internal/weather"
)

// forecastEntry is one cached forecast. done is closed once cond is set.
type forecastEntry struct {
	done chan struct{}
	cond weather.Condition
}

// ForecastCache memoizes forecasts per truncated coordinate for the
// duration of a run. Concurrent lookups for the same point share a single
// upstream call. Results are kept whatever they are, ConditionUnknown
// included, so a failed point is not retried within the run.
type ForecastCache struct {
	provider weather.ForecastProvider

	mu      sync.Mutex
	entries map[weather.GridPoint]*forecastEntry
	hits    int
	misses  int
}

// NewForecastCache wraps provider with a per-point cache.
func NewForecastCache(provider weather.ForecastProvider) *ForecastCache {
	return &ForecastCache{
		provider: provider,
		entries:  make(map[weather.GridPoint]*forecastEntry),
	}
}

// Forecast implements weather.ForecastProvider.
func (c *ForecastCache) Forecast(ctx context.Context, p weather.GridPoint) weather.Condition {
	c.mu.Lock()
	if e, ok := c.entries[p]; ok {
		c.hits++
		c.mu.Unlock()

		select {
		case <-e.done:
			return e.cond
		case <-ctx.Done():
			return weather.ConditionUnknown
		}
	}

	e := &forecastEntry{done: make(chan struct{}), cond: weather.ConditionUnknown}
	c.entries[p] = e
	c.misses++
	c.mu.Unlock()

	defer close(e.done)
	e.cond = c.provider.Forecast(ctx, p)
	return e.cond
}

// Stats returns the number of lookups served from the cache and the number
// that went upstream.
func (c *ForecastCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
