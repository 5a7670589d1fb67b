package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/cctv-weather/internal/weather"
)

type countingProvider struct {
	calls   int32
	cond    weather.Condition
	release chan struct{} // optional gate, blocks every call until closed
}

func (p *countingProvider) Forecast(ctx context.Context, pt weather.GridPoint) weather.Condition {
	atomic.AddInt32(&p.calls, 1)
	if p.release != nil {
		<-p.release
	}
	return p.cond
}

func (p *countingProvider) Calls() int {
	return int(atomic.LoadInt32(&p.calls))
}

func TestForecastCacheSequential(t *testing.T) {
	prov := &countingProvider{cond: weather.ConditionRain}
	cache := NewForecastCache(prov)
	ctx := context.Background()

	a := weather.Camera{Lat: 37.41, Lon: 127.09}.Grid()
	b := weather.Camera{Lat: 37.99, Lon: 127.01}.Grid()

	if got := cache.Forecast(ctx, a); got != weather.ConditionRain {
		t.Fatalf("expected rain, got %s", got)
	}
	if got := cache.Forecast(ctx, b); got != weather.ConditionRain {
		t.Fatalf("expected rain, got %s", got)
	}
	if prov.Calls() != 1 {
		t.Fatalf("same truncated coordinate should issue one call, got %d", prov.Calls())
	}

	c := weather.Camera{Lat: 36.5, Lon: 127.09}.Grid()
	cache.Forecast(ctx, c)
	if prov.Calls() != 2 {
		t.Fatalf("different coordinates should issue two calls, got %d", prov.Calls())
	}

	hits, misses := cache.Stats()
	if hits != 1 || misses != 2 {
		t.Fatalf("unexpected stats: hits=%d misses=%d", hits, misses)
	}
	if len(cache.entries) != 2 {
		t.Fatalf("expected 2 cached points, got %d", len(cache.entries))
	}
}

func TestForecastCacheKeepsUnknown(t *testing.T) {
	prov := &countingProvider{cond: weather.ConditionUnknown}
	cache := NewForecastCache(prov)
	pt := weather.GridPoint{X: 127, Y: 37}

	cache.Forecast(context.Background(), pt)
	cache.Forecast(context.Background(), pt)

	if prov.Calls() != 1 {
		t.Fatalf("failed forecast must not be retried within a run, got %d calls", prov.Calls())
	}
}

func TestForecastCacheConcurrentSinglePoint(t *testing.T) {
	for _, n := range []int{1, 2, 8, 32} {
		prov := &countingProvider{cond: weather.ConditionSnow, release: make(chan struct{})}
		cache := NewForecastCache(prov)
		pt := weather.GridPoint{X: 127, Y: 37}

		var wg sync.WaitGroup
		results := make([]weather.Condition, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = cache.Forecast(context.Background(), pt)
			}(i)
		}

		// Give every goroutine a chance to reach the cache before the fetch completes.
		time.Sleep(20 * time.Millisecond)
		close(prov.release)
		wg.Wait()

		if prov.Calls() != 1 {
			t.Fatalf("n=%d: expected exactly one upstream call, got %d", n, prov.Calls())
		}
		for i, r := range results {
			if r != weather.ConditionSnow {
				t.Fatalf("n=%d: goroutine %d got %s", n, i, r)
			}
		}
	}
}

func TestForecastCacheWaiterHonoursContext(t *testing.T) {
	prov := &countingProvider{cond: weather.ConditionClear, release: make(chan struct{})}
	cache := NewForecastCache(prov)
	pt := weather.GridPoint{X: 1, Y: 2}

	go cache.Forecast(context.Background(), pt)
	for prov.Calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if got := cache.Forecast(ctx, pt); got != weather.ConditionUnknown {
		t.Fatalf("expected %s for a cancelled waiter, got %s", weather.ConditionUnknown, got)
	}
	close(prov.release)
}
