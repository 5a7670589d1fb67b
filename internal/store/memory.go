package store

import (
	"errors"
	"sync"

	"github.com/i474232898/cctv-weather/internal/weather"
)

var (
	// ErrNotFound is returned when no run has been stored yet.
	ErrNotFound = errors.New("no weather run available")
)

// RecordFilter narrows the records returned by MemoryStore.Records.
type RecordFilter struct {
	Visual       weather.Condition
	MismatchOnly bool
}

// MemoryStore is a concurrency-safe in-memory holder of run reports.
type MemoryStore struct {
	mu sync.RWMutex

	reports []weather.Report

	// max number of reports kept (0 = unlimited)
	maxHistory int
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{maxHistory: maxHistory}
}

// SaveReport appends a run report and enforces retention.
func (s *MemoryStore) SaveReport(report weather.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report)

	if s.maxHistory > 0 && len(s.reports) > s.maxHistory {
		over := len(s.reports) - s.maxHistory
		s.reports = s.reports[over:]
	}
}

// Latest returns the most recent report.
func (s *MemoryStore) Latest() (weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return weather.Report{}, ErrNotFound
	}
	return s.reports[len(s.reports)-1], nil
}

// Records returns the records of the latest report matching f.
func (s *MemoryStore) Records(f RecordFilter) ([]weather.Record, error) {
	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}

	result := make([]weather.Record, 0, len(latest.Records))
	for _, r := range latest.Records {
		if f.Visual != "" && r.Visual != f.Visual {
			continue
		}
		if f.MismatchOnly && !r.Mismatch() {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}
