package weather

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxWorkers caps the default worker count.
const MaxWorkers = 8

// DefaultWorkers returns min(MaxWorkers, 2 * available CPUs).
func DefaultWorkers() int {
	n := 2 * runtime.NumCPU()
	if n > MaxWorkers {
		n = MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Options tunes a Service.
type Options struct {
	// ClipDir is where clips are downloaded. It is swept after every run.
	ClipDir string
	// Workers bounds how many cameras are processed at once; <= 0 uses DefaultWorkers.
	Workers int
	Metrics Metrics
}

// Service runs the per-camera pipeline over a camera listing.
type Service struct {
	cameras    CameraSource
	clips      ClipFetcher
	classifier Classifier
	forecasts  ForecastProvider

	clipDir string
	workers int
	metrics Metrics
}

// NewService creates a new Service. forecasts is expected to be cached
// per coordinate; see store.ForecastCache.
func NewService(cameras CameraSource, clips ClipFetcher, classifier Classifier, forecasts ForecastProvider, opts Options) *Service {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Service{
		cameras:    cameras,
		clips:      clips,
		classifier: classifier,
		forecasts:  forecasts,
		clipDir:    opts.ClipDir,
		workers:    workers,
		metrics:    metrics,
	}
}

// Run fetches the camera listing and processes every camera in it.
// Only a listing failure is returned as an error; per-camera failures are
// reported in Report.Dropped. The clip directory is swept on every exit.
func (s *Service) Run(ctx context.Context) (Report, error) {
	runID := uuid.NewString()
	defer s.sweep(runID)

	log.Printf("INFO: run %s: fetching camera listing", runID)
	cams, err := s.cameras.ListCameras(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("run %s: %w", runID, err)
	}
	log.Printf("INFO: run %s: %d cameras listed, %d workers", runID, len(cams), s.workers)

	return s.Process(ctx, runID, cams), nil
}

// Process runs the pipeline for cams with bounded parallelism and blocks
// until every camera has finished.
func (s *Service) Process(ctx context.Context, runID string, cams []Camera) Report {
	report := Report{
		RunID:   runID,
		Started: time.Now().UTC(),
		Records: make([]Record, 0, len(cams)),
	}

	if err := os.MkdirAll(s.clipDir, 0755); err != nil {
		log.Printf("ERROR: run %s: cannot create clip dir %s: %v", runID, s.clipDir, err)
	}

	workers := s.workers
	if workers > len(cams) {
		workers = len(cams)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		jobs = make(chan Camera)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cam := range jobs {
				rec, err := s.processCamera(ctx, runID, cam)

				mu.Lock()
				if err != nil {
					log.Printf("WARN: run %s: dropping camera %q: %v", runID, cam.Name, err)
					report.Dropped = append(report.Dropped, Drop{Camera: cam.Name, Reason: err.Error()})
					s.metrics.CameraDropped()
				} else {
					report.Records = append(report.Records, rec)
					s.metrics.CameraRecorded(rec.Visual)
				}
				mu.Unlock()
			}
		}()
	}

	for _, cam := range cams {
		jobs <- cam
	}
	close(jobs)
	wg.Wait()

	report.Finished = time.Now().UTC()
	s.metrics.RunCompleted(report)

	log.Printf("INFO: run %s: %d records, %d dropped in %s",
		runID, len(report.Records), len(report.Dropped), report.Finished.Sub(report.Started).Round(time.Millisecond))
	return report
}

// sweep removes any clip left behind in the clip directory.
func (s *Service) sweep(runID string) {
	matches, err := filepath.Glob(filepath.Join(s.clipDir, "*"+ClipExt))
	if err != nil {
		log.Printf("ERROR: run %s: sweep %s: %v", runID, s.clipDir, err)
		return
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			log.Printf("ERROR: run %s: deleting %s: %v", runID, m, err)
			continue
		}
		log.Printf("DEBUG: run %s: swept leftover clip %s", runID, m)
	}
}

type noopMetrics struct{}

func (noopMetrics) CameraRecorded(Condition) {}
func (noopMetrics) CameraDropped()           {}
func (noopMetrics) RunCompleted(Report)      {}
