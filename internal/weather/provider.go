package weather

import (
	"context"
)

// CameraSource lists the cameras to process in a run.
type CameraSource interface {
	ListCameras(ctx context.Context) ([]Camera, error)
}

// ClipFetcher downloads a camera clip to dst. A non-nil error means the
// camera is dropped from the run.
type ClipFetcher interface {
	FetchClip(ctx context.Context, clipURL, dst string) error
}

// Classifier labels the clip stored at path. It never fails; unreadable
// clips yield ConditionAnalysisFailed.
type Classifier interface {
	Classify(path string) Condition
}

// ForecastProvider returns the short-term forecast for a grid point.
// Failures degrade to ConditionUnknown.
type ForecastProvider interface {
	Forecast(ctx context.Context, p GridPoint) Condition
}

// Metrics receives per-run observations. A nil Metrics is allowed.
type Metrics interface {
	CameraRecorded(visual Condition)
	CameraDropped()
	RunCompleted(report Report)
}
