package weather

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/i474232898/cctv-weather/internal/common"
)

// ClipExt is the extension given to downloaded clips.
const ClipExt = ".mp4"

// clipFileName builds a unique, filesystem-safe file name for a camera clip.
func clipFileName(cameraName string) string {
	return common.SanitizeName(cameraName) + "-" + uuid.NewString()[:8] + ClipExt
}

// processCamera downloads, classifies and cross-checks one camera. The clip
// file is removed on every path that reached the download.
func (s *Service) processCamera(ctx context.Context, runID string, cam Camera) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing: %v", r)
		}
	}()

	path := filepath.Join(s.clipDir, clipFileName(cam.Name))
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("ERROR: run %s: deleting clip %s: %v", runID, path, rmErr)
		}
	}()

	if err := s.clips.FetchClip(ctx, cam.ClipURL, path); err != nil {
		return Record{}, err
	}

	visual := s.classifier.Classify(path)
	forecast := s.forecasts.Forecast(ctx, cam.Grid())

	log.Printf("DEBUG: run %s: %s visual=%s forecast=%s", runID, cam.Name, visual, forecast)

	return Record{
		Name:     cam.Name,
		Lat:      cam.Lat,
		Lon:      cam.Lon,
		Visual:   visual,
		Forecast: forecast,
	}, nil
}
