package main

import (
	"net/http"
	"path/filepath"

	"github.com/i474232898/cctv-weather/internal/classifier"
	"github.com/i474232898/cctv-weather/internal/config"
	"github.com/i474232898/cctv-weather/internal/metrics"
	"github.com/i474232898/cctv-weather/internal/render"
	"github.com/i474232898/cctv-weather/internal/store"
	"github.com/i474232898/cctv-weather/internal/weather"
	"github.com/i474232898/cctv-weather/internal/weather/providers"
)

// pipeline bundles everything a run needs.
type pipeline struct {
	cfg     *config.AppConfig
	service *weather.Service
	metrics *metrics.Collector
	icons   *render.IconSet
}

func newPipeline(cfg *config.AppConfig) *pipeline {
	// Shared HTTP client for forecast calls; the timeout is applied per call.
	httpClient := &http.Client{}

	its := providers.NewITSClient(cfg.HTTPTimeout, providers.ITSConfig{
		BaseURL:  cfg.ITSBaseURL,
		APIKey:   cfg.ITSAPIKey,
		RoadType: cfg.ITSRoadType,
		CCTVType: cfg.ITSCCTVType,
		BBox:     cfg.BBox(),
	})

	kma := providers.NewKMAProvider(httpClient, cfg.HTTPTimeout, providers.KMAConfig{
		BaseURL:    cfg.ForecastBaseURL,
		ServiceKey: cfg.ForecastAPIKey,
		BaseTime:   cfg.ForecastBaseTime,
		Rows:       cfg.ForecastRows,
	})

	// One cache per process, and a process performs one run.
	forecasts := store.NewForecastCache(kma)
	collector := metrics.New(forecasts)

	svc := weather.NewService(its, its, classifier.New(classifier.MaxFrames), forecasts, weather.Options{
		ClipDir: cfg.ClipDir,
		Workers: cfg.Workers,
		Metrics: collector,
	})

	return &pipeline{
		cfg:     cfg,
		service: svc,
		metrics: collector,
		icons:   render.NewIconSet(cfg.IconDir),
	}
}

// mapIconURL returns the icon directory relative to the map file, so the
// written page works when opened from disk.
func mapIconURL(mapFile, iconDir string) string {
	absMap, err1 := filepath.Abs(mapFile)
	absIcons, err2 := filepath.Abs(iconDir)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(iconDir)
	}
	rel, err := filepath.Rel(filepath.Dir(absMap), absIcons)
	if err != nil {
		return filepath.ToSlash(absIcons)
	}
	return filepath.ToSlash(rel)
}
