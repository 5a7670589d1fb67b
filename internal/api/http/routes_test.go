package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/cctv-weather/internal/metrics"
	"github.com/i474232898/cctv-weather/internal/render"
	"github.com/i474232898/cctv-weather/internal/store"
	"github.com/i474232898/cctv-weather/internal/weather"
)

func newTestApp(t *testing.T, reports ...weather.Report) *fiber.App {
	t.Helper()
	app := fiber.New()

	memStore := store.NewMemoryStore(1)
	for _, r := range reports {
		memStore.SaveReport(r)
	}

	iconDir := t.TempDir()
	icons := render.NewIconSet(iconDir)
	RegisterRoutes(app, Deps{
		Store:    memStore,
		Renderer: render.NewRenderer(icons, "/icons"),
		IconDir:  iconDir,
		Registry: metrics.New(nil).Registry,
	})
	return app
}

var sampleReport = weather.Report{
	RunID: "run-1",
	Records: []weather.Record{
		{Name: "a", Lat: 37.4, Lon: 127.1, Visual: weather.ConditionRain, Forecast: weather.ConditionRain},
		{Name: "b", Lat: 37.4, Lon: 127.1, Visual: weather.ConditionRain, Forecast: weather.ConditionClear},
		{Name: "c", Lat: 37.2, Lon: 127.0, Visual: weather.ConditionFog, Forecast: weather.ConditionCloudy},
	},
	Dropped: []weather.Drop{{Camera: "d", Reason: "download clip: unexpected status code: 404"}},
}

func TestRecordsEndpoint(t *testing.T) {
	app := newTestApp(t, sampleReport)

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"", http.StatusOK, 3},
		{"?condition=rain", http.StatusOK, 2},
		{"?mismatch=true", http.StatusOK, 2},
		{"?condition=rain&mismatch=true", http.StatusOK, 1},
		{"?condition=hail", http.StatusBadRequest, 0},
		{"?mismatch=maybe", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/records"+tt.query, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != tt.code {
			t.Fatalf("%s: expected status %d, got %d", tt.query, tt.code, resp.StatusCode)
		}
		if tt.code != http.StatusOK {
			continue
		}

		var body struct {
			Count   int              `json:"count"`
			Records []weather.Record `json:"records"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tt.query, err)
		}
		if body.Count != tt.count || len(body.Records) != tt.count {
			t.Fatalf("%s: expected %d records, got %d", tt.query, tt.count, body.Count)
		}
	}
}

func TestNoRunYet(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/records", "/api/v1/dropped", "/api/v1/summary", "/map"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusNotFound, resp.StatusCode)
		}
	}
}

func TestDroppedSummaryAndMap(t *testing.T) {
	app := newTestApp(t, sampleReport)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dropped", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("dropped: status %v, err %v", resp.StatusCode, err)
	}
	var dropped struct {
		Dropped []weather.Drop `json:"dropped"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&dropped); err != nil || len(dropped.Dropped) != 1 {
		t.Fatalf("unexpected dropped body: %+v, %v", dropped, err)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: status %v, err %v", resp.StatusCode, err)
	}
	var summary struct {
		Tally weather.Tally `json:"tally"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Tally.Mismatches != 2 || summary.Tally.Prevailing != weather.ConditionRain {
		t.Fatalf("unexpected tally: %+v", summary.Tally)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/map", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("map: status %v, err %v", resp.StatusCode, err)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "/icons/rain.png") {
		t.Fatalf("map does not reference icons under /icons")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, sampleReport)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "cctv_weather_run_duration_seconds") {
		t.Fatalf("metrics output missing run duration gauge")
	}
}
