package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/i474232898/cctv-weather/internal/weather"
)

func TestIconFor(t *testing.T) {
	tests := []struct {
		cond weather.Condition
		want string
	}{
		{weather.ConditionClear, "clear.png"},
		{weather.ConditionCloudy, "cloudy.png"},
		{weather.ConditionRain, "rain.png"},
		{weather.ConditionSnow, "snow.png"},
		{weather.ConditionFog, "fog.png"},
		{weather.ConditionAnalysisFailed, FallbackIcon},
		{weather.Condition("hail"), FallbackIcon},
	}
	for _, tt := range tests {
		if got := IconFor(tt.cond); got != tt.want {
			t.Errorf("IconFor(%s) = %s, want %s", tt.cond, got, tt.want)
		}
	}
}

func TestResolveMismatchFallsBackWhenIconMissing(t *testing.T) {
	icons := NewIconSet(t.TempDir())

	rec := weather.Record{Name: "a", Visual: weather.ConditionRain, Forecast: weather.ConditionClear}
	if got := icons.Resolve(rec); got != "rain.png" {
		t.Fatalf("expected original icon when inversion fails, got %s", got)
	}
}

func TestResolveReusesExistingInvertedIcon(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "fog_inverted.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	icons := NewIconSet(dir)

	rec := weather.Record{Name: "a", Visual: weather.ConditionFog, Forecast: weather.ConditionUnknown}
	if got := icons.Resolve(rec); got != "fog_inverted.png" {
		t.Fatalf("expected inverted icon, got %s", got)
	}

	same := weather.Record{Name: "b", Visual: weather.ConditionFog, Forecast: weather.ConditionFog}
	if got := icons.Resolve(same); got != "fog.png" {
		t.Fatalf("matching record should use the plain icon, got %s", got)
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(NewIconSet(t.TempDir()), "icons")

	var buf bytes.Buffer
	err := r.Render(&buf, []weather.Record{
		{Name: "Pangyo", Lat: 37.41, Lon: 127.09, Visual: weather.ConditionSnow, Forecast: weather.ConditionSnow},
		{Name: "Yangjae", Lat: 37.46, Lon: 127.03, Visual: weather.ConditionAnalysisFailed, Forecast: weather.ConditionClear},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page := buf.String()
	for _, want := range []string{"Pangyo", "Yangjae", "snow.png", "error.png", "L.map('map')"} {
		if !strings.Contains(page, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}
