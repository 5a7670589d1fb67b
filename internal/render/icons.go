package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/i474232898/cctv-weather/internal/weather"
)

// FallbackIcon is used for failed analyses and unrecognised conditions.
const FallbackIcon = "error.png"

var iconFiles = map[weather.Condition]string{
	weather.ConditionClear:  "clear.png",
	weather.ConditionCloudy: "cloudy.png",
	weather.ConditionRain:   "rain.png",
	weather.ConditionSnow:   "snow.png",
	weather.ConditionFog:    "fog.png",
}

// IconFor returns the icon file name for a visual classification.
func IconFor(visual weather.Condition) string {
	if name, ok := iconFiles[visual]; ok {
		return name
	}
	return FallbackIcon
}

// invertedName returns the file name of the inverted variant of icon.
func invertedName(icon string) string {
	ext := filepath.Ext(icon)
	return strings.TrimSuffix(icon, ext) + "_inverted" + ext
}

// IconSet resolves icon files in a directory and produces inverted
// variants on demand.
type IconSet struct {
	dir string
	mu  sync.Mutex
}

func NewIconSet(dir string) *IconSet {
	return &IconSet{dir: dir}
}

// Resolve returns the icon file name to use for rec. When the camera and
// the forecast disagree an inverted icon is used; if it cannot be produced
// the original icon is returned.
func (s *IconSet) Resolve(rec weather.Record) string {
	icon := IconFor(rec.Visual)
	if !rec.Mismatch() {
		return icon
	}

	inverted, err := s.invert(icon)
	if err != nil {
		log.Printf("render: inverting %s failed, using original: %v", icon, err)
		return icon
	}
	return inverted
}

// invert writes the inverted variant of icon once and reuses it afterwards.
func (s *IconSet) invert(icon string) (string, error) {
	name := invertedName(icon)
	dst := filepath.Join(s.dir, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(dst); err == nil {
		return name, nil
	}

	src := gocv.IMRead(filepath.Join(s.dir, icon), gocv.IMReadColor)
	defer src.Close()
	if src.Empty() {
		return "", fmt.Errorf("cannot read icon %s", icon)
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.BitwiseNot(src, &out)

	if ok := gocv.IMWrite(dst, out); !ok {
		return "", fmt.Errorf("cannot write %s", dst)
	}
	return name, nil
}
