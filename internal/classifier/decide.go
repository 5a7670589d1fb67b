package classifier

import "github.com/i474232898/cctv-weather/internal/weather"

const (
	// MaxFrames caps how many frames of a clip are sampled.
	MaxFrames = 11

	// FogSharpness flags fog when any sampled frame is blurrier than this.
	FogSharpness = 80.0
	// RainEdgeRatio is the average edge density above which rain is reported.
	RainEdgeRatio = 0.1
	// SnowBrightRatio flags snow when any frame has more bright pixels than this.
	SnowBrightRatio = 0.2
	// CloudySharpness is the average sharpness below which a scene is cloudy.
	CloudySharpness = 100.0

	// Canny thresholds applied after a 3x3 median filter.
	cannyLow    = 75
	cannyHigh   = 200
	medianKSize = 3
	// Grey level above which a pixel counts as bright.
	brightCutoff = 200
)

// FrameStats holds the measurements taken from a single greyscale frame.
type FrameStats struct {
	Sharpness   float64 // variance of the Laplacian response
	Brightness  float64 // mean grey level
	EdgeRatio   float64 // edge pixels / total pixels
	BrightRatio float64 // pixels above brightCutoff / total pixels
}

// Summary aggregates the stats of every sampled frame.
type Summary struct {
	Frames        int
	AvgSharpness  float64
	AvgBrightness float64
	AvgEdgeRatio  float64
	FogDetected   bool
	SnowDetected  bool
}

// Summarize folds per-frame stats into a Summary.
func Summarize(frames []FrameStats) Summary {
	s := Summary{Frames: len(frames)}
	if len(frames) == 0 {
		return s
	}

	var sumSharp, sumBright, sumEdge float64
	for _, f := range frames {
		sumSharp += f.Sharpness
		sumBright += f.Brightness
		sumEdge += f.EdgeRatio

		if f.Sharpness < FogSharpness {
			s.FogDetected = true
		}
		if f.BrightRatio > SnowBrightRatio {
			s.SnowDetected = true
		}
	}

	n := float64(len(frames))
	s.AvgSharpness = sumSharp / n
	s.AvgBrightness = sumBright / n
	s.AvgEdgeRatio = sumEdge / n
	return s
}

// Decide maps a Summary to a condition. The first matching rule wins:
// fog, rain, snow, cloudy, clear. A clip with no decoded frames is
// reported as ConditionAnalysisFailed.
func Decide(s Summary) weather.Condition {
	switch {
	case s.Frames == 0:
		return weather.ConditionAnalysisFailed
	case s.FogDetected:
		return weather.ConditionFog
	case s.AvgEdgeRatio > RainEdgeRatio:
		return weather.ConditionRain
	case s.SnowDetected:
		return weather.ConditionSnow
	case s.AvgSharpness < CloudySharpness:
		return weather.ConditionCloudy
	default:
		return weather.ConditionClear
	}
}
