// Package classifier labels road-camera clips by weather using simple
// image statistics over the first frames of the clip.
package classifier

import (
	"fmt"
	"log"
	"math"

	"gocv.io/x/gocv"

	"github.com/i474232898/cctv-weather/internal/weather"
)

// Classifier implements weather.Classifier on top of OpenCV.
type Classifier struct {
	maxFrames int
}

// New creates a Classifier sampling at most maxFrames frames per clip.
// Values <= 0 fall back to MaxFrames.
func New(maxFrames int) *Classifier {
	if maxFrames <= 0 {
		maxFrames = MaxFrames
	}
	return &Classifier{maxFrames: maxFrames}
}

// Classify opens the clip at path, samples its first frames and returns
// the resulting condition.
func (c *Classifier) Classify(path string) weather.Condition {
	stats, err := c.Sample(path)
	if err != nil {
		log.Printf("classifier: %v", err)
		return weather.ConditionAnalysisFailed
	}
	return Decide(Summarize(stats))
}

// Sample decodes up to maxFrames frames and measures each of them.
// It stops early at end of stream or on the first undecodable frame.
func (c *Classifier) Sample(path string) ([]FrameStats, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if capture != nil {
		defer capture.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if !capture.IsOpened() {
		return nil, fmt.Errorf("open %s: capture not opened", path)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	stats := make([]FrameStats, 0, c.maxFrames)
	for len(stats) < c.maxFrames {
		if ok := capture.Read(&frame); !ok || frame.Empty() {
			break
		}

		fs, err := Measure(frame)
		if err != nil {
			log.Printf("classifier: frame %d of %s: %v", len(stats), path, err)
			break
		}
		stats = append(stats, fs)
	}

	return stats, nil
}

// Measure computes FrameStats for a BGR (or already greyscale) frame.
func Measure(frame gocv.Mat) (FrameStats, error) {
	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else if err := gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray); err != nil {
		return FrameStats{}, fmt.Errorf("failed to convert frame to grayscale: %v", err)
	}

	total := float64(gray.Total())
	if total == 0 {
		return FrameStats{}, fmt.Errorf("frame is empty")
	}

	// Sharpness: variance of the Laplacian.
	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	gocv.MeanStdDev(lap, &mean, &stdDev)
	sd := stdDev.GetDoubleAt(0, 0)

	// Edge density after denoising.
	denoised := gocv.NewMat()
	defer denoised.Close()
	gocv.MedianBlur(gray, &denoised, medianKSize)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(denoised, &edges, cannyLow, cannyHigh)

	// Bright pixels.
	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, brightCutoff, 255, gocv.ThresholdBinary)

	return FrameStats{
		Sharpness:   math.Pow(sd, 2),
		Brightness:  gray.Mean().Val1,
		EdgeRatio:   float64(gocv.CountNonZero(edges)) / total,
		BrightRatio: float64(gocv.CountNonZero(bright)) / total,
	}, nil
}
