package weather

import (
	"strconv"
	"time"
)

// Condition represents a normalized high-level weather condition.
// Visual classification produces Clear, Cloudy, Rain, Snow, Fog or
// AnalysisFailed; the forecast produces Clear, Cloudy, Rain, Snow or Unknown.
type Condition string

const (
	ConditionUnknown        Condition = "unknown"
	ConditionClear          Condition = "clear"
	ConditionCloudy         Condition = "cloudy"
	ConditionRain           Condition = "rain"
	ConditionSnow           Condition = "snow"
	ConditionFog            Condition = "fog"
	ConditionAnalysisFailed Condition = "analysis_failed"
)

// Conditions lists every value a Condition may take.
var Conditions = []Condition{
	ConditionClear,
	ConditionCloudy,
	ConditionRain,
	ConditionSnow,
	ConditionFog,
	ConditionAnalysisFailed,
	ConditionUnknown,
}

// Camera identifies one road camera and where it is.
// Values are read-only once parsed from the listing.
type Camera struct {
	Name    string  `json:"name" validate:"required"`
	Lat     float64 `json:"lat" validate:"latitude"`
	Lon     float64 `json:"lon" validate:"longitude"`
	ClipURL string  `json:"-" validate:"required"`
}

// Grid returns the integer-truncated coordinate of the camera.
func (c Camera) Grid() GridPoint {
	return GridPoint{X: int(c.Lon), Y: int(c.Lat)}
}

// GridPoint is a truncated coordinate. X comes from longitude and Y from
// latitude, which is also how the forecast service indexes its grid.
type GridPoint struct {
	X int `json:"nx"`
	Y int `json:"ny"`
}

// Key returns a canonical string key for the point.
func (g GridPoint) Key() string {
	return strconv.Itoa(g.X) + ":" + strconv.Itoa(g.Y)
}

// Record is the per-camera result handed to the output stage.
type Record struct {
	Name     string    `json:"name"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
	Visual   Condition `json:"visual"`
	Forecast Condition `json:"forecast"`
}

// Mismatch reports whether the camera view disagrees with the forecast.
func (r Record) Mismatch() bool {
	return r.Visual != r.Forecast
}

// Drop describes a camera that produced no record.
type Drop struct {
	Camera string `json:"camera"`
	Reason string `json:"reason"`
}

// Report is the outcome of a single run.
type Report struct {
	RunID    string    `json:"runId"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Records  []Record  `json:"records"`
	Dropped  []Drop    `json:"dropped,omitempty"`
}
