package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/cctv-weather/internal/weather/providers"
)

type AppConfig struct {
	ITSAPIKey      string `mapstructure:"its_api_key" validate:"required"`
	ForecastAPIKey string `mapstructure:"forecast_api_key" validate:"required"`

	ITSBaseURL      string `mapstructure:"its_base_url" validate:"required,url"`
	ITSRoadType     string `mapstructure:"its_road_type" validate:"oneof=ex its"`
	ITSCCTVType     string `mapstructure:"its_cctv_type" validate:"required,numeric"`
	ForecastBaseURL string `mapstructure:"forecast_base_url" validate:"required,url"`

	// ForecastBaseTime is the forecast cycle identifier (HHMM) every query targets.
	ForecastBaseTime string `mapstructure:"forecast_base_time" validate:"len=4,numeric"`
	ForecastRows     int    `mapstructure:"forecast_rows" validate:"min=1,max=1000"`

	// Listing bounding box (longitude X, latitude Y).
	BBoxMinX float64 `mapstructure:"bbox_min_x" validate:"longitude"`
	BBoxMaxX float64 `mapstructure:"bbox_max_x" validate:"longitude,gtfield=BBoxMinX"`
	BBoxMinY float64 `mapstructure:"bbox_min_y" validate:"latitude"`
	BBoxMaxY float64 `mapstructure:"bbox_max_y" validate:"latitude,gtfield=BBoxMinY"`

	// HTTPTimeout bounds every outbound call (listing, clip, forecast).
	HTTPTimeout time.Duration `mapstructure:"http_timeout" validate:"gt=0"`

	// Workers bounds concurrent cameras; 0 picks min(8, 2*CPUs).
	Workers int `mapstructure:"workers" validate:"min=0,max=64"`

	ClipDir     string `mapstructure:"clip_dir" validate:"required"`
	IconDir     string `mapstructure:"icon_dir" validate:"required"`
	MapFile     string `mapstructure:"map_file" validate:"required"`
	MetricsFile string `mapstructure:"metrics_file"`

	Port string `mapstructure:"port" validate:"required,numeric"`
}

var defaults = map[string]interface{}{
	"its_base_url":       providers.DefaultITSBaseURL,
	"its_road_type":      "ex",
	"its_cctv_type":      "2",
	"forecast_base_url":  providers.DefaultKMABaseURL,
	"forecast_base_time": "0800",
	"forecast_rows":      50,
	"bbox_min_x":         126.953356,
	"bbox_max_x":         127.147719,
	"bbox_min_y":         37.3897,
	"bbox_max_y":         37.447492,
	"http_timeout":       "10s",
	"workers":            0,
	"clip_dir":           "./videos",
	"icon_dir":           "./icons",
	"map_file":           "./cctv_weather_map.html",
	"metrics_file":       "",
	"port":               "8080",
	"its_api_key":        "",
	"forecast_api_key":   "",
}

// Load reads configuration from .env, an optional config file and the
// environment, in increasing order of precedence, and validates it.
func Load(cfgFile string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// BBox returns the listing bounding box.
func (c *AppConfig) BBox() providers.BoundingBox {
	return providers.BoundingBox{
		MinX: c.BBoxMinX,
		MaxX: c.BBoxMaxX,
		MinY: c.BBoxMinY,
		MaxY: c.BBoxMaxY,
	}
}
