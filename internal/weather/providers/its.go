package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/i474232898/cctv-weather/internal/weather"
)

// DefaultITSBaseURL is the road-camera listing endpoint.
const DefaultITSBaseURL = "https://openapi.its.go.kr:9443/cctvInfo"

// ErrListing marks a failed camera listing request.
var ErrListing = errors.New("camera listing failed")

// BoundingBox limits the listing to cameras inside it.
type BoundingBox struct {
	MinX float64
	MaxX float64
	MinY float64
	MaxY float64
}

// ITSConfig configures the camera listing client.
type ITSConfig struct {
	BaseURL  string
	APIKey   string
	RoadType string // "ex" for expressways, "its" for national roads
	CCTVType string // "2" for short video clips
	BBox     BoundingBox
}

// ITSClient lists cameras and downloads their clips.
type ITSClient struct {
	http     *resty.Client
	cfg      ITSConfig
	validate *validator.Validate
}

func NewITSClient(timeout time.Duration, cfg ITSConfig) *ITSClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultITSBaseURL
	}
	if cfg.RoadType == "" {
		cfg.RoadType = "ex"
	}
	if cfg.CCTVType == "" {
		cfg.CCTVType = "2"
	}

	r := resty.New()
	r.SetTimeout(timeout)

	return &ITSClient{
		http:     r,
		cfg:      cfg,
		validate: validator.New(),
	}
}

type itsListResponse struct {
	Response struct {
		DataCount int       `json:"datacount"`
		Data      []itsCCTV `json:"data"`
	} `json:"response"`
}

type itsCCTV struct {
	Name   string    `json:"cctvname"`
	CoordX flexFloat `json:"coordx"`
	CoordY flexFloat `json:"coordy"`
	URL    string    `json:"cctvurl"`
}

// ListCameras fetches the cameras inside the configured bounding box.
// Entries that fail validation are logged and skipped.
func (c *ITSClient) ListCameras(ctx context.Context) ([]weather.Camera, error) {
	var respData itsListResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"apiKey":   c.cfg.APIKey,
			"type":     c.cfg.RoadType,
			"cctvType": c.cfg.CCTVType,
			"minX":     formatCoord(c.cfg.BBox.MinX),
			"maxX":     formatCoord(c.cfg.BBox.MaxX),
			"minY":     formatCoord(c.cfg.BBox.MinY),
			"maxY":     formatCoord(c.cfg.BBox.MaxY),
			"getType":  "json",
		}).
		SetResult(&respData).
		ForceContentType("application/json").
		Get(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListing, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrListing, resp.StatusCode())
	}

	cameras := make([]weather.Camera, 0, len(respData.Response.Data))
	for _, item := range respData.Response.Data {
		cam := weather.Camera{
			Name:    item.Name,
			Lat:     float64(item.CoordY),
			Lon:     float64(item.CoordX),
			ClipURL: item.URL,
		}
		if err := c.validate.Struct(cam); err != nil {
			log.Printf("its: skipping camera %q: %v", item.Name, err)
			continue
		}
		cameras = append(cameras, cam)
	}

	return cameras, nil
}

// FetchClip percent-decodes clipURL and streams the clip into dst.
func (c *ITSClient) FetchClip(ctx context.Context, clipURL, dst string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(decodeClipURL(clipURL))
	if err != nil {
		return fmt.Errorf("download clip: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("download clip: %w: %d", errUnexpected, resp.StatusCode())
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create clip file: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("write clip file: %w", err)
	}
	return f.Close()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// flexFloat accepts a JSON number or a numeric string. Anything else
// decodes to NaN so the entry fails validation instead of the whole listing.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v = math.NaN()
	}
	*f = flexFloat(v)
	return nil
}

// decodeClipURL percent-decodes raw. Malformed escapes are left as they are.
func decodeClipURL(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
