package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/cctv-weather/internal/weather"
)

// DefaultKMABaseURL is the short-term (village) forecast endpoint.
const DefaultKMABaseURL = "http://apis.data.go.kr/1360000/VilageFcstInfoService_2.0/getVilageFcst"

var errMissingItems = errors.New("forecast response has no items")

// KMAConfig configures the short-term forecast provider.
type KMAConfig struct {
	BaseURL    string
	ServiceKey string
	// BaseTime identifies the scheduled forecast cycle to query, as HHMM.
	BaseTime string
	Rows     int
}

// KMAProvider implements weather.ForecastProvider for the Korea
// Meteorological Administration village forecast service.
type KMAProvider struct {
	name    string
	cfg     KMAConfig
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewKMAProvider(client *http.Client, timeout time.Duration, cfg KMAConfig) *KMAProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultKMABaseURL
	}
	if cfg.BaseTime == "" {
		cfg.BaseTime = "0800"
	}
	if cfg.Rows <= 0 {
		cfg.Rows = 50
	}

	return &KMAProvider{
		name: "kma",
		cfg:  cfg,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Timeout: timeout,
		},
		circuit: newCircuitBreaker("kma"),
		now:     time.Now,
	}
}

// Forecast returns the forecast condition for pt. Any failure is logged and
// reported as weather.ConditionUnknown.
func (p *KMAProvider) Forecast(ctx context.Context, pt weather.GridPoint) weather.Condition {
	cond, err := p.Fetch(ctx, pt)
	if err != nil {
		log.Printf("forecast: %s request failed for %s: %v", p.name, pt.Key(), err)
		return weather.ConditionUnknown
	}
	return cond
}

// Fetch queries the forecast service and maps the result.
func (p *KMAProvider) Fetch(ctx context.Context, pt weather.GridPoint) (weather.Condition, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(pt), nil)
	}

	var payload kmaResponse
	err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest, func(resp *http.Response) error {
		return json.NewDecoder(resp.Body).Decode(&payload)
	})
	if err != nil {
		return weather.ConditionUnknown, err
	}

	if payload.Response == nil || payload.Response.Body == nil ||
		payload.Response.Body.Items == nil || payload.Response.Body.Items.Item == nil {
		return weather.ConditionUnknown, errMissingItems
	}

	values := make(map[string]string, len(payload.Response.Body.Items.Item))
	for _, it := range payload.Response.Body.Items.Item {
		values[it.Category] = string(it.FcstValue)
	}

	return mapKMACondition(values)
}

// requestURL builds the query. The service key is issued already
// percent-encoded and is appended verbatim.
func (p *KMAProvider) requestURL(pt weather.GridPoint) string {
	values := url.Values{}
	values.Set("numOfRows", strconv.Itoa(p.cfg.Rows))
	values.Set("pageNo", "1")
	values.Set("dataType", "JSON")
	values.Set("base_date", p.now().Format("20060102"))
	values.Set("base_time", p.cfg.BaseTime)
	values.Set("nx", strconv.Itoa(pt.X))
	values.Set("ny", strconv.Itoa(pt.Y))

	return fmt.Sprintf("%s?serviceKey=%s&%s", p.cfg.BaseURL, p.cfg.ServiceKey, values.Encode())
}

type kmaResponse struct {
	Response *struct {
		Body *struct {
			Items *struct {
				Item []kmaItem `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type kmaItem struct {
	Category  string    `json:"category"`
	FcstValue flexValue `json:"fcstValue"`
}

// flexValue accepts a JSON string or number.
type flexValue string

func (v *flexValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = flexValue(s)
		return nil
	}
	*v = flexValue(b)
	return nil
}

// mapKMACondition maps sky state (SKY) and precipitation type (PTY) codes.
// SKY: 1 clear, 3 mostly cloudy, 4 overcast. PTY: 0 none, 1 rain,
// 2 rain/snow, 3 snow. PTY overrides SKY.
func mapKMACondition(values map[string]string) (weather.Condition, error) {
	sky, err := codeOr(values, "SKY", 1)
	if err != nil {
		return weather.ConditionUnknown, err
	}
	pty, err := codeOr(values, "PTY", 0)
	if err != nil {
		return weather.ConditionUnknown, err
	}

	cond := weather.ConditionClear
	switch sky {
	case 3, 4:
		cond = weather.ConditionCloudy
	}

	switch pty {
	case 1:
		cond = weather.ConditionRain
	case 2, 3:
		cond = weather.ConditionSnow
	}

	return cond, nil
}

func codeOr(values map[string]string, category string, def int) (int, error) {
	v, ok := values[category]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", category, v, err)
	}
	return n, nil
}
