package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonas-oms/hygrotwin/internal/config"
	"github.com/jonas-oms/hygrotwin/internal/core/port"
)

const DefaultBaseURL = "https://api.open-meteo.com"

// OpenMeteoClient fetches current outdoor conditions. Requires no API key.
// No caching: every call hits the remote API, so calls scale one-to-one
// with ingested measurements.
type OpenMeteoClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenMeteoClient(cfg config.WeatherConfig) *OpenMeteoClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := time.Duration(cfg.TimeoutMillis) * time.Millisecond
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &OpenMeteoClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OpenMeteoClient) Current(ctx context.Context, latitude, longitude float64) (*port.WeatherSample, error) {
	u := fmt.Sprintf(
		"%s/v1/forecast?latitude=%f&longitude=%f&current=temperature_2m,relative_humidity_2m,rain",
		c.baseURL, latitude, longitude,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast API returned status %d", resp.StatusCode)
	}

	var body struct {
		Current struct {
			Temperature      float64 `json:"temperature_2m"`
			RelativeHumidity float64 `json:"relative_humidity_2m"`
			Rain             float64 `json:"rain"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	return &port.WeatherSample{
		Temperature:      body.Current.Temperature,
		RelativeHumidity: body.Current.RelativeHumidity,
		Rain:             body.Current.Rain,
	}, nil
}

// ensure interface compliance
var _ port.WeatherProvider = (*OpenMeteoClient)(nil)
