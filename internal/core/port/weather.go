package port

import "context"

// WeatherSample is a current-conditions reading from the forecast API.
type WeatherSample struct {
	Temperature      float64
	RelativeHumidity float64
	Rain             float64
}

type WeatherProvider interface {
	Current(ctx context.Context, latitude, longitude float64) (*WeatherSample, error)
}
