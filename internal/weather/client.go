// Package weather wraps the OpenWeatherMap current-weather API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrCityNotFound is returned for an unknown city name.
var ErrCityNotFound = errors.New("city not found")

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Report is the condensed current-weather answer the planner surfaces.
type Report struct {
	City        string  `json:"city"`
	Description string  `json:"description"`
	TempC       float64 `json:"temp_c"`
	FeelsLikeC  float64 `json:"feels_like_c"`
	Humidity    int     `json:"humidity"`
	WindMS      float64 `json:"wind_ms"`
	IconClass   string  `json:"icon_class"`
}

// Client calls the OpenWeatherMap API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a weather client. The underlying HTTP client carries a
// bounded timeout so a slow upstream cannot stall a request handler.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// ByCity fetches current weather for a city name.
func (c *Client) ByCity(ctx context.Context, city string) (*Report, error) {
	q := url.Values{}
	q.Set("q", city)
	return c.fetch(ctx, q)
}

// ByCoordinates fetches current weather for a lat/lon pair.
func (c *Client) ByCoordinates(ctx context.Context, lat, lon float64) (*Report, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%.4f", lat))
	q.Set("lon", fmt.Sprintf("%.4f", lon))
	return c.fetch(ctx, q)
}

func (c *Client) fetch(ctx context.Context, q url.Values) (*Report, error) {
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCityNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api: %s", resp.Status)
	}

	var raw owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	rep := &Report{
		City:       raw.Name,
		TempC:      raw.Main.Temp,
		FeelsLikeC: raw.Main.FeelsLike,
		Humidity:   raw.Main.Humidity,
		WindMS:     raw.Wind.Speed,
	}
	if len(raw.Weather) > 0 {
		rep.Description = raw.Weather[0].Description
		isDay := len(raw.Weather[0].Icon) > 0 && raw.Weather[0].Icon[len(raw.Weather[0].Icon)-1] == 'd'
		rep.IconClass = IconClass(raw.Weather[0].ID, isDay)
	}
	return rep, nil
}

// IconClass maps an OpenWeatherMap condition ID to a weather-icons CSS class.
func IconClass(weatherID int, isDay bool) string {
	switch {
	case weatherID >= 200 && weatherID <= 232:
		return "wi-thunderstorm"
	case weatherID >= 300 && weatherID <= 321:
		return "wi-sprinkle"
	case weatherID >= 500 && weatherID <= 531:
		return "wi-rain"
	case weatherID >= 600 && weatherID <= 622:
		return "wi-snow"
	case weatherID >= 701 && weatherID <= 781:
		return "wi-fog"
	case weatherID == 800:
		if isDay {
			return "wi-day-sunny"
		}
		return "wi-night-clear"
	case weatherID == 801 || weatherID == 802:
		if isDay {
			return "wi-day-cloudy"
		}
		return "wi-night-alt-cloudy"
	case weatherID == 803 || weatherID == 804:
		return "wi-cloudy"
	default:
		return "wi-na"
	}
}
