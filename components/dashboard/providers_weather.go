package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// WeatherProvider resolves a city to coordinates and then fetches the current
// conditions there. The forecast request is only issued after a successful
// geocode.
type WeatherProvider struct {
	client      JSONGetter
	geocodeURL  string
	forecastURL string
}

// NewWeatherProvider builds the Open-Meteo backed provider.
func NewWeatherProvider(client JSONGetter, geocodeURL, forecastURL string) *WeatherProvider {
	return &WeatherProvider{client: client, geocodeURL: geocodeURL, forecastURL: forecastURL}
}

// Place is a geocoded location.
type Place struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// CurrentConditions is the subset of the forecast used by the widget.
type CurrentConditions struct {
	Temperature float64
	WindSpeed   float64
	Humidity    float64
}

type geocodeResponse struct {
	Results []struct {
		Name      string   `json:"name"`
		Country   string   `json:"country"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current *struct {
		Temperature *float64 `json:"temperature_2m"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
		Humidity    *float64 `json:"relative_humidity_2m"`
	} `json:"current"`
}

// LoadingMessage satisfies LoadingMessager.
func (p *WeatherProvider) LoadingMessage(meta WidgetContext) string {
	return `Fetching weather for "` + meta.Input + `"…`
}

// Fetch geocodes the input city and renders its current conditions.
func (p *WeatherProvider) Fetch(ctx context.Context, meta WidgetContext) (Fragment, error) {
	place, err := p.Geocode(ctx, meta.Input)
	if err != nil {
		return Fragment{}, err
	}
	current, err := p.Current(ctx, place)
	if err != nil {
		return Fragment{}, err
	}
	return renderWeather(place, current), nil
}

// Geocode resolves a place name to its first match.
func (p *WeatherProvider) Geocode(ctx context.Context, name string) (Place, error) {
	endpoint, err := withQuery(p.geocodeURL, url.Values{
		"name":  {name},
		"count": {"1"},
	})
	if err != nil {
		return Place{}, err
	}
	payload, err := FetchJSON[geocodeResponse](ctx, p.client, "Geocoding API", endpoint, nil)
	if err != nil {
		return Place{}, err
	}
	if len(payload.Results) == 0 {
		return Place{}, InputError("City not found.", nil)
	}
	first := payload.Results[0]
	if first.Latitude == nil || first.Longitude == nil || strings.TrimSpace(first.Name) == "" {
		return Place{}, ShapeError("Geocoding result is missing coordinates.")
	}
	label := first.Name
	if first.Country != "" {
		label += ", " + first.Country
	}
	return Place{Latitude: *first.Latitude, Longitude: *first.Longitude, Label: label}, nil
}

// Current fetches the current conditions at place.
func (p *WeatherProvider) Current(ctx context.Context, place Place) (CurrentConditions, error) {
	endpoint, err := withQuery(p.forecastURL, url.Values{
		"latitude":  {strconv.FormatFloat(place.Latitude, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(place.Longitude, 'f', -1, 64)},
		"current":   {"temperature_2m,wind_speed_10m,relative_humidity_2m"},
	})
	if err != nil {
		return CurrentConditions{}, err
	}
	payload, err := FetchJSON[forecastResponse](ctx, p.client, "Forecast API", endpoint, nil)
	if err != nil {
		return CurrentConditions{}, err
	}
	cur := payload.Current
	if cur == nil || cur.Temperature == nil || cur.WindSpeed == nil || cur.Humidity == nil {
		return CurrentConditions{}, ShapeError("No current weather data.")
	}
	return CurrentConditions{
		Temperature: *cur.Temperature,
		WindSpeed:   *cur.WindSpeed,
		Humidity:    *cur.Humidity,
	}, nil
}

func renderWeather(place Place, current CurrentConditions) Fragment {
	return Fragment{
		Title:    fmt.Sprintf("%d°C", roundHalfUp(current.Temperature)),
		Subtitle: "at " + place.Label,
		Lines: []string{
			fmt.Sprintf("Wind: %d m/s · Humidity: %s%%", roundHalfUp(current.WindSpeed), formatNumber(current.Humidity)),
		},
		Attribution: attribution("open-meteo.com"),
	}
}
