package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Forecast struct {
	Date       string  `json:"date"`
	Tip        string  `json:"tip"`
	TMax       float64 `json:"tMax"`
	TMin       float64 `json:"tMin"`
	PrecipProb float64 `json:"precipProb"`
	Code       int     `json:"code"`
}

type GeoLocation struct {
	Latitude  float64
	Longitude float64
	Name      string
}

// ErrGeocodeFailed marks a city that could not be resolved to coordinates.
type GeocodeError struct {
	City string
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("failed to geocode city %q", e.City)
}

// UpstreamError carries the vendor's raw error text for a non-success
// forecast response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather API error (%d): %s", e.Status, e.Body)
}

// ─── Weather Client (Open-Meteo, no API key) ──────────────────────────────────

type WeatherClient struct {
	geocodeURL  string
	forecastURL string
	httpClient  *http.Client
}

var weatherClient *WeatherClient

func InitWeather() {
	weatherClient = NewWeatherClient(
		"https://geocoding-api.open-meteo.com/v1/search",
		"https://api.open-meteo.com/v1/forecast",
	)
	log.Println("✅ Weather (Open-Meteo) client ready")
}

func NewWeatherClient(geocodeURL, forecastURL string) *WeatherClient {
	return &WeatherClient{
		geocodeURL:  geocodeURL,
		forecastURL: forecastURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func GetWeatherClient() *WeatherClient {
	return weatherClient
}

// Geocode resolves a free-text city name to coordinates using the first match.
func (c *WeatherClient) Geocode(city string) (*GeoLocation, error) {
	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	resp, err := c.httpClient.Get(c.geocodeURL + "?" + params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &GeocodeError{City: city}
	}

	var result struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse geocode response: %w", err)
	}
	if len(result.Results) == 0 {
		return nil, &GeocodeError{City: city}
	}

	first := result.Results[0]
	return &GeoLocation{Latitude: first.Latitude, Longitude: first.Longitude, Name: first.Name}, nil
}

// DailyForecast geocodes the city and returns one Forecast per day in the
// [from, to] date range, each carrying a human-readable advice tip.
func (c *WeatherClient) DailyForecast(city, from, to string) (string, []Forecast, error) {
	geo, err := c.Geocode(city)
	if err != nil {
		return "", nil, err
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%g", geo.Latitude))
	params.Set("longitude", fmt.Sprintf("%g", geo.Longitude))
	params.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	params.Set("timezone", "auto")
	params.Set("start_date", from)
	params.Set("end_date", to)

	resp, err := c.httpClient.Get(c.forecastURL + "?" + params.Encode())
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Daily struct {
			Time                     []string  `json:"time"`
			WeatherCode              []int     `json:"weathercode"`
			TemperatureMax           []float64 `json:"temperature_2m_max"`
			TemperatureMin           []float64 `json:"temperature_2m_min"`
			PrecipitationProbability []float64 `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	daily := result.Daily
	forecasts := make([]Forecast, 0, len(daily.Time))
	for i, date := range daily.Time {
		f := Forecast{Date: date}
		if i < len(daily.WeatherCode) {
			f.Code = daily.WeatherCode[i]
		}
		if i < len(daily.TemperatureMax) {
			f.TMax = daily.TemperatureMax[i]
		}
		if i < len(daily.TemperatureMin) {
			f.TMin = daily.TemperatureMin[i]
		}
		if i < len(daily.PrecipitationProbability) {
			f.PrecipProb = daily.PrecipitationProbability[i]
		}
		f.Tip = BuildAdvice(f.Code, f.TMax, f.PrecipProb)
		forecasts = append(forecasts, f)
	}

	return geo.Name, forecasts, nil
}

// ─── Decision Tables ──────────────────────────────────────────────────────────

// Simplified groups per the Open-Meteo weather code table.
var weatherCodeCategories = map[string][]int{
	"thunder": {95, 96, 99},
	"snow":    {71, 73, 75, 77, 85, 86},
	"drizzle": {51, 53, 55, 56, 57},
	"rain":    {61, 63, 65, 66, 67, 80, 81, 82},
	"fog":     {45, 48},
	"cloudy":  {1, 2, 3},
}

// WeatherCategory maps a numeric weather code to one of seven categories:
// thunder, snow, rain, drizzle, fog, cloudy, clear.
func WeatherCategory(code int) string {
	for _, cat := range []string{"thunder", "snow", "drizzle", "rain", "fog", "cloudy"} {
		for _, c := range weatherCodeCategories[cat] {
			if c == code {
				return cat
			}
		}
	}
	return "clear" // 0
}

// adviceRules is evaluated in order; the first matching predicate wins.
var adviceRules = []struct {
	match   func(cat string, tMax, precipProb float64) bool
	message string
}{
	{
		func(cat string, _, _ float64) bool { return cat == "thunder" },
		"Severe weather possible. Consider indoor plans and monitor local alerts.",
	},
	{
		func(cat string, _, _ float64) bool { return cat == "snow" },
		"Cold and snowy. Wear warm layers and waterproof footwear.",
	},
	{
		func(cat string, _, precipProb float64) bool {
			return cat == "rain" || cat == "drizzle" || precipProb >= 40
		},
		"Rain likely. Carry an umbrella or light rain jacket.",
	},
	{
		func(_ string, tMax, _ float64) bool { return tMax >= 32 },
		"Hot day. Stay hydrated, apply sunscreen, and plan shade breaks.",
	},
	{
		func(_ string, tMax, _ float64) bool { return tMax <= 5 },
		"Chilly day. Dress warmly with layers.",
	},
	{
		func(cat string, _, _ float64) bool { return cat == "fog" },
		"Foggy conditions possible. Allow extra travel time and take caution.",
	},
	{
		func(cat string, _, _ float64) bool { return cat == "cloudy" },
		"Partly cloudy. Comfortable for most outdoor activities.",
	},
}

// BuildAdvice derives a single advice string per day using a fixed priority
// order: thunder > snow > rain/drizzle/high precipitation > hot > cold > fog >
// cloudy > clear.
func BuildAdvice(code int, tMax, precipProb float64) string {
	cat := WeatherCategory(code)
	for _, rule := range adviceRules {
		if rule.match(cat, tMax, precipProb) {
			return rule.message
		}
	}
	return "Clear weather. Great day for outdoor plans!"
}
