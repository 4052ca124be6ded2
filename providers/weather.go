package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/driftlabs/scout/cache"
	"github.com/driftlabs/scout/models"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// Weather is an OpenWeather API client for multi-day forecasts.
type Weather struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   cache.Store
}

// WeatherConfig contains OpenWeather client configuration.
type WeatherConfig struct {
	APIKey  string
	BaseURL string // overridable for tests
	Timeout time.Duration
}

// NewWeather creates an OpenWeather client. store can be nil to
// disable caching.
func NewWeather(cfg WeatherConfig, store cache.Store) *Weather {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openWeatherBaseURL
	}
	return &Weather{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  newHTTPClient(cfg.Timeout),
		cache:   store,
	}
}

// Enabled reports whether the client has credentials.
func (w *Weather) Enabled() bool { return w.apiKey != "" }

type forecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
}

// Forecast returns a per-day forecast for a city, aggregated from
// OpenWeather's 3-hour slots: average temperature, min/max across the
// day's slots and the most frequent description.
func (w *Weather) Forecast(ctx context.Context, city string, days int) ([]models.ForecastDay, error) {
	if !w.Enabled() {
		return nil, ErrMissingAPIKey
	}
	if days <= 0 {
		days = 5
	}

	key := fmt.Sprintf("openweather:forecast:%s:%d", city, days)
	if result, ok := cached[[]models.ForecastDay](w.cache, "openweather", key); ok {
		return result, nil
	}

	// 8 slots per day at 3-hour intervals; the API caps at 40.
	cnt := days * 8
	if cnt > 40 {
		cnt = 40
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", w.apiKey)
	params.Set("units", "imperial")
	params.Set("cnt", strconv.Itoa(cnt))

	var resp forecastResponse
	reqURL := w.baseURL + "/forecast?" + params.Encode()
	if err := getJSON(ctx, w.client, "openweather", reqURL, nil, &resp); err != nil {
		return nil, err
	}

	result := groupForecastByDay(resp)
	store(w.cache, key, result, searchTTL)
	return result, nil
}

type daySlots struct {
	temps        []float64
	descriptions []string
	humidity     []float64
	windSpeed    []float64
}

func groupForecastByDay(resp forecastResponse) []models.ForecastDay {
	byDay := map[string]*daySlots{}
	var order []string

	for _, slot := range resp.List {
		date, _, _ := strings.Cut(slot.DtTxt, " ")
		if date == "" {
			continue
		}
		day, ok := byDay[date]
		if !ok {
			day = &daySlots{}
			byDay[date] = day
			order = append(order, date)
		}
		day.temps = append(day.temps, slot.Main.Temp)
		if len(slot.Weather) > 0 {
			day.descriptions = append(day.descriptions, slot.Weather[0].Description)
		}
		day.humidity = append(day.humidity, slot.Main.Humidity)
		day.windSpeed = append(day.windSpeed, slot.Wind.Speed)
	}

	sort.Strings(order)

	result := make([]models.ForecastDay, 0, len(order))
	for _, date := range order {
		day := byDay[date]
		if len(day.temps) == 0 {
			continue
		}
		result = append(result, models.ForecastDay{
			Source:      "openweather",
			Date:        date,
			TempAvg:     avg(day.temps),
			TempMin:     minOf(day.temps),
			TempMax:     maxOf(day.temps),
			Description: mostFrequent(day.descriptions),
			Humidity:    avg(day.humidity),
			WindSpeed:   avg(day.windSpeed),
		})
	}
	return result
}

func avg(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// mostFrequent returns the most common value; ties resolve to the one
// seen first.
func mostFrequent(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	counts := map[string]int{}
	for _, v := range vals {
		counts[v]++
	}
	best := vals[0]
	for _, v := range vals {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
