package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	"github.com/sirupsen/logrus"
)

// ErrWeatherHourMissing is returned when the forecast has no entry for the current hour.
var ErrWeatherHourMissing = errors.New("forecast has no data for the current hour")

const openMeteoHourLayout = "2006-01-02T15:00"

// WeatherConfig points the service at the open-meteo APIs.
type WeatherConfig struct {
	ForecastBaseURL   string
	AirQualityBaseURL string
	Timeout           time.Duration
}

// WeatherService merges an open-meteo forecast with current air quality.
type WeatherService struct {
	cfg  WeatherConfig
	http *http.Client
	loc  *time.Location
	now  func() time.Time
	log  logrus.FieldLogger
}

func NewWeatherService(cfg WeatherConfig, loc *time.Location, log logrus.FieldLogger) *WeatherService {
	cfg.ForecastBaseURL = strings.TrimRight(cfg.ForecastBaseURL, "/")
	cfg.AirQualityBaseURL = strings.TrimRight(cfg.AirQualityBaseURL, "/")
	return &WeatherService{
		cfg:  cfg,
		http: newHTTPClient(cfg.Timeout),
		loc:  loc,
		now:  time.Now,
		log:  log,
	}
}

// WithClock replaces the time source, for tests.
func (s *WeatherService) WithClock(now func() time.Time) *WeatherService {
	s.now = now
	return s
}

type WeatherLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// WeatherCurrent describes the current hour. PM values are nil when the air
// quality lookup failed.
type WeatherCurrent struct {
	Time        string   `json:"time"`
	Temperature float64  `json:"temperature"`
	WeatherCode int      `json:"weathercode"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   float64  `json:"windspeed"`
	Pressure    float64  `json:"pressure"`
	UVIndex     float64  `json:"uv_index"`
	PM10        *float64 `json:"pm10"`
	PM25        *float64 `json:"pm2_5"`
}

type WeatherHourly struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weathercode"`
}

type WeatherDaily struct {
	Date                     string  `json:"date"`
	WeatherCode              int     `json:"weathercode"`
	TempMax                  float64 `json:"tempMax"`
	TempMin                  float64 `json:"tempMin"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
}

type WeatherReport struct {
	Location WeatherLocation `json:"location"`
	Current  WeatherCurrent  `json:"current"`
	Hourly   []WeatherHourly `json:"hourly"`
	Daily    []WeatherDaily  `json:"daily"`
}

type forecastResponse struct {
	Timezone       string `json:"timezone"`
	CurrentWeather struct {
		Time        string  `json:"time"`
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Precipitation []float64 `json:"precipitation"`
		WeatherCode   []int     `json:"weathercode"`
		Humidity      []float64 `json:"relativehumidity_2m"`
		Pressure      []float64 `json:"pressure_msl"`
		UVIndex       []float64 `json:"uv_index"`
	} `json:"hourly"`
	Daily struct {
		Time                     []string  `json:"time"`
		WeatherCode              []int     `json:"weathercode"`
		TempMax                  []float64 `json:"temperature_2m_max"`
		TempMin                  []float64 `json:"temperature_2m_min"`
		PrecipitationProbability []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

type airQualityResponse struct {
	Hourly struct {
		Time []string  `json:"time"`
		PM10 []float64 `json:"pm10"`
		PM25 []float64 `json:"pm2_5"`
	} `json:"hourly"`
}

// Report fetches the forecast for a point. Air quality is best effort.
func (s *WeatherService) Report(ctx context.Context, lat, lon float64) (*WeatherReport, error) {
	var forecast forecastResponse
	query := s.pointQuery(lat, lon)
	query.Set("current_weather", "true")
	query.Set("hourly", "temperature_2m,precipitation,weathercode,relativehumidity_2m,pressure_msl,uv_index")
	query.Set("daily", "weathercode,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	query.Set("forecast_days", strconv.Itoa(constants.WeatherForecastDays))

	if err := getJSON(ctx, s.http, s.cfg.ForecastBaseURL+"/v1/forecast", query, nil, &forecast); err != nil {
		return nil, err
	}

	hour := s.now().In(s.loc).Format(openMeteoHourLayout)
	start := indexOf(forecast.Hourly.Time, hour)
	if start < 0 {
		return nil, ErrWeatherHourMissing
	}

	h := forecast.Hourly
	report := &WeatherReport{
		Location: WeatherLocation{Latitude: lat, Longitude: lon, Timezone: forecast.Timezone},
		Current: WeatherCurrent{
			Time:        forecast.CurrentWeather.Time,
			Temperature: forecast.CurrentWeather.Temperature,
			WeatherCode: forecast.CurrentWeather.WeatherCode,
			Humidity:    at(h.Humidity, start),
			WindSpeed:   forecast.CurrentWeather.WindSpeed,
			Pressure:    at(h.Pressure, start),
			UVIndex:     at(h.UVIndex, start),
		},
		Hourly: []WeatherHourly{},
		Daily:  []WeatherDaily{},
	}

	for i := start; i < len(h.Time) && i < start+constants.WeatherHourlyEntries; i++ {
		report.Hourly = append(report.Hourly, WeatherHourly{
			Time:          h.Time[i],
			Temperature:   at(h.Temperature, i),
			Precipitation: at(h.Precipitation, i),
			WeatherCode:   at(h.WeatherCode, i),
		})
	}

	d := forecast.Daily
	for i, date := range d.Time {
		report.Daily = append(report.Daily, WeatherDaily{
			Date:                     date,
			WeatherCode:              at(d.WeatherCode, i),
			TempMax:                  at(d.TempMax, i),
			TempMin:                  at(d.TempMin, i),
			PrecipitationProbability: at(d.PrecipitationProbability, i),
		})
	}

	if pm10, pm25, err := s.airQuality(ctx, lat, lon, hour); err != nil {
		s.log.WithError(err).Warn("air quality lookup failed")
	} else {
		report.Current.PM10, report.Current.PM25 = &pm10, &pm25
	}

	return report, nil
}

func (s *WeatherService) airQuality(ctx context.Context, lat, lon float64, hour string) (float64, float64, error) {
	var resp airQualityResponse
	query := s.pointQuery(lat, lon)
	query.Set("hourly", "pm10,pm2_5")

	if err := getJSON(ctx, s.http, s.cfg.AirQualityBaseURL+"/v1/air-quality", query, nil, &resp); err != nil {
		return 0, 0, err
	}

	idx := indexOf(resp.Hourly.Time, hour)
	if idx < 0 {
		return 0, 0, ErrWeatherHourMissing
	}
	return at(resp.Hourly.PM10, idx), at(resp.Hourly.PM25, idx), nil
}

func (s *WeatherService) pointQuery(lat, lon float64) url.Values {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("timezone", s.loc.String())
	return query
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

func at[T any](values []T, i int) T {
	var zero T
	if i < 0 || i >= len(values) {
		return zero
	}
	return values[i]
}
