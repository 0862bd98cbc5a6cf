package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
	"github.com/sony/gobreaker"
)

var (
	// ErrTravelUnavailable covers every way the directions lookup can fail.
	ErrTravelUnavailable = errors.New("travel information unavailable")
	// ErrTravelLocationMissing is returned when a task lacks a complete origin or destination.
	ErrTravelLocationMissing = errors.New("origin and destination coordinates are required")
)

// LatLng is a point in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// TravelInput describes one driving estimate. ArriveBy is the time the
// traveler must arrive, i.e. the task's start_time.
type TravelInput struct {
	From     LatLng
	To       LatLng
	Option   models.RouteOption
	ArriveBy time.Time
}

// TravelInfo is the outcome of a directions lookup. Path holds [lng, lat] pairs.
type TravelInfo struct {
	DurationSeconds          int          `json:"duration"`
	DistanceMeters           int          `json:"distance"`
	RecommendedDepartureTime time.Time    `json:"recommended_departure_time"`
	Path                     [][2]float64 `json:"path"`
}

// TravelEstimator computes driving travel information between two points.
type TravelEstimator interface {
	Estimate(ctx context.Context, input TravelInput) (*TravelInfo, error)
}

// TravelConfig carries the directions API credentials and endpoint.
type TravelConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// NaverDirectionsClient implements TravelEstimator with the Naver Maps
// driving directions API.
type NaverDirectionsClient struct {
	cfg     TravelConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewNaverDirectionsClient creates a directions client guarded by a circuit breaker.
func NewNaverDirectionsClient(cfg TravelConfig) *NaverDirectionsClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &NaverDirectionsClient{
		cfg:  cfg,
		http: newHTTPClient(cfg.Timeout),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "naver-directions",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
		}),
	}
}

type directionsResponse struct {
	Code    int                          `json:"code"`
	Message string                       `json:"message"`
	Route   map[string][]directionsRoute `json:"route"`
}

type directionsRoute struct {
	Summary struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"summary"`
	Path [][2]float64 `json:"path"`
}

// Estimate looks up the driving route and derives the departure time.
func (c *NaverDirectionsClient) Estimate(ctx context.Context, input TravelInput) (*TravelInfo, error) {
	option := input.Option
	if !option.Valid() {
		option = models.DefaultRouteOption
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchRoute(ctx, input, option)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTravelUnavailable, err)
	}
	route := result.(*directionsRoute)

	duration := int(math.Round(route.Summary.Duration / 1000))
	path := route.Path
	if path == nil {
		path = [][2]float64{}
	}

	return &TravelInfo{
		DurationSeconds:          duration,
		DistanceMeters:           int(math.Round(route.Summary.Distance)),
		RecommendedDepartureTime: input.ArriveBy.Add(-time.Duration(duration) * time.Second),
		Path:                     path,
	}, nil
}

func (c *NaverDirectionsClient) fetchRoute(ctx context.Context, input TravelInput, option models.RouteOption) (*directionsRoute, error) {
	query := url.Values{}
	query.Set("start", formatLngLat(input.From))
	query.Set("goal", formatLngLat(input.To))
	query.Set("option", string(option))

	header := http.Header{}
	header.Set("X-NCP-APIGW-API-KEY-ID", c.cfg.ClientID)
	header.Set("X-NCP-APIGW-API-KEY", c.cfg.ClientSecret)

	var resp directionsResponse
	if err := getJSON(ctx, c.http, c.cfg.BaseURL+"/map-direction/v1/driving", query, header, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("directions code %d: %s", resp.Code, resp.Message)
	}

	route := pickRoute(resp.Route, option)
	if route == nil {
		return nil, errors.New("directions response contained no route")
	}
	return route, nil
}

// pickRoute prefers the requested option and otherwise takes the first
// non-empty profile in name order.
func pickRoute(routes map[string][]directionsRoute, option models.RouteOption) *directionsRoute {
	if list := routes[string(option)]; len(list) > 0 {
		return &list[0]
	}

	names := make([]string, 0, len(routes))
	for name := range routes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if list := routes[name]; len(list) > 0 {
			return &list[0]
		}
	}
	return nil
}

func formatLngLat(p LatLng) string {
	return strconv.FormatFloat(p.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}
