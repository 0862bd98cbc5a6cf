package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
)

// ExternalHandler serves the weather, place search and news passthroughs.
type ExternalHandler struct {
	weather *services.WeatherService
	search  *services.PlaceSearchService
	news    *services.NewsService
	loc     *time.Location
	now     func() time.Time
}

func NewExternalHandler(weather *services.WeatherService, search *services.PlaceSearchService, news *services.NewsService, loc *time.Location) *ExternalHandler {
	return &ExternalHandler{
		weather: weather,
		search:  search,
		news:    news,
		loc:     loc,
		now:     time.Now,
	}
}

// Ping reports liveness and the server clock.
func (h *ExternalHandler) Ping(c *gin.Context) {
	apierrors.Success(c, "pong", gin.H{
		"status":   "ok",
		"time":     h.now().In(h.loc),
		"timezone": h.loc.String(),
	})
}

// Weather returns current, hourly and daily weather for lat/lon.
func (h *ExternalHandler) Weather(c *gin.Context) {
	var fe validation.FieldErrors
	lat := queryCoordinate(c, &fe, "lat", 90)
	lon := queryCoordinate(c, &fe, "lon", 180)
	if !fe.Empty() {
		apierrors.BadRequestFields(c, fe.Message(), fe.Fields())
		return
	}

	report, err := h.weather.Report(c.Request.Context(), lat, lon)
	if err != nil {
		respondExternalError(c, err)
		return
	}
	apierrors.Success(c, "Weather fetched", report)
}

// Search looks up places by keyword.
func (h *ExternalHandler) Search(c *gin.Context) {
	result, err := h.search.Search(c.Request.Context(), services.PlaceSearchInput{
		Query:   c.Query("query"),
		Sort:    c.Query("sort"),
		Display: c.Query("display"),
	})
	if err != nil {
		respondExternalError(c, err)
		return
	}
	apierrors.Success(c, "Places fetched", result)
}

// News returns the latest headlines in a category.
func (h *ExternalHandler) News(c *gin.Context) {
	result, err := h.news.Latest(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		respondExternalError(c, err)
		return
	}
	apierrors.Success(c, "News fetched", result)
}

func queryCoordinate(c *gin.Context, fe *validation.FieldErrors, name string, limit float64) float64 {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		fe.Add(name, name+" is required")
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fe.Add(name, name+" must be a number")
		return 0
	}
	if !validation.NewCoordinate(v).InRange(limit) {
		fe.Add(name, name+" is out of range")
		return 0
	}
	return v
}

func respondExternalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSearchQueryRequired):
		apierrors.BadRequestFields(c, err.Error(), []string{"query"})
	case errors.Is(err, services.ErrInvalidNewsCategory):
		apierrors.BadRequestFields(c, err.Error(), []string{"category"})
	case errors.Is(err, services.ErrUpstream),
		errors.Is(err, services.ErrWeatherHourMissing):
		_ = c.Error(err)
		apierrors.UpstreamFailure(c, "")
	case errors.Is(err, services.ErrSearchNotConfigured),
		errors.Is(err, services.ErrNewsNotConfigured):
		_ = c.Error(err)
		apierrors.InternalError(c, "Service is not configured")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
