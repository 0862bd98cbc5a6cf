package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
)

var (
	ErrSearchQueryRequired = errors.New("search query is required")
	ErrSearchNotConfigured = errors.New("search API credentials are not configured")
)

var htmlTag = regexp.MustCompile(`<[^>]*>`)

type PlaceSearchConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// PlaceSearchService looks up places through the Naver local search API.
type PlaceSearchService struct {
	cfg  PlaceSearchConfig
	http *http.Client
}

func NewPlaceSearchService(cfg PlaceSearchConfig) *PlaceSearchService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PlaceSearchService{cfg: cfg, http: newHTTPClient(cfg.Timeout)}
}

type PlaceSearchInput struct {
	Query   string
	Sort    string
	Display string
}

type Place struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	RoadAddress string  `json:"roadAddress"`
	Address     string  `json:"address"`
	MapX        float64 `json:"mapx"`
	MapY        float64 `json:"mapy"`
	Link        string  `json:"link"`
}

type PlaceSearchResult struct {
	Total   int     `json:"total"`
	Display int     `json:"display"`
	Sort    string  `json:"sort"`
	Items   []Place `json:"items"`
}

type localSearchResponse struct {
	Total int `json:"total"`
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Address     string `json:"address"`
		RoadAddress string `json:"roadAddress"`
		MapX        string `json:"mapx"`
		MapY        string `json:"mapy"`
	} `json:"items"`
}

// NormalizeSearchSort falls back to random for anything but random or comment.
func NormalizeSearchSort(sort string) string {
	if sort == "random" || sort == "comment" {
		return sort
	}
	return constants.DefaultSearchSort
}

// NormalizeSearchDisplay falls back to the maximum for unparseable or out of range values.
func NormalizeSearchDisplay(display string) int {
	n, err := strconv.Atoi(strings.TrimSpace(display))
	if err != nil || n < constants.MinSearchDisplay || n > constants.MaxSearchDisplay {
		return constants.MaxSearchDisplay
	}
	return n
}

// Search runs a local search and strips markup from place names.
func (s *PlaceSearchService) Search(ctx context.Context, input PlaceSearchInput) (*PlaceSearchResult, error) {
	q := strings.TrimSpace(input.Query)
	if q == "" {
		return nil, ErrSearchQueryRequired
	}
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		return nil, ErrSearchNotConfigured
	}

	sort := NormalizeSearchSort(input.Sort)
	display := NormalizeSearchDisplay(input.Display)

	query := url.Values{}
	query.Set("query", q)
	query.Set("display", strconv.Itoa(display))
	query.Set("sort", sort)

	header := http.Header{}
	header.Set("X-Naver-Client-Id", s.cfg.ClientID)
	header.Set("X-Naver-Client-Secret", s.cfg.ClientSecret)

	var resp localSearchResponse
	if err := getJSON(ctx, s.http, s.cfg.BaseURL+"/v1/search/local.json", query, header, &resp); err != nil {
		return nil, err
	}

	items := make([]Place, 0, len(resp.Items))
	for _, item := range resp.Items {
		mapx, _ := strconv.ParseFloat(item.MapX, 64)
		mapy, _ := strconv.ParseFloat(item.MapY, 64)
		items = append(items, Place{
			Name:        htmlTag.ReplaceAllString(item.Title, ""),
			Category:    item.Category,
			Description: item.Description,
			RoadAddress: item.RoadAddress,
			Address:     item.Address,
			MapX:        mapx,
			MapY:        mapy,
			Link:        item.Link,
		})
	}

	return &PlaceSearchResult{Total: resp.Total, Display: display, Sort: sort, Items: items}, nil
}
