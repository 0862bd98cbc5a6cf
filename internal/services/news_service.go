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
)

var (
	ErrInvalidNewsCategory = errors.New("unsupported news category")
	ErrNewsNotConfigured   = errors.New("news API key is not configured")
)

// NewsCategories lists the categories accepted by the news endpoint.
var NewsCategories = []string{
	"top", "sports", "technology", "business", "science", "entertainment",
	"health", "world", "politics", "environment", "food",
}

type NewsConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewsService fetches the latest headlines from newsdata.io.
type NewsService struct {
	cfg  NewsConfig
	http *http.Client
}

func NewNewsService(cfg NewsConfig) *NewsService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &NewsService{cfg: cfg, http: newHTTPClient(cfg.Timeout)}
}

type NewsArticle struct {
	ArticleID   string   `json:"article_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	SourceName  string   `json:"source_name"`
	Creator     []string `json:"creator"`
	Link        string   `json:"link"`
	ImageURL    string   `json:"image_url"`
	PubDate     string   `json:"pubDate"`
	PubDateTZ   string   `json:"pubDateTZ"`
}

type NewsResult struct {
	Total    int           `json:"total"`
	Articles []NewsArticle `json:"articles"`
}

type newsResponse struct {
	Status  string        `json:"status"`
	Results []NewsArticle `json:"results"`
}

// IsNewsCategory reports whether category is accepted.
func IsNewsCategory(category string) bool {
	for _, c := range NewsCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Latest returns the newest articles in category for the configured country.
func (s *NewsService) Latest(ctx context.Context, category string) (*NewsResult, error) {
	if !IsNewsCategory(category) {
		return nil, ErrInvalidNewsCategory
	}
	if s.cfg.APIKey == "" {
		return nil, ErrNewsNotConfigured
	}

	query := url.Values{}
	query.Set("apikey", s.cfg.APIKey)
	query.Set("country", constants.DefaultNewsCountry)
	query.Set("size", strconv.Itoa(constants.DefaultNewsPageSize))
	query.Set("category", category)

	var resp newsResponse
	if err := getJSON(ctx, s.http, s.cfg.BaseURL+"/api/1/latest", query, nil, &resp); err != nil {
		return nil, err
	}

	articles := resp.Results
	if articles == nil {
		articles = []NewsArticle{}
	}
	return &NewsResult{Total: len(articles), Articles: articles}, nil
}
