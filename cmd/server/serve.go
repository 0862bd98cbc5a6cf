package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/config"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/handlers"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/logger"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/middleware"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/repository"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	sentryEnabled, err := logger.InitSentry(cfg)
	if err != nil {
		log.WithError(err).Warn("sentry disabled")
	}
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	loc := cfg.Location()

	// Initialize services
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret)
	authService := services.NewAuthService(repository.NewUserRepository(db), tokens)

	var travel services.TravelEstimator
	if cfg.NaverMapClientID != "" && cfg.NaverMapClientSecret != "" {
		travel = services.NewNaverDirectionsClient(services.TravelConfig{
			BaseURL:      cfg.NaverMapBaseURL,
			ClientID:     cfg.NaverMapClientID,
			ClientSecret: cfg.NaverMapClientSecret,
			Timeout:      cfg.OutboundTimeout,
		})
	} else {
		log.Warn("NAVER_MAP_CLIENT_ID/SECRET not set, travel estimates disabled")
	}
	taskService := services.NewTaskService(repository.NewTaskRepository(db), travel, loc, log)

	weatherService := services.NewWeatherService(services.WeatherConfig{
		ForecastBaseURL:   cfg.WeatherBaseURL,
		AirQualityBaseURL: cfg.AirQualityBaseURL,
		Timeout:           cfg.OutboundTimeout,
	}, loc, log)
	searchService := services.NewPlaceSearchService(services.PlaceSearchConfig{
		BaseURL:      cfg.NaverSearchBaseURL,
		ClientID:     cfg.NaverClientID,
		ClientSecret: cfg.NaverClientSecret,
		Timeout:      cfg.OutboundTimeout,
	})
	newsService := services.NewNewsService(services.NewsConfig{
		BaseURL: cfg.NewsBaseURL,
		APIKey:  cfg.NewsAPIKey,
		Timeout: cfg.OutboundTimeout,
	})

	store, closeStore := rateLimitStore(ctx, cfg, log)
	defer closeStore()

	router := handlers.NewRouter(handlers.RouterDeps{
		AuthService:     authService,
		TaskService:     taskService,
		WeatherService:  weatherService,
		SearchService:   searchService,
		NewsService:     newsService,
		RateLimitStore:  store,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		CORSOrigins:     cfg.CORSOrigins,
		Location:        loc,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// rateLimitStore uses Redis when configured and reachable, memory otherwise.
func rateLimitStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (middleware.RateLimitStore, func()) {
	addr := cfg.RedisAddr()
	if addr == "" {
		return middleware.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.RedisPassword,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", addr).Warn("redis unreachable, using in-memory rate limiting")
		_ = client.Close()
		return middleware.NewMemoryStore(), func() {}
	}

	return middleware.NewRedisStore(client), func() { _ = client.Close() }
}
