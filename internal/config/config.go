package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	GinMode       string
	Timezone      string
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret        string
	JWTRefreshSecret string

	NaverMapClientID     string
	NaverMapClientSecret string
	NaverMapBaseURL      string
	NaverClientID        string
	NaverClientSecret    string
	NaverSearchBaseURL   string
	NewsAPIKey           string
	NewsBaseURL          string
	WeatherBaseURL       string
	AirQualityBaseURL    string
	OutboundTimeout      time.Duration

	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigins     []string

	SentryDSN   string
	Environment string
	LogLevel    string
	LogFormat   string
}

// Load reads the optional .env file, then environment variables with defaults.
func Load() *Config {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		Timezone:      v.GetString("TIMEZONE"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTRefreshSecret: v.GetString("JWT_REFRESH_SECRET"),

		NaverMapClientID:     v.GetString("NAVER_MAP_CLIENT_ID"),
		NaverMapClientSecret: v.GetString("NAVER_MAP_CLIENT_SECRET"),
		NaverMapBaseURL:      v.GetString("NAVER_MAP_BASE_URL"),
		NaverClientID:        v.GetString("NAVER_CLIENT_ID"),
		NaverClientSecret:    v.GetString("NAVER_CLIENT_SECRET"),
		NaverSearchBaseURL:   v.GetString("NAVER_SEARCH_BASE_URL"),
		NewsAPIKey:           v.GetString("NEWS_API_KEY"),
		NewsBaseURL:          v.GetString("NEWS_BASE_URL"),
		WeatherBaseURL:       v.GetString("WEATHER_BASE_URL"),
		AirQualityBaseURL:    v.GetString("AIR_QUALITY_BASE_URL"),
		OutboundTimeout:      v.GetDuration("OUTBOUND_TIMEOUT"),

		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),

		SentryDSN:   v.GetString("SENTRY_DSN"),
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("TIMEZONE", constants.DefaultTimezone)
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USER", "planner")
	v.SetDefault("DB_PASSWORD", "plannerpassword")
	v.SetDefault("DB_NAME", "planner")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "default-access-secret-change-me")
	v.SetDefault("JWT_REFRESH_SECRET", "default-refresh-secret-change-me")
	v.SetDefault("NAVER_MAP_BASE_URL", "https://maps.apigw.ntruss.com")
	v.SetDefault("NAVER_SEARCH_BASE_URL", "https://openapi.naver.com")
	v.SetDefault("NEWS_BASE_URL", "https://newsdata.io")
	v.SetDefault("WEATHER_BASE_URL", "https://api.open-meteo.com")
	v.SetDefault("AIR_QUALITY_BASE_URL", "https://air-quality-api.open-meteo.com")
	v.SetDefault("OUTBOUND_TIMEOUT", constants.DefaultOutboundTimeout)
	v.SetDefault("RATE_LIMIT_MAX", constants.DefaultRateLimitMax)
	v.SetDefault("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Location resolves the configured civil timezone. Asia/Seoul has no DST, so a
// fixed +09:00 zone is used when the tz database is unavailable.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// RedisAddr returns host:port, or "" when no Redis host is configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
