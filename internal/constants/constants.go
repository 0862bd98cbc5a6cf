package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyTaskID    = "task_id"
	ContextKeyRequestID = "request_id"
)

// HeaderRequestID carries the per-request identifier in and out of the API.
const HeaderRequestID = "X-Request-ID"

// Task field limits
const (
	MaxTitleLength = 255
	MinYear        = 1000
	MaxYear        = 9999
	MaxWeekOfMonth = 6
)

// Auth
const (
	MinPasswordLength  = 8
	AccessTokenExpire  = time.Hour
	RefreshTokenExpire = 14 * 24 * time.Hour
)

// Rate limiting defaults, per client IP
const (
	DefaultRateLimitMax    = 30
	DefaultRateLimitWindow = time.Minute
)

// DefaultOutboundTimeout bounds every third-party HTTP call.
const DefaultOutboundTimeout = 5 * time.Second

// DefaultTimezone is the civil timezone used for calendar windows and bookkeeping timestamps.
const DefaultTimezone = "Asia/Seoul"

// Place search
const (
	MinSearchDisplay     = 1
	MaxSearchDisplay     = 5
	DefaultSearchSort    = "random"
	DefaultNewsPageSize  = 5
	DefaultNewsCountry   = "kr"
	WeatherForecastDays  = 7
	WeatherHourlyEntries = 24
)
