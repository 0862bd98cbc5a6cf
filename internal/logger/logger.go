package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/config"
	"github.com/sirupsen/logrus"
)

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"token":         {},
	"accesstoken":   {},
	"refreshtoken":  {},
	"access_token":  {},
	"refresh_token": {},
	"secret":        {},
}

const maskValue = "***MASKED***"

// New builds the application logger from configuration.
func New(cfg *config.Config) *logrus.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit output, used by tests.
func NewWithWriter(cfg *config.Config, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return log
}

// InitSentry enables error reporting when a DSN is configured.
// The returned flag reports whether Sentry is active.
func InitSentry(cfg *config.Config) (bool, error) {
	if cfg.SentryDSN == "" {
		return false, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
		SendDefaultPII:   true,
	})
	if err != nil {
		return false, fmt.Errorf("failed to init sentry: %w", err)
	}
	return true, nil
}

// MaskSensitive returns a copy of v with credential-like keys masked.
// Maps and slices are walked recursively; other values are returned as is.
func MaskSensitive(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
				if _, nested := item.(map[string]any); !nested {
					out[k] = maskValue
					continue
				}
			}
			out[k] = MaskSensitive(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = MaskSensitive(item)
		}
		return out
	default:
		return v
	}
}
