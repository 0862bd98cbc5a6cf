package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{LogLevel: "debug", LogFormat: "json"}, &buf)

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("task_id", 7).Info("created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "created", entry["msg"])
	assert.EqualValues(t, 7, entry["task_id"])
}

func TestNewWithWriter_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := NewWithWriter(&config.Config{LogLevel: "loud"}, &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestInitSentry_NoDSN(t *testing.T) {
	enabled, err := InitSentry(&config.Config{})
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestInitSentry_ErrorReportingOnly(t *testing.T) {
	t.Cleanup(func() { sentry.CurrentHub().BindClient(nil) })

	enabled, err := InitSentry(&config.Config{SentryDSN: "https://public@example.com/1", Environment: "test"})
	require.NoError(t, err)
	assert.True(t, enabled)

	client := sentry.CurrentHub().Client()
	require.NotNil(t, client)
	opts := client.Options()
	assert.Equal(t, "test", opts.Environment)
	assert.True(t, opts.AttachStacktrace)
	assert.False(t, opts.EnableTracing)
	assert.Zero(t, opts.TracesSampleRate)
}

func TestMaskSensitive(t *testing.T) {
	in := map[string]any{
		"email":    "dev@example.com",
		"password": "plainpassword",
		"nested": map[string]any{
			"refreshToken": "abc",
			"list":         []any{map[string]any{"secret": "s"}},
		},
	}

	out := MaskSensitive(in).(map[string]any)

	assert.Equal(t, "dev@example.com", out["email"])
	assert.Equal(t, maskValue, out["password"])
	nested := out["nested"].(map[string]any)
	assert.Equal(t, maskValue, nested["refreshToken"])
	assert.Equal(t, maskValue, nested["list"].([]any)[0].(map[string]any)["secret"])
	// original untouched
	assert.Equal(t, "plainpassword", in["password"])
}
