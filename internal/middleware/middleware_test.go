package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	token  string
	userID uint64
}

func (v stubValidator) ValidateAccessToken(token string) (*services.TokenClaims, error) {
	if token != v.token {
		return nil, services.ErrInvalidToken
	}
	return &services.TokenClaims{UserID: v.userID}, nil
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("connection refused")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var body apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func TestRequireAuth(t *testing.T) {
	router := gin.New()
	router.GET("/me", RequireAuth(stubValidator{token: "good", userID: 42}), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid bearer", "Bearer good", http.StatusOK},
		{"case insensitive scheme", "bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, apierrors.ErrCodeUnauthorized, decodeError(t, w).Code)
			}
		})
	}
}

func TestRequireTaskID(t *testing.T) {
	router := gin.New()
	router.GET("/tasks/:id", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, uint64(1))
	}, RequireTaskID(), func(c *gin.Context) {
		id, ok := GetTaskID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/12", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	for _, bad := range []string{"abc", "0", "-1"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/"+bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		body := decodeError(t, w)
		assert.Equal(t, apierrors.ErrCodeInvalidParam, body.Code)
		assert.Equal(t, []string{"id"}, body.Fields)
	}
}

func TestGetUserID_Types(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyUserID, 5)
	id, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(5), id)

	c.Set(constants.ContextKeyUserID, -5)
	_, ok = GetUserID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyUserID, "5")
	_, ok = GetUserID(c)
	assert.False(t, ok)
}

func TestMemoryStore_Window(t *testing.T) {
	now := time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		count, ttl, err := store.Hit(context.Background(), "1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.Equal(t, time.Minute, ttl)
	}

	count, _, _ := store.Hit(context.Background(), "5.6.7.8", time.Minute)
	assert.Equal(t, int64(1), count)

	now = now.Add(time.Minute)
	count, _, _ = store.Hit(context.Background(), "1.2.3.4", time.Minute)
	assert.Equal(t, int64(1), count)
	assert.Len(t, store.counters, 1)
}

func TestRedisStore_Window(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	ctx := context.Background()

	count, ttl, err := store.Hit(ctx, "1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, ttl)

	count, ttl, err = store.Hit(ctx, "1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Greater(t, ttl, time.Duration(0))

	mr.FastForward(time.Minute)
	count, _, err = store.Hit(ctx, "1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(NewMemoryStore(), 2, time.Minute, quietLogger()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, apierrors.ErrCodeTooManyRequests, decodeError(t, w).Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_StoreFailureAllows(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RateLimit(failingStore{}, 1, time.Minute, log))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRequestIDAndLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestID(), RequestLogger(log))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { apierrors.NotFound(c, "") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(constants.HeaderRequestID)
	assert.Len(t, generated, 36)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, generated, entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRequestLogger_MasksBody(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestLogger(log))

	var seen map[string]any
	router.POST("/login", func(c *gin.Context) {
		require.NoError(t, c.ShouldBindJSON(&seen))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "hunter22", seen["password"])
	body, ok := hook.LastEntry().Data["body"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@b.c", body["email"])
	assert.NotEqual(t, "hunter22", body["password"])
}

func TestRecovery(t *testing.T) {
	log, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(Recovery(log))
	router.GET("/boom", func(c *gin.Context) { panic("database exploded") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apierrors.ErrCodeInternalServer, body.Code)
	assert.NotContains(t, body.Message, "database exploded")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
