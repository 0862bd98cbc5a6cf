package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/database"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/repository"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var kst = time.FixedZone("KST", 9*60*60)

// apiResponse covers both the success and the failure envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Fields  []string        `json:"fields"`
	Data    json.RawMessage `json:"data"`
}

type fakeEstimator struct {
	err   error
	calls int
}

func (f *fakeEstimator) Estimate(_ context.Context, input services.TravelInput) (*services.TravelInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &services.TravelInfo{
		DurationSeconds:          1500,
		DistanceMeters:           12300,
		RecommendedDepartureTime: input.ArriveBy.Add(-1500 * time.Second),
		Path:                     [][2]float64{{126.9769, 37.57}, {126.978, 37.5665}},
	}, nil
}

// apiSuite wires the full router against in-memory SQLite.
type apiSuite struct {
	suite.Suite
	db        *gorm.DB
	router    *gin.Engine
	auth      *services.AuthService
	estimator *fakeEstimator
	deps      RouterDeps
}

func (suite *apiSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.PanicLevel)

	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), database.GormConfig(kst, log))
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(database.Migrate(suite.db, log))

	tokens := services.NewTokenManager("access-secret", "refresh-secret")
	suite.auth = services.NewAuthService(repository.NewUserRepository(suite.db), tokens)
	suite.estimator = &fakeEstimator{}

	suite.deps = RouterDeps{
		AuthService: suite.auth,
		TaskService: services.NewTaskService(repository.NewTaskRepository(suite.db), suite.estimator, kst, log),
		WeatherService: services.NewWeatherService(services.WeatherConfig{
			ForecastBaseURL:   "http://127.0.0.1:0",
			AirQualityBaseURL: "http://127.0.0.1:0",
			Timeout:           time.Second,
		}, kst, log),
		SearchService: services.NewPlaceSearchService(services.PlaceSearchConfig{Timeout: time.Second}),
		NewsService:   services.NewNewsService(services.NewsConfig{Timeout: time.Second}),
		Location:      kst,
		Logger:        log,
	}
	suite.router = NewRouter(suite.deps)
}

func (suite *apiSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// login registers a user and returns its access token.
func (suite *apiSuite) login(email string) string {
	ctx := context.Background()
	_, err := suite.auth.Join(ctx, services.JoinInput{Email: email, Username: "tester", Password: "password123"})
	suite.Require().NoError(err)
	tokens, err := suite.auth.Login(ctx, services.LoginInput{Email: email, Password: "password123"})
	suite.Require().NoError(err)
	return tokens.AccessToken
}

func (suite *apiSuite) do(method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp apiResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}
