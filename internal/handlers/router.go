package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/middleware"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
	"github.com/sirupsen/logrus"
)

// RouterDeps is everything the HTTP layer needs.
type RouterDeps struct {
	AuthService    *services.AuthService
	TaskService    *services.TaskService
	WeatherService *services.WeatherService
	SearchService  *services.PlaceSearchService
	NewsService    *services.NewsService

	RateLimitStore  middleware.RateLimitStore
	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigins     []string

	Location *time.Location
	Logger   logrus.FieldLogger
}

// NewRouter builds the gin engine with middleware and all /api routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	validation.Register()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Logger),
		middleware.Recovery(deps.Logger),
		middleware.ReportServerErrors(),
		middleware.CORS(deps.CORSOrigins),
	)
	if deps.RateLimitStore != nil {
		r.Use(middleware.RateLimit(deps.RateLimitStore, deps.RateLimitMax, deps.RateLimitWindow, deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	taskHandler := NewTaskHandler(deps.TaskService, deps.Location)
	externalHandler := NewExternalHandler(deps.WeatherService, deps.SearchService, deps.NewsService, deps.Location)
	requireAuth := middleware.RequireAuth(deps.AuthService)

	api := r.Group("/api")
	{
		api.GET("/ping", externalHandler.Ping)

		users := api.Group("/users")
		{
			users.POST("/join", authHandler.Join)
			users.POST("/login", authHandler.Login)
			users.POST("/refresh", authHandler.Refresh)
			users.GET("/validate", requireAuth, authHandler.Validate)
			users.POST("/logout", requireAuth, authHandler.Logout)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/day", taskHandler.TasksByDay)
			tasks.GET("/week", taskHandler.TasksByWeek)
			tasks.GET("/month", taskHandler.TasksByMonth)
			tasks.PATCH("/:id", middleware.RequireTaskID(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskID(), taskHandler.DeleteTask)
			tasks.GET("/:id/path", middleware.RequireTaskID(), taskHandler.TaskPath)
		}

		api.GET("/weather", externalHandler.Weather)
		api.GET("/search", externalHandler.Search)
		api.GET("/news", externalHandler.News)
	}

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Route not found")
	})

	return r
}
