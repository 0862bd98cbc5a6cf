package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
)

var (
	// ErrTaskNotFound is returned when no task matches both the task id and its owner.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// TaskRepository defines the interface for task data access.
// Every method is scoped to the owning user.
type TaskRepository interface {
	// Create inserts a new task and fills its ID
	Create(ctx context.Context, task *models.Task) error

	// Update rewrites the mutable columns of one owned task
	Update(ctx context.Context, ownerID, taskID uint64, fields TaskUpdate) error

	// Delete permanently removes one owned task
	Delete(ctx context.Context, ownerID, taskID uint64) error

	// FindByID loads one owned task
	FindByID(ctx context.Context, ownerID, taskID uint64) (*models.Task, error)

	// ListInWindow returns owned tasks starting in window, earliest first
	ListInWindow(ctx context.Context, ownerID uint64, window validation.Window) ([]models.Task, error)
}

// TaskUpdate is a full replacement of the user-editable task columns.
// IsCompleted is left untouched when nil.
type TaskUpdate struct {
	Title                    string
	Memo                     string
	StartTime                time.Time
	EndTime                  time.Time
	Address                  string
	PlaceName                string
	Latitude                 *float64
	Longitude                *float64
	FromAddress              string
	FromPlaceName            string
	FromLat                  *float64
	FromLng                  *float64
	RouteOption              models.RouteOption
	TravelDuration           *int
	TravelDistance           *int
	RecommendedDepartureTime *time.Time
	IsCompleted              *bool
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// SetRefreshToken stores or clears (nil) the user's refresh token
	SetRefreshToken(ctx context.Context, id uint64, token *string) error
}
