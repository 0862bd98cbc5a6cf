package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/database"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts the task. Instants are stored in UTC so that range
// comparisons behave the same on every driver.
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	task.StartTime = task.StartTime.UTC()
	task.EndTime = task.EndTime.UTC()
	task.RecommendedDepartureTime = utcPtr(task.RecommendedDepartureTime)

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// Update rewrites every editable column of the owned task
func (r *GormTaskRepository) Update(ctx context.Context, ownerID, taskID uint64, fields TaskUpdate) error {
	db := r.db.WithContext(ctx)

	values := map[string]any{
		"title":                      fields.Title,
		"memo":                       fields.Memo,
		"start_time":                 fields.StartTime.UTC(),
		"end_time":                   fields.EndTime.UTC(),
		"address":                    fields.Address,
		"place_name":                 fields.PlaceName,
		"latitude":                   fields.Latitude,
		"longitude":                  fields.Longitude,
		"from_address":               fields.FromAddress,
		"from_place_name":            fields.FromPlaceName,
		"from_lat":                   fields.FromLat,
		"from_lng":                   fields.FromLng,
		"route_option":               fields.RouteOption,
		"travel_duration":            fields.TravelDuration,
		"travel_distance":            fields.TravelDistance,
		"recommended_departure_time": utcPtr(fields.RecommendedDepartureTime),
		"updated_at":                 db.NowFunc(),
	}
	if fields.IsCompleted != nil {
		values["is_completed"] = *fields.IsCompleted
	}

	result := db.Model(&models.Task{}).
		Where("task_id = ? AND user_id = ?", taskID, ownerID).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete permanently removes the owned task
func (r *GormTaskRepository) Delete(ctx context.Context, ownerID, taskID uint64) error {
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, ownerID).
		Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// FindByID loads a task only if it belongs to ownerID
func (r *GormTaskRepository) FindByID(ctx context.Context, ownerID, taskID uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID)).
		Where("task_id = ?", taskID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &task, nil
}

// ListInWindow returns the owner's tasks with start_time in [window.Start, window.End)
func (r *GormTaskRepository) ListInWindow(ctx context.Context, ownerID uint64, window validation.Window) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(ownerID), database.StartsWithin(window), database.Chronological).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
