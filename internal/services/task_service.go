package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/repository"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
	"github.com/sirupsen/logrus"
)

var (
	ErrTaskNotFound     = repository.ErrTaskNotFound
	ErrTitleRequired    = errors.New("title is required")
	ErrInvalidTimeRange = errors.New("end_time must not be before start_time")
	ErrInvalidDate      = errors.New("date does not exist")
	ErrInvalidWeek      = errors.New("week must be between 1 and 6")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	travel   TravelEstimator
	loc      *time.Location
	log      logrus.FieldLogger
}

// NewTaskService creates a new TaskService. travel may be nil, in which case
// travel fields are never computed.
func NewTaskService(taskRepo repository.TaskRepository, travel TravelEstimator, loc *time.Location, log logrus.FieldLogger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		travel:   travel,
		loc:      loc,
		log:      log,
	}
}

// TaskInput is the user-editable part of a task. EndTime defaults to StartTime.
type TaskInput struct {
	Title         string
	Memo          string
	StartTime     time.Time
	EndTime       *time.Time
	Address       string
	PlaceName     string
	Latitude      *float64
	Longitude     *float64
	FromAddress   string
	FromPlaceName string
	FromLat       *float64
	FromLng       *float64
	RouteOption   string
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	UserID uint64
	TaskInput
}

// UpdateTaskInput represents a full replacement of a task.
// IsCompleted is only written when supplied.
type UpdateTaskInput struct {
	TaskInput
	IsCompleted *bool
}

// CreateTask stores a new task, attaching travel information when both
// endpoints are known and the directions lookup succeeds.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if err := checkTaskInput(input.TaskInput); err != nil {
		return nil, err
	}

	option := models.NormalizeRouteOption(input.RouteOption)
	endTime := resolveEndTime(input.TaskInput)
	travel := s.estimateTravel(ctx, input.TaskInput, option)

	task := &models.Task{
		UserID:        input.UserID,
		Title:         input.Title,
		Memo:          input.Memo,
		StartTime:     input.StartTime,
		EndTime:       endTime,
		Address:       input.Address,
		PlaceName:     input.PlaceName,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		FromAddress:   input.FromAddress,
		FromPlaceName: input.FromPlaceName,
		FromLat:       input.FromLat,
		FromLng:       input.FromLng,
		RouteOption:   option,
	}
	task.TravelDuration, task.TravelDistance, task.RecommendedDepartureTime = travelColumns(travel)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask replaces an owned task. Travel columns are always rewritten so
// they describe the submitted locations, and are cleared when no estimate is
// available.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID uint64, input UpdateTaskInput) error {
	if err := checkTaskInput(input.TaskInput); err != nil {
		return err
	}

	option := models.NormalizeRouteOption(input.RouteOption)
	travel := s.estimateTravel(ctx, input.TaskInput, option)

	fields := repository.TaskUpdate{
		Title:         input.Title,
		Memo:          input.Memo,
		StartTime:     input.StartTime,
		EndTime:       resolveEndTime(input.TaskInput),
		Address:       input.Address,
		PlaceName:     input.PlaceName,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		FromAddress:   input.FromAddress,
		FromPlaceName: input.FromPlaceName,
		FromLat:       input.FromLat,
		FromLng:       input.FromLng,
		RouteOption:   option,
		IsCompleted:   input.IsCompleted,
	}
	fields.TravelDuration, fields.TravelDistance, fields.RecommendedDepartureTime = travelColumns(travel)

	if err := s.taskRepo.Update(ctx, ownerID, taskID, fields); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// DeleteTask permanently removes an owned task
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID uint64) error {
	if err := s.taskRepo.Delete(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListTasks returns the owner's tasks starting inside window
func (s *TaskService) ListTasks(ctx context.Context, ownerID uint64, window validation.Window) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListInWindow(ctx, ownerID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// TasksByDay lists one civil day
func (s *TaskService) TasksByDay(ctx context.Context, ownerID uint64, year, month, day int) ([]models.Task, error) {
	if !validation.IsValidDate(year, month, day) {
		return nil, ErrInvalidDate
	}
	return s.ListTasks(ctx, ownerID, validation.DayWindow(year, month, day, s.loc))
}

// TasksByWeek lists the seven days starting at day (week-1)*7+1 of the month
func (s *TaskService) TasksByWeek(ctx context.Context, ownerID uint64, year, month, week int) ([]models.Task, error) {
	if week < 1 || week > 6 {
		return nil, ErrInvalidWeek
	}
	if !validation.IsValidDate(year, month, 1) {
		return nil, ErrInvalidDate
	}
	return s.ListTasks(ctx, ownerID, validation.WeekWindow(year, month, week, s.loc))
}

// TasksByMonth lists one calendar month
func (s *TaskService) TasksByMonth(ctx context.Context, ownerID uint64, year, month int) ([]models.Task, error) {
	if !validation.IsValidDate(year, month, 1) {
		return nil, ErrInvalidDate
	}
	return s.ListTasks(ctx, ownerID, validation.MonthWindow(year, month, s.loc))
}

// ComputeTaskPath runs a fresh directions lookup for an owned task. Nothing is persisted.
func (s *TaskService) ComputeTaskPath(ctx context.Context, ownerID, taskID uint64) (*TravelInfo, error) {
	task, err := s.taskRepo.FindByID(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !task.HasOrigin() || !task.HasDestination() {
		return nil, ErrTravelLocationMissing
	}
	if s.travel == nil {
		return nil, ErrTravelUnavailable
	}

	info, err := s.travel.Estimate(ctx, TravelInput{
		From:     LatLng{Lat: *task.FromLat, Lng: *task.FromLng},
		To:       LatLng{Lat: *task.Latitude, Lng: *task.Longitude},
		Option:   models.NormalizeRouteOption(string(task.RouteOption)),
		ArriveBy: task.StartTime,
	})
	if err != nil {
		if errors.Is(err, ErrTravelUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTravelUnavailable, err)
	}
	return info, nil
}

// estimateTravel is best effort: a failed lookup is logged and yields nil.
func (s *TaskService) estimateTravel(ctx context.Context, input TaskInput, option models.RouteOption) *TravelInfo {
	if s.travel == nil || !hasPair(input.FromLat, input.FromLng) || !hasPair(input.Latitude, input.Longitude) {
		return nil
	}

	info, err := s.travel.Estimate(ctx, TravelInput{
		From:     LatLng{Lat: *input.FromLat, Lng: *input.FromLng},
		To:       LatLng{Lat: *input.Latitude, Lng: *input.Longitude},
		Option:   option,
		ArriveBy: input.StartTime,
	})
	if err != nil {
		s.log.WithError(err).WithField("route_option", option).Warn("travel estimate failed, storing task without travel info")
		return nil
	}
	return info
}

func checkTaskInput(input TaskInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrTitleRequired
	}
	if input.EndTime != nil && input.EndTime.Before(input.StartTime) {
		return ErrInvalidTimeRange
	}
	return nil
}

func resolveEndTime(input TaskInput) time.Time {
	if input.EndTime != nil {
		return *input.EndTime
	}
	return input.StartTime
}

func hasPair(a, b *float64) bool {
	return a != nil && b != nil
}

func travelColumns(info *TravelInfo) (*int, *int, *time.Time) {
	if info == nil {
		return nil, nil, nil
	}
	duration := info.DurationSeconds
	distance := info.DistanceMeters
	departure := info.RecommendedDepartureTime
	return &duration, &distance, &departure
}
