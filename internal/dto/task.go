package dto

import (
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// TravelDisplayDTO carries human readable renderings of the travel columns.
type TravelDisplayDTO struct {
	Duration  *string `json:"duration"`
	Distance  *string `json:"distance"`
	Departure *string `json:"recommended_departure_time"`
}

// TaskDTO represents a task in windowed read responses
type TaskDTO struct {
	ID                       uint64             `json:"task_id"`
	UserID                   uint64             `json:"user_id"`
	Title                    string             `json:"title"`
	Memo                     string             `json:"memo"`
	StartTime                time.Time          `json:"start_time"`
	EndTime                  time.Time          `json:"end_time"`
	Address                  string             `json:"address"`
	PlaceName                string             `json:"place_name"`
	Latitude                 *float64           `json:"latitude"`
	Longitude                *float64           `json:"longitude"`
	FromAddress              string             `json:"from_address"`
	FromPlaceName            string             `json:"from_place_name"`
	FromLat                  *float64           `json:"from_lat"`
	FromLng                  *float64           `json:"from_lng"`
	RouteOption              models.RouteOption `json:"route_option"`
	TravelDuration           *int               `json:"travel_duration"`
	TravelDistance           *int               `json:"travel_distance"`
	RecommendedDepartureTime *time.Time         `json:"recommended_departure_time"`
	TravelDisplay            TravelDisplayDTO   `json:"travel_display"`
	IsCompleted              bool               `json:"is_completed"`
	CreatedAt                time.Time          `json:"created_at"`
	UpdatedAt                time.Time          `json:"updated_at"`
}

// TaskCreatedDTO is returned by task creation
type TaskCreatedDTO struct {
	TaskID uint64 `json:"taskId"`
}

// TaskUpdatedDTO is returned by task update
type TaskUpdatedDTO struct {
	TaskID  uint64 `json:"taskId"`
	Updated bool   `json:"updated"`
}

// TaskDeletedDTO is returned by task deletion
type TaskDeletedDTO struct {
	TaskID  uint64 `json:"taskId"`
	Deleted bool   `json:"deleted"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}
}

// ToTaskDTO converts a Task model to TaskDTO. Instants are rendered in loc.
func ToTaskDTO(task models.Task, loc *time.Location) TaskDTO {
	dto := TaskDTO{
		ID:             task.ID,
		UserID:         task.UserID,
		Title:          task.Title,
		Memo:           task.Memo,
		StartTime:      task.StartTime.In(loc),
		EndTime:        task.EndTime.In(loc),
		Address:        task.Address,
		PlaceName:      task.PlaceName,
		Latitude:       task.Latitude,
		Longitude:      task.Longitude,
		FromAddress:    task.FromAddress,
		FromPlaceName:  task.FromPlaceName,
		FromLat:        task.FromLat,
		FromLng:        task.FromLng,
		RouteOption:    task.RouteOption,
		TravelDuration: task.TravelDuration,
		TravelDistance: task.TravelDistance,
		IsCompleted:    task.IsCompleted,
		CreatedAt:      task.CreatedAt.In(loc),
		UpdatedAt:      task.UpdatedAt.In(loc),
	}

	if task.RecommendedDepartureTime != nil {
		departure := task.RecommendedDepartureTime.In(loc)
		dto.RecommendedDepartureTime = &departure
	}
	dto.TravelDisplay = ToTravelDisplay(task.TravelDuration, task.TravelDistance, task.RecommendedDepartureTime, loc)

	return dto
}

// ToTaskDTOs converts a slice of tasks, never returning nil
func ToTaskDTOs(tasks []models.Task, loc *time.Location) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, loc)
	}
	return items
}
