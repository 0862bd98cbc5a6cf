package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/dto"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/middleware"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/services"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
)

type TaskHandler struct {
	taskService *services.TaskService
	loc         *time.Location
}

func NewTaskHandler(taskService *services.TaskService, loc *time.Location) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		loc:         loc,
	}
}

// taskRequest is the body shared by create and update.
type taskRequest struct {
	Title         string                `json:"title" binding:"required"`
	Memo          string                `json:"memo"`
	StartTime     string                `json:"start_time" binding:"required,instant"`
	EndTime       string                `json:"end_time" binding:"omitempty,instant"`
	Address       string                `json:"address"`
	PlaceName     string                `json:"place_name"`
	Latitude      validation.Coordinate `json:"latitude"`
	Longitude     validation.Coordinate `json:"longitude"`
	FromAddress   string                `json:"from_address"`
	FromPlaceName string                `json:"from_place_name"`
	FromLat       validation.Coordinate `json:"from_lat"`
	FromLng       validation.Coordinate `json:"from_lng"`
	RouteOption   string                `json:"route_option"`
	IsCompleted   validation.FlexBool   `json:"is_completed"`
}

// bindTaskRequest decodes and validates the body, reporting every offending
// field at once. It writes the error response itself and returns false on failure.
func (h *TaskHandler) bindTaskRequest(c *gin.Context) (services.TaskInput, *bool, bool) {
	var req taskRequest
	var fe validation.FieldErrors

	if err := c.ShouldBindJSON(&req); err != nil {
		if !fe.AddValidation(err) {
			apierrors.BadRequest(c, "Invalid request body")
			return services.TaskInput{}, nil, false
		}
	}

	title := strings.TrimSpace(req.Title)
	switch {
	case title == "":
		fe.Add("title", "title is required")
	case utf8.RuneCountInString(title) > constants.MaxTitleLength:
		fe.Add("title", "title must be at most "+strconv.Itoa(constants.MaxTitleLength)+" characters")
	}

	start, startErr := validation.ParseDateTime(req.StartTime, h.loc)
	if req.StartTime != "" && startErr != nil {
		fe.Add("start_time", "start_time must be a valid date-time string")
	}

	var end *time.Time
	if req.EndTime != "" {
		parsed, err := validation.ParseDateTime(req.EndTime, h.loc)
		switch {
		case err != nil:
			fe.Add("end_time", "end_time must be a valid date-time string")
		case startErr == nil && parsed.Before(start):
			fe.Add("end_time", "end_time must not be before start_time")
		default:
			end = &parsed
		}
	}

	checkCoordinatePair(&fe, "latitude", req.Latitude, "longitude", req.Longitude)
	checkCoordinatePair(&fe, "from_lat", req.FromLat, "from_lng", req.FromLng)

	if req.IsCompleted.Invalid {
		fe.Add("is_completed", "is_completed must be a boolean")
	}

	if !fe.Empty() {
		apierrors.BadRequestFields(c, fe.Message(), fe.Fields())
		return services.TaskInput{}, nil, false
	}

	input := services.TaskInput{
		Title:         title,
		Memo:          req.Memo,
		StartTime:     start,
		EndTime:       end,
		Address:       req.Address,
		PlaceName:     req.PlaceName,
		Latitude:      req.Latitude.Ptr(),
		Longitude:     req.Longitude.Ptr(),
		FromAddress:   req.FromAddress,
		FromPlaceName: req.FromPlaceName,
		FromLat:       req.FromLat.Ptr(),
		FromLng:       req.FromLng.Ptr(),
		RouteOption:   req.RouteOption,
	}
	return input, req.IsCompleted.Ptr(), true
}

// checkCoordinatePair requires a latitude/longitude pair to be given together and in range.
func checkCoordinatePair(fe *validation.FieldErrors, latName string, lat validation.Coordinate, lngName string, lng validation.Coordinate) {
	if lat.Invalid {
		fe.Add(latName, latName+" must be a number")
	} else if lat.Present && !lat.InRange(90) {
		fe.Add(latName, latName+" must be between -90 and 90")
	}
	if lng.Invalid {
		fe.Add(lngName, lngName+" must be a number")
	} else if lng.Present && !lng.InRange(180) {
		fe.Add(lngName, lngName+" must be between -180 and 180")
	}

	if lat.Invalid || lng.Invalid {
		return
	}
	if lat.Present && !lng.Present {
		fe.Add(lngName, lngName+" is required when "+latName+" is given")
	}
	if lng.Present && !lat.Present {
		fe.Add(latName, latName+" is required when "+lngName+" is given")
	}
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input, _, ok := h.bindTaskRequest(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		UserID:    userID,
		TaskInput: input,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Created(c, "Task created", dto.TaskCreatedDTO{TaskID: task.ID})
}

// UpdateTask replaces an owned task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	taskID, _ := middleware.GetTaskID(c)

	input, isCompleted, ok := h.bindTaskRequest(c)
	if !ok {
		return
	}

	err := h.taskService.UpdateTask(c.Request.Context(), userID, taskID, services.UpdateTaskInput{
		TaskInput:   input,
		IsCompleted: isCompleted,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, "Task updated", dto.TaskUpdatedDTO{TaskID: taskID, Updated: true})
}

// DeleteTask deletes an owned task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	taskID, _ := middleware.GetTaskID(c)

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, "Task deleted", dto.TaskDeletedDTO{TaskID: taskID, Deleted: true})
}

// TasksByDay lists tasks starting on one day
func (h *TaskHandler) TasksByDay(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var fe validation.FieldErrors
	year := queryInt(c, &fe, "year", constants.MinYear, constants.MaxYear)
	month := queryInt(c, &fe, "month", 1, 12)
	day := queryInt(c, &fe, "day", 1, 31)
	if fe.Empty() && !validation.IsValidDate(year, month, day) {
		fe.Add("day", "day does not exist in the given month")
	}
	if !fe.Empty() {
		apierrors.BadRequestFields(c, fe.Message(), fe.Fields())
		return
	}

	tasks, err := h.taskService.TasksByDay(c.Request.Context(), userID, year, month, day)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	apierrors.Success(c, "Tasks fetched", dto.ToTaskDTOs(tasks, h.loc))
}

// TasksByWeek lists tasks in the given week of a month
func (h *TaskHandler) TasksByWeek(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var fe validation.FieldErrors
	year := queryInt(c, &fe, "year", constants.MinYear, constants.MaxYear)
	month := queryInt(c, &fe, "month", 1, 12)
	week := queryInt(c, &fe, "week", 1, constants.MaxWeekOfMonth)
	if !fe.Empty() {
		apierrors.BadRequestFields(c, fe.Message(), fe.Fields())
		return
	}

	tasks, err := h.taskService.TasksByWeek(c.Request.Context(), userID, year, month, week)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	apierrors.Success(c, "Tasks fetched", dto.ToTaskDTOs(tasks, h.loc))
}

// TasksByMonth lists tasks in a calendar month
func (h *TaskHandler) TasksByMonth(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var fe validation.FieldErrors
	year := queryInt(c, &fe, "year", constants.MinYear, constants.MaxYear)
	month := queryInt(c, &fe, "month", 1, 12)
	if !fe.Empty() {
		apierrors.BadRequestFields(c, fe.Message(), fe.Fields())
		return
	}

	tasks, err := h.taskService.TasksByMonth(c.Request.Context(), userID, year, month)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	apierrors.Success(c, "Tasks fetched", dto.ToTaskDTOs(tasks, h.loc))
}

// TaskPath recomputes travel for an owned task without saving it
func (h *TaskHandler) TaskPath(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	taskID, _ := middleware.GetTaskID(c)

	info, err := h.taskService.ComputeTaskPath(c.Request.Context(), userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	apierrors.Success(c, "Path computed", gin.H{
		"taskId":                     taskID,
		"duration":                   info.DurationSeconds,
		"distance":                   info.DistanceMeters,
		"recommended_departure_time": info.RecommendedDepartureTime.In(h.loc),
		"path":                       info.Path,
		"travel_display":             dto.ToTravelDisplay(&info.DurationSeconds, &info.DistanceMeters, &info.RecommendedDepartureTime, h.loc),
	})
}

// queryInt parses a required integer query parameter within [min, max].
func queryInt(c *gin.Context, fe *validation.FieldErrors, name string, min, max int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		fe.Add(name, name+" is required")
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		fe.Add(name, name+" must be an integer")
		return 0
	}
	if n < min || n > max {
		fe.Add(name, name+" must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
		return 0
	}
	return n
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequestFields(c, err.Error(), []string{"title"})
	case errors.Is(err, services.ErrInvalidTimeRange):
		apierrors.BadRequestFields(c, err.Error(), []string{"end_time"})
	case errors.Is(err, services.ErrInvalidDate):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidWeek):
		apierrors.BadRequestFields(c, err.Error(), []string{"week"})
	case errors.Is(err, services.ErrTravelLocationMissing):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTravelUnavailable):
		_ = c.Error(err)
		apierrors.UpstreamFailure(c, "Failed to compute travel information")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
