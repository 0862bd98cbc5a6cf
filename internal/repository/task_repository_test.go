package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kdt5-3rd/kdt5-3rd-back/internal/models"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var kst = time.FixedZone("KST", 9*60*60)

// TaskRepositoryTestSuite exercises GormTaskRepository against in-memory SQLite
type TaskRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	repo  TaskRepository
	ctx   context.Context
	owner *models.User
	other *models.User
}

func (suite *TaskRepositoryTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.AutoMigrate(&models.User{}, &models.Task{}))

	suite.repo = NewTaskRepository(suite.db)
	suite.ctx = context.Background()
	suite.owner = suite.createUser("owner@example.com")
	suite.other = suite.createUser("other@example.com")
}

func (suite *TaskRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskRepositoryTestSuite) createUser(email string) *models.User {
	user := &models.User{Email: email, Username: email, PasswordHash: "hashed"}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskRepositoryTestSuite) createTask(ownerID uint64, title string, start time.Time) *models.Task {
	task := &models.Task{
		UserID:      ownerID,
		Title:       title,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		RouteOption: models.DefaultRouteOption,
	}
	suite.Require().NoError(suite.repo.Create(suite.ctx, task))
	return task
}

func (suite *TaskRepositoryTestSuite) TestCreate_AssignsIDAndStoresUTC() {
	start := time.Date(2025, 2, 5, 23, 0, 0, 0, kst)
	task := suite.createTask(suite.owner.ID, "Dentist", start)

	suite.NotZero(task.ID)

	found, err := suite.repo.FindByID(suite.ctx, suite.owner.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal("Dentist", found.Title)
	suite.True(found.StartTime.Equal(start))
	suite.Nil(found.Latitude)
	suite.Nil(found.TravelDuration)
	suite.False(found.IsCompleted)
}

func (suite *TaskRepositoryTestSuite) TestFindByID_ForeignOwnerIsNotFound() {
	task := suite.createTask(suite.owner.ID, "Private", time.Date(2025, 2, 5, 9, 0, 0, 0, kst))

	_, err := suite.repo.FindByID(suite.ctx, suite.other.ID, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	_, err = suite.repo.FindByID(suite.ctx, suite.owner.ID, task.ID+100)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskRepositoryTestSuite) TestListInWindow_HalfOpenAndOrdered() {
	dayStart := time.Date(2025, 2, 5, 0, 0, 0, 0, kst)
	dayEnd := dayStart.AddDate(0, 0, 1)

	late := suite.createTask(suite.owner.ID, "late", dayStart.Add(20*time.Hour))
	atStart := suite.createTask(suite.owner.ID, "at start", dayStart)
	tieA := suite.createTask(suite.owner.ID, "tie a", dayStart.Add(9*time.Hour))
	tieB := suite.createTask(suite.owner.ID, "tie b", dayStart.Add(9*time.Hour))
	suite.createTask(suite.owner.ID, "at end", dayEnd)
	suite.createTask(suite.owner.ID, "before", dayStart.Add(-time.Second))
	suite.createTask(suite.other.ID, "someone else", dayStart.Add(10*time.Hour))

	tasks, err := suite.repo.ListInWindow(suite.ctx, suite.owner.ID, validation.Window{Start: dayStart, End: dayEnd})
	suite.Require().NoError(err)

	ids := make([]uint64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	suite.Equal([]uint64{atStart.ID, tieA.ID, tieB.ID, late.ID}, ids)
}

func (suite *TaskRepositoryTestSuite) TestListInWindow_RepeatedReadsMatch() {
	window := validation.DayWindow(2025, 2, 5, kst)
	for i, hour := range []int{18, 9, 9, 0, 23} {
		suite.createTask(suite.owner.ID, fmt.Sprintf("task %d", i), window.Start.Add(time.Duration(hour)*time.Hour))
	}

	first, err := suite.repo.ListInWindow(suite.ctx, suite.owner.ID, window)
	suite.Require().NoError(err)
	second, err := suite.repo.ListInWindow(suite.ctx, suite.owner.ID, window)
	suite.Require().NoError(err)

	suite.Require().Len(first, 5)
	suite.Require().Len(second, 5)
	for i := range first {
		suite.Equal(first[i].ID, second[i].ID)
		suite.Equal(first[i].Title, second[i].Title)
		suite.True(first[i].StartTime.Equal(second[i].StartTime))
	}
}

func (suite *TaskRepositoryTestSuite) TestListInWindow_EmptyIsNotNil() {
	tasks, err := suite.repo.ListInWindow(suite.ctx, suite.owner.ID, validation.MonthWindow(2030, 1, kst))
	suite.Require().NoError(err)
	suite.NotNil(tasks)
	suite.Empty(tasks)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_ReplacesFields() {
	task := suite.createTask(suite.owner.ID, "old", time.Date(2025, 2, 5, 9, 0, 0, 0, kst))
	suite.Require().NoError(suite.db.Model(&models.Task{}).
		Where("task_id = ?", task.ID).
		Update("is_completed", true).Error)

	lat, lng := 37.5665, 126.978
	duration, distance := 1200, 8400
	departure := time.Date(2025, 2, 6, 9, 40, 0, 0, kst)
	newStart := time.Date(2025, 2, 6, 10, 0, 0, 0, kst)

	err := suite.repo.Update(suite.ctx, suite.owner.ID, task.ID, TaskUpdate{
		Title:                    "new",
		Memo:                     "bring documents",
		StartTime:                newStart,
		EndTime:                  newStart.Add(time.Hour),
		Latitude:                 &lat,
		Longitude:                &lng,
		FromLat:                  &lat,
		FromLng:                  &lng,
		RouteOption:              models.RouteComfort,
		TravelDuration:           &duration,
		TravelDistance:           &distance,
		RecommendedDepartureTime: &departure,
	})
	suite.Require().NoError(err)

	found, err := suite.repo.FindByID(suite.ctx, suite.owner.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal("new", found.Title)
	suite.Equal("bring documents", found.Memo)
	suite.True(found.StartTime.Equal(newStart))
	suite.Equal(models.RouteComfort, found.RouteOption)
	suite.Require().NotNil(found.Latitude)
	suite.InDelta(lat, *found.Latitude, 1e-7)
	suite.Require().NotNil(found.TravelDuration)
	suite.Equal(1200, *found.TravelDuration)
	suite.Require().NotNil(found.RecommendedDepartureTime)
	suite.True(found.RecommendedDepartureTime.Equal(departure))
	// completion flag untouched when not supplied
	suite.True(found.IsCompleted)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_ClearsTravelAndSetsCompletion() {
	task := suite.createTask(suite.owner.ID, "trip", time.Date(2025, 2, 5, 9, 0, 0, 0, kst))
	duration := 600
	suite.Require().NoError(suite.db.Model(&models.Task{}).
		Where("task_id = ?", task.ID).
		Update("travel_duration", duration).Error)

	done := true
	err := suite.repo.Update(suite.ctx, suite.owner.ID, task.ID, TaskUpdate{
		Title:       "trip",
		StartTime:   task.StartTime,
		EndTime:     task.EndTime,
		RouteOption: models.DefaultRouteOption,
		IsCompleted: &done,
	})
	suite.Require().NoError(err)

	found, err := suite.repo.FindByID(suite.ctx, suite.owner.ID, task.ID)
	suite.Require().NoError(err)
	suite.Nil(found.TravelDuration)
	suite.True(found.IsCompleted)
}

func (suite *TaskRepositoryTestSuite) TestUpdate_ForeignOrMissingIsNotFound() {
	task := suite.createTask(suite.owner.ID, "mine", time.Date(2025, 2, 5, 9, 0, 0, 0, kst))
	fields := TaskUpdate{Title: "hijack", StartTime: task.StartTime, EndTime: task.EndTime, RouteOption: models.DefaultRouteOption}

	suite.ErrorIs(suite.repo.Update(suite.ctx, suite.other.ID, task.ID, fields), ErrTaskNotFound)
	suite.ErrorIs(suite.repo.Update(suite.ctx, suite.owner.ID, 999, fields), ErrTaskNotFound)

	found, err := suite.repo.FindByID(suite.ctx, suite.owner.ID, task.ID)
	suite.Require().NoError(err)
	suite.Equal("mine", found.Title)
}

func (suite *TaskRepositoryTestSuite) TestDelete() {
	task := suite.createTask(suite.owner.ID, "gone", time.Date(2025, 2, 5, 9, 0, 0, 0, kst))

	suite.ErrorIs(suite.repo.Delete(suite.ctx, suite.other.ID, task.ID), ErrTaskNotFound)
	suite.Require().NoError(suite.repo.Delete(suite.ctx, suite.owner.ID, task.ID))
	suite.ErrorIs(suite.repo.Delete(suite.ctx, suite.owner.ID, task.ID), ErrTaskNotFound)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}
