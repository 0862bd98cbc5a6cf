package database

import (
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/validation"
	"gorm.io/gorm"
)

// OwnedBy restricts a task query to one owner.
func OwnedBy(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// StartsWithin keeps rows whose start_time lies in the window. Bounds are
// compared in UTC, matching how start_time is stored.
func StartsWithin(window validation.Window) func(db *gorm.DB) *gorm.DB {
	bounds := window.UTC()
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("start_time >= ? AND start_time < ?", bounds.Start, bounds.End)
	}
}

// Chronological orders tasks by start_time, ties broken by id.
func Chronological(db *gorm.DB) *gorm.DB {
	return db.Order("start_time ASC").Order("task_id ASC")
}
