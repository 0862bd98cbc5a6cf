package models

import (
	"strings"
	"time"
)

// RouteOption selects the directions profile used for travel estimation.
type RouteOption string

const (
	RouteFast         RouteOption = "trafast"
	RouteComfort      RouteOption = "tracomfort"
	RouteOptimal      RouteOption = "traoptimal"
	RouteAvoidToll    RouteOption = "traavoidtoll"
	RouteAvoidCarOnly RouteOption = "traavoidcaronly"
)

// DefaultRouteOption is stored when none or an unknown option is supplied.
const DefaultRouteOption = RouteFast

// Valid reports whether o is one of the known options.
func (o RouteOption) Valid() bool {
	switch o {
	case RouteFast, RouteComfort, RouteOptimal, RouteAvoidToll, RouteAvoidCarOnly:
		return true
	}
	return false
}

// NormalizeRouteOption trims value and maps unknown or empty values to
// DefaultRouteOption.
func NormalizeRouteOption(value string) RouteOption {
	if o := RouteOption(strings.TrimSpace(value)); o.Valid() {
		return o
	}
	return DefaultRouteOption
}

type Task struct {
	ID                       uint64      `gorm:"column:task_id;primaryKey" json:"task_id"`
	UserID                   uint64      `gorm:"not null;index:idx_tasks_user_start,priority:1" json:"user_id"`
	Title                    string      `gorm:"type:varchar(255);not null" json:"title"`
	Memo                     string      `gorm:"type:text" json:"memo"`
	StartTime                time.Time   `gorm:"not null;index:idx_tasks_user_start,priority:2" json:"start_time"`
	EndTime                  time.Time   `gorm:"not null" json:"end_time"`
	Address                  string      `gorm:"type:varchar(255)" json:"address"`
	PlaceName                string      `gorm:"type:varchar(255)" json:"place_name"`
	Latitude                 *float64    `gorm:"type:decimal(10,7)" json:"latitude"`
	Longitude                *float64    `gorm:"type:decimal(10,7)" json:"longitude"`
	FromAddress              string      `gorm:"type:varchar(255)" json:"from_address"`
	FromPlaceName            string      `gorm:"type:varchar(255)" json:"from_place_name"`
	FromLat                  *float64    `gorm:"type:decimal(10,7)" json:"from_lat"`
	FromLng                  *float64    `gorm:"type:decimal(10,7)" json:"from_lng"`
	RouteOption              RouteOption `gorm:"type:varchar(20);not null;default:'trafast'" json:"route_option"`
	TravelDuration           *int        `json:"travel_duration"`
	TravelDistance           *int        `json:"travel_distance"`
	RecommendedDepartureTime *time.Time  `json:"recommended_departure_time"`
	IsCompleted              bool        `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt                time.Time   `json:"created_at"`
	UpdatedAt                time.Time   `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// HasDestination reports whether both destination coordinates are set.
func (t *Task) HasDestination() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// HasOrigin reports whether both origin coordinates are set.
func (t *Task) HasOrigin() bool {
	return t.FromLat != nil && t.FromLng != nil
}
