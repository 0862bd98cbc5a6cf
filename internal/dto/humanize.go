package dto

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration renders seconds as whole minutes, rounded up.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d min", int(math.Ceil(float64(seconds)/60)))
}

// FormatDistance renders meters, switching to kilometres with one decimal at 1000 m.
func FormatDistance(meters int) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1f km", float64(meters)/1000)
	}
	return fmt.Sprintf("%d m", meters)
}

// FormatClock renders t as a 12-hour civil clock in loc, e.g. "9:05 AM".
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("3:04 PM")
}

// ToTravelDisplay humanizes whichever travel columns are present.
func ToTravelDisplay(duration, distance *int, departure *time.Time, loc *time.Location) TravelDisplayDTO {
	var out TravelDisplayDTO
	if duration != nil {
		s := FormatDuration(*duration)
		out.Duration = &s
	}
	if distance != nil {
		s := FormatDistance(*distance)
		out.Distance = &s
	}
	if departure != nil {
		s := FormatClock(*departure, loc)
		out.Departure = &s
	}
	return out
}
