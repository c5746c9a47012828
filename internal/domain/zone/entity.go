package zone

import "time"

// AllowedLocation is a geofence zone an employee may clock in from.
// Zones are owned by configuration management; the attendance core only reads them.
type AllowedLocation struct {
	ID                   string
	CompanyID            string
	Name                 string
	Latitude             float64
	Longitude            float64
	RadiusMeters         float64
	Active               bool
	RequiresVerification bool
	TimeWindows          []TimeWindow
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TimeWindow bounds when clock actions are allowed inside a zone.
// Minutes are counted from local midnight in the schedule timezone.
type TimeWindow struct {
	DayOfWeek   int `json:"day_of_week"` // 1=Monday, ..., 7=Sunday
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Allows reports whether t (already in the schedule timezone) falls inside any
// window. A zone without windows allows clock actions at any time.
func (z AllowedLocation) Allows(t time.Time) bool {
	if len(z.TimeWindows) == 0 {
		return true
	}

	day := int(t.Weekday())
	if day == 0 {
		day = 7 // time.Sunday is 0, windows use 7
	}
	minute := t.Hour()*60 + t.Minute()

	for _, w := range z.TimeWindows {
		if w.DayOfWeek == day && minute >= w.StartMinute && minute <= w.EndMinute {
			return true
		}
	}
	return false
}
