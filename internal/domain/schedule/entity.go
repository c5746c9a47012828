package schedule

import "time"

// Policy is the expected-attendance contract for one employee on one calendar day.
// Schedule management is out of scope; the attendance core only reads policies.
type Policy struct {
	ID                string
	CompanyID         string
	Timezone          string // IANA name, e.g. "Asia/Jakarta"
	ExpectedStart     ClockTime
	ExpectedEnd       ClockTime
	ToleranceMinutes  int
	HalfDayBelowHours float64
	OvertimeAfterMins int
	IsNextDayEnd      bool // night shifts end on the following calendar day
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ClockTime is a wall-clock time of day, independent of date.
type ClockTime struct {
	Hour   int
	Minute int
}

// Location resolves the policy timezone, falling back to UTC for bad data.
func (p Policy) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StartOn anchors the expected start time to the given calendar day in the
// policy timezone.
func (p Policy) StartOn(day time.Time) time.Time {
	loc := p.Location()
	local := day.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(),
		p.ExpectedStart.Hour, p.ExpectedStart.Minute, 0, 0, loc)
}

// EndOn anchors the expected end time to the given calendar day, rolling to the
// next day for night shifts.
func (p Policy) EndOn(day time.Time) time.Time {
	loc := p.Location()
	local := day.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(),
		p.ExpectedEnd.Hour, p.ExpectedEnd.Minute, 0, 0, loc)
	if p.IsNextDayEnd {
		end = end.AddDate(0, 0, 1)
	}
	return end
}
