package attendance

import (
	"math"
	"time"

	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/schedule"
)

// StatusEngine derives the stored status and the live view from raw
// timestamps. Every method is a pure function of (record, policy, now): the
// same inputs always produce the same result, so callers may recompute freely.
type StatusEngine struct {
	// DefaultHalfDayHours applies when a policy carries no half-day
	// threshold of its own. Zero disables the fallback.
	DefaultHalfDayHours float64
}

// LateBy returns max(0, round(clockIn - expectedStart)) in minutes, computed
// in the policy timezone.
func (StatusEngine) LateBy(clockIn time.Time, policy schedule.Policy) int {
	start := policy.StartOn(clockIn.In(policy.Location()))
	diff := clockIn.Sub(start).Minutes()
	late := int(math.Round(diff))
	if late < 0 {
		return 0
	}
	return late
}

// Derive computes the stored status for a record.
//
// Precedence: leave/holiday overrides stay untouched, a finalized day below
// the half-day threshold is half_day, a clock-in beyond tolerance is late,
// otherwise present. A record with no clock-in is absent; the caller is
// responsible for checking leave/holiday overrides before materializing it.
func (e StatusEngine) Derive(rec *attendance.AttendanceRecord, policy schedule.Policy, now time.Time) attendance.Status {
	if rec != nil && (rec.Status == attendance.StatusOnLeave || rec.Status == attendance.StatusHoliday) {
		return rec.Status
	}

	if rec == nil || rec.ClockIn == nil {
		return attendance.StatusAbsent
	}

	dayClosed := rec.Finalized() || !now.Before(policy.EndOn(rec.Date))
	if dayClosed {
		threshold := policy.HalfDayBelowHours
		if threshold == 0 {
			threshold = e.DefaultHalfDayHours
		}
		if threshold > 0 && rec.WorkedDuration(now).Hours() < threshold {
			return attendance.StatusHalfDay
		}
	}

	if e.LateBy(*rec.ClockIn, policy) > policy.ToleranceMinutes {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

// Live recomputes the point-in-time view of an employee. not_started,
// checked_out and on_break are display labels only; they are never written
// back to a record.
func (e StatusEngine) Live(employeeID string, rec *attendance.AttendanceRecord, policy schedule.Policy, now time.Time) attendance.LiveStatusResponse {
	resp := attendance.LiveStatusResponse{
		EmployeeID: employeeID,
		AsOf:       now.UTC().Format(time.RFC3339),
	}

	if rec == nil || rec.ClockIn == nil {
		// absent is reserved for a fully elapsed day; while the scheduled day
		// is still running the live view shows not_started instead.
		day := now
		if rec != nil {
			day = rec.Date
		}
		if now.Before(policy.EndOn(day)) {
			resp.Status = "not_started"
		} else {
			resp.Status = string(attendance.StatusAbsent)
		}
		if rec != nil && (rec.Status == attendance.StatusOnLeave || rec.Status == attendance.StatusHoliday) {
			resp.Status = string(rec.Status)
		}
		// Not clocked in yet: lateness counts from the expected start.
		start := policy.StartOn(now.In(policy.Location()))
		if now.After(start) {
			resp.LateByMinutes = int(math.Round(now.Sub(start).Minutes()))
		}
		return resp
	}

	resp.LateByMinutes = e.LateBy(*rec.ClockIn, policy)
	resp.ElapsedWorkMinutes = int(rec.WorkedDuration(now).Minutes())

	switch rec.State() {
	case attendance.StateClockedOut:
		resp.Status = "checked_out"
	case attendance.StateOnBreak:
		resp.Status = "on_break"
		resp.OnBreak = true
	default:
		resp.Status = string(e.Derive(rec, policy, now))
	}

	return resp
}
