package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/schedule"
	serviceAttendance "github.com/workpulse-hq/attendance-backend-go/internal/service/attendance"
)

// AttendanceJobs materializes statuses the live view only derives: absent
// rows for employees who never clocked in, and closure of sessions left open
// past their scheduled end.
type AttendanceJobs struct {
	store    attendance.AttendanceStore
	policies schedule.PolicyRepository
	engine   serviceAttendance.StatusEngine

	now func() time.Time
}

func NewAttendanceJobs(store attendance.AttendanceStore, policies schedule.PolicyRepository, engine serviceAttendance.StatusEngine) *AttendanceJobs {
	return &AttendanceJobs{
		store:    store,
		policies: policies,
		engine:   engine,
		now:      time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("auto_close_stale_sessions", 1*time.Hour, j.AutoCloseStaleSessions)
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// AutoCloseStaleSessions closes sessions still open after their scheduled end
// has passed. Closure behaves like a late clock-out at the scheduled end: the
// open break is closed, totals are computed, status is recomputed, and the
// record is flagged out_of_window for review.
func (j *AttendanceJobs) AutoCloseStaleSessions(ctx context.Context) error {
	nowUTC := j.now().UTC()
	cutoff := nowUTC.AddDate(0, 0, -1)

	stale, err := j.store.ListOpenSessionsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale sessions: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	closedCount := 0
	for _, rec := range stale {
		policy, err := j.policies.GetActivePolicy(ctx, rec.EmployeeID, rec.Date, rec.CompanyID)
		if err != nil {
			slog.Error("Cron: no policy for stale session", "employee_id", rec.EmployeeID, "date", rec.Date, "error", err)
			continue
		}

		end := policy.EndOn(rec.Date)
		if nowUTC.Before(end) {
			continue
		}
		if rec.ClockIn != nil && end.Before(*rec.ClockIn) {
			end = *rec.ClockIn
		}

		if open := rec.OpenBreak(); open != nil {
			closeAt := end
			if closeAt.Before(open.Start) {
				closeAt = open.Start
			}
			open.End = &closeAt
		}

		rec.ClockOut = &end
		worked := int(rec.WorkedDuration(end).Minutes())
		rec.TotalMinutes = &worked
		overtime := 0
		if policy.OvertimeAfterMins > 0 && worked > policy.OvertimeAfterMins {
			overtime = worked - policy.OvertimeAfterMins
		}
		rec.OvertimeMinutes = &overtime
		rec.Status = j.engine.Derive(&rec, policy, end)
		rec.AddFlag(attendance.FlagOutOfWindow)

		if _, err := j.store.Update(ctx, rec); err != nil {
			// A concurrent clock-out won the race; the next run skips this row.
			if !errors.Is(err, attendance.ErrStoreConflict) {
				slog.Error("Cron: failed to auto-close session", "record_id", rec.ID, "error", err)
			}
			continue
		}
		closedCount++
	}

	slog.Info("Cron: auto-closed stale sessions", "count", closedCount)
	return nil
}

// MarkAbsentEmployees writes absent (or on_leave/holiday) rows for employees
// whose scheduled day fully elapsed with no clock-in.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	nowUTC := j.now().UTC()
	candidateDay := nowUTC.AddDate(0, 0, -1).Truncate(24 * time.Hour)

	missing, err := j.store.ListScheduledWithoutRecord(ctx, candidateDay)
	if err != nil {
		return fmt.Errorf("failed to list employees without records: %w", err)
	}

	markedCount := 0
	for _, emp := range missing {
		policy, err := j.policies.GetActivePolicy(ctx, emp.EmployeeID, candidateDay, emp.CompanyID)
		if err != nil {
			continue
		}

		// The absence day is yesterday on the employee's local calendar, not
		// yesterday in UTC; for negative offsets those differ around midnight.
		localNow := nowUTC.In(policy.Location())
		day := time.Date(localNow.Year(), localNow.Month(), localNow.Day(),
			0, 0, 0, 0, policy.Location()).AddDate(0, 0, -1)

		if localNow.Before(policy.EndOn(day)) {
			// Night shifts run past local midnight; the day has not fully
			// elapsed until the scheduled end passes.
			continue
		}

		existing, err := j.store.GetByEmployeeAndDate(ctx, emp.EmployeeID, day, emp.CompanyID)
		if err != nil {
			slog.Error("Cron: failed to check existing record", "employee_id", emp.EmployeeID, "error", err)
			continue
		}
		if existing != nil {
			continue
		}

		status := attendance.StatusAbsent
		excused, err := j.policies.HasLeaveOrHoliday(ctx, emp.EmployeeID, day, emp.CompanyID)
		if err != nil {
			slog.Error("Cron: failed to check leave override", "employee_id", emp.EmployeeID, "error", err)
			continue
		}
		if excused {
			status = attendance.StatusOnLeave
		}

		record := attendance.AttendanceRecord{
			EmployeeID: emp.EmployeeID,
			CompanyID:  emp.CompanyID,
			Date:       day,
			Status:     status,
		}

		if _, err := j.store.Insert(ctx, record); err != nil {
			// A concurrent writer created the row; leave it alone.
			if !errors.Is(err, attendance.ErrAlreadyClockedIn) {
				slog.Error("Cron: failed to mark absence", "employee_id", emp.EmployeeID, "error", err)
			}
			continue
		}
		markedCount++
	}

	slog.Info("Cron: marked absentees", "count", markedCount)
	return nil
}
