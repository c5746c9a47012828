package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/schedule"
	serviceAttendance "github.com/workpulse-hq/attendance-backend-go/internal/service/attendance"
)

type jobStore struct {
	mu        sync.Mutex
	open      []attendance.AttendanceRecord
	scheduled []attendance.ScheduledEmployee
	updated   []attendance.AttendanceRecord
	inserted  []attendance.AttendanceRecord

	insertErr error
	updateErr error
}

func (s *jobStore) Insert(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return attendance.AttendanceRecord{}, s.insertErr
	}
	s.inserted = append(s.inserted, record)
	return record, nil
}

func (s *jobStore) Update(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return attendance.AttendanceRecord{}, s.updateErr
	}
	s.updated = append(s.updated, record)
	return record, nil
}

func (s *jobStore) GetByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time, companyID string) (*attendance.AttendanceRecord, error) {
	return nil, nil
}

func (s *jobStore) GetByID(ctx context.Context, id string, companyID string) (attendance.AttendanceRecord, error) {
	return attendance.AttendanceRecord{}, attendance.ErrRecordNotFound
}

func (s *jobStore) List(ctx context.Context, filter attendance.Filter, companyID string) ([]attendance.AttendanceRecord, int64, error) {
	return nil, 0, nil
}

func (s *jobStore) ListForEmployee(ctx context.Context, employeeID string, filter attendance.Filter, companyID string) ([]attendance.AttendanceRecord, int64, error) {
	return nil, 0, nil
}

func (s *jobStore) ListOpenSessionsBefore(ctx context.Context, cutoff time.Time) ([]attendance.AttendanceRecord, error) {
	return s.open, nil
}

func (s *jobStore) ListScheduledWithoutRecord(ctx context.Context, day time.Time) ([]attendance.ScheduledEmployee, error) {
	return s.scheduled, nil
}

type jobPolicies struct {
	policy         schedule.Policy
	leaveOrHoliday bool
}

func (p *jobPolicies) GetActivePolicy(ctx context.Context, employeeID string, day time.Time, companyID string) (schedule.Policy, error) {
	return p.policy, nil
}

func (p *jobPolicies) HasLeaveOrHoliday(ctx context.Context, employeeID string, day time.Time, companyID string) (bool, error) {
	return p.leaveOrHoliday, nil
}

func jobPolicy() schedule.Policy {
	return schedule.Policy{
		Timezone:          "UTC",
		ExpectedStart:     schedule.ClockTime{Hour: 9, Minute: 0},
		ExpectedEnd:       schedule.ClockTime{Hour: 17, Minute: 0},
		ToleranceMinutes:  15,
		HalfDayBelowHours: 4,
	}
}

func at(day int, hour int) time.Time {
	return time.Date(2026, 8, day, hour, 0, 0, 0, time.UTC)
}

func TestAutoCloseStaleSessions(t *testing.T) {
	clockIn := at(30, 9) // yesterday 09:00
	breakStart := at(30, 12)
	store := &jobStore{
		open: []attendance.AttendanceRecord{
			{
				ID:             "rec-1",
				EmployeeID:     "emp-1",
				CompanyID:      "company-1",
				Date:           at(30, 0),
				ClockIn:        &clockIn,
				BreakIntervals: []attendance.BreakInterval{{Start: breakStart}},
			},
		},
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: jobPolicy()}, serviceAttendance.StatusEngine{})
	jobs.now = func() time.Time { return at(31, 10) }

	err := jobs.AutoCloseStaleSessions(context.Background())
	require.NoError(t, err)

	require.Len(t, store.updated, 1)
	closed := store.updated[0]

	require.NotNil(t, closed.ClockOut)
	assert.Equal(t, at(30, 17), closed.ClockOut.UTC(), "closed at the scheduled end")

	require.NotNil(t, closed.BreakIntervals[0].End)
	assert.Equal(t, at(30, 17), closed.BreakIntervals[0].End.UTC())

	require.NotNil(t, closed.TotalMinutes)
	assert.Equal(t, 180, *closed.TotalMinutes) // 8h minus the 5h runaway break

	assert.True(t, closed.HasFlag(attendance.FlagOutOfWindow))
	assert.Equal(t, attendance.StatusHalfDay, closed.Status)
}

func TestAutoCloseStaleSessions_SkipsDayStillRunning(t *testing.T) {
	clockIn := at(31, 9)
	store := &jobStore{
		open: []attendance.AttendanceRecord{
			{ID: "rec-1", EmployeeID: "emp-1", Date: at(31, 0), ClockIn: &clockIn},
		},
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: jobPolicy()}, serviceAttendance.StatusEngine{})
	jobs.now = func() time.Time { return at(31, 10) } // before the scheduled end

	err := jobs.AutoCloseStaleSessions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, store.updated)
}

func TestAutoCloseStaleSessions_ToleratesConflict(t *testing.T) {
	clockIn := at(30, 9)
	store := &jobStore{
		open: []attendance.AttendanceRecord{
			{ID: "rec-1", EmployeeID: "emp-1", Date: at(30, 0), ClockIn: &clockIn},
		},
		updateErr: attendance.ErrStoreConflict,
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: jobPolicy()}, serviceAttendance.StatusEngine{})
	jobs.now = func() time.Time { return at(31, 10) }

	err := jobs.AutoCloseStaleSessions(context.Background())
	assert.NoError(t, err, "a lost race is not a job failure")
}

func TestMarkAbsentEmployees(t *testing.T) {
	store := &jobStore{
		scheduled: []attendance.ScheduledEmployee{
			{EmployeeID: "emp-1", CompanyID: "company-1"},
		},
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: jobPolicy()}, serviceAttendance.StatusEngine{})
	jobs.now = func() time.Time { return at(31, 10) }

	err := jobs.MarkAbsentEmployees(context.Background())
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	rec := store.inserted[0]
	assert.Equal(t, "emp-1", rec.EmployeeID)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
	assert.Nil(t, rec.ClockIn)
	assert.Equal(t, at(30, 0), rec.Date.UTC())
}

func TestMarkAbsentEmployees_LeaveOverride(t *testing.T) {
	store := &jobStore{
		scheduled: []attendance.ScheduledEmployee{
			{EmployeeID: "emp-1", CompanyID: "company-1"},
		},
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: jobPolicy(), leaveOrHoliday: true}, serviceAttendance.StatusEngine{})
	jobs.now = func() time.Time { return at(31, 10) }

	err := jobs.MarkAbsentEmployees(context.Background())
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, attendance.StatusOnLeave, store.inserted[0].Status)
}

func TestMarkAbsentEmployees_ToleratesExistingRecord(t *testing.T) {
	store := &jobStore{
		scheduled: []attendance.ScheduledEmployee{
			{EmployeeID: "emp-1", CompanyID: "company-1"},
		},
		insertErr: attendance.ErrAlreadyClockedIn,
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: jobPolicy()}, serviceAttendance.StatusEngine{})
	jobs.now = func() time.Time { return at(31, 10) }

	err := jobs.MarkAbsentEmployees(context.Background())
	assert.NoError(t, err)
}

func nightShiftPolicy() schedule.Policy {
	return schedule.Policy{
		Timezone:      "America/Los_Angeles",
		ExpectedStart: schedule.ClockTime{Hour: 22, Minute: 0},
		ExpectedEnd:   schedule.ClockTime{Hour: 6, Minute: 0},
		IsNextDayEnd:  true,
	}
}

func TestMarkAbsentEmployees_AnchorsDayInPolicyTimezone(t *testing.T) {
	store := &jobStore{
		scheduled: []attendance.ScheduledEmployee{
			{EmployeeID: "emp-la", CompanyID: "company-1"},
		},
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: nightShiftPolicy()}, serviceAttendance.StatusEngine{})
	// 00:30 UTC is still the previous afternoon in Los Angeles; the local
	// Aug 30 shift has not even started yet.
	jobs.now = func() time.Time { return time.Date(2026, 8, 31, 0, 30, 0, 0, time.UTC) }

	err := jobs.MarkAbsentEmployees(context.Background())
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	rec := store.inserted[0]
	assert.Equal(t, "2026-08-29", rec.Date.In(loc).Format("2006-01-02"),
		"only the fully elapsed local day is materialized")
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
}

func TestMarkAbsentEmployees_NightShiftStillRunning(t *testing.T) {
	store := &jobStore{
		scheduled: []attendance.ScheduledEmployee{
			{EmployeeID: "emp-la", CompanyID: "company-1"},
		},
	}

	jobs := NewAttendanceJobs(store, &jobPolicies{policy: nightShiftPolicy()}, serviceAttendance.StatusEngine{})
	// 10:00 UTC = 03:00 in Los Angeles; the Aug 30 shift runs until 06:00
	// local on Aug 31, so that day has not elapsed.
	jobs.now = func() time.Time { return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) }

	err := jobs.MarkAbsentEmployees(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.inserted)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()

	var mu sync.Mutex
	ran := map[string]int{}
	s.AddJob("job-a", time.Hour, func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		ran["job-a"]++
		return nil
	})
	s.AddJob("job-b", time.Hour, func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		ran["job-b"]++
		return nil
	})

	s.RunOnce(context.Background())

	assert.Equal(t, 1, ran["job-a"])
	assert.Equal(t, 1, ran["job-b"])
}

func TestScheduler_StartAndStop(t *testing.T) {
	s := NewScheduler()

	var mu sync.Mutex
	count := 0
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		count++
		return nil
	})

	s.Start()
	time.Sleep(10 * time.Millisecond) // jobs run once immediately on start
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count)
}
