package attendance

import (
	"context"
)

// AttendanceService defines business logic for the attendance session
// lifecycle and derived views.
type AttendanceService interface {
	// ClockIn opens the day's session after geofence and verification checks
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes the open session and finalizes totals
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	// StartBreak opens a break interval on the current session
	StartBreak(ctx context.Context) (AttendanceResponse, error)

	// EndBreak closes the open break interval
	EndBreak(ctx context.Context) (AttendanceResponse, error)

	// LiveStatus recomputes the point-in-time status of an employee
	LiveStatus(ctx context.Context, employeeID string) (LiveStatusResponse, error)

	// GetMyAttendance retrieves records for the authenticated employee
	GetMyAttendance(ctx context.Context, filter Filter) (ListAttendanceResponse, error)

	// ListAttendance retrieves records with filters (admin/manager)
	ListAttendance(ctx context.Context, filter Filter) (ListAttendanceResponse, error)

	// GetAttendance retrieves a single record by ID
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
}
