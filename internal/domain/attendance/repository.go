package attendance

import (
	"context"
	"time"
)

// ScheduledEmployee identifies an employee expected to work on a day but with
// no attendance record yet. Consumed by the absence-marking job.
type ScheduledEmployee struct {
	EmployeeID string
	CompanyID  string
}

// AttendanceStore defines data access for attendance records. The store, not
// the service, owns the one-record-per-(employee, date) invariant: Insert is an
// atomic upsert on that key and Update is a compare-and-swap, so concurrent
// writers from multiple devices cannot duplicate or silently overwrite a row.
// All reads include companyID to prevent cross-company access.
type AttendanceStore interface {
	// Insert creates the day's record. Returns ErrAlreadyClockedIn when a
	// record for (employee_id, date) already exists.
	Insert(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// Update replaces the record contents, guarded by the UpdatedAt the caller
	// read. Returns ErrStoreConflict when another writer got there first.
	Update(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// GetByEmployeeAndDate returns the record for the day, or nil when the
	// employee has not clocked in.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time, companyID string) (*AttendanceRecord, error)

	// GetByID retrieves a record with company isolation.
	GetByID(ctx context.Context, id string, companyID string) (AttendanceRecord, error)

	// List retrieves records with filters and pagination (admin view).
	List(ctx context.Context, filter Filter, companyID string) ([]AttendanceRecord, int64, error)

	// ListForEmployee retrieves one employee's records with filters.
	ListForEmployee(ctx context.Context, employeeID string, filter Filter, companyID string) ([]AttendanceRecord, int64, error)

	// ListOpenSessionsBefore returns records still open whose date is at or
	// before the cutoff day. Consumed by the stale-session job.
	ListOpenSessionsBefore(ctx context.Context, cutoff time.Time) ([]AttendanceRecord, error)

	// ListScheduledWithoutRecord returns employees with an active schedule
	// assignment for the day but no attendance record. Consumed by the
	// absence-marking job.
	ListScheduledWithoutRecord(ctx context.Context, day time.Time) ([]ScheduledEmployee, error)
}
