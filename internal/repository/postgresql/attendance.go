package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/database"
)

type attendanceStore struct {
	db *database.DB
}

func NewAttendanceStore(db *database.DB) attendance.AttendanceStore {
	return &attendanceStore{db: db}
}

const attendanceColumns = `
	id, employee_id, company_id, date,
	clock_in, clock_out,
	clock_in_location, clock_out_location,
	break_intervals, status,
	total_minutes, overtime_minutes, late_minutes,
	verification, anomaly_flags,
	created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.AttendanceRecord, error) {
	var rec attendance.AttendanceRecord
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.Date,
		&rec.ClockIn, &rec.ClockOut,
		&rec.ClockInLocation, &rec.ClockOutLocation,
		&rec.BreakIntervals, &rec.Status,
		&rec.TotalMinutes, &rec.OvertimeMinutes, &rec.LateMinutes,
		&rec.Verification, &rec.AnomalyFlags,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Insert implements attendance.AttendanceStore. The unique constraint on
// (employee_id, date) is the concurrency invariant: when two devices race,
// exactly one insert lands and the loser sees ErrAlreadyClockedIn.
func (s *attendanceStore) Insert(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, s.db)

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.BreakIntervals == nil {
		record.BreakIntervals = []attendance.BreakInterval{}
	}
	if record.AnomalyFlags == nil {
		record.AnomalyFlags = []attendance.AnomalyFlag{}
	}

	query := `
		INSERT INTO attendances (
			id, employee_id, company_id, date,
			clock_in, clock_in_location,
			break_intervals, status, late_minutes,
			verification, anomaly_flags
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID,
		record.EmployeeID,
		record.CompanyID,
		record.Date,
		record.ClockIn,
		record.ClockInLocation,
		record.BreakIntervals,
		record.Status,
		record.LateMinutes,
		record.Verification,
		record.AnomalyFlags,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The conflict target swallowed the insert: a record for this
			// (employee, date) already exists.
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to insert attendance: %w", err)
	}

	return record, nil
}

// Update implements attendance.AttendanceStore. The write is guarded by the
// updated_at the caller read; a lost compare surfaces as ErrStoreConflict.
func (s *attendanceStore) Update(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE attendances SET
			clock_in = $1,
			clock_out = $2,
			clock_in_location = $3,
			clock_out_location = $4,
			break_intervals = $5,
			status = $6,
			total_minutes = $7,
			overtime_minutes = $8,
			late_minutes = $9,
			verification = $10,
			anomaly_flags = $11,
			updated_at = NOW()
		WHERE id = $12 AND company_id = $13 AND updated_at = $14
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ClockIn,
		record.ClockOut,
		record.ClockInLocation,
		record.ClockOutLocation,
		record.BreakIntervals,
		record.Status,
		record.TotalMinutes,
		record.OvertimeMinutes,
		record.LateMinutes,
		record.Verification,
		record.AnomalyFlags,
		record.ID,
		record.CompanyID,
		record.UpdatedAt,
	).Scan(&record.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrStoreConflict
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return record, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceStore.
func (s *attendanceStore) GetByEmployeeAndDate(ctx context.Context, employeeID string, day time.Time, companyID string) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2 AND company_id = $3
		LIMIT 1
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, day, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // no record yet today
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &rec, nil
}

// GetByID implements attendance.AttendanceStore.
func (s *attendanceStore) GetByID(ctx context.Context, id string, companyID string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT` + attendanceColumns + `
		FROM attendances
		WHERE id = $1 AND company_id = $2
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrRecordNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance by ID: %w", err)
	}

	return rec, nil
}

// List implements attendance.AttendanceStore.
func (s *attendanceStore) List(ctx context.Context, filter attendance.Filter, companyID string) ([]attendance.AttendanceRecord, int64, error) {
	baseWhere := "company_id = $1"
	args := []interface{}{companyID}

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		args = append(args, *filter.EmployeeID)
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}

	return s.list(ctx, baseWhere, args, filter)
}

// ListForEmployee implements attendance.AttendanceStore.
func (s *attendanceStore) ListForEmployee(ctx context.Context, employeeID string, filter attendance.Filter, companyID string) ([]attendance.AttendanceRecord, int64, error) {
	baseWhere := "company_id = $1 AND employee_id = $2"
	args := []interface{}{companyID, employeeID}

	return s.list(ctx, baseWhere, args, filter)
}

func (s *attendanceStore) list(ctx context.Context, baseWhere string, args []interface{}, filter attendance.Filter) ([]attendance.AttendanceRecord, int64, error) {
	q := GetQuerier(ctx, s.db)

	if filter.Status != nil && *filter.Status != "" {
		args = append(args, *filter.Status)
		baseWhere += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		args = append(args, *filter.StartDate)
		baseWhere += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		args = append(args, *filter.EndDate)
		baseWhere += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendances WHERE " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	listQuery := fmt.Sprintf(`
		SELECT`+attendanceColumns+`
		FROM attendances
		WHERE %s
		ORDER BY date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, baseWhere, len(args)-1, len(args))

	rows, err := q.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}

	return records, total, nil
}

// ListOpenSessionsBefore implements attendance.AttendanceStore.
func (s *attendanceStore) ListOpenSessionsBefore(ctx context.Context, cutoff time.Time) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT` + attendanceColumns + `
		FROM attendances
		WHERE clock_in IS NOT NULL
		  AND clock_out IS NULL
		  AND date <= $1
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.AttendanceRecord, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan open session row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate open session rows: %w", err)
	}

	return records, nil
}

// ListScheduledWithoutRecord implements attendance.AttendanceStore.
func (s *attendanceStore) ListScheduledWithoutRecord(ctx context.Context, day time.Time) ([]attendance.ScheduledEmployee, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT sa.employee_id, sa.company_id
		FROM schedule_assignments sa
		WHERE $1::date >= sa.start_date
		  AND $1::date <= sa.end_date
		  AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.employee_id = sa.employee_id AND a.date = $1::date
		  )
	`

	rows, err := q.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled employees without records: %w", err)
	}
	defer rows.Close()

	employees := make([]attendance.ScheduledEmployee, 0)
	for rows.Next() {
		var emp attendance.ScheduledEmployee
		if err := rows.Scan(&emp.EmployeeID, &emp.CompanyID); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled employee row: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheduled employee rows: %w", err)
	}

	return employees, nil
}
