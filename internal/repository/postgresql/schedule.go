package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/database"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) schedule.PolicyRepository {
	return &policyRepository{db: db}
}

// GetActivePolicy implements schedule.PolicyRepository.
func (r *policyRepository) GetActivePolicy(ctx context.Context, employeeID string, day time.Time, companyID string) (schedule.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.company_id, p.timezone,
			   p.expected_start_minute, p.expected_end_minute,
			   p.tolerance_minutes, p.half_day_below_hours,
			   p.overtime_after_minutes, p.is_next_day_end,
			   p.created_at, p.updated_at
		FROM schedule_policies p
		JOIN schedule_assignments sa ON sa.policy_id = p.id
		WHERE sa.employee_id = $1
		  AND sa.company_id = $2
		  AND $3::date >= sa.start_date
		  AND $3::date <= sa.end_date
		ORDER BY sa.start_date DESC
		LIMIT 1
	`

	var p schedule.Policy
	var startMinute, endMinute int
	err := q.QueryRow(ctx, query, employeeID, companyID, day).Scan(
		&p.ID, &p.CompanyID, &p.Timezone,
		&startMinute, &endMinute,
		&p.ToleranceMinutes, &p.HalfDayBelowHours,
		&p.OvertimeAfterMins, &p.IsNextDayEnd,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Policy{}, schedule.ErrNoPolicyFound
		}
		return schedule.Policy{}, fmt.Errorf("failed to get active policy: %w", err)
	}

	p.ExpectedStart = schedule.ClockTime{Hour: startMinute / 60, Minute: startMinute % 60}
	p.ExpectedEnd = schedule.ClockTime{Hour: endMinute / 60, Minute: endMinute % 60}

	return p, nil
}

// HasLeaveOrHoliday implements schedule.PolicyRepository.
func (r *policyRepository) HasLeaveOrHoliday(ctx context.Context, employeeID string, day time.Time, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests lr
			WHERE lr.employee_id = $1
			  AND lr.company_id = $2
			  AND lr.status = 'approved'
			  AND $3::date >= lr.start_date
			  AND $3::date <= lr.end_date
		) OR EXISTS (
			SELECT 1 FROM company_holidays ch
			WHERE ch.company_id = $2 AND ch.date = $3::date
		)
	`

	var excused bool
	if err := q.QueryRow(ctx, query, employeeID, companyID, day).Scan(&excused); err != nil {
		return false, fmt.Errorf("failed to check leave or holiday: %w", err)
	}

	return excused, nil
}
