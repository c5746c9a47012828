package schedule

import (
	"context"
	"time"
)

// PolicyRepository resolves the schedule policy governing an employee on a day.
type PolicyRepository interface {
	// GetActivePolicy returns the policy assigned to the employee for the given
	// day. Returns ErrNoPolicyFound when no assignment covers the day.
	GetActivePolicy(ctx context.Context, employeeID string, day time.Time, companyID string) (Policy, error)

	// HasLeaveOrHoliday reports whether the employee has an approved leave or a
	// company holiday on the given day. Used by status derivation to suppress
	// the absent status.
	HasLeaveOrHoliday(ctx context.Context, employeeID string, day time.Time, companyID string) (bool, error)
}
