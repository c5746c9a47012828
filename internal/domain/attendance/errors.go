package attendance

import "errors"

// Attendance domain errors. All of them are recoverable by the caller: each
// failure is scoped to one attempted transition and leaves the stored record
// untouched.
var (
	// Clock action errors
	ErrOutsideGeofence     = errors.New("reported position is outside every allowed zone")
	ErrVerificationMissing = errors.New("verification artifact is required and missing")
	ErrAlreadyClockedIn    = errors.New("you have already clocked in today")
	ErrNoOpenSession       = errors.New("no open attendance session for today")
	ErrInvalidState        = errors.New("action is not valid in the current session state")
	ErrLocationUnavailable = errors.New("device position could not be acquired")

	// Persistence errors
	ErrStoreConflict  = errors.New("attendance record was modified by a concurrent writer")
	ErrRecordNotFound = errors.New("attendance record not found")

	// Claims errors
	ErrUnauthorized = errors.New("unauthorized to access this attendance record")
)
