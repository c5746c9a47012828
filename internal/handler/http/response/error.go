package response

import (
	"errors"
	"net/http"

	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrOutsideGeofence):
		UnprocessableEntity(w, "OUTSIDE_GEOFENCE", err.Error())
	case errors.Is(err, attendance.ErrVerificationMissing):
		UnprocessableEntity(w, "VERIFICATION_MISSING", err.Error())
	case errors.Is(err, attendance.ErrAlreadyClockedIn):
		Conflict(w, "Already clocked in for this date")
	case errors.Is(err, attendance.ErrStoreConflict):
		Conflict(w, "Attendance record was modified concurrently, please retry")
	case errors.Is(err, attendance.ErrNoOpenSession):
		BadRequest(w, "No open attendance session", nil)
	case errors.Is(err, attendance.ErrInvalidState):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrLocationUnavailable):
		ServiceUnavailable(w, err.Error())
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrUnauthorized):
		Unauthorized(w, "Invalid or missing authentication")

	// Schedule domain errors
	case errors.Is(err, schedule.ErrNoPolicyFound):
		NotFound(w, "No active schedule policy for employee")

	// Zone domain errors
	case errors.Is(err, zone.ErrZoneNotFound):
		NotFound(w, "Geofence zone not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
