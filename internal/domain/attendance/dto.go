package attendance

import (
	"time"

	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// PositionReading is the device-reported position attached to a clock action.
type PositionReading struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Mocked         bool      `json:"mocked"`
	RecordedAt     time.Time `json:"recorded_at"`
}

func (p PositionReading) validate() validator.ValidationErrors {
	var errs validator.ValidationErrors

	if p.Latitude < -90 || p.Latitude > 90 {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if p.Longitude < -180 || p.Longitude > 180 {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if p.AccuracyMeters < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "accuracy_meters",
			Message: "accuracy_meters must not be negative",
		})
	}

	return errs
}

// PositionErrorValues are the acquisition failure codes a device may report
// instead of a reading.
var PositionErrorValues = []string{"denied", "timeout", "unavailable"}

type ClockInRequest struct {
	Position             *PositionReading `json:"position,omitempty"`
	PositionError        *string          `json:"position_error,omitempty"`
	VerificationArtifact *string          `json:"verification_artifact,omitempty"`
	PhotoQualityScore    *float64         `json:"photo_quality_score,omitempty"`
	FaceMatchVerified    *bool            `json:"face_match_verified,omitempty"`
}

func (r *ClockInRequest) Validate() error {
	return validateClockAction(r.Position, r.PositionError, r.VerificationArtifact)
}

type ClockOutRequest struct {
	Position             *PositionReading `json:"position,omitempty"`
	PositionError        *string          `json:"position_error,omitempty"`
	VerificationArtifact *string          `json:"verification_artifact,omitempty"`
	PhotoQualityScore    *float64         `json:"photo_quality_score,omitempty"`
	FaceMatchVerified    *bool            `json:"face_match_verified,omitempty"`
}

func (r *ClockOutRequest) Validate() error {
	return validateClockAction(r.Position, r.PositionError, r.VerificationArtifact)
}

func validateClockAction(pos *PositionReading, posErr *string, artifact *string) error {
	var errs validator.ValidationErrors

	if pos != nil {
		errs = append(errs, pos.validate()...)
	}

	if pos != nil && posErr != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "position_error",
			Message: "position and position_error are mutually exclusive",
		})
	}

	if posErr != nil && !validator.IsInSlice(*posErr, PositionErrorValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "position_error",
			Message: "position_error must be one of denied, timeout, unavailable",
		})
	}

	if artifact != nil && validator.IsEmpty(*artifact) {
		errs = append(errs, validator.ValidationError{
			Field:   "verification_artifact",
			Message: "verification_artifact must not be blank when present",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Filter narrows list queries. Zero values mean "no filter".
type Filter struct {
	EmployeeID *string
	Status     *string
	StartDate  *string // "2006-01-02"
	EndDate    *string
	Page       int
	Limit      int
}

func (f *Filter) Validate() error {
	var errs validator.ValidationErrors

	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status is not a recognized value",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LocationResponse struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
	SourceZoneID   *string `json:"source_zone_id,omitempty"`
	WithinGeofence bool    `json:"within_geofence"`
	DistanceMeters float64 `json:"distance_meters"`
}

type AttendanceResponse struct {
	ID               string            `json:"id"`
	EmployeeID       string            `json:"employee_id"`
	Date             string            `json:"date"`
	ClockInTime      *string           `json:"clock_in_time,omitempty"`
	ClockOutTime     *string           `json:"clock_out_time,omitempty"`
	ClockInLocation  *LocationResponse `json:"clock_in_location,omitempty"`
	ClockOutLocation *LocationResponse `json:"clock_out_location,omitempty"`
	Breaks           []BreakInterval   `json:"breaks"`
	State            string            `json:"state"`
	Status           string            `json:"status"`
	TotalHours       *float64          `json:"total_hours,omitempty"`
	OvertimeHours    *float64          `json:"overtime_hours,omitempty"`
	LateMinutes      *int              `json:"late_minutes,omitempty"`
	PhotoPresent     bool              `json:"photo_present"`
	AnomalyFlags     []string          `json:"anomaly_flags"`
	CreatedAt        string            `json:"created_at,omitempty"`
	UpdatedAt        string            `json:"updated_at,omitempty"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// LiveStatusResponse is the derived, non-persisted view of an employee at one
// instant. Recomputed on demand; safe to request any number of times.
type LiveStatusResponse struct {
	EmployeeID         string `json:"employee_id"`
	Status             string `json:"status"`
	LateByMinutes      int    `json:"late_by_minutes"`
	ElapsedWorkMinutes int    `json:"elapsed_work_minutes"`
	OnBreak            bool   `json:"on_break"`
	AsOf               string `json:"as_of"`
}
