package attendance

import (
	"time"
)

// Status is the stored, derived status of an attendance record. Clients never
// set it directly; the status engine recomputes it on every transition.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
	StatusHoliday Status = "holiday"
)

var StatusValues = []string{
	string(StatusPresent),
	string(StatusLate),
	string(StatusAbsent),
	string(StatusHalfDay),
	string(StatusOnLeave),
	string(StatusHoliday),
}

// SessionState is the position of a record in the daily lifecycle:
// NotStarted -> ClockedIn -> OnBreak -> ClockedIn -> ClockedOut (terminal).
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateClockedIn  SessionState = "clocked_in"
	StateOnBreak    SessionState = "on_break"
	StateClockedOut SessionState = "clocked_out"
)

// AnomalyFlag marks a record whose inputs look inconsistent or suspicious.
// Flags are advisory: they annotate, never block.
type AnomalyFlag string

const (
	FlagLocationMismatch    AnomalyFlag = "location_mismatch"
	FlagLowAccuracy         AnomalyFlag = "low_accuracy"
	FlagSpoofingSuspected   AnomalyFlag = "spoofing_suspected"
	FlagMissingVerification AnomalyFlag = "missing_verification"
	FlagOutOfWindow         AnomalyFlag = "out_of_window"
)

// LocationSnapshot is the reported device position at a clock action, annotated
// with the geofence resolution result.
type LocationSnapshot struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Mocked         bool      `json:"mocked"`
	SourceZoneID   *string   `json:"source_zone_id,omitempty"`
	WithinGeofence bool      `json:"within_geofence"`
	DistanceMeters float64   `json:"distance_meters"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// BreakInterval is one entry of the ordered break sequence. At most one
// interval on a record may be open (End == nil).
type BreakInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Duration returns the closed length of the interval, using asOf as the end of
// a still-open interval.
func (b BreakInterval) Duration(asOf time.Time) time.Duration {
	end := asOf
	if b.End != nil {
		end = *b.End
	}
	if end.Before(b.Start) {
		return 0
	}
	return end.Sub(b.Start)
}

// Verification records the presence of the liveness artifact. The artifact
// itself is opaque to the core: present or absent, never inspected.
type Verification struct {
	PhotoPresent      bool     `json:"photo_present"`
	PhotoQualityScore *float64 `json:"photo_quality_score,omitempty"`
	FaceMatchVerified *bool    `json:"face_match_verified,omitempty"`
	ArtifactRef       *string  `json:"artifact_ref,omitempty"`
}

// AttendanceRecord is the single authoritative row for one employee on one
// calendar day. Uniqueness of (employee_id, date) is enforced at upsert time
// by the store, not in process.
type AttendanceRecord struct {
	ID                string
	EmployeeID        string
	CompanyID         string
	Date              time.Time // calendar day in the schedule timezone, truncated
	ClockIn           *time.Time
	ClockOut          *time.Time
	ClockInLocation   *LocationSnapshot
	ClockOutLocation  *LocationSnapshot
	BreakIntervals    []BreakInterval
	Status            Status
	TotalMinutes      *int
	OvertimeMinutes   *int
	LateMinutes       *int
	Verification      Verification
	AnomalyFlags      []AnomalyFlag
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// State derives the session state from the raw timestamps.
func (r *AttendanceRecord) State() SessionState {
	switch {
	case r.ClockIn == nil:
		return StateNotStarted
	case r.ClockOut != nil:
		return StateClockedOut
	case r.OpenBreak() != nil:
		return StateOnBreak
	default:
		return StateClockedIn
	}
}

// OpenBreak returns the currently open break interval, or nil.
func (r *AttendanceRecord) OpenBreak() *BreakInterval {
	for i := range r.BreakIntervals {
		if r.BreakIntervals[i].End == nil {
			return &r.BreakIntervals[i]
		}
	}
	return nil
}

// BreakDuration sums all break intervals, valuing an open interval up to asOf.
func (r *AttendanceRecord) BreakDuration(asOf time.Time) time.Duration {
	var total time.Duration
	for _, b := range r.BreakIntervals {
		total += b.Duration(asOf)
	}
	return total
}

// WorkedDuration is elapsed time since clock-in minus breaks, clamped to >= 0.
// For a closed session asOf is ignored in favor of the clock-out time.
func (r *AttendanceRecord) WorkedDuration(asOf time.Time) time.Duration {
	if r.ClockIn == nil {
		return 0
	}
	end := asOf
	if r.ClockOut != nil {
		end = *r.ClockOut
	}
	worked := end.Sub(*r.ClockIn) - r.BreakDuration(end)
	if worked < 0 {
		return 0
	}
	return worked
}

// HasFlag reports whether the flag is already on the record.
func (r *AttendanceRecord) HasFlag(flag AnomalyFlag) bool {
	for _, f := range r.AnomalyFlags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends a flag if not already present. Flags are never removed.
func (r *AttendanceRecord) AddFlag(flag AnomalyFlag) {
	if !r.HasFlag(flag) {
		r.AnomalyFlags = append(r.AnomalyFlags, flag)
	}
}

// Finalized reports whether the record is closed for the day. A finalized
// record is immutable except for advisory anomaly flags.
func (r *AttendanceRecord) Finalized() bool {
	return r.ClockOut != nil
}
