package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse-hq/attendance-backend-go/internal/config"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/schedule"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/geo"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/position"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/sse"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/validator"
)

type AttendanceServiceImpl struct {
	store    attendance.AttendanceStore
	zoneDir  zone.ZoneDirectory
	policies schedule.PolicyRepository
	engine   StatusEngine
	detector *AnomalyDetector
	gate     VerificationGate
	hub      *sse.Hub
	cfg      config.AttendanceConfig

	now func() time.Time
}

func NewAttendanceService(
	store attendance.AttendanceStore,
	zoneDir zone.ZoneDirectory,
	policies schedule.PolicyRepository,
	hub *sse.Hub,
	cfg config.AttendanceConfig,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		store:    store,
		zoneDir:  zoneDir,
		policies: policies,
		detector: NewAnomalyDetector(cfg.AccuracyCeilingM, cfg.MaxTravelSpeedKmh),
		engine:   StatusEngine{DefaultHalfDayHours: cfg.HalfDayBelowHours},
		hub:      hub,
		cfg:      cfg,
		now:      time.Now,
	}
}

// claimsFromContext pulls the authenticated identity from the verified JWT.
func claimsFromContext(ctx context.Context) (employeeID, companyID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	companyID, ok = claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	return employeeID, companyID, nil
}

// acquirePosition resolves the device reading within the configured window.
// Device-reported failures and timeouts surface as ErrLocationUnavailable; a
// clock action never proceeds on an unresolved position.
func (a *AttendanceServiceImpl) acquirePosition(ctx context.Context, reported *attendance.PositionReading, reportedErr *string) (position.Reading, error) {
	var src position.Source
	switch {
	case reportedErr != nil:
		src = position.Failed(position.FromCode(*reportedErr))
	case reported != nil:
		recordedAt := reported.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = a.now().UTC()
		}
		src = position.Static(position.Reading{
			Latitude:       reported.Latitude,
			Longitude:      reported.Longitude,
			AccuracyMeters: reported.AccuracyMeters,
			Mocked:         reported.Mocked,
			RecordedAt:     recordedAt,
		})
	default:
		return position.Reading{}, attendance.ErrLocationUnavailable
	}

	reading, err := position.Acquire(ctx, src, a.cfg.LocationTimeout)
	if err != nil {
		if position.IsUnavailable(err) {
			return position.Reading{}, fmt.Errorf("%w: %s", attendance.ErrLocationUnavailable, err)
		}
		return position.Reading{}, err
	}
	return reading, nil
}

// resolveZones evaluates the reading against the company's active zones and
// builds the location snapshot for the record.
func (a *AttendanceServiceImpl) resolveZones(ctx context.Context, companyID string, reading position.Reading) (attendance.LocationSnapshot, geo.Resolution, []zone.AllowedLocation, error) {
	zones, err := a.zoneDir.ListActiveZones(ctx, companyID)
	if err != nil {
		return attendance.LocationSnapshot{}, geo.Resolution{}, nil, fmt.Errorf("failed to list active zones: %w", err)
	}

	res := geo.Resolve(geo.Position{Latitude: reading.Latitude, Longitude: reading.Longitude}, zones)

	snap := attendance.LocationSnapshot{
		Latitude:       reading.Latitude,
		Longitude:      reading.Longitude,
		AccuracyMeters: reading.AccuracyMeters,
		Mocked:         reading.Mocked,
		WithinGeofence: res.WithinAny,
		DistanceMeters: res.DistanceMeters,
		RecordedAt:     reading.RecordedAt,
	}
	if res.Nearest != nil {
		snap.SourceZoneID = &res.Nearest.ID
	}

	return snap, res, zones, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()

	policy, err := a.policies.GetActivePolicy(ctx, employeeID, nowUTC, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	loc := policy.Location()
	nowLocal := nowUTC.In(loc)
	day := dateOnly(nowLocal)

	existing, err := a.store.GetByEmployeeAndDate(ctx, employeeID, day, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check today's record: %w", err)
	}
	if existing != nil && existing.ClockIn != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
	}

	reading, err := a.acquirePosition(ctx, req.Position, req.PositionError)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	snap, res, _, err := a.resolveZones(ctx, companyID, reading)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	outOfZone := !res.WithinAny
	if outOfZone && a.cfg.OutOfZonePolicy == config.OutOfZoneReject {
		return attendance.AttendanceResponse{}, attendance.ErrOutsideGeofence
	}

	var resolvedZone *zone.AllowedLocation
	if res.WithinAny {
		resolvedZone = res.Nearest
	}

	if err := a.gate.Admit(req.VerificationArtifact, resolvedZone); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	lateMinutes := a.engine.LateBy(nowUTC, policy)

	record := attendance.AttendanceRecord{
		EmployeeID:      employeeID,
		CompanyID:       companyID,
		Date:            day,
		ClockIn:         &nowUTC,
		ClockInLocation: &snap,
		Verification:    a.gate.Snapshot(req.VerificationArtifact, req.PhotoQualityScore, req.FaceMatchVerified),
		LateMinutes:     &lateMinutes,
	}
	record.Status = a.engine.Derive(&record, policy, nowUTC)

	if outOfZone {
		// Accepted under the flag policy; annotate for downstream review.
		record.AddFlag(attendance.FlagLocationMismatch)
	}
	a.detector.InspectClockAction(&record, snap, nil, resolvedZone, nowLocal)

	var created attendance.AttendanceRecord
	if existing == nil {
		created, err = a.store.Insert(ctx, record)
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyClockedIn) {
				return attendance.AttendanceResponse{}, attendance.ErrAlreadyClockedIn
			}
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
	} else {
		// A row without a clock-in already exists for today (an absence
		// materialized by the cron job). Claim it in place; a concurrent
		// device that set clock_in first wins the CAS.
		created, err = a.mutateRecord(ctx, employeeID, day, companyID, func(rec *attendance.AttendanceRecord) error {
			if rec.ClockIn != nil {
				return attendance.ErrAlreadyClockedIn
			}
			rec.ClockIn = record.ClockIn
			rec.ClockInLocation = record.ClockInLocation
			rec.Verification = record.Verification
			rec.LateMinutes = record.LateMinutes
			for _, flag := range record.AnomalyFlags {
				rec.AddFlag(flag)
			}
			rec.Status = a.engine.Derive(rec, policy, nowUTC)
			return nil
		})
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
	}

	a.publishLiveStatus(employeeID, &created, policy)

	return mapRecordToResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()

	policy, err := a.policies.GetActivePolicy(ctx, employeeID, nowUTC, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	loc := policy.Location()
	nowLocal := nowUTC.In(loc)
	day := dateOnly(nowLocal)

	reading, err := a.acquirePosition(ctx, req.Position, req.PositionError)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	snap, res, zones, err := a.resolveZones(ctx, companyID, reading)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	var resolvedZone *zone.AllowedLocation
	if res.WithinAny {
		resolvedZone = res.Nearest
	}

	if err := a.gate.Admit(req.VerificationArtifact, resolvedZone); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	updated, err := a.mutateRecord(ctx, employeeID, day, companyID, func(rec *attendance.AttendanceRecord) error {
		if rec.ClockIn == nil || rec.ClockOut != nil {
			return attendance.ErrNoOpenSession
		}

		// An open break ends implicitly when the day ends.
		if open := rec.OpenBreak(); open != nil {
			end := nowUTC
			open.End = &end
		}

		rec.ClockOut = &nowUTC
		rec.ClockOutLocation = &snap
		if req.VerificationArtifact != nil {
			rec.Verification.PhotoPresent = true
			rec.Verification.ArtifactRef = req.VerificationArtifact
		}

		a.finalizeTotals(rec, policy)
		rec.Status = a.engine.Derive(rec, policy, nowUTC)

		prev := rec.ClockInLocation
		a.detector.InspectClockAction(rec, snap, prev, resolvedZone, nowLocal)
		a.detector.InspectClosure(rec, zones)
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.publishLiveStatus(employeeID, &updated, policy)

	return mapRecordToResponse(updated), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context) (attendance.AttendanceResponse, error) {
	return a.breakTransition(ctx, func(rec *attendance.AttendanceRecord, now time.Time) error {
		switch rec.State() {
		case attendance.StateClockedIn:
			rec.BreakIntervals = append(rec.BreakIntervals, attendance.BreakInterval{Start: now})
			return nil
		case attendance.StateNotStarted, attendance.StateClockedOut:
			return attendance.ErrNoOpenSession
		default:
			return attendance.ErrInvalidState
		}
	})
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context) (attendance.AttendanceResponse, error) {
	return a.breakTransition(ctx, func(rec *attendance.AttendanceRecord, now time.Time) error {
		switch rec.State() {
		case attendance.StateOnBreak:
			end := now
			rec.OpenBreak().End = &end
			return nil
		case attendance.StateNotStarted, attendance.StateClockedOut:
			return attendance.ErrNoOpenSession
		default:
			return attendance.ErrInvalidState
		}
	})
}

func (a *AttendanceServiceImpl) breakTransition(ctx context.Context, apply func(rec *attendance.AttendanceRecord, now time.Time) error) (attendance.AttendanceResponse, error) {
	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now().UTC()

	policy, err := a.policies.GetActivePolicy(ctx, employeeID, nowUTC, companyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	day := dateOnly(nowUTC.In(policy.Location()))

	updated, err := a.mutateRecord(ctx, employeeID, day, companyID, func(rec *attendance.AttendanceRecord) error {
		return apply(rec, nowUTC)
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.publishLiveStatus(employeeID, &updated, policy)

	return mapRecordToResponse(updated), nil
}

// mutateRecord reads the day's record, applies the transition and writes it
// back with compare-and-swap. A StoreConflict is retried once against the
// freshly read record before surfacing.
func (a *AttendanceServiceImpl) mutateRecord(ctx context.Context, employeeID string, day time.Time, companyID string, apply func(rec *attendance.AttendanceRecord) error) (attendance.AttendanceRecord, error) {
	for attempt := 0; ; attempt++ {
		current, err := a.store.GetByEmployeeAndDate(ctx, employeeID, day, companyID)
		if err != nil {
			return attendance.AttendanceRecord{}, fmt.Errorf("failed to read today's record: %w", err)
		}
		if current == nil {
			return attendance.AttendanceRecord{}, attendance.ErrNoOpenSession
		}

		// Work on a deep enough copy that a failed apply or CAS retry never
		// leaks partial mutations into the caller-visible record.
		rec := *current
		rec.BreakIntervals = append([]attendance.BreakInterval(nil), current.BreakIntervals...)
		rec.AnomalyFlags = append([]attendance.AnomalyFlag(nil), current.AnomalyFlags...)

		if err := apply(&rec); err != nil {
			return attendance.AttendanceRecord{}, err
		}

		updated, err := a.store.Update(ctx, rec)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, attendance.ErrStoreConflict) || attempt > 0 {
			return attendance.AttendanceRecord{}, err
		}
	}
}

// finalizeTotals computes total and overtime minutes at clock-out, clamped to
// zero.
func (a *AttendanceServiceImpl) finalizeTotals(rec *attendance.AttendanceRecord, policy schedule.Policy) {
	worked := int(rec.WorkedDuration(*rec.ClockOut).Minutes())
	rec.TotalMinutes = &worked

	overtime := 0
	if policy.OvertimeAfterMins > 0 && worked > policy.OvertimeAfterMins {
		overtime = worked - policy.OvertimeAfterMins
	}
	rec.OvertimeMinutes = &overtime
}

// LiveStatus implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) LiveStatus(ctx context.Context, employeeID string) (attendance.LiveStatusResponse, error) {
	requesterID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.LiveStatusResponse{}, err
	}
	if employeeID == "" {
		employeeID = requesterID
	}

	nowUTC := a.now().UTC()

	policy, err := a.policies.GetActivePolicy(ctx, employeeID, nowUTC, companyID)
	if err != nil {
		return attendance.LiveStatusResponse{}, err
	}

	day := dateOnly(nowUTC.In(policy.Location()))
	rec, err := a.store.GetByEmployeeAndDate(ctx, employeeID, day, companyID)
	if err != nil {
		return attendance.LiveStatusResponse{}, fmt.Errorf("failed to read today's record: %w", err)
	}

	return a.engine.Live(employeeID, rec, policy, nowUTC), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.Filter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	employeeID, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.store.ListForEmployee(ctx, employeeID, filter, companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to get my attendance: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.Filter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	_, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.store.List(ctx, filter, companyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	return buildListResponse(records, total, filter), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	_, companyID, err := claimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	// Record ids are UUIDs; anything else cannot exist.
	if !validator.IsValidUUID(id) {
		return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
	}

	rec, err := a.store.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrRecordNotFound
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return mapRecordToResponse(rec), nil
}

func (a *AttendanceServiceImpl) publishLiveStatus(employeeID string, rec *attendance.AttendanceRecord, policy schedule.Policy) {
	if a.hub == nil {
		return
	}
	live := a.engine.Live(employeeID, rec, policy, a.now().UTC())
	a.hub.Publish(employeeID, sse.Event{
		EmployeeID: employeeID,
		Event:      "attendance_status",
		Data:       live,
	})
}

// dateOnly truncates a local time to its calendar day, keeping the location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func mapLocationToResponse(snap *attendance.LocationSnapshot) *attendance.LocationResponse {
	if snap == nil {
		return nil
	}
	return &attendance.LocationResponse{
		Latitude:       snap.Latitude,
		Longitude:      snap.Longitude,
		AccuracyMeters: snap.AccuracyMeters,
		SourceZoneID:   snap.SourceZoneID,
		WithinGeofence: snap.WithinGeofence,
		DistanceMeters: snap.DistanceMeters,
	}
}

// mapRecordToResponse converts an AttendanceRecord to AttendanceResponse
func mapRecordToResponse(rec attendance.AttendanceRecord) attendance.AttendanceResponse {
	var totalHours *float64
	if rec.TotalMinutes != nil {
		hours := float64(*rec.TotalMinutes) / 60.0
		totalHours = &hours
	}

	var overtimeHours *float64
	if rec.OvertimeMinutes != nil {
		hours := float64(*rec.OvertimeMinutes) / 60.0
		overtimeHours = &hours
	}

	flags := make([]string, 0, len(rec.AnomalyFlags))
	for _, f := range rec.AnomalyFlags {
		flags = append(flags, string(f))
	}

	breaks := rec.BreakIntervals
	if breaks == nil {
		breaks = []attendance.BreakInterval{}
	}

	return attendance.AttendanceResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		Date:             rec.Date.Format("2006-01-02"),
		ClockInTime:      timePtrToString(rec.ClockIn),
		ClockOutTime:     timePtrToString(rec.ClockOut),
		ClockInLocation:  mapLocationToResponse(rec.ClockInLocation),
		ClockOutLocation: mapLocationToResponse(rec.ClockOutLocation),
		Breaks:           breaks,
		State:            string(rec.State()),
		Status:           string(rec.Status),
		TotalHours:       totalHours,
		OvertimeHours:    overtimeHours,
		LateMinutes:      rec.LateMinutes,
		PhotoPresent:     rec.Verification.PhotoPresent,
		AnomalyFlags:     flags,
		CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func buildListResponse(records []attendance.AttendanceRecord, total int64, filter attendance.Filter) attendance.ListAttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapRecordToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}
}
