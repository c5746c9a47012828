package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
)

func testDetector() *AnomalyDetector {
	return NewAnomalyDetector(100, 900)
}

func snapshotAt(lat, lon, accuracy float64, at time.Time) attendance.LocationSnapshot {
	return attendance.LocationSnapshot{
		Latitude:       lat,
		Longitude:      lon,
		AccuracyMeters: accuracy,
		RecordedAt:     at,
	}
}

func TestAnomalyDetector_LowAccuracy(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	d.InspectClockAction(rec, snapshotAt(0, 0, 250, day(9, 0)), nil, z, day(9, 0))

	assert.True(t, rec.HasFlag(attendance.FlagLowAccuracy))
	assert.False(t, rec.HasFlag(attendance.FlagSpoofingSuspected))
}

func TestAnomalyDetector_AccuracyAtCeilingNotFlagged(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	d.InspectClockAction(rec, snapshotAt(0, 0, 100, day(9, 0)), nil, z, day(9, 0))

	assert.Empty(t, rec.AnomalyFlags)
}

func TestAnomalyDetector_MockedProvider(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	snap := snapshotAt(0, 0, 10, day(9, 0))
	snap.Mocked = true
	d.InspectClockAction(rec, snap, nil, z, day(9, 0))

	assert.True(t, rec.HasFlag(attendance.FlagSpoofingSuspected))
}

func TestAnomalyDetector_ImpliedSpeedAboveCeiling(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	// ~111km in one minute is far beyond any plausible travel speed.
	prev := snapshotAt(0, 0, 10, day(9, 0))
	cur := snapshotAt(1, 0, 10, day(9, 1))
	d.InspectClockAction(rec, cur, &prev, z, day(9, 1))

	assert.True(t, rec.HasFlag(attendance.FlagSpoofingSuspected))
}

func TestAnomalyDetector_PlausibleTravelNotFlagged(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	// ~111km over 8 hours
	prev := snapshotAt(0, 0, 10, day(9, 0))
	cur := snapshotAt(1, 0, 10, day(17, 0))
	d.InspectClockAction(rec, cur, &prev, z, day(17, 0))

	assert.False(t, rec.HasFlag(attendance.FlagSpoofingSuspected))
}

func TestAnomalyDetector_ZeroDeltaWithDisplacement(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	// Same timestamp, ~1.1km apart: implausibly fast.
	at := day(9, 0)
	prev := snapshotAt(0, 0, 10, at)
	cur := snapshotAt(0.01, 0, 10, at)
	d.InspectClockAction(rec, cur, &prev, z, at)

	assert.True(t, rec.HasFlag(attendance.FlagSpoofingSuspected))
}

func TestAnomalyDetector_ZeroDeltaWithinJitterNotFlagged(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	at := day(9, 0)
	prev := snapshotAt(0, 0, 10, at)
	cur := snapshotAt(0.0005, 0, 10, at) // ~55m, GPS jitter
	d.InspectClockAction(rec, cur, &prev, z, at)

	assert.False(t, rec.HasFlag(attendance.FlagSpoofingSuspected))
}

func TestAnomalyDetector_MissingVerification(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{}
	z := &zone.AllowedLocation{ID: "zone-a", RequiresVerification: true}

	d.InspectClockAction(rec, snapshotAt(0, 0, 10, day(9, 0)), nil, z, day(9, 0))

	assert.True(t, rec.HasFlag(attendance.FlagMissingVerification))
}

func TestAnomalyDetector_MissingVerificationOutOfZone(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{}

	// No resolved zone: verification is still expected.
	d.InspectClockAction(rec, snapshotAt(0, 0, 10, day(9, 0)), nil, nil, day(9, 0))

	assert.True(t, rec.HasFlag(attendance.FlagMissingVerification))
}

func TestAnomalyDetector_VerificationNotRequiredByZone(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{}
	z := &zone.AllowedLocation{ID: "zone-a", RequiresVerification: false}

	d.InspectClockAction(rec, snapshotAt(0, 0, 10, day(9, 0)), nil, z, day(9, 0))

	assert.False(t, rec.HasFlag(attendance.FlagMissingVerification))
}

func TestAnomalyDetector_OutOfWindow(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{
		ID: "zone-a",
		TimeWindows: []zone.TimeWindow{
			{DayOfWeek: 1, StartMinute: 8 * 60, EndMinute: 18 * 60}, // Monday 08:00-18:00
		},
	}

	// 2026-08-31 is a Monday; 22:00 is outside the window.
	d.InspectClockAction(rec, snapshotAt(0, 0, 10, day(22, 0)), nil, z, day(22, 0))
	assert.True(t, rec.HasFlag(attendance.FlagOutOfWindow))

	rec2 := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	d.InspectClockAction(rec2, snapshotAt(0, 0, 10, day(9, 0)), nil, z, day(9, 0))
	assert.False(t, rec2.HasFlag(attendance.FlagOutOfWindow))
}

func TestAnomalyDetector_FlagsNeverDuplicated(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{Verification: attendance.Verification{PhotoPresent: true}}
	z := &zone.AllowedLocation{ID: "zone-a"}

	snap := snapshotAt(0, 0, 250, day(9, 0))
	d.InspectClockAction(rec, snap, nil, z, day(9, 0))
	d.InspectClockAction(rec, snap, nil, z, day(9, 0))

	assert.Equal(t, []attendance.AnomalyFlag{attendance.FlagLowAccuracy}, rec.AnomalyFlags)
}

func closureRecord(inZone, outZone string) *attendance.AttendanceRecord {
	in := attendance.LocationSnapshot{SourceZoneID: &inZone}
	out := attendance.LocationSnapshot{SourceZoneID: &outZone}
	return &attendance.AttendanceRecord{
		ClockInLocation:  &in,
		ClockOutLocation: &out,
	}
}

func TestAnomalyDetector_ClosureSameZone(t *testing.T) {
	d := testDetector()
	rec := closureRecord("zone-a", "zone-a")

	d.InspectClosure(rec, []zone.AllowedLocation{{ID: "zone-a"}})

	assert.False(t, rec.HasFlag(attendance.FlagLocationMismatch))
}

func TestAnomalyDetector_ClosureDistantZones(t *testing.T) {
	d := testDetector()
	rec := closureRecord("zone-a", "zone-b")
	zones := []zone.AllowedLocation{
		{ID: "zone-a", Latitude: 0, Longitude: 0, RadiusMeters: 100},
		{ID: "zone-b", Latitude: 0.01, Longitude: 0, RadiusMeters: 100}, // ~1.1km apart
	}

	d.InspectClosure(rec, zones)

	assert.True(t, rec.HasFlag(attendance.FlagLocationMismatch))
}

func TestAnomalyDetector_ClosureOverlappingZones(t *testing.T) {
	d := testDetector()
	rec := closureRecord("zone-a", "zone-b")
	zones := []zone.AllowedLocation{
		{ID: "zone-a", Latitude: 0, Longitude: 0, RadiusMeters: 600},
		{ID: "zone-b", Latitude: 0.01, Longitude: 0, RadiusMeters: 600}, // radii overlap
	}

	d.InspectClosure(rec, zones)

	assert.False(t, rec.HasFlag(attendance.FlagLocationMismatch))
}

func TestAnomalyDetector_ClosureUnknownZone(t *testing.T) {
	d := testDetector()
	rec := closureRecord("zone-a", "zone-gone")

	d.InspectClosure(rec, []zone.AllowedLocation{{ID: "zone-a"}})

	assert.True(t, rec.HasFlag(attendance.FlagLocationMismatch))
}

func TestAnomalyDetector_ClosureMissingSnapshots(t *testing.T) {
	d := testDetector()
	rec := &attendance.AttendanceRecord{}

	d.InspectClosure(rec, nil)

	assert.Empty(t, rec.AnomalyFlags)
}
