package attendance

import (
	"time"

	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/geo"
)

// AnomalyDetector runs after every transition and appends advisory flags to
// the record. It never blocks a transition and never removes a flag; the HR
// correction workflow downstream decides what to do with flagged records.
type AnomalyDetector struct {
	accuracyCeilingM  float64
	maxTravelSpeedKmh float64
}

func NewAnomalyDetector(accuracyCeilingM, maxTravelSpeedKmh float64) *AnomalyDetector {
	return &AnomalyDetector{
		accuracyCeilingM:  accuracyCeilingM,
		maxTravelSpeedKmh: maxTravelSpeedKmh,
	}
}

// InspectClockAction flags a single clock action: distrusted accuracy, a
// mocked provider, teleport-speed travel since the previous reading on the
// record, a missing artifact where the zone demands one, and actions outside
// the zone's allowed time windows.
func (d *AnomalyDetector) InspectClockAction(
	rec *attendance.AttendanceRecord,
	snap attendance.LocationSnapshot,
	prev *attendance.LocationSnapshot,
	resolvedZone *zone.AllowedLocation,
	localTime time.Time,
) {
	if snap.AccuracyMeters > d.accuracyCeilingM {
		rec.AddFlag(attendance.FlagLowAccuracy)
	}

	if snap.Mocked {
		rec.AddFlag(attendance.FlagSpoofingSuspected)
	} else if prev != nil && d.impliedSpeedKmh(*prev, snap) > d.maxTravelSpeedKmh {
		rec.AddFlag(attendance.FlagSpoofingSuspected)
	}

	requiresArtifact := resolvedZone == nil || resolvedZone.RequiresVerification
	if requiresArtifact && !rec.Verification.PhotoPresent {
		rec.AddFlag(attendance.FlagMissingVerification)
	}

	if resolvedZone != nil && !resolvedZone.Allows(localTime) {
		rec.AddFlag(attendance.FlagOutOfWindow)
	}
}

// InspectClosure flags a finalized record whose clock-in and clock-out
// resolved to different, non-overlapping zones.
func (d *AnomalyDetector) InspectClosure(rec *attendance.AttendanceRecord, zones []zone.AllowedLocation) {
	in, out := rec.ClockInLocation, rec.ClockOutLocation
	if in == nil || out == nil || in.SourceZoneID == nil || out.SourceZoneID == nil {
		return
	}
	if *in.SourceZoneID == *out.SourceZoneID {
		return
	}

	zin := findZone(zones, *in.SourceZoneID)
	zout := findZone(zones, *out.SourceZoneID)
	if zin == nil || zout == nil {
		rec.AddFlag(attendance.FlagLocationMismatch)
		return
	}

	centerDist := geo.HaversineDistance(zin.Latitude, zin.Longitude, zout.Latitude, zout.Longitude)
	if centerDist > zin.RadiusMeters+zout.RadiusMeters {
		rec.AddFlag(attendance.FlagLocationMismatch)
	}
}

// impliedSpeedKmh computes the travel speed the two readings imply. A
// non-positive time delta with real displacement (over GPS jitter, ~200 m) is
// treated as implausibly fast.
func (d *AnomalyDetector) impliedSpeedKmh(prev, cur attendance.LocationSnapshot) float64 {
	distM := geo.HaversineDistance(prev.Latitude, prev.Longitude, cur.Latitude, cur.Longitude)
	dt := cur.RecordedAt.Sub(prev.RecordedAt)

	if dt <= 0 {
		if distM > 200 {
			return d.maxTravelSpeedKmh + 1
		}
		return 0
	}

	return (distM / 1000) / dt.Hours()
}

func findZone(zones []zone.AllowedLocation, id string) *zone.AllowedLocation {
	for i := range zones {
		if zones[i].ID == id {
			return &zones[i]
		}
	}
	return nil
}
