package geo

import (
	"math"

	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
)

// Position is a reported coordinate in decimal degrees.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Resolution is the outcome of matching a position against a set of zones.
// When the zone set is empty, WithinAny is false, Nearest is nil and
// DistanceMeters is +Inf.
type Resolution struct {
	WithinAny      bool
	Nearest        *zone.AllowedLocation
	DistanceMeters float64
}

// Resolve computes the distance from pos to every active zone and reports
// whether any zone contains it. The nearest zone is chosen by strict minimum
// distance; equidistant zones tie-break on the smaller id so the result is
// deterministic regardless of input order. Inactive zones are skipped.
func Resolve(pos Position, zones []zone.AllowedLocation) Resolution {
	result := Resolution{DistanceMeters: math.Inf(1)}

	for i := range zones {
		z := &zones[i]
		if !z.Active {
			continue
		}

		d := HaversineDistance(pos.Latitude, pos.Longitude, z.Latitude, z.Longitude)

		closer := d < result.DistanceMeters
		tie := d == result.DistanceMeters && result.Nearest != nil && z.ID < result.Nearest.ID
		if closer || tie {
			result.Nearest = z
			result.DistanceMeters = d
		}

		if d <= z.RadiusMeters {
			result.WithinAny = true
		}
	}

	return result
}

// HaversineDistance menghitung jarak antara dua titik koordinat dalam Meter.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000 // Jari-jari bumi dalam Meter

	// Konversi ke Radian
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	// Rumus Haversine
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}
