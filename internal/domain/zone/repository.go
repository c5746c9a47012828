package zone

import "context"

// ZoneDirectory exposes the active geofence zones for a company.
type ZoneDirectory interface {
	// ListActiveZones returns every active zone, ordered by id for stable tie-breaks
	ListActiveZones(ctx context.Context, companyID string) ([]AllowedLocation, error)
}
