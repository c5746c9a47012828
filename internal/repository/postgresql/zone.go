package postgresql

import (
	"context"
	"fmt"

	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/database"
)

type zoneDirectory struct {
	db *database.DB
}

func NewZoneDirectory(db *database.DB) zone.ZoneDirectory {
	return &zoneDirectory{db: db}
}

// ListActiveZones implements zone.ZoneDirectory. Results are ordered by id so
// the evaluator's equidistant tie-break is stable across calls.
func (z *zoneDirectory) ListActiveZones(ctx context.Context, companyID string) ([]zone.AllowedLocation, error) {
	q := GetQuerier(ctx, z.db)

	query := `
		SELECT id, company_id, name, latitude, longitude, radius_meters,
			   active, requires_verification, time_windows,
			   created_at, updated_at
		FROM geofence_zones
		WHERE company_id = $1 AND active = TRUE
		ORDER BY id ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active zones: %w", err)
	}
	defer rows.Close()

	zones := make([]zone.AllowedLocation, 0)
	for rows.Next() {
		var zn zone.AllowedLocation
		err := rows.Scan(
			&zn.ID, &zn.CompanyID, &zn.Name, &zn.Latitude, &zn.Longitude, &zn.RadiusMeters,
			&zn.Active, &zn.RequiresVerification, &zn.TimeWindows,
			&zn.CreatedAt, &zn.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone row: %w", err)
		}
		zones = append(zones, zn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zone rows: %w", err)
	}

	return zones, nil
}
