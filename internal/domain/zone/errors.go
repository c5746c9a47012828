package zone

import "errors"

var ErrZoneNotFound = errors.New("geofence zone not found")
