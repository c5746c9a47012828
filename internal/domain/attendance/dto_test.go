package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpulse-hq/attendance-backend-go/internal/pkg/validator"
)

func strPtr(s string) *string { return &s }

func TestClockInRequest_Validate(t *testing.T) {
	req := ClockInRequest{
		Position:             &PositionReading{Latitude: -6.2, Longitude: 106.8, AccuracyMeters: 15},
		VerificationArtifact: strPtr("photos/x.jpg"),
	}
	assert.NoError(t, req.Validate())
}

func TestClockInRequest_Validate_LatitudeOutOfRange(t *testing.T) {
	req := ClockInRequest{
		Position: &PositionReading{Latitude: 95, Longitude: 0},
	}

	err := req.Validate()
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.ToMap(), "latitude")
}

func TestClockInRequest_Validate_LongitudeOutOfRange(t *testing.T) {
	req := ClockInRequest{
		Position: &PositionReading{Latitude: 0, Longitude: -200},
	}

	err := req.Validate()
	require.Error(t, err)
}

func TestClockInRequest_Validate_NegativeAccuracy(t *testing.T) {
	req := ClockInRequest{
		Position: &PositionReading{Latitude: 0, Longitude: 0, AccuracyMeters: -1},
	}

	err := req.Validate()
	require.Error(t, err)
}

func TestClockInRequest_Validate_PositionAndErrorExclusive(t *testing.T) {
	req := ClockInRequest{
		Position:      &PositionReading{Latitude: 0, Longitude: 0},
		PositionError: strPtr("denied"),
	}

	err := req.Validate()
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs.ToMap(), "position_error")
}

func TestClockInRequest_Validate_UnknownPositionErrorCode(t *testing.T) {
	req := ClockInRequest{PositionError: strPtr("gps-exploded")}

	err := req.Validate()
	require.Error(t, err)
}

func TestClockInRequest_Validate_KnownPositionErrorCodes(t *testing.T) {
	for _, code := range []string{"denied", "timeout", "unavailable"} {
		req := ClockInRequest{PositionError: strPtr(code)}
		assert.NoError(t, req.Validate(), "code %q should validate", code)
	}
}

func TestClockOutRequest_Validate_BlankArtifact(t *testing.T) {
	req := ClockOutRequest{
		Position:             &PositionReading{Latitude: 0, Longitude: 0},
		VerificationArtifact: strPtr("   "),
	}

	err := req.Validate()
	require.Error(t, err)
}

func TestFilter_Validate(t *testing.T) {
	f := Filter{Status: strPtr("late"), StartDate: strPtr("2026-08-01"), EndDate: strPtr("2026-08-31")}
	require.NoError(t, f.Validate())

	bad := Filter{Status: strPtr("vacationing")}
	assert.Error(t, bad.Validate())

	badDate := Filter{StartDate: strPtr("31-08-2026")}
	assert.Error(t, badDate.Validate())
}

func TestFilter_Validate_NormalizesPagination(t *testing.T) {
	f := Filter{Page: 0, Limit: 0}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	f = Filter{Page: -3, Limit: 500}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
}
