package attendance

import (
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/zone"
)

// VerificationGate confirms a verification artifact exists before a clock
// transition is allowed. The artifact is opaque: the gate checks presence
// against the resolved zone's policy and never inspects content. Capture and
// storage of the photo itself happen outside this subsystem.
type VerificationGate struct{}

// Admit returns ErrVerificationMissing when the zone policy requires an
// artifact and none was attached. A nil zone (out-of-zone clock action kept
// under the flag policy) is treated as requiring one.
func (VerificationGate) Admit(artifact *string, resolvedZone *zone.AllowedLocation) error {
	required := resolvedZone == nil || resolvedZone.RequiresVerification
	if required && artifact == nil {
		return attendance.ErrVerificationMissing
	}
	return nil
}

// Snapshot captures the presence-only view of the artifact for the record.
func (VerificationGate) Snapshot(artifact *string, qualityScore *float64, faceMatch *bool) attendance.Verification {
	return attendance.Verification{
		PhotoPresent:      artifact != nil,
		PhotoQualityScore: qualityScore,
		FaceMatchVerified: faceMatch,
		ArtifactRef:       artifact,
	}
}
