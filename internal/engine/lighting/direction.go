package lighting

import (
	gomath "math"

	"github.com/Faultbox/lumen/pkg/math"
)

// DirectionFromAngles converts an azimuth (rotation around Y) and an
// elevation above the horizon, both in degrees, into a unit direction.
// Azimuth 0 and elevation 0 point along +Z.
func DirectionFromAngles(azimuth, elevation float32) math.Vec3 {
	lonRad := float64(azimuth) * gomath.Pi / 180.0
	latRad := float64(elevation) * gomath.Pi / 180.0

	return math.Vec3{
		X: float32(gomath.Cos(latRad) * gomath.Sin(lonRad)),
		Y: float32(gomath.Sin(latRad)),
		Z: float32(gomath.Cos(latRad) * gomath.Cos(lonRad)),
	}
}
