package analysis

import (
	"math"

	"github.com/JosephGleason/moveright-backend/internal/pose"
)

// JointAngle computes the angle at vertex b formed by segments b-a and b-c,
// in degrees. The raw atan2 difference is folded so the result always lies
// in [0, 180].
func JointAngle(a, b, c pose.Point) float64 {
	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	angle := math.Abs(radians * 180.0 / math.Pi)

	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// round1 rounds to one decimal place for reporting.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
