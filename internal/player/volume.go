package player

import "math"

const (
	VolumeCurveExponent = 0.5
	MinVolumeDB         = -10.0
)

// percentToExponent maps 0-100% onto the effects.Volume exponent (base 2)
// with a square-root curve so the low end is not crowded.
func percentToExponent(p float64) float64 {
	if p <= 0 {
		return MinVolumeDB
	}
	if p >= 100 {
		return 0
	}

	normalized := p / 100.0
	adjusted := math.Pow(normalized, VolumeCurveExponent)
	return (1.0 - adjusted) * MinVolumeDB
}
