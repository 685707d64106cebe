package municipality

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees, using the spherical law of cosines.
//
// The acos argument is clamped to [-1, 1]: floating-point rounding can push
// it slightly outside the domain for near-identical points, which would
// otherwise yield NaN.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	arg := math.Cos(rlat1)*math.Cos(rlat2)*math.Cos(dlon) + math.Sin(rlat1)*math.Sin(rlat2)
	arg = math.Min(1, math.Max(-1, arg))

	return EarthRadiusKm * math.Acos(arg)
}
