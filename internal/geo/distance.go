package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371e3

// Distance returns the great-circle distance in meters between two points
// given in signed degrees, using the spherical law of cosines. Coordinates are
// expected to be range-checked by the caller.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaLambda := toRadians(lon2 - lon1)

	cosAngle := math.Sin(phi1)*math.Sin(phi2) + math.Cos(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)
	// Rounding can push the argument just past ±1 for identical or antipodal points.
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return math.Acos(cosAngle) * EarthRadiusMeters
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
