package location

import "math"

// Location is a geographic point in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// GetDistance returns the great-circle distance in km between two points.
func GetDistance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	theta := lon1 - lon2
	dist := math.Sin(toRadians(lat1))*math.Sin(toRadians(lat2)) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Cos(toRadians(theta))
	// rounding can push the cosine just past 1 for very close points
	dist = math.Min(1, math.Max(-1, dist))
	dist = toDegrees(math.Acos(dist))
	dist = dist * 60 * 1.1515
	return dist * 1.609344
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
