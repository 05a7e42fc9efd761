// Package geo holds the great-circle helpers used for nearby searches.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius.
const EarthRadiusKm = 6371.0

// Haversine returns the distance in kilometers between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// LngRange is an inclusive longitude interval with Min <= Max.
type LngRange struct {
	Min, Max float64
}

// Box is a latitude band plus one longitude range, or two when the box
// crosses the antimeridian.
type Box struct {
	MinLat, MaxLat float64
	Lng            []LngRange
}

// BoundingBox returns a box that contains every point within radiusKm of the
// center. It is a cheap prefilter; callers still check Haversine.
func BoundingBox(lat, lng, radiusKm float64) Box {
	dLat := radiusKm / EarthRadiusKm * 180 / math.Pi
	box := Box{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
	}
	cos := math.Cos(toRad(lat))
	// near a pole every longitude is in reach
	if cos <= 1e-9 || box.MinLat == -90 || box.MaxLat == 90 || dLat/cos >= 180 {
		box.Lng = []LngRange{{-180, 180}}
		return box
	}
	dLng := dLat / cos
	lo, hi := lng-dLng, lng+dLng
	switch {
	case lo < -180:
		box.Lng = []LngRange{{-180, hi}, {lo + 360, 180}}
	case hi > 180:
		box.Lng = []LngRange{{-180, hi - 360}, {lo, 180}}
	default:
		box.Lng = []LngRange{{lo, hi}}
	}
	return box
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }
