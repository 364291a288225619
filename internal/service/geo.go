package service

import (
	"math"

	"fleetflow/internal/domain"
)

const earthRadiusMiles = 3958.8

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

func isValidLocation(loc domain.Location) bool {
	return isValidLatitude(loc.Lat) && isValidLongitude(loc.Lng)
}

// haversineMiles returns the great-circle distance between two stops.
func haversineMiles(a, b domain.Location) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
