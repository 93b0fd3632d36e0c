package geo

// Point is a latitude/longitude coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
