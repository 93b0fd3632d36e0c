// Package place defines the read-only projections of indexed place documents.
// The engine never mutates documents; it only projects a fixed subset of fields
// out of raw index hits.
package place

import "strconv"

// Indexed field names of a place document.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldCategory    = "category"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldZipCode     = "zip_code"
	FieldRegion      = "region"
	FieldRating      = "rating"
	FieldReviewCount = "review_count"
	FieldLat         = "lat"
	FieldLng         = "lng"
	FieldVector      = "vector"
)

// Place is the projection returned by place search and recommendation.
type Place struct {
	ID          string
	Name        string
	Category    string
	Address     string
	Rating      float64
	ReviewCount int
	Lat         float64
	Lng         float64
}

// Event is the projection returned by event search: it carries the zip code
// and omits address and rating.
type Event struct {
	ID       string
	Name     string
	Category string
	ZipCode  string
	Lat      float64
	Lng      float64
}

// FromFields builds a Place from raw hit fields. Heterogeneous index data is
// tolerated: missing category/address default to empty strings and the returned
// slice names the defaulted fields so callers can emit data-quality warnings.
func FromFields(fields map[string]string) (Place, []string) {
	var missing []string

	category, ok := fields[FieldCategory]
	if !ok {
		missing = append(missing, FieldCategory)
	}
	address, ok := fields[FieldAddress]
	if !ok {
		missing = append(missing, FieldAddress)
	}

	return Place{
		ID:          fields[FieldID],
		Name:        fields[FieldName],
		Category:    category,
		Address:     address,
		Rating:      parseFloat(fields[FieldRating]),
		ReviewCount: parseInt(fields[FieldReviewCount]),
		Lat:         parseFloat(fields[FieldLat]),
		Lng:         parseFloat(fields[FieldLng]),
	}, missing
}

// EventFromFields builds an Event from raw hit fields with the same
// missing-field policy as FromFields.
func EventFromFields(fields map[string]string) (Event, []string) {
	var missing []string

	category, ok := fields[FieldCategory]
	if !ok {
		missing = append(missing, FieldCategory)
	}
	zip, ok := fields[FieldZipCode]
	if !ok {
		missing = append(missing, FieldZipCode)
	}

	return Event{
		ID:       fields[FieldID],
		Name:     fields[FieldName],
		Category: category,
		ZipCode:  zip,
		Lat:      parseFloat(fields[FieldLat]),
		Lng:      parseFloat(fields[FieldLng]),
	}, missing
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
