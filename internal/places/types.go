// Package places implements location autocomplete for incident reports:
// a Google Places client, a debounced search trigger and a Selector that
// reconciles in-flight searches with user selections.
package places

// Prediction is one candidate place returned by an autocomplete search.
// PlaceID identifies it; provider ordering (best match first) is preserved.
type Prediction struct {
	Description   string `json:"description"`
	PlaceID       string `json:"placeId"`
	MainText      string `json:"mainText"`
	SecondaryText string `json:"secondaryText"`
}

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlaceDetails is the resolved detail for a single place. Every field is optional.
type PlaceDetails struct {
	Name             string  `json:"name,omitempty"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Location         *LatLng `json:"location,omitempty"`
}

// SelectionEvent is emitted exactly once per user selection. Details is nil
// when the place could not be resolved.
type SelectionEvent struct {
	Prediction Prediction    `json:"prediction"`
	Details    *PlaceDetails `json:"details"`
}

// UnknownLocation is returned by reverse geocoding when the provider has no match.
const UnknownLocation = "Unknown Location"
