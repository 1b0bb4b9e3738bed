package places

import "context"

// Provider resolves free-text queries into predictions and predictions into details.
// Implementations must not cache: every call is a fresh provider request.
type Provider interface {
	Search(ctx context.Context, query string) ([]Prediction, error)
	FetchDetails(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// Geocoder turns a coordinate into a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}
