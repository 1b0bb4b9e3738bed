package maps

import "trashtrack_backend/internal/places"

// AutocompleteRequest represents the query parameters from the frontend.
type AutocompleteRequest struct {
	Query string `form:"q" binding:"required,min=3"`
}

// GeocodeRequest is a coordinate to resolve into an address.
type GeocodeRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

// GeocodeResponse carries the resolved address.
type GeocodeResponse struct {
	Address string `json:"address"`
}

// PlaceDetailsResponse is the details payload returned to the frontend.
type PlaceDetailsResponse struct {
	PlaceID string `json:"placeId"`
	places.PlaceDetails
}
