package maps

import (
	"context"

	"trashtrack_backend/internal/places"
	"trashtrack_backend/platform/apperr"
	"trashtrack_backend/platform/logger"
)

// Lookup is the provider surface the maps service needs.
type Lookup interface {
	places.Provider
	places.Geocoder
}

// Service proxies place lookups so clients never hold the provider key.
type Service struct {
	lookup Lookup
	log    *logger.Logger
}

func NewService(lookup Lookup, log *logger.Logger) *Service {
	return &Service{lookup: lookup, log: log}
}

// Autocomplete is best-effort: provider failures yield an empty list.
func (s *Service) Autocomplete(ctx context.Context, query string) []places.Prediction {
	predictions, err := s.lookup.Search(ctx, query)
	if err != nil {
		s.log.WithContext(ctx).ProviderError("maps.autocomplete", err)
		return []places.Prediction{}
	}
	if predictions == nil {
		return []places.Prediction{}
	}
	return predictions
}

func (s *Service) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetailsResponse, error) {
	details, err := s.lookup.FetchDetails(ctx, placeID)
	if err != nil {
		s.log.WithContext(ctx).ProviderError("maps.place_details", err)
		return nil, apperr.NotFound("place details unavailable")
	}
	return &PlaceDetailsResponse{PlaceID: placeID, PlaceDetails: *details}, nil
}

func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	address, err := s.lookup.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		s.log.WithContext(ctx).ProviderError("maps.reverse_geocode", err)
		return "", apperr.Unavailable("geocoding service unavailable", err)
	}
	return address, nil
}
