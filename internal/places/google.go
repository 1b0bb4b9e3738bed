package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trashtrack_backend/platform/config"

	"golang.org/x/time/rate"
)

const (
	defaultGoogleBaseURL = "https://maps.googleapis.com/maps/api"
	defaultLanguage      = "en"
	detailsFields        = "name,geometry,formatted_address"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// GoogleConfig configures the Google Places Web Service client.
type GoogleConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
	// QPS caps outgoing requests per second. Zero disables client-side limiting.
	QPS        float64
	HTTPClient *http.Client
}

// GoogleClient talks to the Google Places autocomplete, details and geocoding APIs.
type GoogleClient struct {
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
	limiter  *rate.Limiter
}

var (
	_ Provider = (*GoogleClient)(nil)
	_ Geocoder = (*GoogleClient)(nil)
)

// NewGoogleClient creates a client. Missing settings fall back to the public
// endpoint, English results and a 10s timeout.
func NewGoogleClient(cfg GoogleConfig) *GoogleClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	language := cfg.Language
	if language == "" {
		language = defaultLanguage
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if cfg.QPS > 0 {
		burst := int(cfg.QPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.QPS), burst)
	}

	return &GoogleClient{
		apiKey:   cfg.APIKey,
		baseURL:  baseURL,
		language: language,
		client:   client,
		limiter:  limiter,
	}
}

// NewGoogleClientFromConfig builds a client from application configuration.
func NewGoogleClientFromConfig(cfg config.PlacesConfig) *GoogleClient {
	return NewGoogleClient(GoogleConfig{
		APIKey:  cfg.GetGoogleMapsAPIKey(),
		BaseURL: cfg.GetPlacesBaseURL(),
		Timeout: cfg.GetPlacesRequestTimeout(),
		QPS:     cfg.GetPlacesQPS(),
	})
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		Description          string `json:"description"`
		PlaceID              string `json:"place_id"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       *struct {
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         *struct {
			Location *struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// Search returns autocomplete predictions for query in provider order.
func (c *GoogleClient) Search(ctx context.Context, query string) ([]Prediction, error) {
	const op = "places.search"

	params := url.Values{}
	params.Set("input", query)
	params.Set("key", c.apiKey)
	params.Set("language", c.language)

	var payload autocompleteResponse
	if err := c.get(ctx, op, "/place/autocomplete/json", params, &payload); err != nil {
		return nil, err
	}

	switch payload.Status {
	case statusOK:
	case statusZeroResults:
		return []Prediction{}, nil
	default:
		return nil, &ProviderError{Op: op, Status: payload.Status, Message: payload.ErrorMessage}
	}

	predictions := make([]Prediction, 0, len(payload.Predictions))
	for _, raw := range payload.Predictions {
		predictions = append(predictions, Prediction{
			Description:   raw.Description,
			PlaceID:       raw.PlaceID,
			MainText:      raw.StructuredFormatting.MainText,
			SecondaryText: raw.StructuredFormatting.SecondaryText,
		})
	}
	return predictions, nil
}

// FetchDetails resolves name, address and location for placeID.
func (c *GoogleClient) FetchDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	const op = "places.details"

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("key", c.apiKey)
	params.Set("fields", detailsFields)

	var payload detailsResponse
	if err := c.get(ctx, op, "/place/details/json", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != statusOK || payload.Result == nil {
		status := payload.Status
		if status == statusOK {
			status = "EMPTY_RESULT"
		}
		return nil, &ProviderError{Op: op, Status: status, Message: payload.ErrorMessage}
	}

	details := &PlaceDetails{
		Name:             payload.Result.Name,
		FormattedAddress: payload.Result.FormattedAddress,
	}
	if g := payload.Result.Geometry; g != nil && g.Location != nil {
		details.Location = &LatLng{Lat: g.Location.Lat, Lon: g.Location.Lng}
	}
	return details, nil
}

// ReverseGeocode returns the best formatted address for a coordinate, or
// UnknownLocation when the provider has no match.
func (c *GoogleClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	const op = "places.reverse_geocode"

	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("key", c.apiKey)
	params.Set("language", c.language)

	var payload geocodeResponse
	if err := c.get(ctx, op, "/geocode/json", params, &payload); err != nil {
		return "", err
	}

	switch payload.Status {
	case statusOK:
		if len(payload.Results) == 0 || payload.Results[0].FormattedAddress == "" {
			return UnknownLocation, nil
		}
		return payload.Results[0].FormattedAddress, nil
	case statusZeroResults:
		return UnknownLocation, nil
	default:
		return "", &ProviderError{Op: op, Status: payload.Status, Message: payload.ErrorMessage}
	}
}

func (c *GoogleClient) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Op: op, Err: err}
		}
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Op: op, Status: fmt.Sprintf("HTTP_%d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
