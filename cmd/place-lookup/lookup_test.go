package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"trashtrack_backend/internal/places"
	"trashtrack_backend/platform/logger"
)

type fakeProvider struct {
	mu      sync.Mutex
	queries []string
	results map[string][]places.Prediction
	delays  map[string]time.Duration
}

func (f *fakeProvider) Search(ctx context.Context, query string) ([]places.Prediction, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	delay := f.delays[query]
	results := f.results[query]
	f.mu.Unlock()

	if err := sleep(ctx, delay); err != nil {
		return nil, err
	}
	return results, nil
}

func (f *fakeProvider) FetchDetails(_ context.Context, placeID string) (*places.PlaceDetails, error) {
	return &places.PlaceDetails{Name: "Central Park", FormattedAddress: "New York, NY, USA",
		Location: &places.LatLng{Lat: 40.78, Lon: -73.96}}, nil
}

func testOptions(query string, index int) lookupOptions {
	return lookupOptions{
		query:     query,
		index:     index,
		keystroke: time.Millisecond,
		debounce:  20 * time.Millisecond,
		minLength: 3,
	}
}

func TestLookupTypesQueryAndPrintsSelection(t *testing.T) {
	provider := &fakeProvider{results: map[string][]places.Prediction{
		"Central": {
			{Description: "Central Park, New York, NY, USA", PlaceID: "p1"},
			{Description: "Central Station, Amsterdam", PlaceID: "p2"},
		},
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out, status bytes.Buffer
	if err := lookup(ctx, provider, logger.NewNop(), testOptions("Central", 0), &out, &status); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var event places.SelectionEvent
	if err := json.Unmarshal(out.Bytes(), &event); err != nil {
		t.Fatalf("output is not a selection event: %v\n%s", err, out.String())
	}
	if event.Prediction.PlaceID != "p1" || event.Details == nil || event.Details.Name != "Central Park" {
		t.Fatalf("unexpected event %+v", event)
	}
	if !strings.Contains(status.String(), "Central Station") {
		t.Fatalf("expected predictions to be listed, got %q", status.String())
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.queries) != 1 || provider.queries[0] != "Central" {
		t.Fatalf("expected a single debounced search, got %v", provider.queries)
	}
}

func TestLookupFailsWithoutPredictions(t *testing.T) {
	provider := &fakeProvider{results: map[string][]places.Prediction{}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out, status bytes.Buffer
	err := lookup(ctx, provider, logger.NewNop(), testOptions("zzzz", 0), &out, &status)
	if err == nil || !strings.Contains(err.Error(), "no predictions") {
		t.Fatalf("expected no predictions error, got %v", err)
	}
}

func TestLookupRejectsIndexOutOfRange(t *testing.T) {
	provider := &fakeProvider{results: map[string][]places.Prediction{
		"Central": {{Description: "Central Park", PlaceID: "p1"}},
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out, status bytes.Buffer
	err := lookup(ctx, provider, logger.NewNop(), testOptions("Central", 3), &out, &status)
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestLookupIgnoresPrefixResultsWhenTypingSlowly(t *testing.T) {
	provider := &fakeProvider{
		results: map[string][]places.Prediction{
			"Centra":  {{Description: "Centraal Station, Amsterdam", PlaceID: "prefix"}},
			"Central": {{Description: "Central Park, New York, NY, USA", PlaceID: "p1"}},
		},
		delays: map[string]time.Duration{"Central": 80 * time.Millisecond},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := testOptions("Central", 0)
	opts.keystroke = 40 * time.Millisecond

	var out, status bytes.Buffer
	if err := lookup(ctx, provider, logger.NewNop(), opts, &out, &status); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var event places.SelectionEvent
	if err := json.Unmarshal(out.Bytes(), &event); err != nil {
		t.Fatalf("output is not a selection event: %v", err)
	}
	if event.Prediction.PlaceID != "p1" {
		t.Fatalf("selected from a prefix search: %+v", event.Prediction)
	}
}
