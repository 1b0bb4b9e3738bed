package places

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

const testDebounce = 40 * time.Millisecond

type fakeProvider struct {
	mu          sync.Mutex
	searches    []string
	detailCalls []string
	search      func(ctx context.Context, query string) ([]Prediction, error)
	fetch       func(ctx context.Context, placeID string) (*PlaceDetails, error)
}

func (f *fakeProvider) Search(ctx context.Context, query string) ([]Prediction, error) {
	f.mu.Lock()
	f.searches = append(f.searches, query)
	fn := f.search
	f.mu.Unlock()
	if fn == nil {
		return []Prediction{}, nil
	}
	return fn(ctx, query)
}

func (f *fakeProvider) FetchDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	f.mu.Lock()
	f.detailCalls = append(f.detailCalls, placeID)
	fn := f.fetch
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("no details")
	}
	return fn(ctx, placeID)
}

func (f *fakeProvider) searchCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeProvider) detailsCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.detailCalls...)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []SelectionEvent
	ch     chan SelectionEvent
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{ch: make(chan SelectionEvent, 16)}
}

func (r *eventRecorder) record(e SelectionEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.ch <- e
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *eventRecorder) next(t *testing.T) SelectionEvent {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for selection event")
		return SelectionEvent{}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var centralPark = Prediction{
	Description:   "Central Park, NY",
	PlaceID:       "p1",
	MainText:      "Central Park",
	SecondaryText: "New York, NY",
}

func TestSelectorShortQueriesNeverSearch(t *testing.T) {
	provider := &fakeProvider{}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	for _, q := range []string{"C", "Ce", "", "Ce"} {
		s.SetQuery(q)
	}
	time.Sleep(3 * testDebounce)

	if calls := provider.searchCalls(); len(calls) != 0 {
		t.Fatalf("expected no searches, got %v", calls)
	}
	st := s.State()
	if len(st.Predictions) != 0 || st.Visible {
		t.Fatalf("expected empty hidden predictions, got %+v", st)
	}
}

func TestSelectorDebouncesRapidEdits(t *testing.T) {
	provider := &fakeProvider{}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	for _, q := range []string{"C", "Ce", "Cen", "Cent", "Centr", "Centra"} {
		s.SetQuery(q)
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, "search", func() bool { return len(provider.searchCalls()) == 1 })
	time.Sleep(3 * testDebounce)

	calls := provider.searchCalls()
	if len(calls) != 1 || calls[0] != "Centra" {
		t.Fatalf("expected one search for Centra, got %v", calls)
	}
}

func TestSelectorDiscardsStaleResponse(t *testing.T) {
	releaseOld := make(chan struct{})
	fresh := Prediction{Description: "Central Station", PlaceID: "p2"}
	stale := Prediction{Description: "Centennial", PlaceID: "p3"}

	provider := &fakeProvider{
		search: func(_ context.Context, query string) ([]Prediction, error) {
			if query == "Cen" {
				// Ignore cancellation so the stale response still arrives.
				<-releaseOld
				return []Prediction{stale}, nil
			}
			return []Prediction{fresh}, nil
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})

	s.SetQuery("Cen")
	waitFor(t, "first search in flight", func() bool { return len(provider.searchCalls()) == 1 })
	if !s.State().Loading {
		t.Fatal("expected loading while the first search is in flight")
	}

	s.SetQuery("Central")
	waitFor(t, "fresh predictions", func() bool {
		st := s.State()
		return len(st.Predictions) == 1 && st.Predictions[0].PlaceID == "p2"
	})

	close(releaseOld)
	s.Close()

	st := s.State()
	if len(st.Predictions) != 1 || st.Predictions[0].PlaceID != "p2" {
		t.Fatalf("stale response overwrote newer predictions: %+v", st.Predictions)
	}
	if st.Loading {
		t.Fatal("expected loading to be cleared")
	}
}

func TestSelectorCancelsSupersededRequest(t *testing.T) {
	cancelled := make(chan error, 1)
	provider := &fakeProvider{
		search: func(ctx context.Context, query string) ([]Prediction, error) {
			if query == "Cen" {
				<-ctx.Done()
				cancelled <- ctx.Err()
				return nil, ctx.Err()
			}
			return []Prediction{centralPark}, nil
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.SetQuery("Cen")
	waitFor(t, "first search in flight", func() bool { return len(provider.searchCalls()) == 1 })
	s.SetQuery("Central")

	select {
	case err := <-cancelled:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}

	waitFor(t, "predictions", func() bool { return s.State().Visible })
}

func TestSelectorSearchFailureClearsLoading(t *testing.T) {
	release := make(chan struct{})
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			<-release
			return nil, &ProviderError{Op: "places.search", Status: "OVER_QUERY_LIMIT"}
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.SetQuery("Cen")
	waitFor(t, "loading", func() bool { return s.State().Loading })
	close(release)
	waitFor(t, "loading cleared", func() bool { return !s.State().Loading })

	st := s.State()
	if len(st.Predictions) != 0 || st.Visible {
		t.Fatalf("expected empty predictions after failure, got %+v", st)
	}
}

func TestSelectorEmitsOnceWithNilDetailsOnFailure(t *testing.T) {
	provider := &fakeProvider{
		fetch: func(context.Context, string) (*PlaceDetails, error) {
			return nil, &TransportError{Op: "places.details", Err: errors.New("connection reset")}
		},
	}
	rec := newEventRecorder()
	s := NewSelector(provider, Options{Debounce: testDebounce, OnPlaceSelected: rec.record})

	s.Select(centralPark)
	event := rec.next(t)
	s.Close()

	if event.Prediction.Description != centralPark.Description || event.Prediction.PlaceID != "p1" {
		t.Fatalf("unexpected prediction in event: %+v", event.Prediction)
	}
	if event.Details != nil {
		t.Fatalf("expected nil details, got %+v", event.Details)
	}
	if n := rec.count(); n != 1 {
		t.Fatalf("expected exactly one event, got %d", n)
	}
}

func TestSelectorSecondTapResolvesIndependently(t *testing.T) {
	releaseFirst := make(chan struct{})
	provider := &fakeProvider{
		fetch: func(_ context.Context, placeID string) (*PlaceDetails, error) {
			if placeID == "p1" {
				<-releaseFirst
			}
			return &PlaceDetails{Name: placeID}, nil
		},
	}
	rec := newEventRecorder()
	s := NewSelector(provider, Options{Debounce: testDebounce, OnPlaceSelected: rec.record})

	second := Prediction{Description: "Bryant Park, NY", PlaceID: "p9"}
	s.Select(centralPark)
	s.Select(second)

	first := rec.next(t)
	if first.Prediction.PlaceID != "p9" || first.Details == nil || first.Details.Name != "p9" {
		t.Fatalf("expected second selection to resolve first, got %+v", first)
	}
	close(releaseFirst)
	last := rec.next(t)
	if last.Prediction.PlaceID != "p1" || last.Details == nil || last.Details.Name != "p1" {
		t.Fatalf("expected first selection with its own details, got %+v", last)
	}
	s.Close()

	if n := rec.count(); n != 2 {
		t.Fatalf("expected two events, got %d", n)
	}
	if s.State().Query != "Bryant Park, NY" {
		t.Fatalf("expected query of the last tap, got %q", s.State().Query)
	}
}

func TestSelectorResetAfterSelectionDoesNotSearch(t *testing.T) {
	provider := &fakeProvider{}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.Select(centralPark)
	if st := s.State(); st.Phase != PhaseSelected {
		t.Fatalf("expected selected phase, got %s", st.Phase)
	}

	// The input echoes the programmatic reset back as a change.
	s.SetQuery(centralPark.Description)
	time.Sleep(3 * testDebounce)

	if calls := provider.searchCalls(); len(calls) != 0 {
		t.Fatalf("reset triggered a search: %v", calls)
	}
	if st := s.State(); st.Phase != PhaseIdle {
		t.Fatalf("expected idle phase after the reset pass, got %s", st.Phase)
	}

	s.SetQuery("Central Park, NYC")
	waitFor(t, "search after real edit", func() bool { return len(provider.searchCalls()) == 1 })
	if calls := provider.searchCalls(); calls[0] != "Central Park, NYC" {
		t.Fatalf("unexpected search %v", calls)
	}
}

func TestSelectorCentralParkScenario(t *testing.T) {
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			return []Prediction{centralPark}, nil
		},
		fetch: func(context.Context, string) (*PlaceDetails, error) {
			return &PlaceDetails{Location: &LatLng{Lat: 40.78, Lon: -73.96}}, nil
		},
	}
	rec := newEventRecorder()
	s := NewSelector(provider, Options{OnPlaceSelected: rec.record})

	s.Focus()
	s.SetQuery("Cen")
	if calls := provider.searchCalls(); len(calls) != 0 {
		t.Fatalf("search fired before the debounce elapsed: %v", calls)
	}
	waitFor(t, "dropdown", func() bool { return s.State().Visible })

	st := s.State()
	if calls := provider.searchCalls(); len(calls) != 1 || calls[0] != "Cen" {
		t.Fatalf("expected one search for Cen, got %v", calls)
	}
	if len(st.Predictions) != 1 || st.Predictions[0] != centralPark {
		t.Fatalf("expected one Central Park prediction, got %+v", st.Predictions)
	}

	if _, ok := s.SelectIndex(0); !ok {
		t.Fatal("expected prediction at index 0")
	}
	st = s.State()
	if len(st.Predictions) != 0 || st.Visible || st.Focused {
		t.Fatalf("expected cleared hidden blurred state after tap, got %+v", st)
	}
	if st.Query != "Central Park, NY" {
		t.Fatalf("expected query reset to description, got %q", st.Query)
	}

	event := rec.next(t)
	s.Close()

	if calls := provider.detailsCalls(); len(calls) != 1 || calls[0] != "p1" {
		t.Fatalf("expected details for p1, got %v", calls)
	}
	if event.Details == nil || event.Details.Location == nil {
		t.Fatalf("expected details with location, got %+v", event.Details)
	}
	if event.Details.Location.Lat != 40.78 || event.Details.Location.Lon != -73.96 {
		t.Fatalf("unexpected location %+v", *event.Details.Location)
	}
	if n := rec.count(); n != 1 {
		t.Fatalf("expected one event, got %d", n)
	}
	if n := len(provider.searchCalls()); n != 1 {
		t.Fatalf("expected no further searches, got %d", n)
	}
}

func TestSelectorClearingHidesWithoutNetwork(t *testing.T) {
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			return []Prediction{centralPark}, nil
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.SetQuery("Cen")
	waitFor(t, "dropdown", func() bool { return s.State().Visible })

	s.SetQuery("")
	st := s.State()
	if len(st.Predictions) != 0 || st.Visible {
		t.Fatalf("expected cleared hidden state, got %+v", st)
	}
	time.Sleep(3 * testDebounce)
	if n := len(provider.searchCalls()); n != 1 {
		t.Fatalf("clearing issued a search: %d calls", n)
	}
}

func TestSelectorDismissHidesResults(t *testing.T) {
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			return []Prediction{centralPark}, nil
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.Focus()
	s.SetQuery("Cen")
	waitFor(t, "dropdown", func() bool { return s.State().Visible })

	s.Dismiss()
	if st := s.State(); st.Visible || len(st.Predictions) != 0 || st.Focused {
		t.Fatalf("expected dismissal to clear and hide, got %+v", st)
	}
}

func TestSelectorOnChangeReportsLoading(t *testing.T) {
	var mu sync.Mutex
	var sawLoading bool
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			return []Prediction{centralPark}, nil
		},
	}
	s := NewSelector(provider, Options{
		Debounce: testDebounce,
		OnChange: func(st State) {
			mu.Lock()
			defer mu.Unlock()
			if st.Loading {
				sawLoading = true
			}
		},
	})
	defer s.Close()

	s.SetQuery("Cen")
	waitFor(t, "dropdown", func() bool { return s.State().Visible })

	mu.Lock()
	defer mu.Unlock()
	if !sawLoading {
		t.Fatal("expected a loading snapshot while the search was in flight")
	}
}

func TestSelectorCloseDropsPendingSearch(t *testing.T) {
	provider := &fakeProvider{}
	s := NewSelector(provider, Options{Debounce: testDebounce})

	s.SetQuery("Cen")
	s.Close()
	time.Sleep(3 * testDebounce)

	if calls := provider.searchCalls(); len(calls) != 0 {
		t.Fatalf("search fired after Close: %v", calls)
	}
}

func TestSelectorSelectionBeatsFiredDebounce(t *testing.T) {
	stale := Prediction{Description: "Centennial", PlaceID: "p3"}
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			return []Prediction{stale}, nil
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.SetQuery("Cen")

	// Let the debounce timer fire while the selector is busy, then apply the
	// selection before the timer's search can take the lock.
	s.mu.Lock()
	time.Sleep(3 * testDebounce)
	s.selectLocked(centralPark)
	s.mu.Unlock()

	s.SetQuery(centralPark.Description)
	time.Sleep(3 * testDebounce)

	if calls := provider.searchCalls(); len(calls) != 0 {
		t.Fatalf("search ran for a superseded query: %v", calls)
	}
	st := s.State()
	if st.Visible || len(st.Predictions) != 0 || st.Query != centralPark.Description {
		t.Fatalf("selection did not stick: %+v", st)
	}
}

func TestSelectorOnChangeMayEchoReset(t *testing.T) {
	provider := &fakeProvider{}
	events := newEventRecorder()

	var s *Selector
	s = NewSelector(provider, Options{
		Debounce:        testDebounce,
		OnPlaceSelected: events.record,
		OnChange: func(st State) {
			// A bound text field writes the reset value back.
			if st.Phase == PhaseSelected {
				s.SetQuery(st.Query)
			}
		},
	})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.Select(centralPark)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Select blocked while OnChange called SetQuery")
	}

	events.next(t)
	time.Sleep(3 * testDebounce)

	st := s.State()
	if st.Phase != PhaseIdle || st.Query != centralPark.Description {
		t.Fatalf("expected idle phase holding the description, got %+v", st)
	}
	if calls := provider.searchCalls(); len(calls) != 0 {
		t.Fatalf("echoed reset triggered a search: %v", calls)
	}
}

func TestSelectorBlurHidesResults(t *testing.T) {
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			return []Prediction{centralPark}, nil
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.Focus()
	s.SetQuery("Cen")
	waitFor(t, "dropdown", func() bool { return s.State().Visible })

	s.Blur()
	if st := s.State(); st.Visible || len(st.Predictions) != 0 || st.Focused {
		t.Fatalf("expected blur to clear and hide, got %+v", st)
	}
}

func TestSelectorFocusDoesNotRestoreClearedList(t *testing.T) {
	provider := &fakeProvider{
		search: func(context.Context, string) ([]Prediction, error) {
			return []Prediction{centralPark}, nil
		},
	}
	s := NewSelector(provider, Options{Debounce: testDebounce})
	defer s.Close()

	s.Focus()
	s.SetQuery("Cen")
	waitFor(t, "dropdown", func() bool { return s.State().Visible })
	s.Blur()

	s.Focus()
	time.Sleep(3 * testDebounce)

	st := s.State()
	if !st.Focused || st.Visible || len(st.Predictions) != 0 {
		t.Fatalf("expected focused input with no list, got %+v", st)
	}
	if n := len(provider.searchCalls()); n != 1 {
		t.Fatalf("focus issued a search: %d calls", n)
	}
}

func TestSelectorSearchCompletingAfterHideShowsResults(t *testing.T) {
	hides := map[string]func(*Selector){
		"blur":    (*Selector).Blur,
		"dismiss": (*Selector).Dismiss,
	}
	for name, hide := range hides {
		t.Run(name, func(t *testing.T) {
			release := make(chan struct{})
			provider := &fakeProvider{
				search: func(context.Context, string) ([]Prediction, error) {
					<-release
					return []Prediction{centralPark}, nil
				},
			}
			s := NewSelector(provider, Options{Debounce: testDebounce})
			defer s.Close()

			s.Focus()
			s.SetQuery("Cen")
			waitFor(t, "search in flight", func() bool { return len(provider.searchCalls()) == 1 })

			hide(s)
			if st := s.State(); st.Visible || !st.Loading {
				t.Fatalf("expected hidden list with search still loading, got %+v", st)
			}

			close(release)
			waitFor(t, "results from the completed search", func() bool { return s.State().Visible })

			st := s.State()
			if st.Focused || st.Loading || len(st.Predictions) != 1 {
				t.Fatalf("unexpected state after late results: %+v", st)
			}
		})
	}
}
