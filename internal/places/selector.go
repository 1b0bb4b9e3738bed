package places

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"trashtrack_backend/platform/logger"
)

// DefaultMinQueryLength is the shortest query that reaches the provider.
const DefaultMinQueryLength = 3

// Phase is the reconciler state.
type Phase int

const (
	// PhaseIdle means the user may be typing and predictions may be shown.
	PhaseIdle Phase = iota
	// PhaseSelected means a prediction was just picked and the query holds
	// its description until the next change pass.
	PhaseSelected
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// State is a snapshot of the selector for rendering.
type State struct {
	Query       string       `json:"query"`
	Predictions []Prediction `json:"predictions"`
	Visible     bool         `json:"visible"`
	Loading     bool         `json:"loading"`
	Focused     bool         `json:"focused"`
	Phase       Phase        `json:"phase"`
}

// Options configures a Selector.
type Options struct {
	Debounce       time.Duration
	MinQueryLength int
	// OnPlaceSelected receives one event per Select call.
	OnPlaceSelected func(SelectionEvent)
	// OnChange receives a snapshot after state changes. Calls are serialised
	// and changes made while a call runs are coalesced into one later
	// snapshot, so the callback may call back into the Selector.
	OnChange func(State)
	Logger   *logger.Logger
}

// Selector turns keystrokes into debounced searches and taps into
// SelectionEvents. It is safe for concurrent use.
type Selector struct {
	provider        Provider
	minLen          int
	onPlaceSelected func(SelectionEvent)
	onChange        func(State)
	log             *logger.Logger
	debouncer       *Debouncer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	notifyMu   sync.Mutex
	delivering bool
	dirty      bool

	mu           sync.Mutex
	query        string
	predictions  []Prediction
	showResults  bool
	focused      bool
	loading      bool
	phase        Phase
	seq          uint64
	cancelSearch context.CancelFunc
	closed       bool
}

// NewSelector creates a Selector backed by provider.
func NewSelector(provider Provider, opts Options) *Selector {
	minLen := opts.MinQueryLength
	if minLen <= 0 {
		minLen = DefaultMinQueryLength
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Selector{
		provider:        provider,
		minLen:          minLen,
		onPlaceSelected: opts.OnPlaceSelected,
		onChange:        opts.OnChange,
		log:             log,
		debouncer:       NewDebouncer(opts.Debounce),
		ctx:             ctx,
		cancel:          cancel,
	}
}

// SetQuery processes a change of the input text.
func (s *Selector) SetQuery(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.phase == PhaseSelected {
		s.phase = PhaseIdle
		if text == s.query {
			// Echo of the reset done by Select.
			s.mu.Unlock()
			s.notify()
			return
		}
	} else if text == s.query {
		s.mu.Unlock()
		return
	}

	s.query = text
	if utf8.RuneCountInString(text) < s.minLen {
		s.debouncer.Cancel()
		s.invalidateLocked()
		s.predictions = nil
		s.showResults = false
		s.mu.Unlock()
		s.notify()
		return
	}

	s.debouncer.Trigger(text, s.search)
	s.mu.Unlock()
	s.notify()
}

// Select picks a prediction. Details are resolved in the background and
// reported through OnPlaceSelected.
func (s *Selector) Select(p Prediction) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.selectLocked(p)
	s.wg.Add(1)
	ctx := s.ctx
	s.mu.Unlock()
	s.notify()

	go func() {
		defer s.wg.Done()
		s.emit(SelectionEvent{Prediction: p, Details: s.resolveDetails(ctx, p.PlaceID)})
	}()
}

func (s *Selector) selectLocked(p Prediction) {
	s.debouncer.Cancel()
	s.invalidateLocked()
	s.predictions = nil
	s.showResults = false
	s.focused = false
	s.query = p.Description
	s.phase = PhaseSelected
}

// SelectIndex picks the i-th currently displayed prediction.
func (s *Selector) SelectIndex(i int) (Prediction, bool) {
	s.mu.Lock()
	if i < 0 || i >= len(s.predictions) {
		s.mu.Unlock()
		return Prediction{}, false
	}
	p := s.predictions[i]
	s.mu.Unlock()

	s.Select(p)
	return p, true
}

// Focus marks the input focused. Predictions are cleared on every hide, so
// focusing never brings back a list on its own.
func (s *Selector) Focus() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.focused = true
	s.mu.Unlock()
	s.notify()
}

// Blur handles the input losing focus.
func (s *Selector) Blur() {
	s.hide()
}

// Dismiss handles a tap outside the result list.
func (s *Selector) Dismiss() {
	s.hide()
}

// State returns a snapshot of the current state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	var predictions []Prediction
	if len(s.predictions) > 0 {
		predictions = make([]Prediction, len(s.predictions))
		copy(predictions, s.predictions)
	}
	return State{
		Query:       s.query,
		Predictions: predictions,
		Visible:     s.visibleLocked(),
		Loading:     s.loading,
		Focused:     s.focused,
		Phase:       s.phase,
	}
}

// Close stops pending searches, cancels in-flight requests and waits for
// outstanding work. Selections still being resolved emit with nil details.
func (s *Selector) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.debouncer.Stop()
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Selector) search(query string) {
	s.mu.Lock()
	// The debouncer may have fired just before a Select or a short edit
	// took the lock.
	if s.closed || s.phase != PhaseIdle || query != s.query {
		s.mu.Unlock()
		return
	}
	if s.cancelSearch != nil {
		s.cancelSearch()
	}
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelSearch = cancel
	s.loading = true
	s.wg.Add(1)
	s.mu.Unlock()
	s.notify()

	defer s.wg.Done()
	defer cancel()

	predictions, err := s.provider.Search(ctx, query)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			s.log.Debug("places search superseded", "query", query)
		} else {
			s.log.ProviderError("places.search", err)
		}
		predictions = nil
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.loading = false
	s.cancelSearch = nil
	s.predictions = predictions
	s.showResults = len(predictions) > 0
	s.mu.Unlock()
	s.notify()
}

func (s *Selector) resolveDetails(ctx context.Context, placeID string) *PlaceDetails {
	details, err := s.provider.FetchDetails(ctx, placeID)
	if err != nil {
		s.log.ProviderError("places.details", err)
		return nil
	}
	return details
}

func (s *Selector) hide() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.focused = false
	s.predictions = nil
	s.showResults = false
	s.mu.Unlock()
	s.notify()
}

// invalidateLocked makes any in-flight search stale and aborts its request.
func (s *Selector) invalidateLocked() {
	s.seq++
	if s.cancelSearch != nil {
		s.cancelSearch()
		s.cancelSearch = nil
	}
	s.loading = false
}

func (s *Selector) visibleLocked() bool {
	return len(s.predictions) > 0 && s.phase == PhaseIdle && s.showResults
}

func (s *Selector) emit(event SelectionEvent) {
	if s.onPlaceSelected != nil {
		s.onPlaceSelected(event)
	}
}

// notify delivers snapshots one at a time without holding a lock across the
// callback. A call that arrives mid-delivery marks the state dirty and the
// delivering goroutine sends one more snapshot.
func (s *Selector) notify() {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	s.dirty = true
	if s.delivering {
		s.notifyMu.Unlock()
		return
	}
	s.delivering = true
	for s.dirty {
		s.dirty = false
		s.notifyMu.Unlock()
		s.onChange(s.State())
		s.notifyMu.Lock()
	}
	s.delivering = false
	s.notifyMu.Unlock()
}
