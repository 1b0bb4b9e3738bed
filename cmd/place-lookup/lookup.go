package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"trashtrack_backend/internal/places"
	"trashtrack_backend/platform/config"
	"trashtrack_backend/platform/logger"
)

type lookupOptions struct {
	query     string
	index     int
	keystroke time.Duration
	debounce  time.Duration
	minLength int
}

func runLookup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadPlaces()
	if err != nil {
		return err
	}

	query, _ := cmd.Flags().GetString("query")
	index, _ := cmd.Flags().GetInt("index")
	keystroke, _ := cmd.Flags().GetDuration("keystroke")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	opts := lookupOptions{
		query:     query,
		index:     index,
		keystroke: keystroke,
		debounce:  cfg.GetPlacesDebounce(),
		minLength: cfg.GetPlacesMinQueryLength(),
	}
	return lookup(ctx, places.NewGoogleClientFromConfig(cfg), logger.New(cfg.Env), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// lookup types opts.query into a Selector, picks the prediction at opts.index
// and writes the selection event to out.
func lookup(ctx context.Context, provider places.Provider, log *logger.Logger, opts lookupOptions, out, status io.Writer) error {
	if utf8.RuneCountInString(opts.query) < opts.minLength {
		return fmt.Errorf("query %q is shorter than %d characters", opts.query, opts.minLength)
	}

	changes := make(chan places.State, 64)
	selected := make(chan places.SelectionEvent, 1)
	watcher := &searchWatcher{Provider: provider, done: make(chan string, 64)}

	sel := places.NewSelector(watcher, places.Options{
		Debounce:       opts.debounce,
		MinQueryLength: opts.minLength,
		Logger:         log,
		OnPlaceSelected: func(e places.SelectionEvent) {
			selected <- e
		},
		OnChange: func(s places.State) {
			select {
			case changes <- s:
			default:
			}
		},
	})
	defer sel.Close()

	sel.Focus()
	typed := ""
	for _, r := range opts.query {
		typed += string(r)
		sel.SetQuery(typed)
		if err := sleep(ctx, opts.keystroke); err != nil {
			return err
		}
	}

	state, err := waitForResults(ctx, sel, opts.query, changes, watcher.done)
	if err != nil {
		return err
	}
	for i, p := range state.Predictions {
		_, _ = fmt.Fprintf(status, "%2d  %s\n", i, p.Description)
	}

	if _, ok := sel.SelectIndex(opts.index); !ok {
		return fmt.Errorf("index %d out of range: %d predictions", opts.index, len(state.Predictions))
	}

	select {
	case event := <-selected:
		if event.Details == nil {
			_, _ = fmt.Fprintln(status, "details unavailable")
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(event)
	case <-ctx.Done():
		return fmt.Errorf("waiting for place details: %w", ctx.Err())
	}
}

// waitForResults returns once the search for the final query has been
// applied. Lists left over from prefix searches are never returned.
func waitForResults(ctx context.Context, sel *places.Selector, query string, changes <-chan places.State, searched <-chan string) (places.State, error) {
	settled := false
	for {
		state := sel.State()
		if settled && state.Query == query && !state.Loading {
			if !state.Visible {
				return state, fmt.Errorf("no predictions for %q", query)
			}
			return state, nil
		}

		select {
		case <-changes:
		case q := <-searched:
			if q == query {
				settled = true
			}
		case <-ctx.Done():
			return state, fmt.Errorf("waiting for predictions: %w", ctx.Err())
		}
	}
}

// searchWatcher reports every query whose provider call has returned.
type searchWatcher struct {
	places.Provider
	done chan string
}

func (w *searchWatcher) Search(ctx context.Context, query string) ([]places.Prediction, error) {
	predictions, err := w.Provider.Search(ctx, query)
	select {
	case w.done <- query:
	default:
	}
	return predictions, err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

