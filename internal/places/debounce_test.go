package places

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerFiresLatestKeyOnce(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	var fired []string
	record := func(key string) {
		mu.Lock()
		fired = append(fired, key)
		mu.Unlock()
	}

	for _, key := range []string{"Cen", "Cent", "Centr"} {
		d.Trigger(key, record)
		time.Sleep(5 * time.Millisecond)
	}
	if key, ok := d.Pending(); !ok || key != "Centr" {
		t.Fatalf("expected pending key Centr, got %q (pending=%v)", key, ok)
	}

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 1 || fired[0] != "Centr" {
		t.Fatalf("expected exactly one call for Centr, got %v", fired)
	}
	if _, ok := d.Pending(); ok {
		t.Fatal("expected nothing pending after firing")
	}
}

func TestDebouncerCancelDropsPendingCall(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	called := make(chan string, 1)
	d.Trigger("Cen", func(key string) { called <- key })
	d.Cancel()

	select {
	case key := <-called:
		t.Fatalf("cancelled trigger fired for %q", key)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncerStopIgnoresLaterTriggers(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	d.Stop()

	called := make(chan string, 1)
	d.Trigger("Cen", func(key string) { called <- key })

	select {
	case key := <-called:
		t.Fatalf("stopped debouncer fired for %q", key)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestNewDebouncerDefaultsDelay(t *testing.T) {
	if d := NewDebouncer(0); d.delay != DefaultDebounce {
		t.Fatalf("expected default delay %s, got %s", DefaultDebounce, d.delay)
	}
}
