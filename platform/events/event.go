// Package events holds the in-process event bus shared by the API and
// the scheduler.
package events

import (
	"context"
	"time"
)

// Event is anything that can travel over a Bus. EventName is the
// subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp every report event embeds.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current UTC time.
func NewBaseEvent() BaseEvent {
	return NewBaseEventAt(time.Now())
}

// NewBaseEventAt stamps an event with t, normalised to UTC.
func NewBaseEventAt(t time.Time) BaseEvent {
	return BaseEvent{Timestamp: t.UTC()}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe to a Bus.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans events out to subscribers keyed by EventName.
type Bus interface {
	// Publish does not wait for handlers.
	Publish(ctx context.Context, event Event)
	// PublishSync waits and returns the joined handler errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
