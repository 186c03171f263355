// Package pubsub fans console events (log lines, dispatch outcomes) out to
// any number of listeners such as the TUI output pane.
package pubsub

import (
	"context"
	"time"
)

// EventType tags what happened.
type EventType string

const (
	// LoggedEvent carries a formatted log line.
	LoggedEvent EventType = "logged"
	// DispatchedEvent carries the outcome of a console command dispatch.
	DispatchedEvent EventType = "dispatched"
	// RebuiltEvent is published after a scan and registry build pass.
	RebuiltEvent EventType = "rebuilt"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher publishes events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
