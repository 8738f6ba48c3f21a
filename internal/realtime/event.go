package realtime

import (
	"context"

	"github.com/google/uuid"
)

const (
	EventCourseCompleted = "course.completed"
	EventUserLevelUp     = "user.level_up"
	EventQuizPassed      = "quiz.passed"
	EventAwardGranted    = "award.granted"
)

// Event is a domain notification published after the transaction that
// produced it has committed.
type Event struct {
	Event  string         `json:"event"`
	UserID uuid.UUID      `json:"user_id"`
	Data   map[string]any `json:"data,omitempty"`
}

// Publisher is the sending half of an event bus.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Outbox collects events raised inside a transaction so they can be sent
// once it commits. The zero value is ready to use.
type Outbox struct {
	events []Event
}

func (o *Outbox) Add(ev Event) {
	if o == nil {
		return
	}
	o.events = append(o.events, ev)
}

func (o *Outbox) Events() []Event {
	if o == nil {
		return nil
	}
	return o.events
}

// Flush publishes every collected event in order and empties the outbox.
// Publishing is best effort; the first error is returned after all sends.
func (o *Outbox) Flush(ctx context.Context, pub Publisher) error {
	if o == nil || pub == nil {
		return nil
	}
	var first error
	for _, ev := range o.events {
		if err := pub.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	o.events = nil
	return first
}
