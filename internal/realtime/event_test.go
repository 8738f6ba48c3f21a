package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type recordingPublisher struct {
	got  []Event
	fail bool
}

func (p *recordingPublisher) Publish(ctx context.Context, ev Event) error {
	p.got = append(p.got, ev)
	if p.fail {
		return errors.New("publish failed")
	}
	return nil
}

func TestOutboxFlushPreservesOrder(t *testing.T) {
	var box Outbox
	uid := uuid.New()
	box.Add(Event{Event: EventCourseCompleted, UserID: uid})
	box.Add(Event{Event: EventUserLevelUp, UserID: uid, Data: map[string]any{"level": 3}})

	pub := &recordingPublisher{}
	if err := box.Flush(context.Background(), pub); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(pub.got) != 2 || pub.got[0].Event != EventCourseCompleted || pub.got[1].Event != EventUserLevelUp {
		t.Fatalf("unexpected publish order: %+v", pub.got)
	}
	if len(box.Events()) != 0 {
		t.Fatalf("outbox not emptied")
	}
}

func TestOutboxFlushContinuesAfterError(t *testing.T) {
	var box Outbox
	box.Add(Event{Event: EventQuizPassed})
	box.Add(Event{Event: EventAwardGranted})

	pub := &recordingPublisher{fail: true}
	if err := box.Flush(context.Background(), pub); err == nil {
		t.Fatalf("expected error")
	}
	if len(pub.got) != 2 {
		t.Fatalf("want 2 attempts, got %d", len(pub.got))
	}
}

func TestNilOutboxIsSafe(t *testing.T) {
	var box *Outbox
	box.Add(Event{Event: EventQuizPassed})
	if err := box.Flush(context.Background(), &recordingPublisher{}); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
