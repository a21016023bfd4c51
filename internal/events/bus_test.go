package events

import (
	"sync/atomic"
	"testing"
)

func TestPublishCallsMatchingSubscriber(t *testing.T) {
	bus := NewBus()
	var called atomic.Bool

	bus.Subscribe(func(e Event) {
		if e.Type != RestartFailed {
			t.Errorf("expected RestartFailed, got %s", e.Type)
		}
		called.Store(true)
	}, RestartFailed)

	bus.Publish(Event{Type: RestartFailed, Message: "pihole did not come back"})

	if !called.Load() {
		t.Error("subscriber was not called")
	}
}

func TestSubscriberIgnoresUnmatchedTypes(t *testing.T) {
	bus := NewBus()
	var called atomic.Bool

	bus.Subscribe(func(e Event) {
		called.Store(true)
	}, FactoryReset)

	bus.Publish(Event{Type: LoginFailed, Message: "bad password"})

	if called.Load() {
		t.Error("subscriber should not have been called for LoginFailed")
	}
}

func TestWildcardSubscriberReceivesAll(t *testing.T) {
	bus := NewBus()
	var count atomic.Int32

	bus.Subscribe(func(e Event) {
		count.Add(1)
	})

	bus.Publish(Event{Type: ConfigUpdated, Message: "a"})
	bus.Publish(Event{Type: RestartQueued, Message: "b"})
	bus.Publish(Event{Type: RestartCompleted, Message: "c"})

	if count.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", count.Load())
	}
}

func TestPanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()
	var called atomic.Bool

	bus.Subscribe(func(e Event) {
		panic("boom")
	})
	bus.Subscribe(func(e Event) {
		called.Store(true)
	})

	bus.Publish(Event{Type: LoginSucceeded})

	if !called.Load() {
		t.Error("second subscriber was skipped after a panic")
	}
}

func TestPublishSetsTimestamp(t *testing.T) {
	bus := NewBus()
	var gotZero bool

	bus.Subscribe(func(e Event) {
		gotZero = e.Timestamp.IsZero()
	})

	bus.Publish(Event{Type: RestartQueued})

	if gotZero {
		t.Error("expected Publish to stamp the event")
	}
}
