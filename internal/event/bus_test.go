package event

import (
	"sync"
	"testing"
	"time"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}

	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}

	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var receivedEvent Event
	bus.Subscribe("job.started", func(e Event) {
		receivedEvent = e
	})

	event := NewJobStartedEvent("SST_OISST_Mean", 0, 1, 3, 1)
	bus.Publish(event)

	if receivedEvent == nil {
		t.Fatal("Handler should have received the event")
	}

	if receivedEvent.EventType() != "job.started" {
		t.Errorf("Expected event type 'job.started', got '%s'", receivedEvent.EventType())
	}

	started, ok := receivedEvent.(JobStartedEvent)
	if !ok {
		t.Fatal("event should be a JobStartedEvent")
	}
	if started.Launched != 1 || started.Total != 3 || started.Running != 1 {
		t.Errorf("unexpected counters: %+v", started)
	}
}

func TestBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewBus()

	callCount := 0
	bus.Subscribe("test.event", func(e Event) {
		callCount++
	})
	bus.Subscribe("test.event", func(e Event) {
		callCount++
	})

	bus.Publish(testEvent{})

	if callCount != 2 {
		t.Errorf("Expected 2 handler calls, got %d", callCount)
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var types []string
	bus.SubscribeAll(func(e Event) {
		types = append(types, e.EventType())
	})

	bus.Publish(NewJobStartedEvent("a", 0, 1, 2, 1))
	bus.Publish(NewJobExitedEvent("a", 0, 0, 0, time.Second))
	bus.Publish(NewRunCompletedEvent(2, 0, 2*time.Second))

	want := []string{"job.started", "job.exited", "run.completed"}
	if len(types) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(types))
	}
	for i, typ := range want {
		if types[i] != typ {
			t.Errorf("event %d: got %s, want %s", i, types[i], typ)
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return true for a known ID")
	}
	if bus.Unsubscribe("sub-bogus") {
		t.Error("Unsubscribe should return false for an unknown ID")
	}

	bus.Publish(testEvent{})
	if called {
		t.Error("Handler should not be called after unsubscribing")
	}
}

func TestBus_HandlerPanicDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe("test.event", func(e Event) {
		panic("misbehaving handler")
	})
	bus.Subscribe("test.event", func(e Event) {
		called = true
	})

	bus.Publish(testEvent{})

	if !called {
		t.Error("Second handler should run despite first handler panicking")
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("test.event", func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(testEvent{})
		}()
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("Expected 50 handler calls, got %d", count)
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", func(e Event) {})
	bus.Subscribe("b", func(e Event) {})

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after Clear, got %d", bus.SubscriptionCount())
	}
}

// testEvent is a minimal event for bus tests.
type testEvent struct{}

func (testEvent) EventType() string    { return "test.event" }
func (testEvent) Timestamp() time.Time { return time.Time{} }
