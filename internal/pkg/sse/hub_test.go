package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSubscriber(t *testing.T) {
	hub := NewHub()

	events, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	hub.Publish("emp-1", Event{EmployeeID: "emp-1", Event: "attendance_status", Data: "payload"})

	select {
	case ev := <-events:
		assert.Equal(t, "attendance_status", ev.Event)
		assert.Equal(t, "payload", ev.Data)
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
}

func TestHub_PublishToOtherEmployeeNotDelivered(t *testing.T) {
	hub := NewHub()

	events, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	hub.Publish("emp-2", Event{EmployeeID: "emp-2", Event: "attendance_status"})

	select {
	case <-events:
		t.Fatal("event leaked across employees")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHub_MultipleSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cleanup1 := hub.Subscribe("emp-1")
	defer cleanup1()
	ch2, cleanup2 := hub.Subscribe("emp-1")
	defer cleanup2()

	require.Equal(t, 2, hub.SubscriberCount("emp-1"))

	hub.Publish("emp-1", Event{Event: "attendance_status"})

	for _, ch := range []chan Event{ch1, ch2} {
		select {
		case ev := <-ch:
			assert.Equal(t, "attendance_status", ev.Event)
		case <-time.After(time.Second):
			t.Fatal("expected an event on every subscriber")
		}
	}
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe("emp-1")
	require.Equal(t, 1, hub.SubscriberCount("emp-1"))

	cleanup()
	assert.Equal(t, 0, hub.SubscriberCount("emp-1"))

	// Publishing after cleanup must not panic.
	hub.Publish("emp-1", Event{Event: "attendance_status"})
}

func TestHub_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	// Overflow the buffered channel; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish("emp-1", Event{Event: "attendance_status"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}
