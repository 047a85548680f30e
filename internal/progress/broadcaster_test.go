package progress

import (
	"sync"
	"testing"
	"time"

	"github.com/Belphemur/MediaFetch/internal/models"
)

func receive(t *testing.T, sub *Subscription) models.ProgressEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events:
		if !ok {
			t.Fatal("Subscription closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for event")
	}
	return models.ProgressEvent{}
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(4)
	a := b.Subscribe()
	c := b.Subscribe()
	if a.ID == c.ID {
		t.Fatal("Expected unique subscriber IDs")
	}
	if b.Len() != 2 {
		t.Fatalf("Expected 2 subscribers, got %d", b.Len())
	}

	b.Publish(models.ProgressEvent{Percent: 12.5})

	for _, sub := range []*Subscription{a, c} {
		if ev := receive(t, sub); ev.Percent != 12.5 {
			t.Errorf("Expected 12.5, got %v", ev.Percent)
		}
	}
}

func TestBroadcaster_NoReplay(t *testing.T) {
	b := NewBroadcaster(4)
	b.Publish(models.ProgressEvent{Percent: 1.0})

	late := b.Subscribe()
	select {
	case ev := <-late.Events:
		t.Fatalf("Expected no replay, got %v", ev)
	default:
	}
}

func TestBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroadcaster(1)
	slow := b.Subscribe()
	fast := b.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 10 {
			b.Publish(models.ProgressEvent{Percent: float64(i)})
			<-fast.Events
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	if ev := receive(t, slow); ev.Percent != 0 {
		t.Errorf("Expected slow subscriber to keep the first event, got %v", ev.Percent)
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster(4)
	sub := b.Subscribe()
	b.Unsubscribe(sub.ID)
	b.Unsubscribe(sub.ID)

	if b.Len() != 0 {
		t.Fatalf("Expected 0 subscribers, got %d", b.Len())
	}
	if _, ok := <-sub.Events; ok {
		t.Error("Expected channel to be closed")
	}
	b.Publish(models.ProgressEvent{Percent: 50.0})
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster(4)
	sub := b.Subscribe()
	b.Close()

	if _, ok := <-sub.Events; ok {
		t.Error("Expected channel closed after Close")
	}
	after := b.Subscribe()
	if _, ok := <-after.Events; ok {
		t.Error("Expected subscription after Close to be closed")
	}
	b.Unsubscribe(sub.ID)
	b.Publish(models.ProgressEvent{Percent: 1.0})
}

func TestBroadcaster_ConcurrentUse(t *testing.T) {
	b := NewBroadcaster(8)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := b.Subscribe()
			b.Unsubscribe(sub.ID)
		}()
		go func() {
			defer wg.Done()
			b.Publish(models.ProgressEvent{Percent: 42.0})
		}()
	}
	wg.Wait()
	if b.Len() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", b.Len())
	}
}
