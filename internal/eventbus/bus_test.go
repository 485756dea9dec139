package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_ReceivesPublishedEvent(t *testing.T) {
	b := New(4)
	defer b.Close()

	sub := b.Subscribe()
	b.Publish(Event{Type: EventHeartbeatCount, HeartbeatCount: 1})

	select {
	case ev := <-sub.Events():
		assert.Equal(t, EventHeartbeatCount, ev.Type)
		assert.Equal(t, uint64(1), ev.HeartbeatCount)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPublish_FIFOOrderWhenNotFull(t *testing.T) {
	b := New(8)
	defer b.Close()

	sub := b.Subscribe()
	for i := uint64(1); i <= 5; i++ {
		b.Publish(Event{Type: EventHeartbeatCount, HeartbeatCount: i})
	}

	for i := uint64(1); i <= 5; i++ {
		select {
		case ev := <-sub.Events():
			require.Equal(t, i, ev.HeartbeatCount)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestPublish_DropsOldestWhenSubscriberQueueFull(t *testing.T) {
	b := New(2)
	defer b.Close()

	sub := b.Subscribe()
	b.Publish(Event{Type: EventHeartbeatCount, HeartbeatCount: 1})
	b.Publish(Event{Type: EventHeartbeatCount, HeartbeatCount: 2})
	b.Publish(Event{Type: EventHeartbeatCount, HeartbeatCount: 3}) // queue was full at 2; drops the oldest (1)

	first := <-sub.Events()
	second := <-sub.Events()
	assert.Equal(t, uint64(2), first.HeartbeatCount)
	assert.Equal(t, uint64(3), second.HeartbeatCount)
	assert.Equal(t, uint64(1), sub.Lag())
}

func TestPublish_DoesNotDeliverToCancelledSubscriber(t *testing.T) {
	b := New(4)
	defer b.Close()

	subA := b.Subscribe()
	subB := b.Subscribe()
	subB.Cancel()

	b.Publish(Event{Type: EventHeartbeatCount, HeartbeatCount: 9})

	select {
	case ev := <-subA.Events():
		assert.Equal(t, uint64(9), ev.HeartbeatCount)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	_, open := <-subB.Events()
	assert.False(t, open)
}

func TestClose_ClosesAllSubscriberChannels(t *testing.T) {
	b := New(4)
	sub := b.Subscribe()
	b.Close()

	_, open := <-sub.Events()
	assert.False(t, open)

	// Publish and Subscribe after Close are no-ops, not panics.
	b.Publish(Event{Type: EventHeartbeatCount})
	late := b.Subscribe()
	_, open = <-late.Events()
	assert.False(t, open)
}
