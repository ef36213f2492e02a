package mirror

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testOutbox(apply func(Event) error) *Outbox {
	return &Outbox{
		apply:      apply,
		queue:      make(chan Event, 4),
		maxRetries: 2,
		retryDelay: time.Millisecond,
		stop:       make(chan struct{}),
	}
}

func TestProcessAppliesOnce(t *testing.T) {

	var calls int32
	o := testOutbox(func(Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	o.process(Event{Kind: EventMessageSent, ChannelID: "c1"})

	assert.Equal(t, int32(1), calls)
}

func TestProcessRetriesThenGivesUp(t *testing.T) {

	var calls int32
	o := testOutbox(func(Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("mirror down")
	})

	o.process(Event{Kind: EventMessageSent, ChannelID: "c1"})

	// initial attempt plus maxRetries
	assert.Equal(t, int32(3), calls)
}

func TestProcessRecoversMidway(t *testing.T) {

	var calls int32
	o := testOutbox(func(Event) error {
		if atomic.AddInt32(&calls, 1) < 2 {
			return errors.New("mirror down")
		}
		return nil
	})

	o.process(Event{Kind: EventParticipantJoin, ChannelID: "c1"})

	assert.Equal(t, int32(2), calls)
}

func TestEnqueueNeverBlocks(t *testing.T) {

	o := testOutbox(func(Event) error { return nil })

	// fill the queue beyond capacity; no worker is running
	for i := 0; i < 10; i++ {
		o.Enqueue(Event{Kind: EventMessageSent, ChannelID: "c1"})
	}

	assert.Len(t, o.queue, 4)
}

func TestWorkerLifecycle(t *testing.T) {

	var calls int32
	done := make(chan struct{})
	o := testOutbox(func(Event) error {
		if atomic.AddInt32(&calls, 1) == 3 {
			close(done)
		}
		return nil
	})

	o.Start()
	o.Enqueue(Event{Kind: EventChannelCreated, ChannelID: "c1"})
	o.Enqueue(Event{Kind: EventParticipantJoin, ChannelID: "c1"})
	o.Enqueue(Event{Kind: EventChannelClosed, ChannelID: "c1"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("events not processed in time")
	}

	o.Stop()
	assert.Equal(t, int32(3), calls)
}
