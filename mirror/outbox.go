package mirror

import (
	"log"
	"sync"
	"time"
)

// The outbox decouples the primary write from the mirror update: models
// enqueue events after a successful MongoDB mutation and a worker replays
// them asynchronously. Mirror failures therefore never block or roll back
// the primary store, but they are retried and always leave a log line.

const (
	defaultQueueSize  = 256
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

type Outbox struct {
	apply      func(Event) error
	queue      chan Event
	maxRetries int
	retryDelay time.Duration
	stop       chan struct{}
	wg         sync.WaitGroup
}

// NewOutbox wires the queue to an apply function (usually Service.Apply)
func NewOutbox(apply func(Event) error) *Outbox {
	return &Outbox{
		apply:      apply,
		queue:      make(chan Event, defaultQueueSize),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		stop:       make(chan struct{}),
	}
}

// Start launches the worker GO-routine
func (o *Outbox) Start() {
	o.wg.Add(1)
	go o.run()
}

// Stop drains nothing; pending events are abandoned with a log line each.
// Called on shut-down only.
func (o *Outbox) Stop() {
	close(o.stop)
	o.wg.Wait()

	for {
		select {
		case event := <-o.queue:
			log.Printf("mirror: dropped %s for channel %s on shut-down", event.Kind, event.ChannelID)
		default:
			return
		}
	}
}

// Enqueue hands an event to the worker; never blocks the caller.
// A full queue is an observable signal, not a silent loss.
func (o *Outbox) Enqueue(event Event) {
	select {
	case o.queue <- event:
	default:
		log.Printf("mirror: queue full, dropped %s for channel %s", event.Kind, event.ChannelID)
	}
}

func (o *Outbox) run() {
	defer o.wg.Done()

	for {
		select {
		case event := <-o.queue:
			o.process(event)
		case <-o.stop:
			return
		}
	}
}

// process retries a bounded number of times; the final failure is logged
// so the divergence of the mirror is visible in operations
func (o *Outbox) process(event Event) {

	var err error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(o.retryDelay)
		}
		if err = o.apply(event); err == nil {
			return
		}
		log.Printf("mirror: %s for channel %s failed (attempt %d): %v", event.Kind, event.ChannelID, attempt+1, err)
	}

	log.Printf("mirror: giving up on %s for channel %s after %d attempts", event.Kind, event.ChannelID, o.maxRetries+1)
}
