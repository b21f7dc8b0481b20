package mesh

import (
	"errors"
	"sync/atomic"

	"github.com/agentlance/agentlance/pkg/models"
)

// ErrSubscriberClosed is returned by Send after Close, which makes the
// mesh drop the subscriber from its scope.
var ErrSubscriberClosed = errors.New("subscriber closed")

// ChanSubscriber delivers events over a buffered channel for
// in-process observers. Sends never block: if the buffer is full the
// event is dropped and counted instead.
type ChanSubscriber struct {
	events  chan models.Event
	closed  atomic.Bool
	dropped atomic.Uint64
}

// NewChanSubscriber creates a ChanSubscriber with the given buffer size.
func NewChanSubscriber(bufferSize int) *ChanSubscriber {
	return &ChanSubscriber{
		events: make(chan models.Event, bufferSize),
	}
}

// Send delivers the event to the channel without blocking.
// Returns ErrSubscriberClosed after Close.
func (s *ChanSubscriber) Send(event models.Event) error {
	if s.closed.Load() {
		return ErrSubscriberClosed
	}
	select {
	case s.events <- event:
	default:
		s.dropped.Add(1)
	}
	return nil
}

// Events returns the read-only event channel.
func (s *ChanSubscriber) Events() <-chan models.Event {
	return s.events
}

// Dropped returns the number of events dropped due to a full buffer.
func (s *ChanSubscriber) Dropped() uint64 {
	return s.dropped.Load()
}

// Close marks the subscriber closed. The next Send returns an error,
// which removes the subscriber from its scope.
func (s *ChanSubscriber) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.events)
	}
}
