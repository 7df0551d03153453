// Package events is the bounded multi-producer, multi-consumer broadcast
// used to fan task update events out to subscribers without ever blocking
// the emitting caller.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/agentrt/baml-agent-runtime/ids"
	"github.com/agentrt/baml-agent-runtime/model"
)

const capacity = 256

// Update is one broadcast item: a task update event scoped to a task.
type Update struct {
	TaskID ids.TaskID
	Event  model.TaskUpdateEvent
}

// Subscriber receives Updates emitted after it joined, plus a Lag counter
// observing how many updates it has dropped due to a full buffer.
type Subscriber struct {
	ch  chan Update
	lag atomic.Int64
}

// C returns the subscriber's receive channel.
func (s *Subscriber) C() <-chan Update { return s.ch }

// Lag returns how many updates have been dropped for this subscriber
// because it fell behind the emitter.
func (s *Subscriber) Lag() int64 {
	return s.lag.Load()
}

// Emitter is a bounded broadcast hub: one channel per subscriber, capacity
// 256, never blocking the emitting caller.
type Emitter struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// New returns an Emitter with no subscribers.
func New() *Emitter {
	return &Emitter{subs: make(map[*Subscriber]struct{})}
}

// Subscribe returns a receiver bound to post-subscription events only.
func (e *Emitter) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Update, capacity)}
	e.mu.Lock()
	e.subs[sub] = struct{}{}
	e.mu.Unlock()
	return sub
}

// Unsubscribe removes sub from the fan-out set.
func (e *Emitter) Unsubscribe(sub *Subscriber) {
	e.mu.Lock()
	delete(e.subs, sub)
	e.mu.Unlock()
}

// Emit fans update out to every current subscriber. It never blocks: a
// subscriber whose buffer is full has its oldest queued update dropped to
// make room, and its lag counter is incremented.
func (e *Emitter) Emit(update Update) {
	e.mu.Lock()
	subs := make([]*Subscriber, 0, len(e.subs))
	for s := range e.subs {
		subs = append(subs, s)
	}
	e.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- update:
		default:
			// Buffer full: drop the oldest queued update for this
			// subscriber to make room, and record the drop.
			select {
			case <-s.ch:
				s.lag.Add(1)
			default:
			}
			select {
			case s.ch <- update:
			default:
				s.lag.Add(1)
			}
		}
	}
}
