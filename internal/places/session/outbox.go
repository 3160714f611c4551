package session

import (
	"sync"

	"placefinder/internal/places/transport"
)

// outbox queues commands for the transport writer without ever blocking the
// producer, which may be holding the screen lock.
type outbox struct {
	mu       sync.Mutex
	queue    []transport.Command
	notify   chan struct{}
	limit    int
	overflow bool
}

func newOutbox(limit int) *outbox {
	return &outbox{notify: make(chan struct{}, 1), limit: limit}
}

// push appends cmd and reports false once the queue is over its limit.
func (o *outbox) push(cmd transport.Command) bool {
	o.mu.Lock()
	if o.overflow {
		o.mu.Unlock()
		return false
	}
	if len(o.queue) >= o.limit {
		o.overflow = true
		o.queue = nil
		o.mu.Unlock()
		return false
	}
	o.queue = append(o.queue, cmd)
	o.mu.Unlock()

	select {
	case o.notify <- struct{}{}:
	default:
	}
	return true
}

// drain returns and clears everything queued so far.
func (o *outbox) drain() []transport.Command {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.queue
	o.queue = nil
	return out
}
