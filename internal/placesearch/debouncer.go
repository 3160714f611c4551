package placesearch

import "context"

// debouncer owns a single outstanding-request slot. Replacing or cancelling
// bumps a monotonic sequence number so that completions of superseded
// requests can be recognised and dropped even if the transport ignored the
// cancellation. Callers serialise access.
type debouncer struct {
	seq    uint64
	cancel context.CancelFunc
}

// replace cancels the outstanding request and opens a new one.
func (d *debouncer) replace(parent context.Context) (context.Context, uint64) {
	d.stop()
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel
	return ctx, d.seq
}

// stop cancels the outstanding request, if any, and invalidates its sequence.
func (d *debouncer) stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.seq++
}

// current reports whether seq is the latest request and still outstanding.
func (d *debouncer) current(seq uint64) bool {
	return d.cancel != nil && seq == d.seq
}

// done releases the slot after the latest request completed.
func (d *debouncer) done(seq uint64) {
	if d.current(seq) {
		d.cancel()
		d.cancel = nil
	}
}

// pending reports whether a request is outstanding.
func (d *debouncer) pending() bool {
	return d.cancel != nil
}
