package placesearch

import "time"

// panel drives the results panel height. While a transition settles, further
// requests are queued with depth one: the latest target wins and is applied
// once the running transition settles. Requests for the height already
// shown (or already targeted) are no-ops.
type panel struct {
	list      ListSurface
	animation time.Duration
	// schedule runs fn after d, serialised with the owning Screen.
	schedule func(d time.Duration, fn func())

	height     int
	animating  bool
	pending    int
	hasPending bool
}

// set requests a new panel height.
func (p *panel) set(height int, animated bool) {
	if p.animating {
		if height == p.height {
			p.hasPending = false
			return
		}
		p.pending = height
		p.hasPending = true
		return
	}
	if height == p.height {
		return
	}
	p.apply(height, animated)
}

// reset forces a height without animation, dropping queued requests.
func (p *panel) reset(height int) {
	p.hasPending = false
	p.height = height
	p.list.SetPanelHeight(height, false)
}

func (p *panel) apply(height int, animated bool) {
	p.height = height
	animated = animated && p.animation > 0
	p.list.SetPanelHeight(height, animated)
	if !animated {
		return
	}
	p.animating = true
	p.schedule(p.animation, p.settle)
}

func (p *panel) settle() {
	p.animating = false
	if !p.hasPending {
		return
	}
	next := p.pending
	p.hasPending = false
	if next != p.height {
		p.apply(next, true)
	}
}
