package apiserver

import "sync/atomic"

// Publisher holds the latest FrameView behind an atomic pointer, so the
// frame driver's goroutine can publish a new view every tick while any
// number of HTTP/WebSocket handlers read the latest one without
// blocking the simulation loop.
type Publisher struct {
	latest atomic.Pointer[FrameView]
}

// NewPublisher returns a Publisher with no frame published yet.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish stores fv as the latest frame view.
func (p *Publisher) Publish(fv FrameView) {
	p.latest.Store(&fv)
}

// Latest returns the most recently published frame view, or false if
// none has been published yet.
func (p *Publisher) Latest() (FrameView, bool) {
	v := p.latest.Load()
	if v == nil {
		return FrameView{}, false
	}
	return *v, true
}
