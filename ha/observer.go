package ha

import (
	"sync"
)

// Told about every tick, successful or not. err is nil or a *TickError.
// Observe is called from the scheduler goroutine and shouldn't block.
type Observer interface {
	Observe(res Result, err error)
}

// Implemented by Observers that also want to know when a tick begins.
// ObserveStart is always followed by an Observe for the same tick.
type StartObserver interface {
	ObserveStart()
}

type ObserverFunc func(res Result, err error)

func (f ObserverFunc) Observe(res Result, err error) {
	f(res, err)
}

// Fans ticks out to every added Observer in the order they were added.
type Observers struct {
	mu sync.Mutex
	os []Observer
}

func (g *Observers) Add(o Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.os = append(g.os, o)
}

func (g *Observers) ObserveStart() {
	for _, o := range g.get() {
		if so, ok := o.(StartObserver); ok {
			so.ObserveStart()
		}
	}
}

func (g *Observers) Observe(res Result, err error) {
	for _, o := range g.get() {
		o.Observe(res, err)
	}
}

func (g *Observers) get() []Observer {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.os
}
