// Package tick accounts periodic work units between a timer producer
// and a cooperative consumer task.
package tick

import (
	"sync"
	"time"

	"github.com/temoto/alive/v2"
	"github.com/temoto/atomic_clock"
)

// Counter is shared between producer and consumer.
// Every access is a single read-modify-write under lock, keep it that way.
type Counter struct {
	mu   sync.Mutex
	n    uint32
	last atomic_clock.Clock
}

func (self *Counter) Inc() {
	self.mu.Lock()
	self.n++
	self.mu.Unlock()
	self.last.SetNow()
}

// TryDecrement takes one pending tick, false when none left.
func (self *Counter) TryDecrement() bool {
	self.mu.Lock()
	ok := self.n > 0
	if ok {
		self.n--
	}
	self.mu.Unlock()
	return ok
}

func (self *Counter) Pending() uint32 {
	self.mu.Lock()
	n := self.n
	self.mu.Unlock()
	return n
}

func (self *Counter) Reset() {
	self.mu.Lock()
	self.n = 0
	self.mu.Unlock()
}

// SinceLast returns time since producer last fired, 0 if it never did.
func (self *Counter) SinceLast() time.Duration {
	if self.last.IsZero() {
		return 0
	}
	return atomic_clock.Since(&self.last)
}

// Source plays timer interrupt: increments counter every period until stopped.
type Source struct {
	Period  time.Duration
	Counter *Counter
}

func (self *Source) Run(a *alive.Alive) {
	if !a.Add(1) {
		return
	}
	defer a.Done()

	tmr := time.NewTicker(self.Period)
	defer tmr.Stop()
	stopch := a.StopChan()
	for {
		select {
		case <-tmr.C:
			self.Counter.Inc()
		case <-stopch:
			return
		}
	}
}
