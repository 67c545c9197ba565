package menu

import (
	"sync"

	"github.com/temoto/motormenu/hardware/input"
	"github.com/temoto/motormenu/log2"
)

const DefaultQueueSize = 8

// EventSource is polled once per cycle.
type EventSource interface {
	Pending() bool
	Pop() Event
	Reset()
}

// Queue is bounded FIFO between input goroutines and menu task.
// When full, new events are dropped.
type Queue struct {
	mu   sync.Mutex
	log  *log2.Log
	buf  []Event
	size int
}

// compile-time interface compliance test
var _ EventSource = new(Queue)

func NewQueue(size int, log *log2.Log) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{log: log, buf: make([]Event, 0, size), size: size}
}

func (self *Queue) Push(e Event) bool {
	if e == EventNone {
		return false
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	if len(self.buf) >= self.size {
		self.log.Errorf("menu queue full size=%d drop=%s", self.size, e.String())
		return false
	}
	self.buf = append(self.buf, e)
	return true
}

func (self *Queue) Pending() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.buf) > 0
}

func (self *Queue) Len() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.buf)
}

// Pop returns EventNone when empty.
func (self *Queue) Pop() Event {
	self.mu.Lock()
	defer self.mu.Unlock()
	if len(self.buf) == 0 {
		return EventNone
	}
	e := self.buf[0]
	copy(self.buf, self.buf[1:])
	self.buf = self.buf[:len(self.buf)-1]
	return e
}

func (self *Queue) Reset() {
	self.mu.Lock()
	self.buf = self.buf[:0]
	self.mu.Unlock()
}

func EventFromKey(k input.Key) Event {
	switch k {
	case input.KeyEnter:
		return EventEnter
	case input.KeyNext:
		return EventNext
	case input.KeyEscape:
		return EventEscape
	}
	return EventNone
}

const inputSubName = "menu"

// Subscribe feeds key presses from dispatch into queue until stop is closed.
func (self *Queue) Subscribe(d *input.Dispatch, stop <-chan struct{}) {
	d.SubscribeFunc(inputSubName, func(e input.Event) {
		if e.Up {
			return
		}
		if ev := EventFromKey(e.Key); ev != EventNone {
			self.Push(ev)
		} else {
			self.log.Debugf("menu input ignore key=%s", e.Key.String())
		}
	}, stop)
}
