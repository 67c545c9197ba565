package menu

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/motormenu/internal/motor"
	"github.com/temoto/motormenu/internal/state"
	"github.com/temoto/motormenu/internal/tick"
	"github.com/temoto/motormenu/log2"
)

type Display interface {
	Clear()
	SetLines(line1, line2 string)
}

// Reporter receives configuration after Init and every commit.
type Reporter interface {
	Report(motor.Snapshot)
}

// Task owns menu context and motor store.
// Init and Update must be called from one goroutine; only Ticks() is shared with producer.
type Task struct { //nolint:maligned
	log      *log2.Log
	current  Context
	store    *motor.Store
	ticks    tick.Counter
	events   EventSource
	display  Display
	reporter Reporter
	cycles   uint32
	renders  uint32
}

func New(store *motor.Store, events EventSource, display Display, log *log2.Log) *Task {
	return &Task{
		log:     log,
		store:   store,
		events:  events,
		display: display,
	}
}

// NewFromContext wires task to global display, input and telemetry.
func NewFromContext(ctx context.Context) (*Task, *Queue, error) {
	g := state.GetGlobal(ctx)
	initial, err := g.Config.Menu.InitialMotors()
	if err != nil {
		return nil, nil, errors.Annotate(err, "menu")
	}
	display, err := g.Display()
	if err != nil {
		return nil, nil, errors.Annotate(err, "menu")
	}
	q := NewQueue(g.Config.Menu.QueueSize, g.Log)
	if g.Hardware.Input != nil {
		q.Subscribe(g.Hardware.Input, g.Alive.StopChan())
	}
	self := New(motor.NewStore(initial), q, display, g.Log)
	if g.Tele != nil {
		self.SetReporter(g.Tele)
	}
	return self, q, nil
}

func (self *Task) SetReporter(r Reporter) { self.reporter = r }

// Ticks is the work counter for tick producer.
func (self *Task) Ticks() *tick.Counter { return &self.ticks }

func (self *Task) Context() Context         { return self.current }
func (self *Task) Snapshot() motor.Snapshot { return self.store.Snapshot() }
func (self *Task) Cycles() uint32           { return atomic.LoadUint32(&self.cycles) }
func (self *Task) Renders() uint32          { return atomic.LoadUint32(&self.renders) }

func (self *Task) Init() {
	self.ticks.Reset()
	self.events.Reset()
	atomic.StoreUint32(&self.cycles, 0)
	atomic.StoreUint32(&self.renders, 0)
	self.current = Context{}
	self.log.Infof("menu init %s", self.current.String())

	config := self.store.Snapshot()
	self.display.Clear()
	self.render(ViewSummary, config)
	self.report(config)
}

// Update runs one cycle per pending tick, returns number of cycles.
func (self *Task) Update() int {
	n := 0
	for self.ticks.TryDecrement() {
		self.cycle()
		n++
	}
	return n
}

func (self *Task) cycle() {
	atomic.AddUint32(&self.cycles, 1)
	merged := false
	if self.events.Pending() {
		self.current.Merge(self.events.Pop())
		merged = true
	}

	before := self.current
	r := Transition(before, self.store.Snapshot())
	self.current = r.Context
	if r.View == ViewNone {
		if merged {
			self.log.Debugf("menu unmatched %s", before.String())
		}
		return
	}
	if r.Context.State != before.State {
		self.log.Debugf("menu %s -> %s event=%s", before.State.String(), r.Context.State.String(), before.Event.String())
	}

	config := self.store.Snapshot()
	if r.Commit != nil {
		self.store.Apply(*r.Commit)
		config = self.store.Snapshot()
		self.log.Infof("menu commit %s", r.Commit.String())
		self.report(config)
	}
	self.render(r.View, config)
}

func (self *Task) render(v View, config motor.Snapshot) {
	l1, l2 := Render(v, self.current, config)
	self.display.SetLines(l1, l2)
	atomic.AddUint32(&self.renders, 1)
}

func (self *Task) report(config motor.Snapshot) {
	if self.reporter != nil {
		self.reporter.Report(config)
	}
}

// Run plays scheduler: calls Update every period until a is stopped.
func (self *Task) Run(a *alive.Alive, period time.Duration) {
	if !a.Add(1) {
		return
	}
	defer a.Done()

	tmr := time.NewTicker(period)
	defer tmr.Stop()
	stopch := a.StopChan()
	for {
		select {
		case <-tmr.C:
			self.Update()
		case <-stopch:
			return
		}
	}
}
