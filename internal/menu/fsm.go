// Package menu is the motor configuration menu: state machine, rendering and tick driven task.
package menu

import (
	"fmt"

	"github.com/temoto/motormenu/internal/motor"
)

type State uint8

const (
	StateIdle State = iota
	StateSelectMotor
	StateSelectVariable
	StateSetValue
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateSelectMotor:
		return "SelectMotor"
	case StateSelectVariable:
		return "SelectVariable"
	case StateSetValue:
		return "SetValue"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

type Event uint8

const (
	EventNone Event = iota
	EventEnter
	EventNext
	EventEscape
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "None"
	case EventEnter:
		return "Enter"
	case EventNext:
		return "Next"
	case EventEscape:
		return "Escape"
	}
	return fmt.Sprintf("Event(%d)", uint8(e))
}

// Context is the whole menu position.
// HasEvent stays true until a transition consumes Event.
// Edit is meaningful only in StateSetValue, it is zeroed on leaving.
type Context struct {
	State    State
	HasEvent bool
	Event    Event
	Motor    uint8
	Variable motor.Variable
	Edit     uint8
}

// Merge latches e as pending, overwriting unconsumed one.
func (c *Context) Merge(e Event) {
	if e == EventNone {
		return
	}
	c.Event = e
	c.HasEvent = true
}

func (c Context) String() string {
	return fmt.Sprintf("state=%s event=%s has_event=%t motor=%d variable=%s edit=%d",
		c.State.String(), c.Event.String(), c.HasEvent, c.Motor, c.Variable.String(), c.Edit)
}

// View selects screen text, see Render.
type View uint8

const (
	ViewNone View = iota
	ViewSummary
	ViewSelectMotor
	ViewConfigMotor
	ViewSelectVariable
	ViewSetValue
)

type Result struct {
	Context Context
	Commit  *motor.Commit
	View    View
}

// Transition is pure: config is only read, mutation is returned as Commit.
// Event without matching transition is kept pending and Result.View is ViewNone.
func Transition(c Context, config motor.Snapshot) Result {
	r := Result{Context: c}
	if !c.HasEvent {
		return r
	}
	next := &r.Context

	switch c.State {
	case StateIdle:
		switch c.Event {
		case EventEnter:
			next.State = StateSelectMotor
			r.View = ViewSelectMotor
		default:
			return r
		}

	case StateSelectMotor:
		switch c.Event {
		case EventEnter:
			next.State = StateSelectVariable
			r.View = ViewConfigMotor
		case EventNext:
			next.Motor = (c.Motor + 1) % motor.Count
			r.View = ViewSelectMotor
		case EventEscape:
			next.State = StateIdle
			r.View = ViewSummary
		default:
			return r
		}

	case StateSelectVariable:
		switch c.Event {
		case EventEnter:
			next.Edit = config[c.Motor].Get(c.Variable)
			next.State = StateSetValue
			r.View = ViewSetValue
		case EventNext:
			next.Variable = (c.Variable + 1) % motor.VariableCount
			r.View = ViewSelectVariable
		case EventEscape:
			next.State = StateSelectMotor
			r.View = ViewSelectMotor
		default:
			return r
		}

	case StateSetValue:
		switch c.Event {
		case EventEnter:
			r.Commit = &motor.Commit{Motor: c.Motor, Variable: c.Variable, Value: c.Edit}
			next.Edit = 0
			next.State = StateSelectVariable
			r.View = ViewSelectVariable
		case EventNext:
			next.Edit = nextValue(c.Edit, c.Variable.Bound())
			r.View = ViewSetValue
		case EventEscape:
			next.Edit = 0
			next.State = StateSelectVariable
			r.View = ViewSelectVariable
		default:
			return r
		}

	default:
		panic(fmt.Sprintf("code error menu state=%s", c.State.String()))
	}

	next.HasEvent = false
	return r
}

// nextValue wraps to 0 after bound; value above bound is pulled down to bound.
func nextValue(x, bound uint8) uint8 {
	switch {
	case x > bound:
		return bound
	case x == bound:
		return 0
	}
	return x + 1
}
