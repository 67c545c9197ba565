package motor

import "fmt"

// Snapshot is a value copy of all motors, safe to pass around.
type Snapshot [Count]Config

// Commit is a single field write produced by menu.
type Commit struct {
	Motor    uint8
	Variable Variable
	Value    uint8
}

func (c Commit) String() string {
	return fmt.Sprintf("motor=%d %s=%s", c.Motor, c.Variable.String(), c.Variable.ValueName(c.Value))
}

// Store is owned by single task, no locking.
type Store struct {
	motors Snapshot
}

func NewStore(initial Snapshot) *Store {
	return &Store{motors: initial}
}

func (self *Store) Snapshot() Snapshot { return self.motors }

func (self *Store) Get(motor uint8) Config { return self.motors[motor] }

func (self *Store) Apply(c Commit) {
	self.motors[c.Motor].Set(c.Variable, c.Value)
}

func (self *Store) Reset(initial Snapshot) { self.motors = initial }
