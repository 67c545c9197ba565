package text_display

import (
	"fmt"
	"sync"
)

func NewMockTextDisplay(opt *TextDisplayConfig) (*TextDisplay, *MemoryDevicer) {
	display, err := NewTextDisplay(opt)
	if err != nil {
		panic(err)
	}
	dev := NewMemoryDevicer(display.Width())
	display.SetDevice(dev)
	return display, dev
}

// MemoryDevicer emulates character display memory: Write puts bytes at cursor and advances it.
// Used by console mode and tests.
type MemoryDevicer struct {
	mu     sync.Mutex
	width  uint32
	rows   [2][]byte
	y, x   uint8
	writes uint32
}

// compile-time interface compliance test
var _ Devicer = new(MemoryDevicer)

func NewMemoryDevicer(width uint32) *MemoryDevicer {
	self := &MemoryDevicer{width: width}
	self.Clear()
	return self
}

func (self *MemoryDevicer) Clear() {
	self.mu.Lock()
	defer self.mu.Unlock()
	for i := range self.rows {
		self.rows[i] = append([]byte(nil), spaceBytes[:self.width]...)
	}
	self.y, self.x = 1, 1
}

func (self *MemoryDevicer) CursorYX(y, x uint8) bool {
	if !(y > 0 && y <= 2) || !(x > 0 && uint32(x) <= self.width) {
		return false
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	self.y, self.x = y, x
	return true
}

func (self *MemoryDevicer) Write(b []byte) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.writes++
	row := self.rows[self.y-1]
	for _, c := range b {
		if uint32(self.x) > self.width {
			break
		}
		row[self.x-1] = c
		self.x++
	}
}

func (self *MemoryDevicer) Line(y uint8) string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return string(self.rows[y-1])
}

func (self *MemoryDevicer) Writes() uint32 {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.writes
}

func (self *MemoryDevicer) String() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return fmt.Sprintf("%s\n%s", self.rows[0], self.rows[1])
}
