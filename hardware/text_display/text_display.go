package text_display

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/paulrosania/go-charset/charset"
	_ "github.com/paulrosania/go-charset/data"
	"github.com/temoto/motormenu/log2"
)

const MaxWidth = 40
const DefaultWidth = 20

var spaceBytes = bytes.Repeat([]byte{' '}, MaxWidth)

// TextDisplay is two line character display.
// Every SetLines erases both rows with spaces, then writes new text left aligned.
// Text longer than width is cut.
type TextDisplay struct { //nolint:maligned
	mu    sync.Mutex
	dev   Devicer
	log   *log2.Log
	tr    atomic.Value
	width uint32
	state State
	upd   chan<- State
}

type TextDisplayConfig struct {
	Codepage string
	Width    uint32
}

type Devicer interface {
	Clear()
	CursorYX(y, x uint8) bool
	Write(b []byte)
}

func NewTextDisplay(opt *TextDisplayConfig) (*TextDisplay, error) {
	if opt == nil {
		opt = &TextDisplayConfig{}
	}
	width := opt.Width
	if width == 0 {
		width = DefaultWidth
	}
	if width > MaxWidth {
		return nil, errors.NotValidf("display width=%d max=%d", width, MaxWidth)
	}
	self := &TextDisplay{width: width}

	if opt.Codepage != "" {
		if err := self.SetCodepage(opt.Codepage); err != nil {
			return nil, errors.Annotatef(err, "display codepage=%s", opt.Codepage)
		}
	}

	return self, nil
}

func (self *TextDisplay) SetCodepage(cp string) error {
	self.mu.Lock()
	defer self.mu.Unlock()

	tr, err := charset.TranslatorTo(cp)
	if err != nil {
		return err
	}
	self.tr.Store(tr)
	return nil
}

func (self *TextDisplay) SetDevice(dev Devicer) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.dev = dev
}

func (self *TextDisplay) SetLog(log *log2.Log) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.log = log
}

func (self *TextDisplay) Width() uint32 { return atomic.LoadUint32(&self.width) }

func (self *TextDisplay) Clear() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.state.Clear()
	if self.dev != nil {
		self.dev.Clear()
	}
	self.notify()
}

func (self *TextDisplay) SetLines(line1, line2 string) {
	b1 := self.Translate(line1)
	b2 := self.Translate(line2)

	self.mu.Lock()
	defer self.mu.Unlock()
	if !bytes.Equal(self.state.L1, b1) || !bytes.Equal(self.state.L2, b2) {
		self.log.Debugf("display l1=%q l2=%q", line1, line2)
	}
	self.state.L1 = b1
	self.state.L2 = b2
	self.flush()
}

// Translate applies codepage and cuts to display width.
func (self *TextDisplay) Translate(s string) []byte {
	if len(s) == 0 {
		return []byte{}
	}

	result := []byte(s)
	tr, ok := self.tr.Load().(charset.Translator)
	if ok && tr != nil {
		_, tb, err := tr.Translate(result, true)
		if err != nil {
			self.log.Errorf("display translate s=%q err=%v", s, err)
		} else {
			// translator reuses single internal buffer, make a copy
			result = append([]byte(nil), tb...)
		}
	}

	if w := int(self.Width()); len(result) > w {
		result = result[:w]
	}
	return result
}

func (self *TextDisplay) SetUpdateChan(ch chan<- State) {
	self.mu.Lock()
	self.upd = ch
	self.mu.Unlock()
}

func (self *TextDisplay) State() State {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.state.Copy()
}

func (self *TextDisplay) flush() {
	if self.dev != nil {
		blank := spaceBytes[:self.width]
		self.dev.CursorYX(1, 1)
		self.dev.Write(blank)
		self.dev.CursorYX(2, 1)
		self.dev.Write(blank)
		if len(self.state.L1) > 0 {
			self.dev.CursorYX(1, 1)
			self.dev.Write(self.state.L1)
		}
		if len(self.state.L2) > 0 {
			self.dev.CursorYX(2, 1)
			self.dev.Write(self.state.L2)
		}
	}
	self.notify()
}

func (self *TextDisplay) notify() {
	if self.upd != nil {
		self.upd <- self.state.Copy()
	}
}

type State struct {
	L1, L2 []byte
}

func (s *State) Clear() {
	s.L1 = nil
	s.L2 = nil
}

func (s State) Copy() State {
	return State{
		L1: append([]byte(nil), s.L1...),
		L2: append([]byte(nil), s.L2...),
	}
}

func (s State) Format(width uint32) string {
	return fmt.Sprintf("%s\n%s",
		PadSpace(s.L1, width),
		PadSpace(s.L2, width),
	)
}

func (s State) String() string {
	return fmt.Sprintf("%s\n%s", s.L1, s.L2)
}

// returns `b` when len>=width
// otherwise pads with spaces
func PadSpace(b []byte, width uint32) []byte {
	l := uint32(len(b))

	if l == 0 {
		return spaceBytes[:width]
	}
	if l >= width {
		return b
	}
	buf := make([]byte, 0, width)
	buf = append(append(buf, b...), spaceBytes[:width-l]...)
	return buf
}
