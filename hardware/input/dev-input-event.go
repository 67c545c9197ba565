package input

import (
	"io"
	"os"

	"github.com/juju/errors"
	"github.com/temoto/inputevent-go"
)

const DevInputEventTag = "dev-input-event"

// Linux codes from input-event-codes.h, key defaults when config omits them.
const (
	linuxEvKey uint16 = 0x01

	LinuxKeyEsc   uint16 = 1
	LinuxKeyEnter uint16 = 28
	LinuxKeyRight uint16 = 106
)

type DevInputEventSource struct {
	f      io.ReadCloser
	keymap map[uint16]Key
}

// compile-time interface compliance test
var _ Source = new(DevInputEventSource)

func (self *DevInputEventSource) String() string { return DevInputEventTag }

func NewDevInputEventSource(device string, keymap map[uint16]Key) (*DevInputEventSource, error) {
	f, err := os.Open(device)
	if err != nil {
		return nil, errors.Annotatef(err, "%s device=%s", DevInputEventTag, device)
	}
	return newDevInputEventSource(f, keymap), nil
}

func newDevInputEventSource(r io.ReadCloser, keymap map[uint16]Key) *DevInputEventSource {
	if len(keymap) == 0 {
		keymap = DefaultLinuxKeymap()
	}
	return &DevInputEventSource{f: r, keymap: keymap}
}

func DefaultLinuxKeymap() map[uint16]Key {
	return map[uint16]Key{
		LinuxKeyEnter: KeyEnter,
		LinuxKeyRight: KeyNext,
		LinuxKeyEsc:   KeyEscape,
	}
}

func (self *DevInputEventSource) Close() error { return self.f.Close() }

// Read skips everything except key press of mapped keys.
func (self *DevInputEventSource) Read() (Event, error) {
	for {
		ie, err := inputevent.ReadOne(self.f)
		if err != nil {
			return Event{}, err
		}
		if ie.Type != linuxEvKey || ie.Value != int32(inputevent.KeyStateDown) {
			continue
		}
		if key, ok := self.keymap[ie.Code]; ok {
			return Event{Source: DevInputEventTag, Key: key}, nil
		}
	}
}
