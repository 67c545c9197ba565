package lcd

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gpio "github.com/temoto/gpio-cdev-go"
	gpio_mock "github.com/temoto/gpio-cdev-go/mock"
)

type frame struct {
	rs   byte
	data byte
}

// bus decodes nibbles latched on E high into bytes.
type bus struct {
	mu      sync.Mutex
	pins    [7]byte
	nibbles []byte
	rs      []byte
}

func (self *bus) setFunc(i int) gpio.LineSetFunc {
	return func(v byte) {
		self.mu.Lock()
		self.pins[i] = v
		self.mu.Unlock()
	}
}

func (self *bus) flush(mock.Arguments) {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.pins[2] == 1 {
		n := self.pins[3] | self.pins[4]<<1 | self.pins[5]<<2 | self.pins[6]<<3
		self.nibbles = append(self.nibbles, n)
		self.rs = append(self.rs, self.pins[0])
	}
}

func (self *bus) frames() []frame {
	self.mu.Lock()
	defer self.mu.Unlock()
	fs := make([]frame, 0, len(self.nibbles)/2)
	for i := 0; i+1 < len(self.nibbles); i += 2 {
		fs = append(fs, frame{rs: self.rs[i], data: self.nibbles[i]<<4 | self.nibbles[i+1]})
	}
	self.nibbles, self.rs = nil, nil
	return fs
}

func newTestLCD(t testing.TB) (*LCD, *bus, *gpio_mock.MockLines) {
	b := &bus{}
	lines := &gpio_mock.MockLines{}
	for i, n := range []uint32{7, 8, 9, 10, 11, 12, 13} {
		lines.On("SetFunc", n).Return(b.setFunc(i))
	}
	lines.On("Flush").Return(nil).Run(b.flush)
	lines.On("Close").Return(nil)
	chip := &gpio_mock.MockChip{}
	chip.On("OpenLines", gpio.GPIOHANDLE_REQUEST_OUTPUT, gpioConsumer,
		uint32(7), uint32(8), uint32(9), uint32(10), uint32(11), uint32(12), uint32(13)).Return(lines, nil)

	d := &LCD{delay: func(time.Duration) {}}
	pinmap := PinMap{RS: "7", RW: "8", E: "9", D4: "10", D5: "11", D6: "12", D7: "13"}
	require.NoError(t, d.Init(chip, pinmap, true, 20))
	chip.AssertExpectations(t)
	return d, b, lines
}

func TestInit(t *testing.T) {
	t.Parallel()

	_, b, _ := newTestLCD(t)
	assert.Equal(t, []frame{
		{0, 0x33}, {0, 0x32},
		{0, 0x2a}, // 4 bit, 2 lines, page1
		{0, 0x08}, {0, 0x0c},
		{0, byte(CommandClear)},
		{0, 0x06},
	}, b.frames())
}

func TestWriteCursor(t *testing.T) {
	t.Parallel()

	d, b, lines := newTestLCD(t)
	b.frames()

	assert.True(t, d.CursorYX(2, 1))
	d.Write([]byte("Ok"))
	assert.Equal(t, []frame{{0, 0xc0}, {1, 'O'}, {1, 'k'}}, b.frames())

	assert.True(t, d.CursorYX(1, 20))
	assert.False(t, d.CursorYX(1, 21))
	assert.False(t, d.CursorYX(3, 1))
	assert.Equal(t, []frame{{0, 0x80 + 19}}, b.frames())

	assert.Equal(t, ControlOn, d.Control())
	require.NoError(t, d.Close())
	lines.AssertCalled(t, "Close")
}

func TestPinMapInvalid(t *testing.T) {
	t.Parallel()

	d := &LCD{delay: func(time.Duration) {}}
	err := d.Init(&gpio_mock.MockChip{}, PinMap{RS: "x"}, false, 0)
	assert.Error(t, err)
}
