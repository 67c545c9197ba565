package input

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/inputevent-go"
)

func TestDevInputEventRead(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBuffer(nil)
	write := func(typ, code uint16, value inputevent.KeyEventState) {
		ie := inputevent.InputEvent{Type: typ, Code: code, Value: int32(value)}
		require.NoError(t, binary.Write(buf, binary.LittleEndian, &ie))
	}
	write(linuxEvKey, LinuxKeyEnter, inputevent.KeyStateDown)
	write(linuxEvKey, LinuxKeyEnter, inputevent.KeyStateUp)
	write(0x00, 0, 0)                             // EV_SYN
	write(linuxEvKey, 30, inputevent.KeyStateDown) // KEY_A, not mapped
	write(linuxEvKey, LinuxKeyRight, inputevent.KeyStateHold)
	write(linuxEvKey, LinuxKeyEsc, inputevent.KeyStateDown)
	write(linuxEvKey, LinuxKeyRight, inputevent.KeyStateDown)

	src := newDevInputEventSource(ioutil.NopCloser(buf), nil)
	expect := []Key{KeyEnter, KeyEscape, KeyNext}
	for _, k := range expect {
		e, err := src.Read()
		require.NoError(t, err)
		assert.Equal(t, Event{Source: DevInputEventTag, Key: k}, e)
	}
	_, err := src.Read()
	assert.Equal(t, io.EOF, err)
}

func TestDevInputEventCustomKeymap(t *testing.T) {
	t.Parallel()

	buf := bytes.NewBuffer(nil)
	ie := inputevent.InputEvent{Type: linuxEvKey, Code: 57, Value: int32(inputevent.KeyStateDown)} // KEY_SPACE
	require.NoError(t, binary.Write(buf, binary.LittleEndian, &ie))
	src := newDevInputEventSource(ioutil.NopCloser(buf), map[uint16]Key{57: KeyNext})
	e, err := src.Read()
	require.NoError(t, err)
	assert.Equal(t, KeyNext, e.Key)
}
