package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gpio "github.com/temoto/gpio-cdev-go"
	gpio_mock "github.com/temoto/gpio-cdev-go/mock"
	"github.com/temoto/motormenu/log2"
)

func newIdleEvent() *gpio_mock.MockEvent {
	ev := &gpio_mock.MockEvent{}
	ev.On("Close").Return(nil)
	return ev
}

func TestGpioButton(t *testing.T) {
	t.Parallel()

	const ms = uint64(time.Millisecond)
	enter := newIdleEvent()
	enter.On("Wait", mock.AnythingOfType("time.Duration")).Return(gpio.EventData{Timestamp: 100 * ms, ID: gpio.GPIOEVENT_EVENT_FALLING_EDGE}, nil).Once()
	// rising edge is release, ignored
	enter.On("Wait", mock.AnythingOfType("time.Duration")).Return(gpio.EventData{Timestamp: 150 * ms, ID: gpio.GPIOEVENT_EVENT_RISING_EDGE}, nil).Once()
	// bounce within debounce window
	enter.On("Wait", mock.AnythingOfType("time.Duration")).Return(gpio.EventData{Timestamp: 101 * ms, ID: gpio.GPIOEVENT_EVENT_FALLING_EDGE}, nil).Once()
	enter.On("Wait", mock.AnythingOfType("time.Duration")).Return(gpio.EventData{Timestamp: 300 * ms, ID: gpio.GPIOEVENT_EVENT_FALLING_EDGE}, nil).Once()
	enter.On("Wait", mock.AnythingOfType("time.Duration")).Return(gpio.EventData{}, gpio.ErrTimeout).After(time.Millisecond)
	next := newIdleEvent()
	next.On("Wait", mock.AnythingOfType("time.Duration")).Return(gpio.EventData{}, gpio.ErrTimeout).After(time.Millisecond)

	chip := &gpio_mock.MockChip{}
	chip.On("GetLineEvent", uint32(5), gpio.RequestFlag(0), gpio.GPIOEVENT_REQUEST_FALLING_EDGE, gpioConsumer).Return(enter, nil)
	chip.On("GetLineEvent", uint32(6), gpio.RequestFlag(0), gpio.GPIOEVENT_REQUEST_FALLING_EDGE, gpioConsumer).Return(next, nil)

	src, err := NewGpioButtonSource(chip, GpioButtonConfig{
		Buttons:  []GpioButton{{Line: 5, Key: KeyEnter}, {Line: 6, Key: KeyNext}},
		Debounce: 20 * time.Millisecond,
	}, log2.NewTest(t, log2.LDebug))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		e, err := src.Read()
		require.NoError(t, err)
		assert.Equal(t, Event{Source: GpioButtonTag, Key: KeyEnter}, e)
	}
	require.NoError(t, src.Close())
	_, err = src.Read()
	assert.True(t, gpio.IsClosed(err))
	chip.AssertExpectations(t)
	enter.AssertCalled(t, "Close")
	next.AssertCalled(t, "Close")
}

func TestGpioButtonNoButtons(t *testing.T) {
	t.Parallel()

	_, err := NewGpioButtonSource(&gpio_mock.MockChip{}, GpioButtonConfig{}, nil)
	assert.Error(t, err)
}
