package state

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/juju/errors"
	gpio "github.com/temoto/gpio-cdev-go"
	"github.com/temoto/motormenu/hardware/input"
	"github.com/temoto/motormenu/hardware/lcd"
	"github.com/temoto/motormenu/hardware/text_display"
	"github.com/temoto/motormenu/helpers"
	"github.com/temoto/motormenu/log2"
)

const defaultDebounce = 30 * time.Millisecond

type hardware struct {
	HD44780 struct {
		once
		Device  *lcd.LCD
		Display *text_display.TextDisplay
	}
	Input *input.Dispatch

	closers []func() error
}

func (g *Global) MustTextDisplay() *text_display.TextDisplay {
	d, err := g.Display()
	if err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
	return d
}

// Display is lazy text display on HD44780, preset Display is used as is.
func (g *Global) Display() (*text_display.TextDisplay, error) {
	x := &g.Hardware.HD44780
	_ = x.do(func() error {
		if x.Display != nil { // test or console mode
			return nil
		}

		devConfig := &g.Config.Hardware.HD44780
		if !devConfig.Enable {
			return errors.NotFoundf("config: text display, hardware.hd44780 is disabled")
		}

		displayConfig := &text_display.TextDisplayConfig{
			Width:    uint32(devConfig.Width),
			Codepage: devConfig.Codepage,
		}
		disp, err := text_display.NewTextDisplay(displayConfig)
		if err != nil {
			return errors.Annotatef(err, "NewTextDisplay config=%#v", displayConfig)
		}

		dev, err := lcd.Open(devConfig.PinChip, devConfig.Pinmap, devConfig.Page1, uint8(disp.Width()))
		if err != nil {
			return errors.Annotatef(err, "hd44780 config=%#v", devConfig)
		}
		ctrl := lcd.ControlOn
		if devConfig.ControlBlink {
			ctrl |= lcd.ControlBlink
		}
		if devConfig.ControlCursor {
			ctrl |= lcd.ControlUnderscore
		}
		dev.SetControl(ctrl)
		x.Device = dev
		g.Hardware.closers = append(g.Hardware.closers, dev.Close)

		disp.SetDevice(dev)
		disp.SetLog(g.Log)
		x.Display = disp
		return nil
	})
	return x.Display, x.err
}

// CloseHardware releases devices opened by Init and Display.
func (g *Global) CloseHardware() error {
	errs := make([]error, 0, len(g.Hardware.closers))
	for _, c := range g.Hardware.closers {
		errs = append(errs, c())
	}
	g.Hardware.closers = nil
	return helpers.FoldErrors(errs)
}

func (g *Global) initInput() error {
	g.Hardware.Input = input.NewDispatch(g.Log, g.Alive.StopChan())

	// support more input sources here
	sources := make([]input.Source, 0, 2)

	if src, err := g.initInputDevEvent(); err != nil {
		return err
	} else if src != nil {
		sources = append(sources, src)
	}
	if src, err := g.initInputGpioButton(); err != nil {
		return err
	} else if src != nil {
		sources = append(sources, src)
	}

	go g.Hardware.Input.Run(sources)
	return nil
}

func (g *Global) initInputDevEvent() (input.Source, error) {
	const tag = input.DevInputEventTag
	devConfig := &g.Config.Hardware.Input.DevInputEvent
	if !devConfig.Enable {
		g.Log.Infof("input=%s disabled", tag)
		return nil, nil
	}

	keymap := input.DefaultLinuxKeymap()
	for code, key := range map[int]input.Key{
		devConfig.KeyEnter:  input.KeyEnter,
		devConfig.KeyNext:   input.KeyNext,
		devConfig.KeyEscape: input.KeyEscape,
	} {
		if code <= 0 {
			continue
		}
		for k, v := range keymap {
			if v == key {
				delete(keymap, k)
			}
		}
		keymap[uint16(code)] = key
	}
	src, err := input.NewDevInputEventSource(devConfig.Device, keymap)
	if err != nil {
		return nil, errors.Annotatef(err, "input=%s", tag)
	}
	g.Hardware.closers = append(g.Hardware.closers, src.Close)
	return src, nil
}

func (g *Global) initInputGpioButton() (input.Source, error) {
	const tag = input.GpioButtonTag
	devConfig := &g.Config.Hardware.Input.GpioButton
	if !devConfig.Enable {
		g.Log.Infof("input=%s disabled", tag)
		return nil, nil
	}

	buttons := make([]input.GpioButton, 0, 3)
	errs := make([]error, 0)
	for _, b := range []struct {
		line string
		key  input.Key
	}{{devConfig.Enter, input.KeyEnter}, {devConfig.Next, input.KeyNext}, {devConfig.Escape, input.KeyEscape}} {
		if b.line == "" {
			continue
		}
		n, err := strconv.ParseUint(b.line, 10, 32)
		if err != nil {
			errs = append(errs, errors.NotValidf("config: input.gpio_button %s=%q", b.key.String(), b.line))
			continue
		}
		buttons = append(buttons, input.GpioButton{Line: uint32(n), Key: b.key})
	}
	if err := helpers.FoldErrors(errs); err != nil {
		return nil, err
	}

	chip, err := gpio.Open(devConfig.PinChip, "motormenu")
	if err != nil {
		return nil, errors.Annotatef(err, "input=%s pin_chip=%s", tag, devConfig.PinChip)
	}
	src, err := input.NewGpioButtonSource(chip, input.GpioButtonConfig{
		Buttons:  buttons,
		Rising:   devConfig.Rising,
		Debounce: helpers.IntMillisecondDefault(devConfig.DebounceMs, defaultDebounce),
	}, g.Log.Clone(log2.LInfo))
	if err != nil {
		chip.Close()
		return nil, errors.Annotatef(err, "input=%s", tag)
	}
	g.Hardware.closers = append(g.Hardware.closers, src.Close, chip.Close)
	return src, nil
}

type once struct {
	sync.Mutex
	called uint32 // atomic bool
	err    error
}

func (o *once) done() bool {
	return atomic.LoadUint32(&o.called) == 1
}

func (o *once) do(f func() error) error {
	if o.done() { // fast path
		return o.err
	}
	o.Lock()
	defer o.Unlock()
	if o.done() {
		return o.err
	}
	o.err = f()
	atomic.StoreUint32(&o.called, 1)
	return o.err
}
