package input

import (
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	gpio "github.com/temoto/gpio-cdev-go"
	"github.com/temoto/motormenu/log2"
)

const GpioButtonTag = "gpio-button"

const gpioConsumer = "motormenu"
const gpioPoll = 200 * time.Millisecond

type GpioButton struct {
	Line uint32
	Key  Key
}

type GpioButtonConfig struct {
	Buttons []GpioButton
	// Press on rising edge, default falling (pull-up wiring)
	Rising   bool
	Debounce time.Duration
}

// GpioButtonSource turns edge events on GPIO lines into key presses.
type GpioButtonSource struct {
	alive    *alive.Alive
	log      *log2.Log
	chip     gpio.Chiper
	lines    []gpio.Eventer
	ch       chan Event
	errch    chan error
	debounce time.Duration
	edge     gpio.EventID
}

// compile-time interface compliance test
var _ Source = new(GpioButtonSource)

func NewGpioButtonSource(chip gpio.Chiper, config GpioButtonConfig, log *log2.Log) (*GpioButtonSource, error) {
	if len(config.Buttons) == 0 {
		return nil, errors.NotValidf("%s no buttons", GpioButtonTag)
	}
	self := &GpioButtonSource{
		alive:    alive.NewAlive(),
		log:      log,
		chip:     chip,
		ch:       make(chan Event),
		errch:    make(chan error, len(config.Buttons)),
		debounce: config.Debounce,
		edge:     gpio.GPIOEVENT_EVENT_FALLING_EDGE,
	}
	request := gpio.GPIOEVENT_REQUEST_FALLING_EDGE
	if config.Rising {
		request = gpio.GPIOEVENT_REQUEST_RISING_EDGE
		self.edge = gpio.GPIOEVENT_EVENT_RISING_EDGE
	}

	for _, b := range config.Buttons {
		ev, err := chip.GetLineEvent(b.Line, 0, request, gpioConsumer)
		if err != nil {
			self.closeLines()
			return nil, errors.Annotatef(err, "%s line=%d key=%s", GpioButtonTag, b.Line, b.Key.String())
		}
		self.lines = append(self.lines, ev)
		self.alive.Add(1)
		go self.watch(ev, b)
	}
	return self, nil
}

func (self *GpioButtonSource) String() string { return GpioButtonTag }

func (self *GpioButtonSource) Read() (Event, error) {
	select {
	case e := <-self.ch:
		return e, nil
	case err := <-self.errch:
		return Event{}, err
	case <-self.alive.StopChan():
		return Event{}, gpio.ErrClosed
	}
}

func (self *GpioButtonSource) Close() error {
	self.alive.Stop()
	self.alive.Wait()
	self.closeLines()
	return nil
}

func (self *GpioButtonSource) closeLines() {
	for _, ev := range self.lines {
		if err := ev.Close(); err != nil && !gpio.IsClosed(err) {
			self.log.Error(errors.Annotate(err, GpioButtonTag))
		}
	}
	self.lines = nil
}

func (self *GpioButtonSource) watch(ev gpio.Eventer, b GpioButton) {
	defer self.alive.Done()
	var last uint64
	stopch := self.alive.StopChan()
	for self.alive.IsRunning() {
		edge, err := ev.Wait(gpioPoll)
		if gpio.IsTimeout(err) {
			continue
		}
		if err != nil {
			self.errch <- errors.Annotatef(err, "%s line=%d", GpioButtonTag, b.Line)
			return
		}
		if edge.ID != self.edge {
			continue
		}
		if last != 0 && edge.Timestamp-last < uint64(self.debounce) {
			self.log.Debugf("%s line=%d bounce", GpioButtonTag, b.Line)
			continue
		}
		last = edge.Timestamp
		select {
		case self.ch <- Event{Source: GpioButtonTag, Key: b.Key}:
		case <-stopch:
			return
		}
	}
}
