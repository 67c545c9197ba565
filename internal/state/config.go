package state

import (
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/motormenu/hardware/lcd"
	"github.com/temoto/motormenu/helpers"
	"github.com/temoto/motormenu/internal/motor"
	"github.com/temoto/motormenu/internal/tele"
	"github.com/temoto/motormenu/log2"
)

const (
	DefaultTickPeriod   = 10 * time.Millisecond
	DefaultUpdatePeriod = 20 * time.Millisecond
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Hardware struct {
		HD44780 struct { //nolint:maligned
			Enable        bool       `hcl:"enable"`
			Codepage      string     `hcl:"codepage"`
			PinChip       string     `hcl:"pin_chip"`
			Pinmap        lcd.PinMap `hcl:"pinmap"`
			Page1         bool       `hcl:"page1"`
			Width         int        `hcl:"width"`
			ControlBlink  bool       `hcl:"blink"`
			ControlCursor bool       `hcl:"cursor"`
		} `hcl:"hd44780"`
		Input struct {
			DevInputEvent struct {
				Enable bool   `hcl:"enable"`
				Device string `hcl:"device"`
				// Linux key codes, 0 = default
				KeyEnter  int `hcl:"key_enter"`
				KeyNext   int `hcl:"key_next"`
				KeyEscape int `hcl:"key_escape"`
			} `hcl:"dev_input_event"`
			GpioButton struct {
				Enable     bool   `hcl:"enable"`
				PinChip    string `hcl:"pin_chip"`
				Enter      string `hcl:"enter"`
				Next       string `hcl:"next"`
				Escape     string `hcl:"escape"`
				Rising     bool   `hcl:"rising"`
				DebounceMs int    `hcl:"debounce_ms"`
			} `hcl:"gpio_button"`
		} `hcl:"input"`
	} `hcl:"hardware"`

	Menu MenuConfig  `hcl:"menu"`
	Tele tele.Config `hcl:"tele"`

	_copy_guard sync.Mutex //nolint:unused
}

type MenuConfig struct {
	TickMs    int `hcl:"tick_ms"`
	UpdateMs  int `hcl:"update_ms"`
	QueueSize int `hcl:"queue_size"`
	// only used for Unmarshal, use InitialMotors()
	XXX_Motors []MotorConfig `hcl:"motor"`
}

type MotorConfig struct {
	Name  string `hcl:"name,key"`
	Power string `hcl:"power"`
	Speed int    `hcl:"speed"`
	Spin  string `hcl:"spin"`
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *MenuConfig) TickPeriod() time.Duration {
	return helpers.IntMillisecondDefault(c.TickMs, DefaultTickPeriod)
}
func (c *MenuConfig) UpdatePeriod() time.Duration {
	return helpers.IntMillisecondDefault(c.UpdateMs, DefaultUpdatePeriod)
}

// InitialMotors validates configured start values, unlisted motors and fields are zero.
func (c *MenuConfig) InitialMotors() (motor.Snapshot, error) {
	var s motor.Snapshot
	errs := make([]error, 0)
	for _, m := range c.XXX_Motors {
		i, err := strconv.ParseUint(m.Name, 10, 8)
		if err != nil || i >= motor.Count {
			errs = append(errs, errors.NotValidf("config: menu.motor=%q", m.Name))
			continue
		}
		if m.Speed < 0 || m.Speed > int(motor.Speed.Bound()) {
			errs = append(errs, errors.NotValidf("config: menu.motor=%s speed=%d", m.Name, m.Speed))
		} else {
			s[i].Set(motor.Speed, uint8(m.Speed))
		}
		for _, f := range []struct {
			v motor.Variable
			s string
		}{{motor.Power, m.Power}, {motor.Spin, m.Spin}} {
			if f.s == "" {
				continue
			}
			x, ok := f.v.ParseValue(f.s)
			if !ok {
				errs = append(errs, errors.NotValidf("config: menu.motor=%s %s=%q", m.Name, f.v.String(), f.s))
				continue
			}
			s[i].Set(f.v, x)
		}
	}
	return s, helpers.FoldErrors(errs)
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		if err := osfs.SetBase(dir); err != nil {
			return nil, err
		}
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
