// Package motor keeps desired motor configuration in memory.
// Nothing here touches actuators, values are only what operator asked for.
package motor

import (
	"fmt"
	"strings"
)

const Count = 2

type Config struct {
	Power bool
	Speed uint8
	Spin  bool
}

type Variable uint8

const (
	Power Variable = iota
	Speed
	Spin
)

const VariableCount = 3

type variableInfo struct {
	name   string
	bound  uint8
	values []string
}

var /*const*/ variables = [VariableCount]variableInfo{
	Power: {"Power", 1, []string{"OFF", "ON"}},
	Speed: {"Speed", 9, []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}},
	Spin:  {"Spin", 1, []string{"L", "R"}},
}

func (v Variable) Valid() bool { return v < VariableCount }

func (v Variable) String() string {
	if !v.Valid() {
		return fmt.Sprintf("Variable(%d)", uint8(v))
	}
	return variables[v].name
}

// Bound is inclusive upper limit of the variable value.
func (v Variable) Bound() uint8 { return variables[v].bound }

func (v Variable) ValueName(x uint8) string {
	names := variables[v].values
	if int(x) >= len(names) {
		return "?"
	}
	return names[x]
}

// ParseValue accepts value name, case insensitive: "ON", "r", "7".
func (v Variable) ParseValue(s string) (uint8, bool) {
	s = strings.TrimSpace(s)
	for i, name := range variables[v].values {
		if strings.EqualFold(name, s) {
			return uint8(i), true
		}
	}
	return 0, false
}

func (c Config) Get(v Variable) uint8 {
	switch v {
	case Power:
		return b2u(c.Power)
	case Speed:
		return c.Speed
	case Spin:
		return b2u(c.Spin)
	}
	panic(fmt.Sprintf("code error motor.Config.Get variable=%d", v))
}

// Set stores x clamped to variable bound.
func (c *Config) Set(v Variable, x uint8) {
	if b := v.Bound(); x > b {
		x = b
	}
	switch v {
	case Power:
		c.Power = x != 0
	case Speed:
		c.Speed = x
	case Spin:
		c.Spin = x != 0
	default:
		panic(fmt.Sprintf("code error motor.Config.Set variable=%d", v))
	}
}

func (c Config) String() string {
	return fmt.Sprintf("%s, %s, %s",
		Power.ValueName(c.Get(Power)),
		Speed.ValueName(c.Get(Speed)),
		Spin.ValueName(c.Get(Spin)))
}

func b2u(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
