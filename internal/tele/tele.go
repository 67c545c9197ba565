// Package tele reports desired motor configuration and errors to MQTT broker.
package tele

import (
	"context"
	"encoding/json"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/motormenu/internal/motor"
	"github.com/temoto/motormenu/log2"
)

// Tele contract:
// - Init() fails only with invalid config, network issues ignored
// - Report/Error never block on network, messages are dropped while offline
type tele struct { //nolint:maligned
	config    Config
	log       *log2.Log
	transport Transporter
	now       func() time.Time
}

func New() Teler {
	return &tele{}
}
func NewWithTransporter(trans Transporter) Teler {
	return &tele{transport: trans}
}

type MotorMessage struct {
	Power bool  `json:"power"`
	Speed uint8 `json:"speed"`
	Spin  bool  `json:"spin"`
}

type Telemetry struct {
	VmId   int32          `json:"vm_id"`
	Time   int64          `json:"time"`
	Motors []MotorMessage `json:"motors,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (self *tele) Init(ctx context.Context, log *log2.Log, teleConfig Config) error {
	self.config = teleConfig
	self.log = log
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	if self.now == nil {
		self.now = time.Now
	}
	if !self.config.Enabled {
		self.log.Infof("tele disabled")
		return nil
	}

	// test code sets .transport
	if self.transport == nil { // production path
		self.transport = &transportMqtt{}
	}
	if err := self.transport.Init(ctx, log, teleConfig); err != nil {
		return errors.Annotate(err, "tele transport")
	}
	return nil
}

func (self *tele) Close() {
	if self.config.Enabled && self.transport != nil {
		self.transport.Close()
	}
}

func (self *tele) Report(s motor.Snapshot) {
	if !self.config.Enabled {
		return
	}
	tm := self.newTelemetry()
	tm.Motors = make([]MotorMessage, len(s))
	for i, c := range s {
		tm.Motors[i] = MotorMessage{Power: c.Power, Speed: c.Speed, Spin: c.Spin}
	}
	payload, err := json.Marshal(tm)
	if err != nil {
		self.log.Errorf("CRITICAL telemetry Marshal tm=%#v err=%v", tm, err)
		return
	}
	if !self.transport.SendTelemetry(payload) {
		self.log.Debugf("tele report not sent")
	}
}

// Error must not log with Error level, log hook would loop back here.
func (self *tele) Error(e error) {
	if !self.config.Enabled || e == nil {
		return
	}
	tm := self.newTelemetry()
	tm.Error = e.Error()
	payload, err := json.Marshal(tm)
	if err != nil {
		self.log.Infof("tele error Marshal err=%v", err)
		return
	}
	if !self.transport.SendError(payload) {
		self.log.Debugf("tele error not sent: %s", tm.Error)
	}
}

func (self *tele) newTelemetry() *Telemetry {
	return &Telemetry{
		VmId: int32(self.config.VmId),
		Time: self.now().UnixNano(),
	}
}
