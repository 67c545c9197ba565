package tele

import (
	"context"

	"github.com/temoto/motormenu/internal/motor"
	"github.com/temoto/motormenu/log2"
)

type Config struct {
	Enabled      bool   `hcl:"enable"`
	LogDebug     bool   `hcl:"log_debug"`
	MqttBroker   string `hcl:"mqtt_broker"`
	MqttPassword string `hcl:"mqtt_password"`
	KeepaliveSec int    `hcl:"keepalive_sec"`
	TopicPrefix  string `hcl:"topic_prefix"`
	VmId         int    `hcl:"vm_id"`
}

// Teler is telemetry client.
// Report and Error never block on network.
type Teler interface {
	Init(context.Context, *log2.Log, Config) error
	Close()
	Error(error)
	Report(motor.Snapshot)
}

type stub struct{}

func (stub) Init(context.Context, *log2.Log, Config) error { return nil }
func (stub) Close()                                        {}
func (stub) Error(error)                                   {}
func (stub) Report(motor.Snapshot)                         {}

func NewStub() Teler { return stub{} }
