package tele

import (
	"context"
	"fmt"
	"net/url"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/motormenu/helpers"
	"github.com/temoto/motormenu/log2"
)

const (
	DefaultKeepalive   = 60 * time.Second
	defaultPingTimeout = 30 * time.Second
	disconnectQuiesce  = 250 // ms
)

func TopicConnect(prefix string) string   { return prefix + "/c" }
func TopicTelemetry(prefix string) string { return prefix + "/w/1t" }
func TopicError(prefix string) string     { return prefix + "/w/1e" }

type transportMqtt struct {
	log *log2.Log
	m   mqtt.Client

	topicConnect   string
	topicTelemetry string
	topicError     string
}

// compile-time interface compliance test
var _ Transporter = new(transportMqtt)

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, teleConfig Config) error {
	self.log = log
	if _, err := url.ParseRequestURI(teleConfig.MqttBroker); err != nil {
		return errors.Annotatef(err, "tele mqtt_broker=%s", teleConfig.MqttBroker)
	}
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log
	if teleConfig.LogDebug {
		mqtt.DEBUG = log
	}

	mqttClientId := fmt.Sprintf("vm%d", teleConfig.VmId)
	prefix := teleConfig.TopicPrefix
	if prefix == "" {
		prefix = mqttClientId
	}
	self.topicConnect = TopicConnect(prefix)
	self.topicTelemetry = TopicTelemetry(prefix)
	self.topicError = TopicError(prefix)
	keepAlive := helpers.IntSecondDefault(teleConfig.KeepaliveSec, DefaultKeepalive)

	mopt := mqtt.NewClientOptions().
		AddBroker(teleConfig.MqttBroker).
		SetBinaryWill(self.topicConnect, []byte{0x00}, 1, true).
		SetCleanSession(false).
		SetClientID(mqttClientId).
		SetUsername(mqttClientId).
		SetPassword(teleConfig.MqttPassword).
		SetKeepAlive(keepAlive).
		SetPingTimeout(defaultPingTimeout).
		SetAutoReconnect(true).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler)
	self.m = mqtt.NewClient(mopt)
	// network errors are not fatal, client reconnects
	go func() {
		if token := self.m.Connect(); token.Wait() && token.Error() != nil {
			self.log.Errorf("tele mqtt connect broker=%s err=%v", teleConfig.MqttBroker, token.Error())
		}
	}()
	return nil
}

func (self *transportMqtt) Close() {
	if self.m == nil {
		return
	}
	if self.m.IsConnected() {
		self.m.Publish(self.topicConnect, 1, true, []byte{0x00}).WaitTimeout(time.Second)
	}
	self.m.Disconnect(disconnectQuiesce)
}

func (self *transportMqtt) SendTelemetry(payload []byte) bool {
	return self.publish(self.topicTelemetry, payload)
}

func (self *transportMqtt) SendError(payload []byte) bool {
	return self.publish(self.topicError, payload)
}

func (self *transportMqtt) publish(topic string, payload []byte) bool {
	if !self.m.IsConnected() {
		self.log.Debugf("tele mqtt offline drop topic=%s", topic)
		return false
	}
	self.m.Publish(topic, 1, false, payload)
	return true
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("tele mqtt disconnect err=%v", err)
}

func (self *transportMqtt) onConnectHandler(c mqtt.Client) {
	self.log.Infof("tele mqtt connect")
	c.Publish(self.topicConnect, 1, true, []byte{0x01})
}
