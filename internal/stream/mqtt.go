package stream

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/ivanzxc/go-vitals-stream/internal/config"
	"github.com/ivanzxc/go-vitals-stream/internal/monitor"
)

// MQTTPublisher publishes each event on "<prefix>/<kind>".
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	qos    byte
}

// NewMQTTPublisher connects to the configured broker.
func NewMQTTPublisher(cfg *config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return newMQTTPublisher(client, cfg.TopicPrefix, cfg.QoS), nil
}

func newMQTTPublisher(client mqtt.Client, prefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: prefix, qos: qos}
}

// Topic returns the topic carrying events of the given kind.
func (p *MQTTPublisher) Topic(kind monitor.EventKind) string {
	return p.prefix + "/" + kind.String()
}

// Publish does not wait for the broker acknowledgement.
func (p *MQTTPublisher) Publish(ev monitor.Event) error {
	_, payload, err := Encode(ev)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.Topic(ev.Kind), p.qos, false, payload)
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", p.Topic(ev.Kind), token.Error())
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
