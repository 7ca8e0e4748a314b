// Package telemetry ships colour readings to an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mklimuk/colorsensor/color"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	defaultTopicPrefix    = "colorsensor"
	maxQoS                = 2
)

var ErrNotConnected = errors.New("mqtt: not connected")
var ErrInvalidQoS = errors.New("mqtt: qos must be 0, 1 or 2")
var ErrPublishFailed = errors.New("mqtt: publish failed")

// MQTTConfig is the broker section of the CLI profile.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
	Retained bool   `yaml:"retained"`
}

// Reading is the published payload.
type Reading struct {
	Time             time.Time    `json:"time"`
	Device           string       `json:"device"`
	Sample           color.Sample `json:"sample"`
	ColorTemperature uint16       `json:"cct_kelvin"`
	Lux              uint16       `json:"lux"`
	Gain             string       `json:"gain"`
	IntegrationTime  string       `json:"integration_time"`
}

// NewReading derives the photometric values of s.
func NewReading(device string, s color.Sample, gain color.Gain, it color.IntegrationTime) Reading {
	return Reading{
		Time:             time.Now().UTC(),
		Device:           device,
		Sample:           s,
		ColorTemperature: color.ColorTemperature(s),
		Lux:              color.Lux(s),
		Gain:             gain.String(),
		IntegrationTime:  it.String(),
	}
}

// Publisher publishes readings to a single topic.
type Publisher struct {
	client  pahomqtt.Client
	cfg     MQTTConfig
	timeout time.Duration
}

// Connect dials the broker described by cfg.
func Connect(cfg MQTTConfig) (*Publisher, error) {
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultConnectTimeout).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			slog.Warn("mqtt connection lost", "broker", cfg.Broker, "error", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}
	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s timed out after %v", cfg.Broker, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: could not connect to %s: %w", cfg.Broker, err)
	}
	slog.Info("connected to broker", "broker", cfg.Broker, "topic", cfg.topic())
	return NewPublisher(client, cfg), nil
}

// NewPublisher wraps an already configured client.
func NewPublisher(client pahomqtt.Client, cfg MQTTConfig) *Publisher {
	return &Publisher{client: client, cfg: cfg, timeout: defaultPublishTimeout}
}

func (p *Publisher) Publish(ctx context.Context, r Reading) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: could not encode reading: %w", ErrPublishFailed, err)
	}
	token := p.client.Publish(p.cfg.topic(), p.cfg.QoS, p.cfg.Retained, payload)
	select {
	case <-token.Done():
	case <-time.After(p.timeout):
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, p.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Close disconnects, leaving a short grace period for in-flight messages.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

func (cfg MQTTConfig) topic() string {
	if cfg.Topic != "" {
		return cfg.Topic
	}
	return defaultTopicPrefix + "/reading"
}
