package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"energy-agent/internal/config"
	"energy-agent/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

type MQTTPublisher struct {
	client mqtt.Client
	config config.MQTTConfig
	logger *logrus.Logger
}

func NewMQTTPublisher(cfg config.MQTTConfig, logger *logrus.Logger) *MQTTPublisher {
	p := &MQTTPublisher{
		config: cfg,
		logger: logger,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	opts.SetConnectionLostHandler(p.onConnectionLost)
	opts.SetOnConnectHandler(p.onConnect)

	p.client = mqtt.NewClient(opts)

	return p
}

func (p *MQTTPublisher) Name() string {
	return "mqtt"
}

func (p *MQTTPublisher) StateTopic() string {
	return strings.TrimSuffix(p.config.TopicPrefix, "/") + "/recommendation"
}

func (p *MQTTPublisher) Connect() error {
	p.logger.Info("Connecting to MQTT broker...")

	// With ConnectRetry the token only completes once connected, so do not
	// block start-up on an unreachable broker.
	token := p.client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, rec models.Recommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.StateTopic(), 1, true, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *MQTTPublisher) Close() error {
	p.logger.Info("Disconnecting from MQTT broker...")
	p.client.Disconnect(250)
	return nil
}

func (p *MQTTPublisher) onConnect(client mqtt.Client) {
	p.logger.Infof("MQTT connected, publishing to %s", p.StateTopic())

	if !p.config.Discovery {
		return
	}
	items := DiscoveryItems(p.config.ClientID, p.StateTopic())
	if err := SendConfigurationToHa(client, items, p.config.ClientID); err != nil {
		p.logger.Errorf("Failed to publish Home Assistant discovery: %v", err)
	} else {
		p.logger.Infof("Published %d Home Assistant discovery items", len(items))
	}
}

func (p *MQTTPublisher) onConnectionLost(client mqtt.Client, err error) {
	p.logger.Errorf("MQTT connection lost: %v", err)
}
