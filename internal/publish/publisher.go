package publish

import (
	"context"
	"errors"
	"fmt"

	"energy-agent/internal/config"
	"energy-agent/internal/models"

	"github.com/sirupsen/logrus"
)

// Publisher delivers finished recommendations to an outside consumer.
type Publisher interface {
	Publish(ctx context.Context, rec models.Recommendation) error
	Name() string
	Close() error
}

// Multi fans a recommendation out to every configured publisher.
type Multi struct {
	publishers []Publisher
	logger     *logrus.Logger
}

func NewMulti(logger *logrus.Logger, publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers, logger: logger}
}

func (m *Multi) Name() string {
	return "multi"
}

// Publish tries every publisher and joins their errors.
func (m *Multi) Publish(ctx context.Context, rec models.Recommendation) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, rec); err != nil {
			m.logger.Warnf("Publish: %s failed for %s: %v", p.Name(), rec.RecommendationID, err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Names() []string {
	names := make([]string, len(m.publishers))
	for i, p := range m.publishers {
		names[i] = p.Name()
	}
	return names
}

// Build wires the hub plus the MQTT and Kafka sinks that are configured.
func Build(cfg *config.Config, hub *Hub, logger *logrus.Logger) (*Multi, error) {
	publishers := []Publisher{hub}

	if cfg.MQTT.Broker != "" {
		mq := NewMQTTPublisher(cfg.MQTT, logger)
		if err := mq.Connect(); err != nil {
			return nil, err
		}
		publishers = append(publishers, mq)
	} else {
		logger.Info("Publish: MQTT disabled (no broker configured)")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publishers = append(publishers, NewKafkaPublisher(cfg.Kafka, logger))
	} else {
		logger.Info("Publish: Kafka disabled (no brokers configured)")
	}

	return NewMulti(logger, publishers...), nil
}
