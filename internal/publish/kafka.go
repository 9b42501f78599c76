package publish

import (
	"context"
	"encoding/json"
	"time"

	"energy-agent/internal/config"
	"energy-agent/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *logrus.Logger) *KafkaPublisher {
	logger.Infof("Kafka publisher writing to %s on %v", cfg.Topic, cfg.Brokers)
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			RequiredAcks:           kafka.RequireOne,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           10 * time.Millisecond,
		},
		topic:  cfg.Topic,
		logger: logger,
	}
}

func (p *KafkaPublisher) Name() string {
	return "kafka"
}

func (p *KafkaPublisher) Publish(ctx context.Context, rec models.Recommendation) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.RecommendationID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(rec.ActionType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
