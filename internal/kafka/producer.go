package kafka

import (
	"ad-mediation/internal/ad"
	"ad-mediation/internal/pkg/events"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const sendTimeout = 5 * time.Second

// WriterInterface определяет контракт для работы с Kafka
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ProducerInterface interface {
	SendEvent(ctx context.Context, event events.AdEvent) error
	Close() error
}

type Producer struct {
	writer WriterInterface
	log    logrus.FieldLogger
}

var (
	_ ProducerInterface = (*Producer)(nil)
	_ ad.Observer       = (*Producer)(nil)
)

func NewProducer(writer WriterInterface, log logrus.FieldLogger) *Producer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Producer{writer: writer, log: log.WithField("component", "kafka")}
}

// NewWriter создает writer для списка брокеров
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func (p *Producer) SendEvent(ctx context.Context, event events.AdEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.UnitID),
			Value: jsonData,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Observe отправляет смену состояния в журнал, не блокируя вызывающего
func (p *Producer) Observe(t ad.Transition) {
	event := FromTransition(t)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := p.SendEvent(ctx, event); err != nil {
			p.log.WithError(err).WithField("unit", event.UnitID).Warn("failed to journal ad event")
		}
	}()
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func FromTransition(t ad.Transition) events.AdEvent {
	return events.AdEvent{
		Type:        events.EventType(t.Kind),
		UnitID:      t.UnitID,
		Category:    t.Category.String(),
		PlacementID: t.PlacementID,
		State:       t.State.String(),
		Reason:      t.Reason,
		Timestamp:   t.At.UTC(),
	}
}
