package feed

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/port"
)

var _ port.FillPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher pushes executed fills onto a Kafka topic, keyed by market so
// per-market ordering is preserved.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		}),
	}
}

func (p *KafkaPublisher) PublishFills(ctx context.Context, market string, fills []domain.Fill) error {
	msgs := make([]kafka.Message, 0, len(fills))
	for _, f := range fills {
		b, err := json.Marshal(f)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(market),
			Value: b,
		})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
