package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes notifications to a kafka topic. Keyed by order id
// so all events for one order keep their relative order.
type KafkaNotifier struct {
	w      *kafka.Writer
	logger *log.Logger
}

func NewKafka(brokers []string, topic string, logger *log.Logger) *KafkaNotifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &KafkaNotifier{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		logger: logger,
	}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		k.logger.Printf("notify: marshal order=%s error=%v", n.OrderID, err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(n.OrderID),
		Value: payload,
		Time:  time.Now(),
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		k.logger.Printf("notify: publish order=%s error=%v", n.OrderID, err)
	}
}

func (k *KafkaNotifier) Close() error { return k.w.Close() }
