package orders

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tokyosushibar/backend/models"
)

type orderPaidLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// orderPaidPayload is the wire form of a fulfillment trigger.
type orderPaidPayload struct {
	OrderID   string          `json:"order_id"`
	UserID    *string         `json:"user_id,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
	LineItems []orderPaidLine `json:"line_items"`
}

// KafkaNotifier publishes fulfillment triggers to a Kafka topic, keyed by
// order id so re-deliveries land in the same partition for dedupe.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (n *KafkaNotifier) OrderPaid(ctx context.Context, order *models.Order) error {
	payload := orderPaidPayload{
		OrderID:   order.ID.String(),
		PaidAt:    time.Now().UTC(),
		LineItems: make([]orderPaidLine, len(order.Items)),
	}
	if order.UserID != nil {
		id := order.UserID.String()
		payload.UserID = &id
	}
	for i, item := range order.Items {
		payload.LineItems[i] = orderPaidLine{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
		}
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: value,
	})
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
