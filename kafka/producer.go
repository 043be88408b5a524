package kafka

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"

	"embroidery-backend/model"
)

type Producer struct {
	sp sarama.SyncProducer
}

// NewProducer connects a sync producer. An empty broker or a broker that
// never comes up yields a producer that drops events with a log line, so
// order processing keeps working without Kafka.
func NewProducer(broker string) *Producer {
	if broker == "" {
		return &Producer{}
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	for i := 1; i <= 5; i++ {
		sp, err := sarama.NewSyncProducer([]string{broker}, config)
		if err == nil {
			log.Printf("Kafka producer connected to %s", broker)
			return &Producer{sp: sp}
		}
		log.Printf("Failed to connect to Kafka (try %d/5): %v", i, err)
		time.Sleep(3 * time.Second)
	}

	log.Printf("Kafka unavailable at %s, events disabled", broker)
	return &Producer{}
}

func (p *Producer) Close() {
	if p != nil && p.sp != nil {
		p.sp.Close()
	}
}

func (p *Producer) publish(topic string, event map[string]interface{}) {
	if p == nil || p.sp == nil {
		return
	}

	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", topic, err)
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(raw),
	}
	if _, _, err := p.sp.SendMessage(msg); err != nil {
		log.Printf("failed to send %s event: %v", topic, err)
	}
}

func (p *Producer) PublishOrderPaid(tx *model.Transaction) {
	p.publish("order.paid", map[string]interface{}{
		"event_type": "order_paid",
		"data": map[string]interface{}{
			"transaction_id":   tx.ID,
			"gateway_order_id": tx.GatewayOrderID,
			"user_id":          tx.UserID,
			"amount":           tx.Amount,
			"paid_at":          time.Now().Format(time.RFC3339),
		},
	})
}

func (p *Producer) PublishCustomOrderCreated(o *model.CustomOrder) {
	p.publish("custom_order.created", map[string]interface{}{
		"event_type": "custom_order_created",
		"data": map[string]interface{}{
			"custom_order_id": o.ID,
			"user_id":         o.UserID,
			"name":            o.Name,
			"email":           o.Email,
			"created_at":      o.CreatedAt.Format(time.RFC3339),
		},
	})
}
