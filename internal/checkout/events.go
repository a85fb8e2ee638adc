package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dukahub/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

// StatusApplier routes a gateway-published payment status to whichever
// pending attempt it belongs to. Returns true when applied.
type StatusApplier func(paymentID int64, status domain.PaymentStatus) bool

// EventConsumer reads payment settlement events published by the
// payment gateway, the callback counterpart of status polling.
type EventConsumer struct {
	reader *kafka.Reader
	apply  StatusApplier
}

func NewEventConsumer(apply StatusApplier, brokers ...string) *EventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "payment-events",
		GroupID:  "storefront-gateway",
		MaxBytes: 10e6, // 10MB
	})
	return &EventConsumer{reader: reader, apply: apply}
}

func (c *EventConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			fmt.Printf("error reading message: %v\n", err)
			continue
		}
		c.handleMessage(m.Value)
	}
}

func (c *EventConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		fmt.Printf("error closing reader: %v\n", err)
	}
}

type paymentEvent struct {
	PaymentID int64  `json:"payment_id"`
	Status    string `json:"status"`
}

func (c *EventConsumer) handleMessage(value []byte) {
	var event paymentEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("error parsing payment event: %v", err)
		return
	}
	if event.PaymentID == 0 || event.Status == "" {
		log.Printf("payment event missing payment_id or status")
		return
	}

	status := domain.PaymentStatus(event.Status)
	if !status.IsTerminal() {
		return
	}
	if !c.apply(event.PaymentID, status) {
		log.Printf("payment event for %d did not match a pending attempt", event.PaymentID)
	}
}
