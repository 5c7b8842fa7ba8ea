package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SettlementTask is the message a fresh payment creation enqueues and a
// settlement worker consumes.
type SettlementTask struct {
	PaymentID string `json:"payment_id"`
}

func (c *Client) PublishSettlementTask(ctx context.Context, paymentID string) error {
	body, err := json.Marshal(SettlementTask{PaymentID: paymentID})
	if err != nil {
		return err
	}

	err = c.channel.PublishWithContext(
		ctx,
		"", // default exchange
		c.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish settlement task: %w", err)
	}

	return nil
}
