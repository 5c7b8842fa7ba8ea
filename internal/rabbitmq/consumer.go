package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

// TaskHandler processes one settlement task. ack=true removes the
// message; ack=false requeues it for redelivery.
type TaskHandler func(ctx context.Context, task SettlementTask) (ack bool, err error)

// ConsumeSettlementTasks runs until ctx is cancelled or the channel
// closes. Prefetch equals workerCount, so at most that many tasks are
// in flight at once; each delivery is handled on its own goroutine.
func (c *Client) ConsumeSettlementTasks(ctx context.Context, workerCount int, handler TaskHandler) error {
	if err := c.channel.Qos(workerCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf("settlement consumer started with %d workers", workerCount)

	for {
		select {
		case <-ctx.Done():
			log.Println("stopping settlement consumer: context cancelled")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				log.Println("settlement consumer channel closed")
				return nil
			}

			go func() {
				var task SettlementTask
				if err := json.Unmarshal(msg.Body, &task); err != nil {
					log.Printf("invalid settlement task, rejecting: %v", err)
					msg.Reject(false)
					return
				}

				ack, err := handler(ctx, task)
				if err != nil {
					log.Printf("error settling payment %s: %v", task.PaymentID, err)
				}

				if ack {
					msg.Ack(false)
				} else {
					msg.Nack(false, true)
				}
			}()
		}
	}
}
