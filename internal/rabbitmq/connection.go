package rabbitmq

import (
	"fmt"
	"time"

	"payflow/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client holds one connection and channel over the durable settlement
// queue. Both the API publisher and the worker consumer use it.
type Client struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

func NewClient(cfg *config.RabbitMQConfig) (*Client, error) {
	conn, err := amqp.DialConfig(cfg.URL(), amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", cfg.QueueName, err)
	}

	return &Client{
		conn:      conn,
		channel:   channel,
		queueName: cfg.QueueName,
	}, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

func (c *Client) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}
