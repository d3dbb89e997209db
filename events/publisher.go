// Package events publishes order lifecycle notifications to RabbitMQ so
// downstream consumers (email, analytics) can react without coupling to the
// API process.
package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderEvent is the message body published for each lifecycle change.
type OrderEvent struct {
	OrderID   string    `json:"order_id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher owns one connection and channel to the broker. It is safe to
// construct at startup and share; amqp channels serialize publishes.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials the broker and declares a durable topic exchange for
// order events.
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// PublishOrderEvent publishes a persistent JSON message with routing key
// "order.<event>".
func (p *Publisher) PublishOrderEvent(ctx context.Context, orderID, event string) error {
	body, err := json.Marshal(OrderEvent{
		OrderID:   orderID,
		Event:     event,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		"order."+event,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
