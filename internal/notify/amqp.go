package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark-schultz-wu/envelope-buddy/internal/core/domain"
	"github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes ledger events to a RabbitMQ direct exchange.
type AMQPNotifier struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewAMQPNotifier dials the broker and declares the exchange, queue and
// binding so publishes never race consumer startup.
func NewAMQPNotifier(url, exchangeName, queueName string) (*AMQPNotifier, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	n := &AMQPNotifier{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := n.setup(); err != nil {
		n.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return n, nil
}

func (n *AMQPNotifier) setup() error {
	err := n.channel.ExchangeDeclare(
		n.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = n.channel.QueueDeclare(
		n.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = n.channel.QueueBind(
		n.queueName,    // queue name
		n.queueName,    // routing key (same as queue name for direct exchange)
		n.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishMonthlyUpdate publishes a completed rollover run.
func (n *AMQPNotifier) PublishMonthlyUpdate(ctx context.Context, result *domain.MonthlyUpdateResult, summary string) error {
	msg := NewMonthlyUpdateMessage(result, summary)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = n.channel.PublishWithContext(
		ctx,
		n.exchangeName, // exchange
		n.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published monthly update message",
		"update_date", msg.UpdateDate,
		"envelopes", msg.TotalEnvelopesProcessed,
		"exchange", n.exchangeName,
		"queue", n.queueName)

	return nil
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
