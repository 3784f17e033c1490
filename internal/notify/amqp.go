package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/peseat/api/internal/enum"
	"github.com/peseat/api/internal/service"
)

const (
	// Exchange is the topic exchange all PESeat events are published to.
	Exchange = "peseat.events"

	// SMSQueue holds outgoing text messages until an SMS gateway worker takes them.
	SMSQueue = "peseat.sms"

	publishTimeout = 5 * time.Second
)

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// SMSMessage is the body of an sms.send message.
type SMSMessage struct {
	Phone string `json:"phone"`
	Body  string `json:"body"`
}

// AMQPNotifier publishes order events and SMS requests to RabbitMQ.
// It satisfies both service.Publisher and service.MessageSender.
type AMQPNotifier struct {
	ch  Channel
	now func() time.Time
}

// NewAMQPNotifier wraps an already configured channel.
func NewAMQPNotifier(ch Channel) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, now: time.Now}
}

// Publish sends ev with its type as routing key.
func (n *AMQPNotifier) Publish(ctx context.Context, ev service.OrderEvent) error {
	return n.publish(ctx, ev.Type, ev)
}

// SendSMS queues a text message for delivery.
func (n *AMQPNotifier) SendSMS(ctx context.Context, phone, body string) error {
	return n.publish(ctx, enum.EventSMSSend, SMSMessage{Phone: phone, Body: body})
}

func (n *AMQPNotifier) publish(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = n.ch.PublishWithContext(ctx,
		Exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    n.now(),
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

// Broker owns the RabbitMQ connection behind an AMQPNotifier.
type Broker struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	*AMQPNotifier
}

// Dial connects to RabbitMQ and declares the event exchange and the SMS queue.
func Dial(url string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.Printf("connected to rabbitmq, publishing to exchange %s", Exchange)
	return &Broker{conn: conn, ch: ch, AMQPNotifier: NewAMQPNotifier(ch)}, nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		SMSQueue, // name
		true,     // durable
		false,    // delete when unused
		false,    // exclusive
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("declare sms queue: %w", err)
	}

	err = ch.QueueBind(
		SMSQueue,          // queue name
		enum.EventSMSSend, // routing key
		Exchange,          // exchange
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("bind sms queue: %w", err)
	}
	return nil
}

// Close shuts the channel and connection down.
func (b *Broker) Close() error {
	if b.ch != nil {
		b.ch.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}
