package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	carrier "github.com/DioGolang/GoTrack/pkg/otel"
)

const (
	DefaultEventsExchange   = "tracking.events"
	DefaultCommandsExchange = "tracking.commands"
)

// AMQPDialer carries the tracking stream over RabbitMQ. Events arrive on an exclusive queue
// bound to a topic exchange; the event name is the message type or, failing that, the
// routing key. Commands are published to a second topic exchange keyed by command name.
type AMQPDialer struct {
	EventsExchange   string
	CommandsExchange string
}

func NewAMQPDialer() *AMQPDialer {
	return &AMQPDialer{EventsExchange: DefaultEventsExchange, CommandsExchange: DefaultCommandsExchange}
}

func (d *AMQPDialer) Dial(ctx context.Context, url string) (Conn, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	if ctx.Err() != nil {
		_ = conn.Close()
		return nil, ctx.Err()
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	deliveries, err := d.setupTopology(ch)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("error when configuring topology: %w", err)
	}

	return &amqpConn{
		conn:       conn,
		ch:         ch,
		deliveries: deliveries,
		closed:     conn.NotifyClose(make(chan *amqp.Error, 1)),
		commands:   d.CommandsExchange,
	}, nil
}

func (d *AMQPDialer) setupTopology(ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	for _, name := range []string{d.EventsExchange, d.CommandsExchange} {
		if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
			return nil, err
		}
	}

	q, err := ch.QueueDeclare(
		"",
		false,
		true,
		true,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	if err := ch.QueueBind(q.Name, "#", d.EventsExchange, false, nil); err != nil {
		return nil, err
	}

	return ch.Consume(
		q.Name,
		"",
		true,
		true,
		false,
		false,
		nil,
	)
}

type amqpConn struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
	closed     chan *amqp.Error
	commands   string

	publishMu sync.Mutex
	closeOnce sync.Once
}

func (c *amqpConn) ReadFrame(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case amqpErr, ok := <-c.closed:
		if ok && amqpErr != nil {
			return Frame{}, amqpErr
		}
		return Frame{}, ErrConnectionClosed
	case d, ok := <-c.deliveries:
		if !ok {
			return Frame{}, ErrConnectionClosed
		}
		name := d.Type
		if name == "" {
			name = d.RoutingKey
		}
		return Frame{Event: name, Data: d.Body, Trace: carrier.AMQPHeadersCarrier(d.Headers).Strings()}, nil
	}
}

func (c *amqpConn) WriteFrame(ctx context.Context, f Frame) error {
	headers := carrier.InjectAMQP(ctx)

	body := []byte(f.Data)
	if body == nil {
		body = []byte("{}")
	}

	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	return c.ch.PublishWithContext(ctx,
		c.commands,
		f.Event,
		false,
		false,
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Transient,
			MessageId:    uuid.NewString(),
			Type:         f.Event,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (c *amqpConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		_ = c.ch.Close()
		err = c.conn.Close()
	})
	if err == amqp.ErrClosed {
		return nil
	}
	return err
}
