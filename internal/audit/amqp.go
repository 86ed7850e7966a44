package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — topic exchange для событий аудита.
const Exchange = "provd.cli.audit"

// publisher — часть *amqp.Channel, нужная AMQPSink.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSink публикует события в RabbitMQ с routing key "audit.<action>".
type AMQPSink struct {
	conn    *amqp.Connection
	channel publisher
	logger  *slog.Logger
}

// NewAMQPSink подключается к RabbitMQ и объявляет exchange.
func NewAMQPSink(url string, logger *slog.Logger) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	logger.Debug("connected to RabbitMQ", "exchange", Exchange)

	return &AMQPSink{conn: conn, channel: ch, logger: logger}, nil
}

// RoutingKey возвращает routing key для действия.
func RoutingKey(action string) string {
	return "audit." + action
}

// Write реализует Sink.
func (s *AMQPSink) Write(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	key := RoutingKey(ev.Action)
	err = s.channel.PublishWithContext(
		ctx,
		Exchange, // exchange
		key,      // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.ID.String(),
			Timestamp:    ev.Time,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", Exchange, key, err)
	}

	s.logger.Debug("published audit event", "routing_key", key, "message_id", ev.ID)
	return nil
}

// Close закрывает канал и соединение.
func (s *AMQPSink) Close() error {
	var errs []error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}
