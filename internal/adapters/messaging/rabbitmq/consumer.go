// Package rabbitmq consumes journal entry requests published by upstream producers.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/books_backend/internal/apperrors"
	"github.com/SscSPs/books_backend/internal/core/domain"
	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/SscSPs/books_backend/internal/dto"
	"github.com/go-playground/validator/v10"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	deadLetterExchange = "journal-entry-requests.dlx"
	deadLetterQueue    = "journal-entry-requests.dlq"
	consumerTag        = "books-journal-ingestion"
	prefetchCount      = 10
	systemUserPrefix   = "system:"
)

// ErrChannelClosed is returned by Run when the broker closes the delivery channel.
var ErrChannelClosed = errors.New("rabbitmq delivery channel closed")

// Channel is the subset of *amqp.Channel the consumer uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Consumer turns JournalEntryRequested messages into journal entries.
type Consumer struct {
	channel  Channel
	queue    string
	journal  portssvc.JournalWriterSvc
	validate *validator.Validate
	logger   *slog.Logger
}

// NewConsumer creates a Consumer reading from queue.
func NewConsumer(ch Channel, queue string, journal portssvc.JournalWriterSvc, logger *slog.Logger) (*Consumer, error) {
	vld, err := newEventValidator()
	if err != nil {
		return nil, err
	}
	return newConsumer(ch, queue, journal, vld, logger), nil
}

func newEventValidator() (*validator.Validate, error) {
	vld := validator.New()
	// Events reuse the request DTO rules, which are declared under gin's tag name.
	vld.SetTagName("binding")
	if err := dto.RegisterValidators(vld); err != nil {
		return nil, err
	}
	return vld, nil
}

func newConsumer(ch Channel, queue string, journal portssvc.JournalWriterSvc, vld *validator.Validate, logger *slog.Logger) *Consumer {
	return &Consumer{
		channel:  ch,
		queue:    queue,
		journal:  journal,
		validate: vld,
		logger:   logger.With(slog.String("component", "journal_ingestion"), slog.String("queue", queue)),
	}
}

// Dial opens a connection and channel to the broker.
func Dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	return conn, ch, nil
}

// DeclareTopology declares the request queue and the dead-letter exchange and queue rejected messages land in.
func (c *Consumer) DeclareTopology() error {
	if err := c.channel.ExchangeDeclare(deadLetterExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dead-letter exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(deadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dead-letter queue: %w", err)
	}
	if err := c.channel.QueueBind(deadLetterQueue, "", deadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("bind dead-letter queue: %w", err)
	}
	args := amqp.Table{"x-dead-letter-exchange": deadLetterExchange}
	if _, err := c.channel.QueueDeclare(c.queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	return nil
}

// Run consumes deliveries until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.channel.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := c.channel.Consume(c.queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.logger.Info("Journal entry ingestion started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Journal entry ingestion stopped")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return ErrChannelClosed
			}
			c.HandleDelivery(ctx, d)
		}
	}
}

// HandleDelivery creates the requested entry and acks, or dead-letters the message.
// Failed messages are never requeued.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	logger := c.logger.With(slog.String("message_id", d.MessageId))

	var event dto.JournalEntryRequestedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		logger.Warn("Dropping undecodable journal entry request", slog.String("error", err.Error()))
		c.nack(logger, d)
		return
	}
	if err := c.validate.Struct(event); err != nil {
		logger.Warn("Dropping invalid journal entry request", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
		c.nack(logger, d)
		return
	}

	logger = logger.With(
		slog.String("event_id", event.EventID),
		slog.String("business_id", event.BusinessID),
		slog.String("source_type", string(event.SourceType)),
	)

	producer := event.ProducerID
	if producer == "" {
		producer = string(event.SourceType)
	}
	rc := domain.RequestContext{TenantID: event.BusinessID, UserID: systemUserPrefix + producer, Role: domain.RoleSystem}

	entry, err := c.journal.CreateJournalEntry(ctx, rc, event.ToCreateJournalEntryRequest())
	if errors.Is(err, apperrors.ErrDuplicate) {
		// Redelivery of a document that already has its entry.
		logger.Info("Journal entry request already recorded", slog.String("error", err.Error()))
		c.ack(logger, d)
		return
	}
	if err != nil {
		if apperrors.IsClientError(err) {
			logger.Warn("Journal entry request rejected", slog.String("error", err.Error()))
		} else {
			logger.Error("Failed to create journal entry from request", slog.String("error", err.Error()))
		}
		c.nack(logger, d)
		return
	}

	if !c.ack(logger, d) {
		return
	}
	logger.Info("Journal entry created from upstream request",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("status", string(entry.Status)))
}

func (c *Consumer) ack(logger *slog.Logger, d amqp.Delivery) bool {
	if err := d.Ack(false); err != nil {
		logger.Error("Failed to ack journal entry request", slog.String("error", err.Error()))
		return false
	}
	return true
}

func (c *Consumer) nack(logger *slog.Logger, d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		logger.Error("Failed to nack journal entry request", slog.String("error", err.Error()))
	}
}
