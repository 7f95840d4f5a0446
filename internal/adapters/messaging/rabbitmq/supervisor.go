package rabbitmq

import (
	"context"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/books_backend/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
)

const (
	reconnectBaseDelay = 500 * time.Millisecond
	reconnectMaxDelay  = 30 * time.Second
)

// Dialer opens a channel to the broker. closeFn releases the underlying connection.
type Dialer func() (ch Channel, closeFn func() error, err error)

// AMQPDialer dials url with Dial.
func AMQPDialer(url string) Dialer {
	return func() (Channel, func() error, error) {
		conn, ch, err := Dial(url)
		if err != nil {
			return nil, nil, err
		}
		return ch, conn.Close, nil
	}
}

// Supervisor keeps a Consumer running across broker restarts, reconnecting with
// exponential backoff until its context is cancelled.
type Supervisor struct {
	dial      Dialer
	queue     string
	journal   portssvc.JournalWriterSvc
	validate  *validator.Validate
	logger    *slog.Logger
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewSupervisor creates a Supervisor for queue.
func NewSupervisor(dial Dialer, queue string, journal portssvc.JournalWriterSvc, logger *slog.Logger) (*Supervisor, error) {
	vld, err := newEventValidator()
	if err != nil {
		return nil, err
	}
	return &Supervisor{
		dial:      dial,
		queue:     queue,
		journal:   journal,
		validate:  vld,
		logger:    logger.With(slog.String("component", "journal_ingestion"), slog.String("queue", queue)),
		baseDelay: reconnectBaseDelay,
		maxDelay:  reconnectMaxDelay,
	}, nil
}

// Run connects, declares the topology and consumes until ctx is cancelled.
// Any connection, declaration or channel failure is followed by a reconnect.
func (s *Supervisor) Run(ctx context.Context) {
	attempt := 0
	for {
		connected, err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			attempt = 0
		}
		attempt++
		delay := reconnectDelay(s.baseDelay, s.maxDelay, attempt)
		s.logger.Warn("Journal entry ingestion interrupted, reconnecting",
			slog.String("error", errString(err)),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// runOnce reports whether consumption actually started before it stopped.
func (s *Supervisor) runOnce(ctx context.Context) (bool, error) {
	ch, closeFn, err := s.dial()
	if err != nil {
		return false, err
	}
	defer func() {
		if err := closeFn(); err != nil {
			s.logger.Debug("Failed to close rabbitmq connection", slog.String("error", err.Error()))
		}
	}()

	consumer := newConsumer(ch, s.queue, s.journal, s.validate, s.logger)
	if err := consumer.DeclareTopology(); err != nil {
		return false, err
	}
	return true, consumer.Run(ctx)
}

// reconnectDelay doubles base per failed attempt, capped at limit.
func reconnectDelay(base, limit time.Duration, attempt int) time.Duration {
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= limit {
			return limit
		}
	}
	return delay
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
