package publisher

import (
	"context"
	"errors"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const batchSize = 100

// MessageWriter is the subset of *kafka.Writer the poller uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OutboxPoller moves OrderPlaced events from the outbox collection to Kafka.
// An event is marked processed only after Kafka acknowledged it, so delivery
// is at least once.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	repo      repository.OutboxRepository
	writer    MessageWriter
	breaker   *gobreaker.CircuitBreaker[struct{}]
	log       *zap.Logger
}

func NewOutboxPoller(repo repository.OutboxRepository, log *zap.Logger, topic string, interval time.Duration, brokers ...string) *OutboxPoller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return newOutboxPoller(repo, w, log, interval)
}

func newOutboxPoller(repo repository.OutboxRepository, writer MessageWriter, log *zap.Logger, interval time.Duration) *OutboxPoller {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("outbox")

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-publish",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	return &OutboxPoller{
		timeout:   5 * time.Second,
		eventTick: interval,
		repo:      repo,
		writer:    writer,
		breaker:   breaker,
		log:       log,
	}
}

// Run polls until ctx is cancelled, then closes the Kafka writer.
func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	defer func() {
		if err := p.writer.Close(); err != nil {
			p.log.Warn("failed to close kafka writer", zap.Error(err))
		}
	}()

	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processUnpublishedEvents publishes one batch and reports how many events
// were marked processed.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) int {
	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.log.Error("failed to fetch events", zap.Error(err))
		return 0
	}

	published := 0
	for i := range events {
		event := &events[i]

		_, err := p.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, p.publishToKafka(ctx, event)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// broker is unhealthy; leave the rest for a later tick
			p.log.Debug("publishing paused", zap.Error(err))
			return published
		}
		if err != nil {
			p.log.Error("failed to publish event",
				zap.String("event_id", event.EventID), zap.String("aggregate_id", event.AggregateID), zap.Error(err))
			continue
		}

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.log.Error("failed to mark event as processed", zap.String("event_id", event.EventID), zap.Error(err))
			continue
		}
		published++
	}
	return published
}

func (p *OutboxPoller) publishToKafka(ctx context.Context, event *domain.OutboxEvent) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps events for one order on one partition
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
		Time: event.CreatedAt,
	}

	return p.writer.WriteMessages(ctx, msg)
}
