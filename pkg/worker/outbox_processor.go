package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/care-portal/internal/model"
	"github.com/jwalitptl/care-portal/internal/repository"
	"github.com/jwalitptl/care-portal/pkg/logger"
	"github.com/jwalitptl/care-portal/pkg/messaging"
	"github.com/jwalitptl/care-portal/pkg/metrics"
	"github.com/jwalitptl/care-portal/pkg/retry"
)

type OutboxProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// MaxRetries bounds how many polls may pick up a failed event.
	MaxRetries int
	// Publish is the in-poll retry policy for a single publish.
	Publish retry.Policy
}

// BookingNotifier sends the patient-facing confirmation for a booking.
type BookingNotifier interface {
	SendAppointmentConfirmation(ctx context.Context, booked model.AppointmentBookedPayload) error
}

type OutboxProcessor struct {
	repo     repository.OutboxRepository
	broker   messaging.Broker
	notifier BookingNotifier
	config   OutboxProcessorConfig
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// NewOutboxProcessor validates config; notifier may be nil to skip email.
func NewOutboxProcessor(
	repo repository.OutboxRepository,
	broker messaging.Broker,
	notifier BookingNotifier,
	config OutboxProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) (*OutboxProcessor, error) {
	if config.BatchSize <= 0 {
		return nil, errors.New("batch size must be greater than 0")
	}
	if config.PollInterval <= 0 {
		return nil, errors.New("poll interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return nil, errors.New("max retries must be greater than 0")
	}

	return &OutboxProcessor{
		repo:     repo,
		broker:   broker,
		notifier: notifier,
		config:   config,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

func (p *OutboxProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting outbox processor",
		"batch_size", p.config.BatchSize, "poll_interval", p.config.PollInterval.String())

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down outbox processor")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process events")
			}
		}
	}
}

// ProcessBatch claims one batch and relays it, returning how many events were
// published.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(p.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	events, err := p.repo.ClaimPending(ctx, p.config.BatchSize, p.config.MaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to claim pending events: %w", err)
	}
	p.metrics.OutboxBatchSize.Set(float64(len(events)))

	published := 0
	for _, event := range events {
		if err := p.processEvent(ctx, event); err != nil {
			p.logger.Error(err, "failed to process event",
				"event_id", event.ID.String(),
				"event_type", event.EventType,
				"retry_count", event.RetryCount)
			continue
		}
		published++
	}
	return published, nil
}

func (p *OutboxProcessor) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	err := retry.Do(ctx, p.config.Publish,
		func(error) bool { return true },
		nil,
		func() error { return p.broker.Publish(ctx, event.EventType, event.Payload) },
	)
	if err != nil {
		p.metrics.OutboxEventsFailed.Inc()
		if markErr := p.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
			p.logger.Error(markErr, "failed to mark event failed", "event_id", event.ID.String())
		}
		return err
	}

	if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event processed: %w", err)
	}
	p.metrics.OutboxEventsProcessed.Inc()

	if event.EventType == model.EventAppointmentBooked {
		p.notify(ctx, event)
	}
	return nil
}

// notify is best effort: the event is already relayed, so a mail failure is
// logged and counted rather than replayed.
func (p *OutboxProcessor) notify(ctx context.Context, event *model.OutboxEvent) {
	if p.notifier == nil {
		return
	}

	var booked model.AppointmentBookedPayload
	if err := json.Unmarshal(event.Payload, &booked); err != nil {
		p.metrics.EmailsSent.WithLabelValues("error").Inc()
		p.logger.Error(err, "failed to decode booking event", "event_id", event.ID.String())
		return
	}

	if err := p.notifier.SendAppointmentConfirmation(ctx, booked); err != nil {
		p.metrics.EmailsSent.WithLabelValues("error").Inc()
		p.logger.Error(err, "failed to send confirmation",
			"event_id", event.ID.String(), "appointment_id", booked.AppointmentID.String())
		return
	}
	p.metrics.EmailsSent.WithLabelValues("sent").Inc()
}
