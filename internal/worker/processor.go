package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/naijasafe/emergency-api/internal/model"
	"github.com/naijasafe/emergency-api/internal/repository"
	"github.com/naijasafe/emergency-api/pkg/messaging"
)

// AlertChannel is the broker channel drained alert events are published to.
const AlertChannel = "sos.alerts"

var (
	processedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alert_events_processed_total",
		Help: "The total number of processed alert events",
	})
	failedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alert_events_failed_total",
		Help: "The total number of failed alert events",
	})
	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "alert_event_processing_duration_seconds",
		Help:    "Time spent draining a batch of alert events",
		Buckets: prometheus.DefBuckets,
	})
	eventRetryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_event_retry_total",
			Help: "Number of alert event publish retries",
		},
		[]string{"event_type"},
	)
)

type ProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// RetainFor bounds how long processed rows stay before cleanup.
	RetainFor time.Duration
}

// Processor drains the alert_events outbox to the message broker. Rows are
// claimed with SKIP LOCKED so multiple workers can run side by side.
type Processor struct {
	repo   repository.EventRepository
	broker messaging.Broker
	config ProcessorConfig
	logger zerolog.Logger
}

func NewProcessor(repo repository.EventRepository, broker messaging.Broker, config ProcessorConfig, logger zerolog.Logger) *Processor {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 5 * time.Second
	}

	return &Processor{
		repo:   repo,
		broker: broker,
		config: config,
		logger: logger.With().Str("component", "alert_event_processor").Logger(),
	}
}

func (p *Processor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	cleanupEvery := time.NewTicker(time.Hour)
	defer cleanupEvery.Stop()

	p.logger.Info().Msg("starting alert event processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("shutting down alert event processor")
			return
		case <-ticker.C:
			if err := p.processEvents(ctx); err != nil {
				p.logger.Error().Err(err).Msg("failed to process alert events")
			}
		case <-cleanupEvery.C:
			p.cleanup(ctx)
		}
	}
}

func (p *Processor) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(processingDuration)
	defer timer.ObserveDuration()

	events, err := p.repo.GetPending(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending events: %w", err)
	}

	for _, evt := range events {
		if err := p.publish(ctx, evt); err != nil {
			failedEvents.Inc()
			p.logger.Error().Err(err).Str("event_id", evt.ID.String()).Msg("failed to publish event after retries")

			retryAt := time.Now().Add(p.config.RetryDelay * time.Duration(p.config.RetryAttempts))
			if markErr := p.repo.MarkRetry(ctx, evt.ID, err.Error(), retryAt); markErr != nil {
				p.logger.Error().Err(markErr).Str("event_id", evt.ID.String()).Msg("failed to mark event for retry")
			}
			continue
		}

		if err := p.repo.MarkProcessed(ctx, evt.ID); err != nil {
			p.logger.Error().Err(err).Str("event_id", evt.ID.String()).Msg("failed to mark event as processed")
			continue
		}
		processedEvents.Inc()
	}

	return nil
}

func (p *Processor) publish(ctx context.Context, evt *model.AlertEvent) error {
	var err error
	for attempt := 0; attempt < p.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			eventRetryCount.WithLabelValues(evt.EventType).Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * p.config.RetryDelay):
			}
		}

		err = p.broker.Publish(ctx, AlertChannel, map[string]interface{}{
			"type":    evt.EventType,
			"payload": evt.Payload,
		})
		if err == nil {
			return nil
		}

		p.logger.Warn().Err(err).Str("event_id", evt.ID.String()).Int("attempt", attempt+1).Msg("retry publishing event")
	}
	return err
}

func (p *Processor) cleanup(ctx context.Context) {
	if p.config.RetainFor <= 0 {
		return
	}

	cutoff := time.Now().Add(-p.config.RetainFor)
	rows, err := p.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to clean up processed events")
		return
	}
	if rows > 0 {
		p.logger.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("cleaned up processed events")
	}
}
