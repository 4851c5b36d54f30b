package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/joelthomasitday/flowboard-platform-sub000/internal/config"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/models"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/rabbitmq"
	"github.com/joelthomasitday/flowboard-platform-sub000/internal/tracker"
)

// Ingestor consumes domain events published by sibling services and feeds
// them into the event tracker
type Ingestor struct {
	cfg         *config.RabbitMQConfig
	conn        *rabbitmq.Connection
	tracker     *tracker.Tracker
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	consumerTag string
	started     bool
}

// NewIngestor creates a new ingestor instance with dependencies
func NewIngestor(cfg *config.RabbitMQConfig, conn *rabbitmq.Connection, trk *tracker.Tracker, logger *zap.Logger) *Ingestor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Ingestor{
		cfg:         cfg,
		conn:        conn,
		tracker:     trk,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		consumerTag: fmt.Sprintf("flowboard-event-ingest-%d", time.Now().Unix()),
	}
}

// Start begins consuming domain events from the source queue
// Assumes the queue already exists - will fail if it doesn't
func (i *Ingestor) Start() error {
	if i.cfg.SourceQueue == "" {
		return fmt.Errorf("source queue is required")
	}

	if err := i.conn.SetQoS(16, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	if err := i.startConsuming(); err != nil {
		return err
	}

	i.started = true
	i.logger.Info("Event ingestor started and consuming messages",
		zap.String("source_queue", i.cfg.SourceQueue),
		zap.String("consumer_tag", i.consumerTag),
	)
	return nil
}

func (i *Ingestor) startConsuming() error {
	messages, err := i.conn.ConsumeMessages(
		i.cfg.SourceQueue,
		i.consumerTag,
		false, // autoAck (we manually ACK)
		false, // exclusive
		false, // noLocal
		false, // noWait
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming from queue %s: %w", i.cfg.SourceQueue, err)
	}

	go i.processMessages(messages)

	return nil
}

// Stop gracefully stops the ingestor
func (i *Ingestor) Stop() error {
	i.logger.Info("Stopping event ingestor",
		zap.String("consumer_tag", i.consumerTag),
	)
	i.cancel()

	ch := i.conn.GetChannel()
	if ch != nil {
		if err := ch.Cancel(i.consumerTag, false); err != nil {
			i.logger.Error("Failed to cancel consumer",
				zap.String("consumer_tag", i.consumerTag),
				zap.Error(err),
			)
		}
	}

	i.logger.Info("Event ingestor stopped")
	return nil
}

func (i *Ingestor) processMessages(messages <-chan amqp.Delivery) {
	for {
		select {
		case <-i.ctx.Done():
			i.logger.Info("Ingestor context cancelled, stopping message processing")
			return
		case msg, ok := <-messages:
			if !ok {
				i.logger.Warn("Message channel closed, attempting to restart consumer...",
					zap.String("source_queue", i.cfg.SourceQueue),
				)
				// Connection wrapper reconnects on its own; retry until
				// consuming resumes or the ingestor is stopped
				for i.started {
					select {
					case <-i.ctx.Done():
						return
					default:
					}

					time.Sleep(2 * time.Second)

					if !i.conn.IsHealthy() {
						continue
					}

					if err := i.startConsuming(); err != nil {
						i.logger.Error("Failed to restart consuming after channel close, will retry",
							zap.String("source_queue", i.cfg.SourceQueue),
							zap.Error(err),
						)
						time.Sleep(5 * time.Second)
						continue
					}

					i.logger.Info("Successfully restarted consumer after channel close",
						zap.String("source_queue", i.cfg.SourceQueue),
					)
					return
				}
				return
			}
			ProcessMessage(i.logger, i.cfg.SourceQueue, msg, i)
		}
	}
}

// HandleEvent implements the EventHandler interface. The message body is a
// JSON DomainEvent published by the service that performed the state change.
func (i *Ingestor) HandleEvent(body []byte) error {
	var event models.DomainEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("failed to unmarshal domain event: %w", err)
	}

	eventType, err := models.ParseEventType(event.EventType)
	if err != nil {
		// Unknown event types are dropped with an ACK: requeueing cannot
		// make them valid
		i.logger.Warn("Dropping domain event with unknown type",
			zap.String("event_type", event.EventType),
			zap.String("workspace_id", event.WorkspaceID),
		)
		return nil
	}

	if event.WorkspaceID == "" {
		i.logger.Warn("Dropping domain event without workspace id",
			zap.String("event_type", event.EventType),
		)
		return nil
	}

	i.tracker.Track(i.ctx, eventType, tracker.TrackOptions{
		WorkspaceID: event.WorkspaceID,
		UserID:      event.UserID,
		Metadata:    event.Metadata,
	})

	return nil
}
