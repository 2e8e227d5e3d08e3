package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amezav/filedrop/internal/models"
	"github.com/amezav/filedrop/internal/services"
	"github.com/amezav/filedrop/internal/telemetry"
	"github.com/amezav/filedrop/internal/telemetry/metrics"
)

// Holds the config params for the consumer
type AMQPConfig struct {
	AMQPUri  string
	Exchange string

	ConvertQueueName string
	PurgeQueueName   string
}

type AMQPConsumer struct {
	conn          *amqp.Connection
	channel       *amqp.Channel
	config        AMQPConfig
	conversionSvc *services.ConversionsService
	telemetry     *telemetry.TelemetrySvc
}

// Creates a new AMQPConsumer instance ready to connect to broker
func NewAMQPConsumer(
	config AMQPConfig,
	conversionSvc *services.ConversionsService,
	telemetry *telemetry.TelemetrySvc,
) (*AMQPConsumer, error) {

	if config.AMQPUri == "" {
		return nil, fmt.Errorf("AMQP URI cannot be empty in config")
	}
	if config.Exchange == "" {
		return nil, fmt.Errorf("AMQP exchange cannot be empty in config")
	}
	if config.ConvertQueueName == "" {
		return nil, fmt.Errorf(
			"AMQP convert requests queue name cannot be empty in config",
		)
	}
	if config.PurgeQueueName == "" {
		return nil, fmt.Errorf(
			"AMQP purge requests queue name cannot be empty in config",
		)
	}

	return &AMQPConsumer{
		config:        config,
		conversionSvc: conversionSvc,
		telemetry:     telemetry,
	}, nil
}

// Connects to AMQP broker, declares exchange and queues and
// starts consuming messages
func (c *AMQPConsumer) Start(ctx context.Context) error {
	slog.Debug("AMQP - Initializing AMQP Consumer")

	var err error
	c.conn, err = amqp.Dial(c.config.AMQPUri)
	if err != nil {
		return fmt.Errorf("AMQP - Connection to broker failed: %w", err)
	}

	c.channel, err = c.conn.Channel()
	if err != nil {
		c.conn.Close()
		return fmt.Errorf("AMQP - Failed to open channel: %w", err)
	}

	err = c.channel.ExchangeDeclare(
		c.config.Exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		c.channel.Close()
		c.conn.Close()
		return fmt.Errorf("AMQP - Failed to declare exchange: %w", err)
	}

	// Helper function to declare and bind a given queue
	declareAndBind := func(queueName string) error {
		_, err := c.channel.QueueDeclare(
			queueName,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return err
		}

		return c.channel.QueueBind(
			queueName,         // Queue
			queueName,         // Routing key
			c.config.Exchange, // Exchange
			false,             // No-wait
			nil,               // Arguments
		)
	}

	if err := declareAndBind(c.config.ConvertQueueName); err != nil {
		c.channel.Close()
		c.conn.Close()
		return fmt.Errorf(
			"AMQP - Failed to declare/bind convert requests queue: %w",
			err,
		)
	}

	if err := declareAndBind(c.config.PurgeQueueName); err != nil {
		c.channel.Close()
		c.conn.Close()
		return fmt.Errorf(
			"AMQP - Failed to declare/bind purge requests queue: %w",
			err,
		)
	}

	go c.consumeConvertRequests(ctx)
	go c.consumePurgeRequests(ctx)
	return nil
}

// Gracefully stops the AMQP consumer
func (c *AMQPConsumer) Stop() {
	slog.Info("AMQP - Stopping AMQP Consumer...")

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			slog.Error("AMQP - Failed to close channel", "error", err)
		} else {
			slog.Debug("AMQP - Channel closed")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			slog.Error("AMQP - Failed to close connection", "error", err)
		} else {
			slog.Debug("AMQP - Connection closed")
		}
	}

	slog.Info("AMQP - AMQP Consumer stopped")
}

func (c *AMQPConsumer) consumeConvertRequests(ctx context.Context) {
	msgs, err := c.channel.Consume(
		c.config.ConvertQueueName,
		"filedrop-convert", // Consumer tag
		false,              // Auto-acknowledge
		false,              // Exclusive
		false,              // No-local
		false,              // No-wait
		nil,                // Arguments
	)
	if err != nil {
		slog.Error(
			"AMQP - Failed to create convert requests queue consumer",
			"error",
			err,
		)
		return
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				slog.Info(
					"AMQP - Convert requests channel closed. goroutine exiting",
				)
				return
			}

			var req models.BatchConvertRequest
			err := json.Unmarshal(msg.Body, &req)
			if err != nil {
				slog.Error(
					"AMQP - Failed to unmarshal convert request",
					"error",
					err,
					"message",
					string(msg.Body),
				)

				if nackErr := msg.Nack(false, false); nackErr != nil {
					slog.Error(
						"AMQP - Failed to nack convert request",
						"error",
						nackErr,
					)
				}
				continue
			}

			c.telemetry.Metrics().Increment(
				metrics.ConvertRequestReceived,
				nil,
			)

			err = c.conversionSvc.ProcessConvertRequest(ctx, req)
			if err != nil {
				slog.Error(
					"AMQP - Failed to process batch conversion request",
					"error",
					err,
					"requestId",
					req.RequestID,
				)

				if nackErr := msg.Nack(false, false); nackErr != nil {
					slog.Error(
						"AMQP - Failed to nack convert request",
						"error",
						nackErr,
					)
				}
				continue
			}

			// Acknowledge the message
			if err := msg.Ack(false); err != nil {
				slog.Error(
					"AMQP - Failed to acknowledge convert request",
					"error",
					err,
				)
			}

		case <-ctx.Done():
			slog.Info(
				"AMQP - Context done signal received, " +
					"stopping convert requests consumption goroutine...",
			)
			return
		}
	}
}

func (c *AMQPConsumer) consumePurgeRequests(ctx context.Context) {
	msgs, err := c.channel.Consume(
		c.config.PurgeQueueName,
		"filedrop-purge", // Consumer tag
		false,            // Auto-acknowledge
		false,            // Exclusive
		false,            // No-local
		false,            // No-wait
		nil,              // Arguments
	)
	if err != nil {
		slog.Error(
			"AMQP - Failed to create purge requests queue consumer",
			"error",
			err,
		)
		return
	}

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				slog.Info(
					"AMQP - Purge requests channel closed. goroutine exiting",
				)
				return
			}

			var req models.PurgeRequest
			err := json.Unmarshal(msg.Body, &req)
			if err != nil {
				slog.Error(
					"AMQP - Failed to unmarshal purge request",
					"error",
					err,
					"message",
					string(msg.Body),
				)

				if nackErr := msg.Nack(false, false); nackErr != nil {
					slog.Error(
						"AMQP - Failed to nack purge request",
						"error",
						nackErr,
					)
				}
				continue
			}

			c.telemetry.Metrics().Increment(
				metrics.PurgeRequestReceived,
				nil,
			)

			err = c.conversionSvc.ProcessPurgeRequest(ctx, req)
			if err != nil {
				slog.Error(
					"AMQP - Failed to process downloads purge request",
					"error",
					err,
					"requestId",
					req.RequestID,
				)

				if nackErr := msg.Nack(false, false); nackErr != nil {
					slog.Error(
						"AMQP - Failed to nack purge request",
						"error",
						nackErr,
					)
				}
				continue
			}

			if err := msg.Ack(false); err != nil {
				slog.Error(
					"AMQP - Failed to acknowledge purge request",
					"error",
					err,
				)
			}

		case <-ctx.Done():
			slog.Info(
				"AMQP - Context done signal received, " +
					"stopping purge requests consumption goroutine...",
			)
			return
		}
	}
}
