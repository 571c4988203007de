// Package rabbitmq implements the enrichment task queues over AMQP. It
// satisfies both ports.EnrichmentPublisher (server side) and
// ports.EnrichmentConsumer (worker side).
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/config"
	"github.com/GoArmGo/GalleryApp/internal/messaging/payloads"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client is a RabbitMQ connection holding the two enrichment queues: the
// vision queue feeds the GPU worker class, the exif queue the CPU class.
type Client struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	visionQueue amqp.Queue
	exifQueue   amqp.Queue
	logger      *slog.Logger
}

// NewClient connects to RabbitMQ and declares both enrichment queues.
// Declaration is idempotent, so server and workers can start in any order.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.RabbitMQ.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	client := &Client{conn: conn, channel: ch, logger: logger}

	client.visionQueue, err = ch.QueueDeclare(
		cfg.RabbitMQ.VisionQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare vision queue: %w", err)
	}

	client.exifQueue, err = ch.QueueDeclare(
		cfg.RabbitMQ.EXIFQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to declare exif queue: %w", err)
	}

	logger.Info("connected to RabbitMQ",
		"vision_queue", client.visionQueue.Name, "exif_queue", client.exifQueue.Name)
	return client, nil
}

// Close closes the channel and connection.
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
		}
	}
}

// PublishVisionTask implements ports.EnrichmentPublisher.
func (c *Client) PublishVisionTask(ctx context.Context, payload payloads.PictureTaskPayload) error {
	return c.publish(ctx, c.visionQueue.Name, payload)
}

// PublishEXIFTask implements ports.EnrichmentPublisher.
func (c *Client) PublishEXIFTask(ctx context.Context, payload payloads.PictureTaskPayload) error {
	return c.publish(ctx, c.exifQueue.Name, payload)
}

func (c *Client) publish(ctx context.Context, queueName string, payload payloads.PictureTaskPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queueName, err)
	}

	c.logger.Debug("task published", "queue", queueName, "picture_id", payload.PictureID)
	return nil
}

// StartConsumingVisionTasks implements ports.EnrichmentConsumer.
func (c *Client) StartConsumingVisionTasks(ctx context.Context, handler func(context.Context, payloads.PictureTaskPayload) error) error {
	return c.consume(ctx, c.visionQueue.Name, handler)
}

// StartConsumingEXIFTasks implements ports.EnrichmentConsumer.
func (c *Client) StartConsumingEXIFTasks(ctx context.Context, handler func(context.Context, payloads.PictureTaskPayload) error) error {
	return c.consume(ctx, c.exifQueue.Name, handler)
}

// consume registers a manual-ack consumer. A handler error requeues the
// message; an unmarshalable message is dropped so a poison payload cannot
// loop forever.
func (c *Client) consume(ctx context.Context, queueName string, handler func(context.Context, payloads.PictureTaskPayload) error) error {
	msgs, err := c.channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer for queue %s: %w", queueName, err)
	}

	c.logger.Info("consumer registered, waiting for tasks", "queue", queueName)

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Info("delivery channel closed, stopping consumer", "queue", queueName)
					return
				}

				var payload payloads.PictureTaskPayload
				if err := json.Unmarshal(msg.Body, &payload); err != nil {
					c.logger.Error("dropping unparseable task",
						"queue", queueName, "error", err, "body", string(msg.Body))
					if err := msg.Nack(false, false); err != nil {
						c.logger.Error("failed to nack unparseable task", "error", err)
					}
					continue
				}

				if err := handler(ctx, payload); err != nil {
					c.logger.Error("task failed, requeueing",
						"queue", queueName, "picture_id", payload.PictureID, "error", err)
					if err := msg.Nack(false, true); err != nil {
						c.logger.Error("failed to nack task", "error", err)
					}
					continue
				}

				if err := msg.Ack(false); err != nil {
					c.logger.Error("failed to ack task", "error", err)
					continue
				}
				c.logger.Info("task processed",
					"queue", queueName, "picture_id", payload.PictureID)
			case <-ctx.Done():
				c.logger.Info("context cancelled, stopping consumer", "queue", queueName)
				return
			}
		}
	}()

	return nil
}
