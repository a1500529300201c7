package sqs

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/job"
	"github.com/rs/zerolog"
)

type queueAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type JobHandler interface {
	Handle(ctx context.Context, payload []byte) error
}

type Consumer struct {
	client     queueAPI
	cfg        *QueueConfig
	handler    JobHandler
	retryDelay time.Duration
	logger     *zerolog.Logger
}

func NewConsumer(client queueAPI, cfg *QueueConfig, handler JobHandler, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:     client,
		cfg:        cfg,
		handler:    handler,
		retryDelay: 5 * time.Second,
		logger:     logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	if c.cfg == nil || c.cfg.QueueURL == "" {
		return errors.New("sqs queue url required")
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().Str("queue", c.cfg.QueueURL).Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.cfg.QueueURL),
			MaxNumberOfMessages: c.cfg.MaxMessages,
			WaitTimeSeconds:     c.cfg.WaitTimeSeconds,
			VisibilityTimeout:   c.cfg.VisibilityTimeout,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Msg("Failed to receive messages")
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, msg := range out.Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	return nil
}

// process deletes a message once it succeeded or can never succeed.
// Anything else becomes visible again after the visibility timeout.
func (c *Consumer) process(ctx context.Context, msg types.Message) {
	id := aws.ToString(msg.MessageId)
	c.logger.Info().Str("id", id).Msg("Message received")

	if msg.Body == nil {
		c.logger.Error().Str("id", id).Msg("Empty message body")
		c.delete(ctx, msg)
		return
	}

	err := c.handler.Handle(ctx, []byte(*msg.Body))
	switch {
	case err == nil:
		c.logger.Info().Str("id", id).Msg("Job complete")
		c.delete(ctx, msg)
	case errors.Is(err, job.ErrInvalidJob):
		c.logger.Error().Err(err).Str("id", id).Msg("Dropping invalid job")
		c.delete(ctx, msg)
	default:
		c.logger.Warn().Err(err).Str("id", id).Msg("Job failed, leaving for redelivery")
	}
}

func (c *Consumer) delete(ctx context.Context, msg types.Message) {
	if msg.ReceiptHandle == nil {
		c.logger.Error().Str("id", aws.ToString(msg.MessageId)).Msg("Missing receipt handle")
		return
	}
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.cfg.QueueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("id", aws.ToString(msg.MessageId)).Msg("Failed to delete message")
	}
}
