package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/setup"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/job"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/redis"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/sqs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	// Load env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Close()

	streamCfg := &stream.StreamConfig{
		Provider: cfg.StreamProvider,
		RedisConfig: redis.NewRedisStreamConfig(
			cfg.RedisAddr,
			cfg.RedisPassword,
			os.Getenv("REDIS_STREAM"),
			os.Getenv("REDIS_GROUP"),
			os.Getenv("HOSTNAME"),
		),
		SQSConfig: sqs.NewQueueConfig(cfg.SQSQueueURL),
	}

	handler := job.NewHandler(deps.Executor, &logger)

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, deps.AWSConfig, handler, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	// Setup consumer
	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	// Start consumer
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	// Wait for a signal or for the consumer to give up
	select {
	case <-ctx.Done():
	case <-done:
	}
	logger.Info().Msg("Shutting down...")
	cancel()
	<-done

	if err := consumer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop consumer")
	}

	log.Info().Msg("Challan worker stopped")
}
