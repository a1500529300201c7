package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	red "github.com/povarna/generative-ai-agents/challan-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/redis"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/sqs"
	"github.com/rs/zerolog"
)

var ErrUnsupportedProvider = errors.New("unsupported stream provider")

func NewStreamConsumer(
	ctx context.Context,
	cfg *StreamConfig,
	awsCfg aws.Config,
	handler JobHandler,
	logger *zerolog.Logger,
) (StreamConsumer, error) {

	// If provider is empty, fallback to the default configuration.
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderRedis
	}

	switch provider {
	case ProviderRedis:
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("redis config required")
		}

		client, err := red.ConnectRedis(ctx, red.Options{
			Addr:     cfg.RedisConfig.RedisAddr,
			Password: cfg.RedisConfig.RedisPassword,
		}, 5, logger)
		if err != nil {
			return nil, err
		}

		return redis.NewConsumer(
			client,
			cfg.RedisConfig.Stream,
			cfg.RedisConfig.Group,
			cfg.RedisConfig.ConsumerName,
			handler,
			logger,
		), nil

	case ProviderSQS:
		if cfg.SQSConfig == nil || cfg.SQSConfig.QueueURL == "" {
			return nil, fmt.Errorf("sqs queue url required")
		}

		return sqs.NewConsumer(awssqs.NewFromConfig(awsCfg), cfg.SQSConfig, handler, logger), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}
