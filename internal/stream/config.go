package stream

import (
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/redis"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/sqs"
)

const (
	ProviderRedis = "redis"
	ProviderSQS   = "sqs"
)

type StreamConfig struct {
	Provider    string // redis or sqs
	RedisConfig *redis.RedisStreamConfig
	SQSConfig   *sqs.QueueConfig
}
