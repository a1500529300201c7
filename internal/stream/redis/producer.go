package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type streamWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type Producer struct {
	client streamWriter
	stream string
}

func NewProducer(client streamWriter, stream string) *Producer {
	if stream == "" {
		stream = DefaultStream
	}
	return &Producer{client: client, stream: stream}
}

// Publish appends an encoded job to the stream and returns the entry id.
func (p *Producer) Publish(ctx context.Context, payload []byte) (string, error) {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{PayloadField: string(payload)},
	}).Result()
}
