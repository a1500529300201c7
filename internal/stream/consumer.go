package stream

import "context"

type StreamConsumer interface {
	Setup(ctx context.Context) error
	Start(ctx context.Context) error
	Stop() error
}

// JobHandler processes one encoded ChallanJob.
type JobHandler interface {
	Handle(ctx context.Context, payload []byte) error
}
