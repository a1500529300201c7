package sqs

type QueueConfig struct {
	QueueURL          string
	MaxMessages       int32
	WaitTimeSeconds   int32
	VisibilityTimeout int32
}

// NewQueueConfig returns a long-polling configuration for the queue.
func NewQueueConfig(queueURL string) *QueueConfig {
	return &QueueConfig{
		QueueURL:          queueURL,
		MaxMessages:       10,
		WaitTimeSeconds:   20,
		VisibilityTimeout: 60,
	}
}
