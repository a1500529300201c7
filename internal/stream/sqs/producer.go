package sqs

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type queueWriter interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type Producer struct {
	client   queueWriter
	queueURL string
}

func NewProducer(client queueWriter, queueURL string) *Producer {
	return &Producer{client: client, queueURL: queueURL}
}

// Publish sends an encoded job and returns the SQS message id.
func (p *Producer) Publish(ctx context.Context, payload []byte) (string, error) {
	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
