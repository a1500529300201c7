package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	red "github.com/povarna/generative-ai-agents/challan-agent/internal/redis"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/job"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/redis"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/stream/sqs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type publisher interface {
	Publish(ctx context.Context, payload []byte) (string, error)
}

func main() {
	image := flag.String("image", "", "Path of the vehicle photo, readable by the workers")
	jobID := flag.String("job-id", "", "Job id (default: random UUID)")
	provider := flag.String("provider", stream.ProviderRedis, "Stream provider: redis or sqs")
	streamName := flag.String("stream", redis.DefaultStream, "Redis stream name")
	flag.Parse()

	if *image == "" {
		fmt.Fprintln(os.Stderr, "Usage: producer -image <path> [-provider redis|sqs]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(*image, *jobID, *provider, *streamName); err != nil {
		log.Error().Err(err).Msg("producer failed")
		os.Exit(1)
	}
}

func run(image, jobID, provider, streamName string) error {
	_ = godotenv.Load()

	path, err := filepath.Abs(image)
	if err != nil {
		return err
	}
	if jobID == "" {
		jobID = uuid.NewString()
	}

	payload, err := job.Encode(models.ChallanJob{JobID: jobID, ImagePath: path})
	if err != nil {
		return err
	}

	ctx := context.Background()

	var pub publisher
	switch provider {
	case stream.ProviderRedis:
		client, err := red.ConnectRedis(ctx, red.Options{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		}, 3, &log.Logger)
		if err != nil {
			return err
		}
		defer client.Close()
		pub = redis.NewProducer(client, streamName)

	case stream.ProviderSQS:
		queueURL := os.Getenv("SQS_QUEUE_URL")
		if queueURL == "" {
			return fmt.Errorf("SQS_QUEUE_URL is required for provider sqs")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(os.Getenv("AWS_REGION")))
		if err != nil {
			return fmt.Errorf("unable to load AWS config: %w", err)
		}
		pub = sqs.NewProducer(awssqs.NewFromConfig(awsCfg), queueURL)

	default:
		return fmt.Errorf("%w: %s", stream.ErrUnsupportedProvider, provider)
	}

	id, err := pub.Publish(ctx, payload)
	if err != nil {
		return err
	}

	log.Info().
		Str("provider", provider).
		Str("id", id).
		Str("job_id", jobID).
		Str("image", path).
		Msg("Published successfully!")
	return nil
}
