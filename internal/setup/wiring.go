package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/analyzer"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/citation"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/config"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/detector"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/executor"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/fine"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/llm"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/plate"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/prechecks"
	"github.com/rs/zerolog"
)

const (
	ModeLLM         = "llm"
	ModeRekognition = "rekognition"
	ModeYOLO        = "yolo"
)

type Config struct {
	AWSRegion          string
	ClaudeModelID      string
	OpenAIKey          string
	OpenAIModelID      string
	OpenAIBaseURL      string
	DefaultProvider    string
	AnalyzerMode       string
	YOLOModelPath      string
	YOLOMetadataPath   string
	ONNXRuntimeLibPath string
	OutputDir          string
	LogLevel           string
	StreamProvider     string
	RedisAddr          string
	RedisPassword      string
	SQSQueueURL        string
	Workers            int
}

type Dependencies struct {
	Executor      *executor.Executor
	Store         *citation.FileStore
	ChallanConfig *config.ChallanConfig
	AWSConfig     aws.Config
	Logger        *zerolog.Logger
	closers       []func()
}

// Close releases native resources held by the analyzer backends.
func (d *Dependencies) Close() {
	for _, c := range d.closers {
		c()
	}
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:      getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:          getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:      getEnv("OPEN_AI_MODEL_ID", ""),
		OpenAIBaseURL:      getEnv("OPEN_AI_BASE_URL", ""),
		DefaultProvider:    getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		AnalyzerMode:       getEnv("ANALYZER_MODE", ModeLLM),
		YOLOModelPath:      getEnv("YOLO_MODEL_PATH", "models/yolov8n.onnx"),
		YOLOMetadataPath:   getEnv("YOLO_METADATA_PATH", "models/yolov8n.json"),
		ONNXRuntimeLibPath: getEnv("ONNXRUNTIME_LIB_PATH", ""),
		OutputDir:          getEnv("CHALLAN_OUTPUT_DIR", "challans"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StreamProvider:     getEnv("STREAM_PROVIDER", "redis"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		SQSQueueURL:        getEnv("SQS_QUEUE_URL", ""),
		Workers:            getEnvInt("WORKERS", 4),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	// Policy: fines, phrase table, thresholds
	challanCfg, err := config.LoadChallanConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load challan config: %w", err)
	}

	schedule, err := challanCfg.Schedule()
	if err != nil {
		return nil, fmt.Errorf("failed to build fine schedule: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	rekognitionClient := rekognition.NewFromConfig(awsCfg)

	plates, err := plate.NewRekognitionExtractor(
		rekognitionClient,
		challanCfg.Plate.MinConfidence,
		challanCfg.Plate.Pattern,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create plate extractor: %w", err)
	}

	deps := &Dependencies{
		ChallanConfig: challanCfg,
		AWSConfig:     awsCfg,
		Logger:        logger,
	}

	violationAnalyzer, closer, err := createAnalyzer(ctx, cfg, challanCfg, rekognitionClient, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		deps.closers = append(deps.closers, closer)
	}

	store, err := citation.NewFileStore(cfg.OutputDir, logger)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create challan store: %w", err)
	}

	deps.Store = store
	deps.Executor = executor.NewExecutor(
		NewPrecheckRunner(challanCfg.Intake),
		plates,
		violationAnalyzer,
		challanCfg.Normalizer(),
		fine.NewCalculator(schedule),
		citation.NewPDFFormatter(challanCfg.Document),
		store,
		citation.UUIDGenerator{},
		logger,
	)

	logger.Info().
		Str("analyzer", cfg.AnalyzerMode).
		Str("llm_provider", cfg.DefaultProvider).
		Str("output_dir", cfg.OutputDir).
		Msg("Challan pipeline wired")

	return deps, nil
}

// NewPrecheckRunner builds the intake checks in the order they are reported.
func NewPrecheckRunner(intake config.IntakeConfig) *prechecks.StageRunner {
	return prechecks.NewStageRunner([]prechecks.Checker{
		prechecks.NewFormatChecker(),
		prechecks.NewSizeChecker(intake.MaxBytes),
		prechecks.NewDimensionChecker(intake.MinEdge),
	})
}

func createAnalyzer(
	ctx context.Context,
	cfg *Config,
	challanCfg *config.ChallanConfig,
	rekognitionClient *rekognition.Client,
	logger *zerolog.Logger,
) (executor.ViolationAnalyzer, func(), error) {
	switch cfg.AnalyzerMode {
	case ModeLLM, "":
		llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a, err := analyzer.NewVisionAnalyzer(challanCfg.Analyzer, llmClient, logger)
		if err != nil {
			return nil, nil, err
		}
		return a, nil, nil

	case ModeRekognition:
		return analyzer.NewRekognitionLabelAnalyzer(rekognitionClient, challanCfg.Detector.MinConfidence, logger), nil, nil

	case ModeYOLO:
		yolo, err := detector.NewYOLO(
			cfg.YOLOModelPath,
			cfg.YOLOMetadataPath,
			cfg.ONNXRuntimeLibPath,
			challanCfg.Detector.MinConfidence,
			challanCfg.Detector.IoUThreshold,
			logger,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load detector: %w", err)
		}
		return analyzer.NewDetectorAnalyzer(yolo, logger), yolo.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown analyzer mode: %s", cfg.AnalyzerMode)
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	case "openai", "gpt":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID, cfg.OpenAIBaseURL)
	default:
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	}
}
