package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/batch"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/config"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/prechecks"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	startTime := time.Now()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	input := flag.String("input", "", "Directory of vehicle photos (.jpg, .jpeg, .png)")
	output := flag.String("output", "", "Output file relative path (default stdout)")
	format := flag.String("format", "jsonl", "Output file format. Supported formats: 'jsonl', 'summary'")
	summary := flag.String("summary", "", "Optional separate summary file")
	pdfDir := flag.String("pdf-dir", "", "Directory for challan PDFs (default $CHALLAN_OUTPUT_DIR)")
	workers := flag.Int("workers", 4, "Concurrent pipeline workers")
	continueOnError := flag.Bool("continue-on-error", true, "Continue on pipeline failures")
	dryRun := flag.Bool("dry-run", false, "Run intake checks only, without calling any model")

	flag.Parse()

	if *input == "" {
		log.Fatal().Msg("required flag -input not provided")
	}
	formatValidator(format)

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	ctx, cancel := setupGracefulShutdown()
	defer cancel()

	info, err := os.Stat(*input)
	if err != nil || !info.IsDir() {
		log.Fatal().Err(err).Str("dir", *input).Msg("Input must be a directory")
	}

	// Read images
	reader := batch.NewReader(os.DirFS(*input), &log.Logger)
	var records []batch.InputRecord
	for record := range reader.ReadAll(ctx) {
		records = append(records, record)
	}

	log.Info().Str("dir", *input).Int("total", len(records)).Msg("Input directory read")

	// Dry run validation
	if *dryRun {
		dryRunAndExit(records)
	}

	cfg := setup.LoadConfig()
	if *pdfDir != "" {
		cfg.OutputDir = *pdfDir
	}

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Close()

	// Open output file
	var outputFile io.Writer
	if *output == "" {
		outputFile = os.Stdout
		log.Info().Msg("Writing to stdout")
	} else {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Str("file", *output).Msg("Failed to create output file")
		}
		defer f.Close()
		outputFile = f
		log.Info().Str("file", *output).Msg("Writing to output file")
	}

	// Create writer
	writer, err := batch.NewWriter(outputFile, *format, deps.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create writer")
	}

	// Process with worker pool
	processor := batch.NewProcessor(deps.Executor, *workers, deps.Logger)
	results := processor.Process(ctx, records)

	successCount := 0
	errorCount := 0

	for result := range results {
		if err := writer.Write(result); err != nil {
			log.Error().Err(err).Str("file", result.Path).Msg("Failed to write result")
		}

		if result.Error != nil {
			errorCount++
			if !*continueOnError {
				log.Error().Str("file", result.Path).Msg("Stopping after first failure")
				cancel()
			}
			continue
		}
		successCount++
	}

	if err := writer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to write summary")
	}

	log.Info().
		Int("success", successCount).
		Int("errors", errorCount).
		Dur("duration", time.Since(startTime)).
		Msg("Processing complete")

	if *summary != "" {
		writeSummary(*summary, writer)
	}

	log.Info().Msg("Batch processing complete")

	if errorCount > 0 && !*continueOnError {
		os.Exit(1)
	}
}

func setupGracefulShutdown() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Warn().Msg("Received interrupt signal, finishing current work...")
		cancel()
	}()

	return ctx, cancel
}

func formatValidator(format *string) {
	validFormats := map[string]bool{batch.FormatJSONL: true, batch.FormatSummary: true}
	if !validFormats[*format] {
		log.Fatal().
			Str("format", *format).
			Msg("Invalid format. Supported: jsonl, summary")
	}
}

func writeSummary(path string, writer *batch.Writer) {
	data, err := json.MarshalIndent(writer.Summary(), "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal summary")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to write summary file")
	}
	log.Info().Str("file", path).Msg("Summary written")
}

// dryRunAndExit runs the intake checks against every image. No model,
// OCR service or document store is touched.
func dryRunAndExit(records []batch.InputRecord) {
	challanCfg, err := config.LoadChallanConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load challan config")
	}
	runner := setup.NewPrecheckRunner(challanCfg.Intake)

	errorCount := 0
	for _, record := range records {
		if record.Error != nil {
			log.Error().
				Int("index", record.Index).
				Err(record.Error).
				Msg("Read error")
			errorCount++
			continue
		}

		for _, failed := range prechecks.Failed(runner.Run(record.Image)) {
			log.Error().
				Str("file", record.Path).
				Str("check", failed.Name).
				Str("reason", failed.Reason).
				Msg("Image rejected")
			errorCount++
		}
	}

	if errorCount > 0 {
		log.Fatal().Int("errors", errorCount).Msg("Validation failed")
	}

	log.Info().Int("images", len(records)).Msg("Validation successful")
	os.Exit(0)
}
