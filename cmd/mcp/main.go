package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/api"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/mcpadapter"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/setup"
	setuplogger "github.com/povarna/generative-ai-agents/challan-agent/internal/setup/logger"
)

func main() {
	// Load env
	_ = godotenv.Load()

	// Load Config
	cfg := setup.LoadConfig()

	// Stdout carries the protocol, so logs go to stderr as JSON
	logger := setuplogger.New(cfg.LogLevel)

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire dependencies
	deps, err := setup.Wire(ctx, cfg, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Unable to load dependencies")
		os.Exit(1)
	}
	defer deps.Close()

	// Create MCP Server
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "challan-agent",
			Version: api.Version,
		}, nil,
	)
	mcpadapter.RegisterTools(server, deps.Executor)

	// Run over stdio
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		// EOF / "server is closing" is expected when stdin closes (e.g. echo | ./bin/challan-mcp)
		if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "server is closing") {
			logger.Debug().Err(err).Msg("MCP server stopped")
			return
		}
		logger.Error().Err(err).Msg("Failed to run mcp server")
		os.Exit(1)
	}
}
