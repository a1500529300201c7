package mcpadapter

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/models"
	"github.com/povarna/generative-ai-agents/challan-agent/internal/violation"
)

// Pipeline is the challan executor as seen by the MCP tools.
type Pipeline interface {
	Execute(ctx context.Context, img models.Image) (models.ChallanResult, error)
	Assess(out violation.ClassifierOutput) models.Assessment
}

// IssueChallanInput is the MCP tool input schema for a full pipeline run.
type IssueChallanInput struct {
	ImagePath string `json:"image_path" jsonschema:"path of a JPEG or PNG vehicle photo readable by the server"`
}

// NormalizeInput is the MCP tool input schema for normalization only.
// Exactly one of Text or Labels must be set.
type NormalizeInput struct {
	Text   *string  `json:"text,omitempty" jsonschema:"free-text description from a vision model"`
	Labels []string `json:"labels,omitempty" jsonschema:"object detector labels, one entry per detected instance"`
}

// RegisterTools adds issue_challan and normalize_violations to the server.
func RegisterTools(server *mcp.Server, pipeline Pipeline) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "issue_challan",
		Description: "Read a vehicle photo, detect the plate and traffic violations, compute the fine and issue a PDF challan",
	}, NewIssueChallanHandler(pipeline))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "normalize_violations",
		Description: "Map classifier output (free text or detector labels) to canonical violations and the total fine. Does not issue a challan.",
	}, NewNormalizeHandler(pipeline))
}

// NewIssueChallanHandler returns a tool handler that uses the given pipeline.
// Pass the returned function to mcp.AddTool.
func NewIssueChallanHandler(pipeline Pipeline) func(context.Context, *mcp.CallToolRequest, IssueChallanInput) (*mcp.CallToolResult, models.ChallanResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IssueChallanInput) (*mcp.CallToolResult, models.ChallanResult, error) {
		return IssueChallan(ctx, pipeline, req, input)
	}
}

// NewNormalizeHandler returns a tool handler for normalization only.
// Pass the returned function to mcp.AddTool.
func NewNormalizeHandler(pipeline Pipeline) func(context.Context, *mcp.CallToolRequest, NormalizeInput) (*mcp.CallToolResult, models.Assessment, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input NormalizeInput) (*mcp.CallToolResult, models.Assessment, error) {
		return NormalizeViolations(ctx, pipeline, req, input)
	}
}
