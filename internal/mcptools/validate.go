package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/engine"
	"decision-eval/backend/internal/report"
)

// ValidateTool handles the decision_validate MCP tool. It challenges a
// decision that was reached elsewhere against the same business context.
type ValidateTool struct {
	eng *engine.Engine
}

func NewValidateTool(eng *engine.Engine) *ValidateTool {
	return &ValidateTool{eng: eng}
}

// Definition returns the MCP tool definition for registration.
func (t *ValidateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Cross-validate a proposed decision. Returns CONFIRM, ADJUST or BLOCK with " +
				"any additional risks and suggested adjustments.",
		),
		mcp.WithString("decision",
			mcp.Required(),
			mcp.Description("The proposed decision."),
			mcp.Enum("EXECUTE", "ADJUST", "PAUSE", "BLOCK"),
		),
		mcp.WithString("diagnosis",
			mcp.Description("Diagnosis text that motivated the decision."),
		),
		mcp.WithNumber("impact", mcp.Required(), mcp.Description("Impact, 1 to 5.")),
		mcp.WithNumber("risk", mcp.Required(), mcp.Description("Risk, 1 to 5.")),
		mcp.WithNumber("urgency", mcp.Required(), mcp.Description("Urgency, 1 to 5.")),
		formatOption(),
	}
	opts = append(opts, contextOptions()...)
	return mcp.NewTool("decision_validate", opts...)
}

// Handle processes the decision_validate tool call.
func (t *ValidateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := decision.ParseAction(req.GetString("decision", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	score, err := scoreFromArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bc, err := contextFromArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v := t.eng.CrossValidate(action, req.GetString("diagnosis", ""), score, bc)
	if wantsMarkdown(req) {
		return mcp.NewToolResultText(report.ValidationMarkdown(v)), nil
	}
	return jsonResult(v)
}
