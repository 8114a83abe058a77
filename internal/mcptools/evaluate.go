package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/engine"
	"decision-eval/backend/internal/report"
)

// EvaluateTool handles the decision_evaluate MCP tool.
type EvaluateTool struct {
	eng *engine.Engine
}

// NewEvaluateTool creates an EvaluateTool backed by eng.
func NewEvaluateTool(eng *engine.Engine) *EvaluateTool {
	return &EvaluateTool{eng: eng}
}

// Definition returns the MCP tool definition for registration.
func (t *EvaluateTool) Definition() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(
			"Evaluate a strategic business question. Returns the diagnosis, key metrics, " +
				"hidden risks, strategic principle, composite score, recommended decision " +
				"(EXECUTE, ADJUST, PAUSE, BLOCK), next step and cross-validation verdict.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The decision under consideration, at least 10 characters."),
		),
		formatOption(),
	}
	opts = append(opts, contextOptions()...)
	return mcp.NewTool("decision_evaluate", opts...)
}

// Handle processes the decision_evaluate tool call.
func (t *EvaluateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := req.GetString("question", "")
	if err := decision.ValidateQuestion(question); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bc, err := contextFromArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := t.eng.Evaluate(ctx, question, bc)
	if wantsMarkdown(req) {
		return mcp.NewToolResultText(report.Markdown(res)), nil
	}
	return jsonResult(res)
}
