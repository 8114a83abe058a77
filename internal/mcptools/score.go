package mcptools

import (
	"context"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/report"
	"decision-eval/backend/internal/scoring"
)

// ScoreTool handles the decision_score MCP tool.
type ScoreTool struct{}

func NewScoreTool() *ScoreTool {
	return &ScoreTool{}
}

type scoreResult struct {
	Score    decision.Score  `json:"decision_score"`
	Decision decision.Action `json:"decision"`
	Formula  string          `json:"formula"`
}

// Definition returns the MCP tool definition for registration.
func (t *ScoreTool) Definition() mcp.Tool {
	return mcp.NewTool("decision_score",
		mcp.WithDescription("Compute the composite decision score (impact x urgency / risk) "+
			"and the decision it maps to."),
		mcp.WithNumber("impact", mcp.Required(), mcp.Description("Impact, 1 to 5.")),
		mcp.WithNumber("risk", mcp.Required(), mcp.Description("Risk, 1 to 5.")),
		mcp.WithNumber("urgency", mcp.Required(), mcp.Description("Urgency, 1 to 5.")),
		formatOption(),
	)
}

// Handle processes the decision_score tool call.
func (t *ScoreTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	score, err := scoreFromArgs(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if wantsMarkdown(req) {
		return mcp.NewToolResultText(report.ScoreTable(score)), nil
	}
	return jsonResult(scoreResult{
		Score:    score,
		Decision: scoring.MapDecision(score.Value()),
		Formula:  decision.Formula,
	})
}

// scoreFromArgs reads the three dimensions, rejecting fractional or
// out-of-range values rather than clamping them.
func scoreFromArgs(req mcp.CallToolRequest) (decision.Score, error) {
	dims := make([]int, 3)
	for i, name := range []string{"impact", "risk", "urgency"} {
		v := req.GetFloat(name, 0)
		if v != math.Trunc(v) {
			v = 0
		}
		dims[i] = int(v)
	}
	if err := decision.ValidateDimensions(dims[0], dims[1], dims[2]); err != nil {
		return decision.Score{}, err
	}
	return decision.NewScore(dims[0], dims[1], dims[2]), nil
}
