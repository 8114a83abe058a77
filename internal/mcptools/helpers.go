package mcptools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"decision-eval/backend/internal/decision"
)

const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

var metricArgs = []struct {
	name string
	desc string
}{
	{"revenue_monthly", "Monthly revenue."},
	{"churn_rate", "Monthly churn as a fraction between 0 and 1."},
	{"cac", "Customer acquisition cost."},
	{"ltv", "Customer lifetime value."},
	{"gross_margin", "Gross margin as a fraction between 0 and 1."},
	{"burn_rate", "Monthly cash burn."},
}

// contextOptions declares the optional business context shared by the
// evaluate and validate tools.
func contextOptions() []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithString("company_stage",
			mcp.Description("Company stage."),
			mcp.Enum("traction", "scale", "enterprise"),
		),
		mcp.WithString("decision_type",
			mcp.Description("Decision category. Inferred from the question when omitted."),
			mcp.Enum("growth", "budget", "product", "pricing", "market"),
		),
	}
	for _, m := range metricArgs {
		opts = append(opts, mcp.WithNumber(m.name, mcp.Description(m.desc)))
	}
	return opts
}

func formatOption() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Response format: json (default) or markdown."),
		mcp.Enum(formatJSON, formatMarkdown),
	)
}

// contextFromArgs builds a validated business context from tool arguments.
// Absent metrics stay nil.
func contextFromArgs(req mcp.CallToolRequest) (decision.Context, error) {
	var bc decision.Context
	var err error
	if bc.Stage, err = decision.ParseStage(req.GetString("company_stage", "")); err != nil {
		return bc, err
	}
	if bc.Category, err = decision.ParseCategory(req.GetString("decision_type", "")); err != nil {
		return bc, err
	}

	args := req.GetArguments()
	targets := map[string]**float64{
		"revenue_monthly": &bc.RevenueMonthly,
		"churn_rate":      &bc.ChurnRate,
		"cac":             &bc.CAC,
		"ltv":             &bc.LTV,
		"gross_margin":    &bc.GrossMargin,
		"burn_rate":       &bc.BurnRate,
	}
	for name, dst := range targets {
		raw, ok := args[name]
		if !ok || raw == nil {
			continue
		}
		v, err := toFloat(raw)
		if err != nil {
			return bc, fmt.Errorf("%s: %w", name, err)
		}
		*dst = &v
	}
	return bc, bc.Validate()
}

func toFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("unsupported value %v", raw)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func wantsMarkdown(req mcp.CallToolRequest) bool {
	return strings.EqualFold(req.GetString("format", formatJSON), formatMarkdown)
}
