package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"decision-eval/backend/internal/decision"
)

type contextFlags struct {
	stage    string
	category string
	values   map[string]*float64
}

var metricFlagNames = []struct {
	flag  string
	usage string
}{
	{"revenue", "Monthly revenue"},
	{"churn", "Monthly churn, 0 to 1"},
	{"cac", "Customer acquisition cost"},
	{"ltv", "Customer lifetime value"},
	{"gross-margin", "Gross margin, 0 to 1"},
	{"burn", "Monthly cash burn"},
}

// addContextFlags registers the business context flags on cmd.
func addContextFlags(cmd *cobra.Command, cf *contextFlags) {
	f := cmd.Flags()
	f.StringVar(&cf.stage, "stage", "", "Company stage: traction, scale or enterprise")
	f.StringVar(&cf.category, "type", "", "Decision type: growth, budget, product, pricing or market")
	cf.values = make(map[string]*float64, len(metricFlagNames))
	for _, m := range metricFlagNames {
		cf.values[m.flag] = f.Float64(m.flag, 0, m.usage)
	}
}

// context builds a validated context. Only flags set on the command line
// become metrics; the rest stay absent.
func (cf *contextFlags) context(cmd *cobra.Command) (decision.Context, error) {
	var bc decision.Context
	var err error
	if bc.Stage, err = decision.ParseStage(cf.stage); err != nil {
		return bc, err
	}
	if bc.Category, err = decision.ParseCategory(cf.category); err != nil {
		return bc, err
	}
	set := func(flag string) *float64 {
		if !cmd.Flags().Changed(flag) {
			return nil
		}
		return decision.Float(*cf.values[flag])
	}
	bc.RevenueMonthly = set("revenue")
	bc.ChurnRate = set("churn")
	bc.CAC = set("cac")
	bc.LTV = set("ltv")
	bc.GrossMargin = set("gross-margin")
	bc.BurnRate = set("burn")
	return bc, bc.Validate()
}

func addFormatFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVarP(dst, "output", "o", "json", "Output format: json or markdown")
}

func checkFormat(format string) error {
	switch strings.ToLower(format) {
	case "json", "markdown", "md":
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

func isMarkdown(format string) bool {
	f := strings.ToLower(format)
	return f == "markdown" || f == "md"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
