package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/report"
)

var validateFlags struct {
	decision  string
	diagnosis string
	impact    int
	risk      int
	urgency   int
	format    string
	ctx       contextFlags
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Cross-validate a proposed decision against its business context",
	RunE:  runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFlags.decision, "decision", "", "Proposed decision: EXECUTE, ADJUST, PAUSE or BLOCK (required)")
	f.StringVar(&validateFlags.diagnosis, "diagnosis", "", "Diagnosis behind the decision")
	f.IntVar(&validateFlags.impact, "impact", 3, "Impact, 1 to 5")
	f.IntVar(&validateFlags.risk, "risk", 3, "Risk, 1 to 5")
	f.IntVar(&validateFlags.urgency, "urgency", 3, "Urgency, 1 to 5")
	addFormatFlag(validateCmd, &validateFlags.format)
	addContextFlags(validateCmd, &validateFlags.ctx)

	_ = validateCmd.MarkFlagRequired("decision")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	action, err := decision.ParseAction(validateFlags.decision)
	if err != nil {
		return err
	}
	if err := decision.ValidateDimensions(validateFlags.impact, validateFlags.risk, validateFlags.urgency); err != nil {
		return err
	}
	if err := checkFormat(validateFlags.format); err != nil {
		return err
	}
	bc, err := validateFlags.ctx.context(cmd)
	if err != nil {
		return fmt.Errorf("invalid context: %w", err)
	}

	eng, _, err := buildEngine()
	if err != nil {
		return err
	}
	score := decision.NewScore(validateFlags.impact, validateFlags.risk, validateFlags.urgency)
	v := eng.CrossValidate(action, validateFlags.diagnosis, score, bc)

	out := cmd.OutOrStdout()
	if isMarkdown(validateFlags.format) {
		_, err := fmt.Fprint(out, report.ValidationMarkdown(v))
		return err
	}
	return writeJSON(out, v)
}
