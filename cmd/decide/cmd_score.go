package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/report"
	"decision-eval/backend/internal/scoring"
)

var scoreFlags struct {
	impact  int
	risk    int
	urgency int
	format  string
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the composite score and the decision it maps to",
	RunE:  runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.IntVar(&scoreFlags.impact, "impact", 0, "Impact, 1 to 5 (required)")
	f.IntVar(&scoreFlags.risk, "risk", 0, "Risk, 1 to 5 (required)")
	f.IntVar(&scoreFlags.urgency, "urgency", 0, "Urgency, 1 to 5 (required)")
	addFormatFlag(scoreCmd, &scoreFlags.format)

	_ = scoreCmd.MarkFlagRequired("impact")
	_ = scoreCmd.MarkFlagRequired("risk")
	_ = scoreCmd.MarkFlagRequired("urgency")
}

func runScore(cmd *cobra.Command, _ []string) error {
	if err := decision.ValidateDimensions(scoreFlags.impact, scoreFlags.risk, scoreFlags.urgency); err != nil {
		return err
	}
	if err := checkFormat(scoreFlags.format); err != nil {
		return err
	}
	score := decision.NewScore(scoreFlags.impact, scoreFlags.risk, scoreFlags.urgency)
	action := scoring.MapDecision(score.Value())

	out := cmd.OutOrStdout()
	if isMarkdown(scoreFlags.format) {
		_, err := fmt.Fprintf(out, "%s\nDecision: **%s**\n", report.ScoreTable(score), action)
		return err
	}
	return writeJSON(out, struct {
		Score    decision.Score  `json:"decision_score"`
		Decision decision.Action `json:"decision"`
		Formula  string          `json:"formula"`
	}{score, action, decision.Formula})
}
