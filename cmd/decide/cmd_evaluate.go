package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/report"
)

var evaluateFlags struct {
	question string
	format   string
	ctx      contextFlags
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [question]",
	Short: "Diagnose, score and recommend a decision for a business question",
	RunE:  runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateFlags.question, "question", "q", "", "Question to evaluate (or pass it as arguments)")
	addFormatFlag(evaluateCmd, &evaluateFlags.format)
	addContextFlags(evaluateCmd, &evaluateFlags.ctx)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	question := evaluateFlags.question
	if question == "" {
		question = strings.Join(args, " ")
	}
	if err := decision.ValidateQuestion(question); err != nil {
		return err
	}
	if err := checkFormat(evaluateFlags.format); err != nil {
		return err
	}
	bc, err := evaluateFlags.ctx.context(cmd)
	if err != nil {
		return fmt.Errorf("invalid context: %w", err)
	}

	eng, _, err := buildEngine()
	if err != nil {
		return err
	}
	res := eng.Evaluate(cmd.Context(), question, bc)

	out := cmd.OutOrStdout()
	if isMarkdown(evaluateFlags.format) {
		_, err := fmt.Fprint(out, report.Markdown(res))
		return err
	}
	return writeJSON(out, res)
}
