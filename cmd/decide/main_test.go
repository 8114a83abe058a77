package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"decision-eval/backend/internal/decision"
)

// execute runs the root command in-process. Flag values persist between
// runs, so each test drives a different subcommand.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--no-ai"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestEvaluateCommand(t *testing.T) {
	out, err := execute(t, "evaluate",
		"-q", "Devemos escalar a aquisição para aumentar a receita?",
		"--stage", "traction", "--cac", "100", "--ltv", "200", "--churn", "0.03", "--revenue", "600000")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	var res decision.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if res.Decision != decision.ActionPause || res.Verdict != decision.VerdictAdjust {
		t.Fatalf("decision = %s verdict = %s", res.Decision, res.Verdict)
	}
}

func TestScoreCommandMarkdown(t *testing.T) {
	out, err := execute(t, "score", "--impact", "5", "--risk", "1", "--urgency", "4", "-o", "markdown")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !strings.Contains(out, "| 5 | 4 | 1 | 20.00 | EXECUTE |") || !strings.Contains(out, "**EXECUTE**") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestValidateCommandRejectsUnknownDecision(t *testing.T) {
	_, err := execute(t, "validate", "--decision", "MAYBE")
	if err == nil || !strings.Contains(err.Error(), "unknown decision") {
		t.Fatalf("err = %v", err)
	}
}

func TestNamespacesCommand(t *testing.T) {
	out, err := execute(t, "namespaces")
	if err != nil {
		t.Fatalf("namespaces: %v", err)
	}
	if !strings.Contains(out, "growth_capital") || !strings.Contains(out, "Principles:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
