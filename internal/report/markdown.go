package report

import (
	"fmt"
	"strings"

	"decision-eval/backend/internal/decision"
)

// Markdown renders a result as an executive report.
func Markdown(res decision.Result) string {
	b := &strings.Builder{}
	b.WriteString("# Strategic Decision Report\n\n")

	b.WriteString("## Diagnosis\n")
	b.WriteString(res.Diagnosis)
	b.WriteString("\n\n")

	b.WriteString("## Key Metrics\n")
	writeList(b, res.KeyMetrics)

	b.WriteString("## Hidden Risks\n")
	writeList(b, res.HiddenRisks)

	b.WriteString("## Strategic Principle\n")
	fmt.Fprintf(b, "> %s\n\n", res.StrategicPrinciple)

	b.WriteString("## Decision Score\n")
	b.WriteString(ScoreTable(res.Score))
	b.WriteString("\n")

	b.WriteString("## Decision\n")
	fmt.Fprintf(b, "**%s** (validation: %s)\n\n", res.Decision, res.Verdict)

	b.WriteString("## Next Step\n")
	b.WriteString(res.NextStep)
	b.WriteString("\n")
	return b.String()
}

// ScoreTable renders the three dimensions and the composite as a table.
func ScoreTable(s decision.Score) string {
	b := &strings.Builder{}
	b.WriteString("| Impact | Urgency | Risk | Score | Reading |\n")
	b.WriteString("|---|---|---|---|---|\n")
	fmt.Fprintf(b, "| %d | %d | %d | %.2f | %s |\n", s.Impact(), s.Urgency(), s.Risk(), s.Value(), s.Interpretation())
	fmt.Fprintf(b, "\n_%s_\n", decision.Formula)
	return b.String()
}

// ValidationMarkdown renders a cross-validation response.
func ValidationMarkdown(v decision.Validation) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "## Cross-Validation: %s\n\n", v.Verdict)
	b.WriteString(v.FinalVerdict)
	b.WriteString("\n\n")
	if len(v.AdditionalRisks) > 0 {
		b.WriteString("### Additional Risks\n")
		writeList(b, v.AdditionalRisks)
	}
	if len(v.Adjustments) > 0 {
		b.WriteString("### Adjustments\n")
		writeList(b, v.Adjustments)
	}
	return b.String()
}

func writeList(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
