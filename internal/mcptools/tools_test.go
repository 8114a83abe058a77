package mcptools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mark3labs/mcp-go/mcp"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/engine"
	"decision-eval/backend/internal/knowledge"
)

func newTestDeps(t *testing.T) (*engine.Engine, *knowledge.StaticStore) {
	t.Helper()
	eng, kb, err := engine.Build(engine.Setup{DisableAI: true})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return eng, kb
}

func call(t *testing.T, handle func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	result, err := handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	return result
}

func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(mcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestDefinitions(t *testing.T) {
	eng, kb := newTestDeps(t)
	got := []string{
		NewEvaluateTool(eng).Definition().Name,
		NewValidateTool(eng).Definition().Name,
		NewScoreTool().Definition().Name,
		NewNamespacesTool(kb).Definition().Name,
	}
	want := []string{"decision_evaluate", "decision_validate", "decision_score", "knowledge_namespaces"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tool names mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluateTool_Scenario(t *testing.T) {
	eng, _ := newTestDeps(t)
	tool := NewEvaluateTool(eng)

	result := call(t, tool.Handle, map[string]interface{}{
		"question":        "Devemos escalar a aquisição para aumentar a receita?",
		"company_stage":   "traction",
		"cac":             100.0,
		"ltv":             200.0,
		"churn_rate":      0.03,
		"revenue_monthly": 600000.0,
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	var res decision.Result
	if err := json.Unmarshal([]byte(getResultText(result)), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.Decision != decision.ActionPause || res.Verdict != decision.VerdictAdjust {
		t.Fatalf("decision = %s verdict = %s, want PAUSE/ADJUST", res.Decision, res.Verdict)
	}
	if res.Score.Value() != 2 || res.Category != decision.CategoryGrowth {
		t.Fatalf("score = %v category = %s", res.Score.Value(), res.Category)
	}
}

func TestEvaluateTool_Markdown(t *testing.T) {
	eng, _ := newTestDeps(t)
	result := call(t, NewEvaluateTool(eng).Handle, map[string]interface{}{
		"question": "Should we raise prices for the enterprise plan?",
		"format":   "markdown",
	})
	text := getResultText(result)
	if result.IsError || !strings.HasPrefix(text, "# Strategic Decision Report") {
		t.Fatalf("unexpected markdown %q", text)
	}
}

func TestEvaluateTool_RejectsBadInput(t *testing.T) {
	eng, _ := newTestDeps(t)
	tool := NewEvaluateTool(eng)
	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"short question", map[string]interface{}{"question": "grow?"}, "at least 10"},
		{"unknown stage", map[string]interface{}{"question": "Should we hire a sales team?", "company_stage": "seed"}, "stage"},
		{"churn above one", map[string]interface{}{"question": "Should we hire a sales team?", "churn_rate": 1.5}, "churn_rate"},
		{"non numeric", map[string]interface{}{"question": "Should we hire a sales team?", "cac": "lots"}, "cac"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, tool.Handle, tt.args)
			if !result.IsError {
				t.Fatalf("expected error result, got %s", getResultText(result))
			}
			if !strings.Contains(getResultText(result), tt.want) {
				t.Fatalf("error %q should mention %q", getResultText(result), tt.want)
			}
		})
	}
}

func TestValidateTool(t *testing.T) {
	eng, _ := newTestDeps(t)
	tool := NewValidateTool(eng)

	result := call(t, tool.Handle, map[string]interface{}{
		"decision":        "EXECUTE",
		"diagnosis":       "Healthy fundamentals",
		"impact":          4.0,
		"risk":            2.0,
		"urgency":         3.0,
		"company_stage":   "scale",
		"revenue_monthly": 400000.0,
		"churn_rate":      0.02,
		"cac":             100.0,
		"ltv":             500.0,
		"gross_margin":    0.75,
	})
	var v decision.Validation
	if err := json.Unmarshal([]byte(getResultText(result)), &v); err != nil {
		t.Fatalf("decode validation: %v (%s)", err, getResultText(result))
	}
	if v.Verdict != decision.VerdictConfirm || len(v.AdditionalRisks) != 0 {
		t.Fatalf("unexpected validation %+v", v)
	}

	bad := call(t, tool.Handle, map[string]interface{}{"decision": "MAYBE", "impact": 3.0, "risk": 3.0, "urgency": 3.0})
	if !bad.IsError {
		t.Fatalf("expected error for unknown decision")
	}
}

func TestScoreTool(t *testing.T) {
	tool := NewScoreTool()

	result := call(t, tool.Handle, map[string]interface{}{"impact": 5.0, "risk": 5.0, "urgency": 2.0})
	var got scoreResult
	if err := json.Unmarshal([]byte(getResultText(result)), &got); err != nil {
		t.Fatalf("decode score: %v", err)
	}
	if got.Score.Value() != 2 || got.Decision != decision.ActionPause || got.Formula != decision.Formula {
		t.Fatalf("unexpected score %+v", got)
	}

	for _, args := range []map[string]interface{}{
		{"impact": 0.0, "risk": 3.0, "urgency": 3.0},
		{"impact": 3.0, "risk": 6.0, "urgency": 3.0},
		{"impact": 2.5, "risk": 3.0, "urgency": 3.0},
		{"risk": 3.0, "urgency": 3.0},
	} {
		if res := call(t, tool.Handle, args); !res.IsError {
			t.Fatalf("args %v: expected error, got %s", args, getResultText(res))
		}
	}
}

func TestNamespacesTool(t *testing.T) {
	_, kb := newTestDeps(t)
	tool := NewNamespacesTool(kb)

	var list struct {
		Namespaces []namespaceView      `json:"namespaces"`
		Principles []knowledge.Principle `json:"principles"`
	}
	if err := json.Unmarshal([]byte(getResultText(call(t, tool.Handle, nil))), &list); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(list.Namespaces) != 6 || len(list.Principles) != 5 {
		t.Fatalf("namespaces = %d principles = %d", len(list.Namespaces), len(list.Principles))
	}

	var one namespaceView
	if err := json.Unmarshal([]byte(getResultText(call(t, tool.Handle, map[string]interface{}{"namespace": "growth_capital"}))), &one); err != nil {
		t.Fatalf("decode namespace: %v", err)
	}
	if one.Namespace != "growth_capital" || len(one.Items) != 4 {
		t.Fatalf("unexpected namespace %+v", one)
	}

	if res := call(t, tool.Handle, map[string]interface{}{"namespace": "astrology"}); !res.IsError {
		t.Fatal("expected error for unknown namespace")
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	eng, kb := newTestDeps(t)
	s := NewServer(eng, kb)
	if s == nil {
		t.Fatal("nil server")
	}
}
