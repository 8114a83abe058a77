package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"

	"decision-eval/backend/internal/decision"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "decisions.db"), true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr(v float64) *float64 { return &v }

func sampleResult() decision.Result {
	return decision.Result{
		Diagnosis:          "Healthy fundamentals.",
		KeyMetrics:         []string{"CAC", "LTV"},
		HiddenRisks:        []string{"Churn above the healthy range"},
		StrategicPrinciple: "Capital efficiency",
		Score:              decision.NewScore(5, 5, 2),
		Decision:           decision.ActionPause,
		NextStep:           "Pause and revisit.",
		Verdict:            decision.VerdictAdjust,
		Category:           decision.CategoryGrowth,
	}
}

func TestSaveAndGetDecision(t *testing.T) {
	db := openTestDB(t)

	bc := decision.Context{Stage: decision.StageScale, CAC: ptr(200), LTV: ptr(500)}
	rec := &DecisionRecord{Question: "Should we raise a bridge round now?"}
	rec.SetContext(bc)
	rec.SetResult(sampleResult())
	if err := db.SaveDecision(rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := db.GetDecision(rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(sampleResult().HiddenRisks, got.Result().HiddenRisks); diff != "" {
		t.Fatalf("hidden risks mismatch (-want +got):\n%s", diff)
	}
	if got.Result().Score.Value() != 2 {
		t.Fatalf("score = %v, want 2", got.Result().Score.Value())
	}
	if got.Context().Stage != decision.StageScale || *got.Context().LTV != 500 {
		t.Fatalf("context not restored: %+v", got.Context())
	}
}

func TestGetDecisionNotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetDecision("missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestListDecisionsFilters(t *testing.T) {
	db := openTestDB(t)
	for i, action := range []decision.Action{decision.ActionPause, decision.ActionExecute, decision.ActionPause} {
		res := sampleResult()
		res.Decision = action
		rec := &DecisionRecord{Question: "question"}
		rec.RowIndex = i
		rec.SetResult(res)
		if err := db.SaveDecision(rec); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	rows, total, err := db.ListDecisions(DecisionQuery{Decision: "pause", Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(rows) != 1 {
		t.Fatalf("total=%d len=%d, want 2 and 1", total, len(rows))
	}
	if rows[0].Decision != "PAUSE" {
		t.Fatalf("decision = %s", rows[0].Decision)
	}
}

func TestSaveDecisionUpsertsBatchRow(t *testing.T) {
	db := openTestDB(t)
	batch, err := db.CreateQuestionBatch("q3", "ops", "q3.csv")
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	for _, action := range []decision.Action{decision.ActionPause, decision.ActionExecute} {
		res := sampleResult()
		res.Decision = action
		rec := &DecisionRecord{BatchID: &batch.ID, RowIndex: 1, Question: "q"}
		rec.SetResult(res)
		if err := db.SaveDecision(rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	count, err := db.CountBatchResults(batch.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	rows, _, err := db.ListDecisions(DecisionQuery{BatchID: batch.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if rows[0].Decision != "EXECUTE" {
		t.Fatalf("decision = %s, want EXECUTE", rows[0].Decision)
	}
}

func TestBatchQuestionsLifecycle(t *testing.T) {
	db := openTestDB(t)
	batch, err := db.CreateQuestionBatch("q3", "", "q3.csv")
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	rows := []BatchQuestion{{RowIndex: 1, Question: "first"}, {RowIndex: 2, Question: "second"}}
	rows[1].SetContext(decision.Context{ChurnRate: ptr(0.08)})
	if err := db.ReplaceBatchQuestions(batch.ID, rows); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := db.ReplaceBatchQuestions(batch.ID, rows[1:]); err != nil {
		t.Fatalf("replace again: %v", err)
	}

	n, err := db.CountBatchQuestions(batch.ID)
	if err != nil || n != 1 {
		t.Fatalf("count = %d err = %v, want 1", n, err)
	}
	got, err := db.ListBatchQuestions(batch.ID, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].Question != "second" || *got[0].Context().ChurnRate != 0.08 {
		t.Fatalf("unexpected row: %+v", got[0])
	}

	rec := &DecisionRecord{BatchID: &batch.ID, RowIndex: 2}
	rec.SetResult(sampleResult())
	if err := db.SaveDecision(rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.UpdateBatchProcessingInfo(batch.ID); err != nil {
		t.Fatalf("processing info: %v", err)
	}
	refreshed, err := db.GetQuestionBatch(batch.ID)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if refreshed.ProcessedQuestions != 1 || refreshed.LastEvaluatedAt == nil {
		t.Fatalf("unexpected batch stats: %+v", refreshed)
	}
	done, err := db.EvaluatedRowsForBatch(batch.ID)
	if err != nil {
		t.Fatalf("evaluated rows: %v", err)
	}
	if diff := cmp.Diff([]int{2}, done); diff != "" {
		t.Fatalf("evaluated rows (-want +got):\n%s", diff)
	}
}

func TestBatchRequestFinishedAt(t *testing.T) {
	db := openTestDB(t)
	req, err := db.CreateBatchRequest(1, "evaluate", "running", "job-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.UpdateBatchRequest(req.ID, "cancelled"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := db.GetBatchRequest(req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "cancelled" || got.FinishedAt == nil {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestAuditTrail(t *testing.T) {
	db := openTestDB(t)
	for _, action := range []string{"decision.evaluate", "decision.report"} {
		if err := db.RecordAudit(&AuditLog{Action: action, ResourceID: "abc"}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	rows, err := db.ListAudit("abc")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var actions []string
	for _, row := range rows {
		actions = append(actions, row.Action)
	}
	if diff := cmp.Diff([]string{"decision.evaluate", "decision.report"}, actions); diff != "" {
		t.Fatalf("audit actions (-want +got):\n%s", diff)
	}
}
