package store

import (
	"encoding/json"
	"strings"
	"time"

	"decision-eval/backend/internal/decision"
)

// DecisionRecord is a persisted evaluation. Single evaluations have a nil
// BatchID; batch rows are keyed by (BatchID, RowIndex).
type DecisionRecord struct {
	ID                 string `gorm:"primaryKey;size:36"`
	BatchID            *uint  `gorm:"index"`
	RowIndex           int
	Question           string `gorm:"type:text"`
	Category           string `gorm:"size:16;index"`
	Stage              string `gorm:"size:16"`
	ContextJSON        string `gorm:"type:text"`
	Diagnosis          string `gorm:"type:text"`
	KeyMetricsJSON     string `gorm:"type:text"`
	HiddenRisksJSON    string `gorm:"type:text"`
	StrategicPrinciple string `gorm:"size:255"`
	Impact             int
	Risk               int
	Urgency            int
	Score              float64 `gorm:"index"`
	Interpretation     string  `gorm:"size:32"`
	Decision           string  `gorm:"size:16;index"`
	Verdict            string  `gorm:"size:16;index"`
	NextStep           string  `gorm:"type:text"`
	ProcessingTimeMs   int64
	CreatedAt          time.Time `gorm:"autoCreateTime"`
}

// SetResult copies an evaluation result onto the record.
func (r *DecisionRecord) SetResult(res decision.Result) {
	r.Category = res.Category.String()
	r.Diagnosis = res.Diagnosis
	r.KeyMetricsJSON = encodeStrings(res.KeyMetrics)
	r.HiddenRisksJSON = encodeStrings(res.HiddenRisks)
	r.StrategicPrinciple = res.StrategicPrinciple
	r.Impact = res.Score.Impact()
	r.Risk = res.Score.Risk()
	r.Urgency = res.Score.Urgency()
	r.Score = res.Score.Value()
	r.Interpretation = string(res.Score.Interpretation())
	r.Decision = res.Decision.String()
	r.Verdict = res.Verdict.String()
	r.NextStep = res.NextStep
}

// Result rebuilds the evaluation result. The score is recomputed from the
// stored dimensions.
func (r *DecisionRecord) Result() decision.Result {
	category, _ := decision.ParseCategory(r.Category)
	action, _ := decision.ParseAction(r.Decision)
	verdict, _ := decision.ParseVerdict(r.Verdict)
	return decision.Result{
		Diagnosis:          r.Diagnosis,
		KeyMetrics:         decodeStrings(r.KeyMetricsJSON),
		HiddenRisks:        decodeStrings(r.HiddenRisksJSON),
		StrategicPrinciple: r.StrategicPrinciple,
		Score:              decision.NewScore(r.Impact, r.Risk, r.Urgency),
		Decision:           action,
		NextStep:           r.NextStep,
		Verdict:            verdict,
		Category:           category,
	}
}

// SetContext stores the business context as JSON.
func (r *DecisionRecord) SetContext(bc decision.Context) {
	r.Stage = bc.Stage.String()
	payload, _ := json.Marshal(bc)
	r.ContextJSON = string(payload)
}

// Context decodes the stored business context.
func (r *DecisionRecord) Context() decision.Context {
	var bc decision.Context
	if strings.TrimSpace(r.ContextJSON) == "" {
		return bc
	}
	_ = json.Unmarshal([]byte(r.ContextJSON), &bc)
	return bc
}

// AuditLog is an append-only trail of actions taken through the API.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	Action     string `gorm:"size:64;index"`
	ResourceID string `gorm:"size:64;index"`
	RemoteAddr string `gorm:"size:64"`
	Details    string `gorm:"type:text"`
	CreatedAt  time.Time
}

// QuestionBatch represents an uploaded CSV of questions.
type QuestionBatch struct {
	ID                 uint   `gorm:"primaryKey"`
	Name               string `gorm:"size:128;index"`
	Owner              string `gorm:"size:128;index"`
	OriginalFilename   string `gorm:"size:256"`
	RowCount           int
	SkippedRows        int
	ProcessedQuestions int
	LastEvaluatedAt    *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BatchQuestion is one row of an uploaded batch.
type BatchQuestion struct {
	ID          uint `gorm:"primaryKey"`
	BatchID     uint `gorm:"index"`
	RowIndex    int
	Question    string `gorm:"type:text"`
	ContextJSON string `gorm:"type:text"`
	CreatedAt   time.Time
}

// SetContext stores the row's business context as JSON.
func (q *BatchQuestion) SetContext(bc decision.Context) {
	payload, _ := json.Marshal(bc)
	q.ContextJSON = string(payload)
}

// Context decodes the row's business context.
func (q *BatchQuestion) Context() decision.Context {
	var bc decision.Context
	if strings.TrimSpace(q.ContextJSON) == "" {
		return bc
	}
	_ = json.Unmarshal([]byte(q.ContextJSON), &bc)
	return bc
}

// Batch request lifecycle. Terminal states stamp FinishedAt.
const (
	RequestRunning   = "running"
	RequestCompleted = "completed"
	RequestFailed    = "failed"
	RequestCancelled = "cancelled"
)

// RequestTerminal reports whether status ends a request.
func RequestTerminal(status string) bool {
	switch status {
	case RequestCompleted, RequestFailed, RequestCancelled:
		return true
	}
	return false
}

// BatchRequest tracks one evaluation job over a batch, first run or resume.
type BatchRequest struct {
	ID         uint   `gorm:"primaryKey"`
	BatchID    uint   `gorm:"index"`
	Type       string `gorm:"size:32"`
	Status     string `gorm:"size:32"`
	JobID      string `gorm:"size:64"`
	StartedAt  time.Time
	FinishedAt *time.Time
	CreatedAt  time.Time
}

func encodeStrings(items []string) string {
	if items == nil {
		items = []string{}
	}
	payload, _ := json.Marshal(items)
	return string(payload)
}

func decodeStrings(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
