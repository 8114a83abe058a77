package api

import (
	"time"

	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/store"
)

// EvaluateDecisionRequest is the payload for a single evaluation.
type EvaluateDecisionRequest struct {
	Question string           `json:"question"`
	Context  decision.Context `json:"context"`
}

// ScoreRequest carries caller-supplied dimensions, each in [1,5].
type ScoreRequest struct {
	Impact  int `json:"impact"`
	Risk    int `json:"risk"`
	Urgency int `json:"urgency"`
}

// ScoreResponse reports the composite for caller-supplied dimensions.
type ScoreResponse struct {
	Score    decision.Score  `json:"decision_score"`
	Decision decision.Action `json:"decision"`
	Formula  string          `json:"formula"`
}

// ValidateRequest asks for an independent cross-validation of an initial
// decision produced elsewhere.
type ValidateRequest struct {
	Decision  string           `json:"decision"`
	Diagnosis string           `json:"diagnosis"`
	Score     ScoreRequest     `json:"decision_score"`
	Context   decision.Context `json:"context"`
}

// DecisionDTO is the API representation for an evaluated decision.
type DecisionDTO struct {
	ID       string           `json:"id,omitempty"`
	BatchID  *uint            `json:"batch_id,omitempty"`
	RowIndex int              `json:"row_index,omitempty"`
	Question string           `json:"question"`
	Context  decision.Context `json:"context"`
	decision.Result
	Cached           bool      `json:"cached,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// DecisionsResponse holds decision items and totals.
type DecisionsResponse struct {
	Items []DecisionDTO `json:"items"`
	Total int64         `json:"total"`
}

// AuditDTO is one audit trail entry.
type AuditDTO struct {
	Action     string    `json:"action"`
	RemoteAddr string    `json:"remote_addr"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

// UploadResponse reports batch statistics after processing a CSV upload.
type UploadResponse struct {
	BatchID     uint   `json:"batch_id"`
	BatchName   string `json:"batch_name"`
	Owner       string `json:"owner"`
	RowCount    int    `json:"row_count"`
	SkippedRows int    `json:"skipped_rows"`
	Processed   int    `json:"processed_questions"`
}

// EvaluateBatchRequest controls a batch evaluation run.
type EvaluateBatchRequest struct {
	BatchID uint `json:"batch_id"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Resume  bool `json:"resume"`
	Force   bool `json:"force"`
}

// StartEvaluationResponse describes the asynchronous evaluation kickoff payload.
type StartEvaluationResponse struct {
	JobID     string    `json:"job_id"`
	BatchID   uint      `json:"batch_id"`
	RequestID uint      `json:"request_id"`
	Total     int64     `json:"total"`
	StartedAt time.Time `json:"started_at"`
}

// BatchDTO represents metadata for an uploaded CSV dataset.
type BatchDTO struct {
	ID                 uint       `json:"id"`
	Name               string     `json:"name"`
	Owner              string     `json:"owner"`
	OriginalFilename   string     `json:"original_filename"`
	RowCount           int        `json:"row_count"`
	SkippedRows        int        `json:"skipped_rows"`
	ProcessedQuestions int        `json:"processed_questions"`
	CreatedAt          time.Time  `json:"created_at"`
	LastEvaluatedAt    *time.Time `json:"last_evaluated_at"`
}

// BatchesResponse is the paginated response for CSV batches.
type BatchesResponse struct {
	Items []BatchDTO `json:"items"`
	Total int64      `json:"total"`
}

// BatchRequestDTO represents evaluation request tracking metadata.
type BatchRequestDTO struct {
	ID         uint       `json:"id"`
	BatchID    uint       `json:"batch_id"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	JobID      string     `json:"job_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// EvaluateStatusResponse describes the state of the active evaluation job.
type EvaluateStatusResponse struct {
	Running      bool         `json:"running"`
	JobID        string       `json:"job_id"`
	BatchID      uint         `json:"batch_id"`
	RequestID    uint         `json:"request_id"`
	State        string       `json:"state"`
	Message      string       `json:"message"`
	Processed    int          `json:"processed"`
	Total        int64        `json:"total"`
	LastDecision *DecisionDTO `json:"last_decision,omitempty"`
}

// FromModel converts a store.DecisionRecord into the DTO representation.
func FromModel(r store.DecisionRecord) DecisionDTO {
	return DecisionDTO{
		ID:               r.ID,
		BatchID:          r.BatchID,
		RowIndex:         r.RowIndex,
		Question:         r.Question,
		Context:          r.Context(),
		Result:           r.Result(),
		ProcessingTimeMs: r.ProcessingTimeMs,
		CreatedAt:        r.CreatedAt,
	}
}

// BatchFromModel converts a store.QuestionBatch into a DTO.
func BatchFromModel(b store.QuestionBatch) BatchDTO {
	return BatchDTO{
		ID:                 b.ID,
		Name:               b.Name,
		Owner:              b.Owner,
		OriginalFilename:   b.OriginalFilename,
		RowCount:           b.RowCount,
		SkippedRows:        b.SkippedRows,
		ProcessedQuestions: b.ProcessedQuestions,
		CreatedAt:          b.CreatedAt,
		LastEvaluatedAt:    b.LastEvaluatedAt,
	}
}

// BatchRequestFromModel converts a store.BatchRequest into a DTO.
func BatchRequestFromModel(r store.BatchRequest) BatchRequestDTO {
	return BatchRequestDTO{
		ID:         r.ID,
		BatchID:    r.BatchID,
		Type:       r.Type,
		Status:     r.Status,
		JobID:      r.JobID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func auditFromModel(a store.AuditLog) AuditDTO {
	return AuditDTO{
		Action:     a.Action,
		RemoteAddr: a.RemoteAddr,
		Details:    a.Details,
		CreatedAt:  a.CreatedAt,
	}
}
