package ai

import (
	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/knowledge"
)

// DiagnosisInput is what a diagnosis backend receives for one question.
type DiagnosisInput struct {
	Question  string
	Category  decision.Category
	Context   decision.Context
	Knowledge []knowledge.Snippet
	// Baseline is the deterministic template diagnosis, offered to generative
	// backends as a starting point.
	Baseline string
}

// diagnosisReply is the JSON object the model must return.
type diagnosisReply struct {
	Diagnosis string `json:"diagnosis"`
}
