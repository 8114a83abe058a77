package decision

// Result is the aggregate produced by one evaluation.
type Result struct {
	Diagnosis          string   `json:"diagnosis"`
	KeyMetrics         []string `json:"key_metrics"`
	HiddenRisks        []string `json:"hidden_risks"`
	StrategicPrinciple string   `json:"strategic_principle"`
	Score              Score    `json:"decision_score"`
	Decision           Action   `json:"decision"`
	NextStep           string   `json:"next_step"`
	Verdict            Verdict  `json:"validation_verdict"`
	Category           Category `json:"decision_type"`
}

// Validation is the cross-validator's response.
type Validation struct {
	Verdict         Verdict  `json:"validation"`
	AdditionalRisks []string `json:"additional_risks"`
	FinalVerdict    string   `json:"final_verdict"`
	Adjustments     []string `json:"adjustments,omitempty"`
}
