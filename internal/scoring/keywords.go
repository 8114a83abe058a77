package scoring

import "decision-eval/backend/internal/match"

// Keyword lists carry the Portuguese vocabulary the engine was tuned on plus
// English equivalents. Only the first hit in each list counts.
var (
	highImpactKeywords = match.NewKeywordSet(
		"receita", "margem", "ltv", "cac", "churn", "valuation",
		"revenue", "margin",
	)
	vanityKeywords = match.NewKeywordSet(
		"likes", "impressões", "followers", "awareness",
		"impressions", "seguidores",
	)
	urgentKeywords = match.NewKeywordSet(
		"agora", "urgente", "imediato", "janela", "oportunidade",
		"now", "urgent", "immediate", "window", "opportunity",
	)
	deferKeywords = match.NewKeywordSet(
		"futuro", "planejar", "avaliar", "considerar",
		"future", "plan", "evaluate", "consider",
	)
)
