package engine

import (
	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/match"
)

var categoryKeywords = map[decision.Category]match.KeywordSet{
	decision.CategoryGrowth:  match.NewKeywordSet("escalar", "crescer", "aquisição", "tráfego", "scale", "grow", "acquisition", "traffic"),
	decision.CategoryBudget:  match.NewKeywordSet("budget", "orçamento", "investir", "gastar", "invest", "spend"),
	decision.CategoryProduct: match.NewKeywordSet("produto", "feature", "lançar", "product", "launch"),
	decision.CategoryPricing: match.NewKeywordSet("preço", "pricing", "desconto", "price", "discount"),
	decision.CategoryMarket:  match.NewKeywordSet("mercado", "segmento", "expansão", "market", "segment", "expansion"),
}

// Classify returns the explicit category from the context when present,
// otherwise the first category in priority order whose keywords appear in
// the question, defaulting to growth.
func Classify(q match.QuestionProfile, bc decision.Context) decision.Category {
	if bc.Category != decision.CategoryUnset {
		return bc.Category
	}
	for _, cat := range decision.Categories {
		if categoryKeywords[cat].Matches(q) {
			return cat
		}
	}
	return decision.CategoryGrowth
}

var categoryNamespaces = map[decision.Category][]string{
	decision.CategoryGrowth:  {"growth_capital", "unit_economics", "funnel_economics"},
	decision.CategoryBudget:  {"growth_capital", "performance_revenue"},
	decision.CategoryProduct: {"behavioral_demand", "market_sizing"},
	decision.CategoryPricing: {"behavioral_demand", "unit_economics"},
	decision.CategoryMarket:  {"market_sizing", "growth_capital"},
}

// Namespaces lists the knowledge domains consulted for a category.
func Namespaces(cat decision.Category) []string {
	if ns, ok := categoryNamespaces[cat]; ok {
		return append([]string(nil), ns...)
	}
	return []string{"growth_capital"}
}
