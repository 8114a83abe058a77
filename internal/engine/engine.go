package engine

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"decision-eval/backend/internal/ai"
	"decision-eval/backend/internal/decision"
	"decision-eval/backend/internal/knowledge"
	"decision-eval/backend/internal/match"
	"decision-eval/backend/internal/rules"
	"decision-eval/backend/internal/scoring"
	"decision-eval/backend/internal/util"
	"decision-eval/backend/internal/validation"
)

const defaultRetrievalLimit = 3

// Config wires the optional collaborators of the engine.
type Config struct {
	Retriever *knowledge.Retriever
	// Diagnoser replaces the template diagnosis when enabled. Failures fall
	// back to the template.
	Diagnoser      ai.Diagnoser
	Rules          *rules.Set
	RetrievalLimit int
}

// Engine runs the evaluation pipeline. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	retriever *knowledge.Retriever
	diagnoser ai.Diagnoser
	rules     *rules.Set
	limit     int
}

func New(cfg Config) *Engine {
	limit := cfg.RetrievalLimit
	if limit <= 0 {
		limit = defaultRetrievalLimit
	}
	return &Engine{
		retriever: cfg.Retriever,
		diagnoser: cfg.Diagnoser,
		rules:     cfg.Rules,
		limit:     limit,
	}
}

// AIEnabled reports whether a generative diagnoser is configured.
func (e *Engine) AIEnabled() bool {
	return e.diagnoser != nil && e.diagnoser.Enabled()
}

// Evaluate runs the full pipeline for one question.
func (e *Engine) Evaluate(ctx context.Context, question string, bc decision.Context) decision.Result {
	logrus.WithField("question", truncate(question, 50)).Info("evaluating decision")
	timer := util.StartTimer()

	profile := match.NormalizeQuestion(question)
	category := Classify(profile, bc)
	logrus.WithField("category", category.String()).Debug("decision classified")

	namespaces := Namespaces(category)
	snippets := e.retriever.RetrieveMultiNamespace(ctx, question, namespaces, e.limit)
	timer.Mark("retrieve")

	diagnosis := e.diagnose(ctx, question, category, bc, snippets)
	timer.Mark("diagnose")

	extra := e.rules.Evaluate(rules.Facts{Question: question, Context: bc, Category: category})
	hidden := HiddenRisks(profile, bc, extra)

	score := scoring.Calculate(scoring.Input{
		Question:    profile,
		Context:     bc,
		Category:    category,
		HiddenRisks: len(hidden),
	})
	action := scoring.MapDecision(score.Value())
	timer.Mark("score")

	verdict := e.CrossValidate(action, diagnosis, score, bc)
	timer.Mark("validate")

	result := decision.Result{
		Diagnosis:          diagnosis,
		KeyMetrics:         KeyMetrics(category),
		HiddenRisks:        hidden,
		StrategicPrinciple: Principle(category),
		Score:              score,
		Decision:           action,
		NextStep:           NextStep(action, verdict.Verdict),
		Verdict:            verdict.Verdict,
		Category:           category,
	}
	logrus.WithFields(timer.Fields()).WithFields(logrus.Fields{
		"decision": action.String(),
		"score":    score.Value(),
		"verdict":  verdict.Verdict.String(),
	}).Info("decision evaluation complete")
	return result
}

// CrossValidate runs the validator alone, for callers that already hold an
// initial decision.
func (e *Engine) CrossValidate(action decision.Action, diagnosis string, score decision.Score, bc decision.Context) decision.Validation {
	return validation.Validate(validation.Input{
		Action:    action,
		Diagnosis: diagnosis,
		Score:     score,
		Context:   bc,
	})
}

func (e *Engine) diagnose(ctx context.Context, question string, category decision.Category, bc decision.Context, snippets []knowledge.Snippet) string {
	baseline := TemplateDiagnosis(bc)
	if !e.AIEnabled() {
		return baseline
	}
	text, err := e.diagnoser.Diagnose(ctx, ai.DiagnosisInput{
		Question:  question,
		Category:  category,
		Context:   bc,
		Knowledge: snippets,
		Baseline:  baseline,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		logrus.WithError(err).Warn("ai diagnoser unavailable; falling back to template diagnosis")
		return baseline
	}
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
