package engine

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"decision-eval/backend/internal/ai"
	"decision-eval/backend/internal/knowledge"
	"decision-eval/backend/internal/rules"
)

// Setup names where the engine's collaborators come from.
type Setup struct {
	KnowledgePath  string
	RulesPath      string
	RetrievalLimit int
	AI             ai.Config
	DisableAI      bool
	Retry          ai.RetryPolicy
}

// Build loads the knowledge catalogue and rules and wires the optional AI
// diagnoser. A missing API key leaves the template diagnosis in charge.
func Build(s Setup) (*Engine, *knowledge.StaticStore, error) {
	cat, err := knowledge.LoadCatalogue(s.KnowledgePath)
	if err != nil {
		return nil, nil, err
	}
	kb := knowledge.NewStaticStore(cat)

	ruleSet, err := rules.Load(s.RulesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("custom rules: %w", err)
	}

	var diagnoser ai.Diagnoser
	switch client, err := ai.NewClient(s.AI); {
	case s.DisableAI:
		logrus.Info("AI diagnoser disabled via configuration")
	case errors.Is(err, ai.ErrDisabled):
		logrus.Info("AI diagnoser disabled - no API key configured")
	case err != nil:
		return nil, nil, fmt.Errorf("ai client: %w", err)
	default:
		diagnoser = ai.WithFallback(ai.WithRetry(client, s.Retry), TemplateDiagnoser{})
	}

	logrus.WithFields(logrus.Fields{
		"namespaces":  len(kb.Namespaces()),
		"fingerprint": kb.Fingerprint(),
		"rules":       ruleSet.Len(),
		"rules_fp":    ruleSet.Fingerprint(),
		"ai":          diagnoser != nil,
	}).Info("decision engine ready")

	eng := New(Config{
		Retriever:      knowledge.NewRetriever(kb),
		Diagnoser:      diagnoser,
		Rules:          ruleSet,
		RetrievalLimit: s.RetrievalLimit,
	})
	return eng, kb, nil
}

// RuleCount is the number of custom hidden-risk rules loaded.
func (e *Engine) RuleCount() int {
	return e.rules.Len()
}

// RulesFingerprint identifies the loaded custom rules; empty without rules.
func (e *Engine) RulesFingerprint() string {
	return e.rules.Fingerprint()
}

// RetrievalLimit is the per-namespace knowledge cap.
func (e *Engine) RetrievalLimit() int {
	return e.limit
}
