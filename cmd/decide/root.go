// decide evaluates strategic business decisions from the command line and
// serves the same engine to MCP clients over stdio.
//
// Usage:
//
//	decide evaluate -q "<question>" [--stage=traction] [--cac=100 --ltv=200] [-o markdown]
//	decide validate --decision=EXECUTE --impact=4 --risk=2 --urgency=3 [metric flags]
//	decide score --impact=5 --risk=5 --urgency=2
//	decide namespaces [namespace-id]
//	decide mcp
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"decision-eval/backend/internal/ai"
	"decision-eval/backend/internal/engine"
	"decision-eval/backend/internal/knowledge"
	"decision-eval/backend/internal/mcptools"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	knowledgePath  string
	rulesPath      string
	retrievalLimit int
	noAI           bool
	model          string
	verbose        bool
}

var rootCmd = &cobra.Command{
	Use:   "decide",
	Short: "Strategic decision evaluation",
	Long: "decide diagnoses a business question against its metrics, scores it on\n" +
		"impact, risk and urgency, and recommends EXECUTE, ADJUST, PAUSE or BLOCK.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logrus.SetOutput(cmd.ErrOrStderr())
		if rootFlags.verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.knowledgePath, "knowledge", os.Getenv("KNOWLEDGE_PATH"), "Knowledge catalogue YAML (embedded catalogue when empty)")
	f.StringVar(&rootFlags.rulesPath, "rules", os.Getenv("RULES_PATH"), "Custom hidden-risk rules YAML")
	f.IntVar(&rootFlags.retrievalLimit, "retrieval-limit", 3, "Knowledge items retrieved per namespace")
	f.BoolVar(&rootFlags.noAI, "no-ai", false, "Use the template diagnosis even when OPENAI_API_KEY is set")
	f.StringVar(&rootFlags.model, "model", os.Getenv("OPENAI_MODEL"), "OpenAI model for the diagnosis")
	f.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(namespacesCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.Version = version
	mcptools.Version = version
}

func buildEngine() (*engine.Engine, *knowledge.StaticStore, error) {
	eng, kb, err := engine.Build(engine.Setup{
		KnowledgePath:  rootFlags.knowledgePath,
		RulesPath:      rootFlags.rulesPath,
		RetrievalLimit: rootFlags.retrievalLimit,
		AI: ai.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   rootFlags.model,
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		DisableAI: rootFlags.noAI,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	return eng, kb, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
