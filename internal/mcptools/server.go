// Package mcptools exposes the decision engine as MCP tools over stdio.
package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"decision-eval/backend/internal/engine"
	"decision-eval/backend/internal/knowledge"
)

// Version is set at build time via ldflags.
var Version = "dev"

// NewServer registers every decision tool on a fresh MCP server.
func NewServer(eng *engine.Engine, kb *knowledge.StaticStore) *server.MCPServer {
	s := server.NewMCPServer(
		"decision-eval",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	evaluate := NewEvaluateTool(eng)
	s.AddTool(evaluate.Definition(), evaluate.Handle)

	validate := NewValidateTool(eng)
	s.AddTool(validate.Definition(), validate.Handle)

	score := NewScoreTool()
	s.AddTool(score.Definition(), score.Handle)

	namespaces := NewNamespacesTool(kb)
	s.AddTool(namespaces.Definition(), namespaces.Handle)

	return s
}

const instructions = "Strategic decision evaluation. Use decision_evaluate for a full " +
	"diagnosis, score and recommendation; decision_validate to challenge an existing " +
	"decision; decision_score for the raw composite; knowledge_namespaces to browse " +
	"the frameworks behind the diagnosis."
