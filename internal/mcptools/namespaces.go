package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"decision-eval/backend/internal/knowledge"
)

// NamespacesTool handles the knowledge_namespaces MCP tool.
type NamespacesTool struct {
	kb *knowledge.StaticStore
}

func NewNamespacesTool(kb *knowledge.StaticStore) *NamespacesTool {
	return &NamespacesTool{kb: kb}
}

type namespaceView struct {
	knowledge.Summary
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Items       []knowledge.Item `json:"items,omitempty"`
}

// Definition returns the MCP tool definition for registration.
func (t *NamespacesTool) Definition() mcp.Tool {
	return mcp.NewTool("knowledge_namespaces",
		mcp.WithDescription("List the strategic knowledge namespaces, or show the items of one "+
			"namespace when 'namespace' is given. Principles are included in the listing."),
		mcp.WithString("namespace",
			mcp.Description("Namespace id, e.g. growth_capital."),
		),
	)
}

// Handle processes the knowledge_namespaces tool call.
func (t *NamespacesTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if id := req.GetString("namespace", ""); id != "" {
		ns, ok := t.kb.Namespace(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown namespace %q", id)), nil
		}
		view := t.view(ns)
		view.Items = t.kb.Get(ns.ID)
		return jsonResult(view)
	}

	views := make([]namespaceView, 0, len(t.kb.Namespaces()))
	for _, ns := range t.kb.Catalogue() {
		views = append(views, t.view(ns))
	}
	return jsonResult(map[string]any{
		"namespaces": views,
		"principles": t.kb.Principles(),
	})
}

func (t *NamespacesTool) view(ns knowledge.Namespace) namespaceView {
	return namespaceView{Summary: t.kb.Summary(ns.ID), Name: ns.Name, Description: ns.Description}
}
