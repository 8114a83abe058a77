package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"decision-eval/backend/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the decision tools to an MCP client over stdio",
	RunE: func(_ *cobra.Command, _ []string) error {
		eng, kb, err := buildEngine()
		if err != nil {
			return err
		}
		return server.ServeStdio(mcptools.NewServer(eng, kb))
	},
}
