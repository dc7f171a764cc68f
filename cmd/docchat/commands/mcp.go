// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents to upload and chat with documents via stdio
package commands

import (
	"log"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/docchat/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docchat as an MCP (Model Context Protocol) server over stdio,
exposing upload_document, chat_with_document, list_collections, and
delete_collection tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP host)
  docchat mcp

  # Configure in an MCP host's config file:
  # {
  #   "mcpServers": {
  #     "docchat": {
  #       "command": "docchat",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}
	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	svc, _, cleanup, err := buildService()
	if err != nil {
		return err
	}
	defer cleanup()

	server := mcpserver.NewMCPServer(
		"Document Chat",
		versionInfo.Version,
	)
	mcp.RegisterTools(server, svc)

	if !quiet {
		log.Println("docchat MCP server starting on stdio...")
	}
	return mcpserver.ServeStdio(server)
}
