// ABOUTME: MCP tool definitions and registration for the document chat server
// ABOUTME: Defines JSON schemas for the 4 document tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/docchat/internal/service"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, svc *service.Service) *Handlers {
	handlers := &Handlers{svc: svc}

	// 1. upload_document - Ingest a document into a new collection
	server.AddTool(mcp.Tool{
		Name:        "upload_document",
		Description: "Upload a document (txt, markdown, PDF) from the local filesystem and index it into a new searchable collection. Returns the collection id to use for chat.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the document file to upload",
				},
				"chunk_size": map[string]interface{}{
					"type":        "number",
					"description": "Maximum chunk size in characters (default: 500)",
				},
			},
			Required: []string{"file_path"},
		},
	}, handlers.UploadDocument)

	// 2. chat_with_document - Ask a question against an ingested document
	server.AddTool(mcp.Tool{
		Name:        "chat_with_document",
		Description: "Ask a natural-language question about a previously uploaded document. The answer is generated only from the document's content.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection_id": map[string]interface{}{
					"type":        "string",
					"description": "Collection id returned by upload_document",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Question to ask about the document",
				},
				"max_chunks": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of document chunks to retrieve (default: 5, max: 20)",
				},
				"model": map[string]interface{}{
					"type":        "string",
					"description": "Generation model to use (default: gpt-4o)",
				},
				"temperature": map[string]interface{}{
					"type":        "number",
					"description": "Sampling temperature between 0 and 2 (default: 0.7)",
				},
				"max_tokens": map[string]interface{}{
					"type":        "number",
					"description": "Maximum answer length in tokens (default: 10000)",
				},
			},
			Required: []string{"collection_id", "query"},
		},
	}, handlers.ChatWithDocument)

	// 3. list_collections - List all uploaded documents
	server.AddTool(mcp.Tool{
		Name:        "list_collections",
		Description: "List all uploaded document collections with their metadata.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListCollections)

	// 4. delete_collection - Remove a document collection
	server.AddTool(mcp.Tool{
		Name:        "delete_collection",
		Description: "Delete a document collection remotely and locally. The collection id becomes invalid immediately.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection_id": map[string]interface{}{
					"type":        "string",
					"description": "Collection id to delete",
				},
			},
			Required: []string{"collection_id"},
		},
	}, handlers.DeleteCollection)

	return handlers
}
