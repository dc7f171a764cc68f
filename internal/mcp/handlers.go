// ABOUTME: MCP tool handler implementations for the document chat server
// ABOUTME: Thin argument parsing over the orchestration service
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/docchat/internal/models"
	"github.com/harper/docchat/internal/service"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	svc *service.Service
}

// UploadDocument handles the upload_document tool
func (h *Handlers) UploadDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError("file_path argument is required and must be a string"), nil
	}
	chunkSize := request.GetInt("chunk_size", 0)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read file: %v", err)), nil
	}

	result, err := h.svc.Ingest(ctx, filepath.Base(filePath), data, chunkSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("upload failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ChatWithDocument handles the chat_with_document tool
func (h *Handlers) ChatWithDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collectionID, err := request.RequireString("collection_id")
	if err != nil {
		return mcp.NewToolResultError("collection_id argument is required and must be a string"), nil
	}
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	maxChunks := request.GetInt("max_chunks", 0)
	params := models.GenerationParams{
		Model:       request.GetString("model", ""),
		Temperature: request.GetFloat("temperature", models.DefaultTemperature),
		MaxTokens:   request.GetInt("max_tokens", 0),
	}

	result, err := h.svc.Chat(ctx, collectionID, query, maxChunks, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat failed: %v", err)), nil
	}

	responseJSON, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ListCollections handles the list_collections tool
func (h *Handlers) ListCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cols, err := h.svc.Collections()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list collections: %v", err)), nil
	}

	collections := make([]map[string]interface{}, 0, len(cols))
	for _, col := range cols {
		collections = append(collections, map[string]interface{}{
			"id":            col.ID,
			"document_name": col.DocumentName,
			"chunk_count":   col.ChunkCount,
			"created_at":    col.CreatedAt.Format(time.RFC3339),
		})
	}

	response := map[string]interface{}{
		"collections": collections,
		"count":       len(collections),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// DeleteCollection handles the delete_collection tool
func (h *Handlers) DeleteCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collectionID, err := request.RequireString("collection_id")
	if err != nil {
		return mcp.NewToolResultError("collection_id argument is required and must be a string"), nil
	}

	if err := h.svc.Delete(ctx, collectionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"success":       true,
		"collection_id": collectionID,
	}
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
