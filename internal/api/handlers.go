// ABOUTME: HTTP handlers for upload, chat, and collection management
// ABOUTME: Maps the shared error taxonomy onto status codes with {detail} bodies
package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/models"
)

type chatRequest struct {
	CollectionID   string   `json:"collection_id"`
	Query          string   `json:"query"`
	MaxChunks      int      `json:"max_chunks"`
	LLMModel       string   `json:"llm_model"`
	LLMTemperature *float64 `json:"llm_temperature"`
	LLMMaxTokens   int      `json:"llm_max_tokens"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeDetail(c, http.StatusBadRequest, "a file form field is required")
		return
	}

	chunkSize := 0
	if raw := c.PostForm("chunk_size"); raw != "" {
		chunkSize, err = strconv.Atoi(raw)
		if err != nil {
			writeDetail(c, http.StatusBadRequest, fmt.Sprintf("chunk_size must be an integer, got %q", raw))
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeDetail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	// Read one byte past the cap so extraction can reject oversized uploads
	// without the handler buffering an unbounded body.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		writeDetail(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := s.svc.Ingest(c.Request.Context(), fileHeader.Filename, data, chunkSize)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeDetail(c, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if req.CollectionID == "" {
		writeDetail(c, http.StatusBadRequest, "collection_id is required")
		return
	}

	// Temperature 0 is meaningful, so absence is detected here rather than
	// by a zero check downstream.
	temperature := models.DefaultTemperature
	if req.LLMTemperature != nil {
		temperature = *req.LLMTemperature
	}
	params := models.GenerationParams{
		Model:       req.LLMModel,
		Temperature: temperature,
		MaxTokens:   req.LLMMaxTokens,
	}

	result, err := s.svc.Chat(c.Request.Context(), req.CollectionID, req.Query, req.MaxChunks, params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListCollections(c *gin.Context) {
	cols, err := s.svc.Collections()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"collections": cols,
		"count":       len(cols),
	})
}

func (s *Server) handleDeleteCollection(c *gin.Context) {
	if err := s.svc.Delete(c.Request.Context(), c.Param("collection_id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps taxonomy errors onto status codes. Messages are rendered
// from the error types; raw remote payloads never reach clients.
func writeError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		writeDetail(c, http.StatusBadRequest, err.Error())
	case errs.IsNotFound(err):
		writeDetail(c, http.StatusNotFound, err.Error())
	case errs.IsAuth(err):
		writeDetail(c, http.StatusBadGateway, "authentication with an upstream service failed")
	case errs.IsRemote(err):
		writeDetail(c, http.StatusBadGateway, "an upstream service rejected the request")
	case errs.IsUnavailable(err):
		writeDetail(c, http.StatusServiceUnavailable, "an upstream service is unavailable, try again later")
	default:
		writeDetail(c, http.StatusInternalServerError, "internal server error")
	}
}

func writeDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
