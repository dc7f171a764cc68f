// ABOUTME: Orchestrates the ingestion and chat pipelines over the remote adapters
// ABOUTME: Owns validation, the registry gate, and all-or-nothing ingestion
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/harper/docchat/internal/chunker"
	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/extract"
	"github.com/harper/docchat/internal/models"
	"github.com/harper/docchat/internal/prompts"
	"github.com/harper/docchat/internal/registry"
)

// Retrieval bounds. The chunk count a chat request may ask for is capped so a
// single query cannot drag an entire document into the prompt.
const (
	DefaultMaxChunks = 5
	MinMaxChunks     = 1
	MaxMaxChunks     = 20
)

// GroundingStore is the remote vector store the service indexes into and
// searches against.
type GroundingStore interface {
	CreateCollection(ctx context.Context, documentName string, chunks []models.Chunk) (string, error)
	Search(ctx context.Context, collectionID, query string, maxChunks int) ([]models.RetrievedChunk, error)
	DeleteCollection(ctx context.Context, collectionID string) error
}

// Generator produces an answer from a fully assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, p models.GenerationParams) (string, error)
}

// Options carries the tunables the orchestrator needs from configuration.
type Options struct {
	DefaultChunkSize int
	MaxUploadBytes   int64
	AllowedModels    []string
}

// nowFunc is swapped in tests for deterministic timestamps.
var nowFunc = time.Now

// Service wires the pipelines together. Every transport (HTTP, MCP, CLI)
// calls through here; no transport talks to the adapters directly.
type Service struct {
	store     GroundingStore
	generator Generator
	registry  registry.Registry
	opts      Options
}

// New builds the orchestrator. Zero-value options fall back to the package
// defaults.
func New(store GroundingStore, generator Generator, reg registry.Registry, opts Options) *Service {
	if opts.DefaultChunkSize <= 0 {
		opts.DefaultChunkSize = chunker.DefaultChunkSize
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = extract.MaxUploadBytes
	}
	return &Service{store: store, generator: generator, registry: reg, opts: opts}
}

// Ingest runs the full ingestion pipeline: extract text, chunk it, create a
// remote collection with the chunks indexed, and register the collection
// locally. All-or-nothing: if local registration fails after the remote
// collection exists, the remote collection is deleted again so no orphaned
// state survives a failed upload.
func (s *Service) Ingest(ctx context.Context, fileName string, data []byte, chunkSize int) (models.UploadResult, error) {
	if chunkSize == 0 {
		chunkSize = s.opts.DefaultChunkSize
	}
	if chunkSize < 0 {
		return models.UploadResult{}, errs.Validation("chunk_size must be positive, got %d", chunkSize)
	}

	text, err := extract.Text(fileName, data, s.opts.MaxUploadBytes)
	if err != nil {
		return models.UploadResult{}, err
	}

	chunks, err := chunker.Split(text, chunkSize)
	if err != nil {
		return models.UploadResult{}, err
	}

	title := collectionTitle(fileName)
	collectionID, err := s.store.CreateCollection(ctx, title, chunks)
	if err != nil {
		return models.UploadResult{}, err
	}

	col := models.Collection{
		ID:           collectionID,
		DocumentName: fileName,
		ChunkCount:   len(chunks),
		CreatedAt:    nowFunc(),
	}
	if err := s.registry.Register(col); err != nil {
		// The remote collection exists but we cannot track it; delete it
		// again rather than leak an unreachable collection.
		if delErr := s.store.DeleteCollection(ctx, collectionID); delErr != nil {
			log.Printf("service: failed to roll back collection %s after registry error: %v", collectionID, delErr)
		}
		return models.UploadResult{}, fmt.Errorf("register collection: %w", err)
	}

	return models.UploadResult{
		CollectionID: collectionID,
		DocumentName: fileName,
		ChunksCount:  len(chunks),
		Message:      fmt.Sprintf("Document %q indexed into %d chunks", fileName, len(chunks)),
	}, nil
}

// Chat answers a question against one ingested document. The registry lookup
// is the single gate: an unknown collection id fails before any remote call
// is made. A search that returns nothing still goes to the generator with a
// no-context prompt so the model can say it found nothing.
func (s *Service) Chat(ctx context.Context, collectionID, query string, maxChunks int, p models.GenerationParams) (models.ChatResult, error) {
	if strings.TrimSpace(query) == "" {
		return models.ChatResult{}, errs.Validation("query must not be empty")
	}
	if maxChunks == 0 {
		maxChunks = DefaultMaxChunks
	}
	if maxChunks < MinMaxChunks || maxChunks > MaxMaxChunks {
		return models.ChatResult{}, errs.Validation("max_chunks must be between %d and %d, got %d",
			MinMaxChunks, MaxMaxChunks, maxChunks)
	}

	p = p.ApplyDefaults()
	if err := p.Validate(s.opts.AllowedModels); err != nil {
		return models.ChatResult{}, errs.Validation("%s", err.Error())
	}

	if _, err := s.registry.Lookup(collectionID); err != nil {
		return models.ChatResult{}, err
	}

	chunks, err := s.store.Search(ctx, collectionID, query, maxChunks)
	if err != nil {
		return models.ChatResult{}, err
	}

	prompt, err := prompts.DocumentQA(chunks, query)
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("build prompt: %w", err)
	}

	answer, err := s.generator.Generate(ctx, prompt, p)
	if err != nil {
		return models.ChatResult{}, err
	}

	return models.ChatResult{
		CollectionID: collectionID,
		Query:        query,
		Answer:       answer,
		Chunks:       chunks,
		ChunksFound:  len(chunks),
	}, nil
}

// Delete removes a collection remotely and locally. The registry gate runs
// first, so deleting an unknown id is a NotFoundError without a remote call,
// and a second delete of the same id fails the same way.
func (s *Service) Delete(ctx context.Context, collectionID string) error {
	if _, err := s.registry.Lookup(collectionID); err != nil {
		return err
	}
	if err := s.store.DeleteCollection(ctx, collectionID); err != nil {
		return err
	}
	return s.registry.Unregister(collectionID)
}

// Collections lists every registered collection, newest first.
func (s *Service) Collections() ([]models.Collection, error) {
	return s.registry.List()
}

// collectionTitle derives a readable remote collection title from the file
// name: the sanitized base name plus a short unique suffix, so re-uploading
// the same file never collides.
func collectionTitle(fileName string) string {
	base := fileName
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune('-')
		}
	}
	title := strings.Trim(b.String(), "-")
	for strings.Contains(title, "--") {
		title = strings.ReplaceAll(title, "--", "-")
	}
	if len(title) > 40 {
		title = title[:40]
	}
	if title == "" {
		title = "document"
	}
	return title + "-" + uuid.New().String()[:8]
}
