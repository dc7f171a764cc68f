// ABOUTME: Chunk types for document ingestion and retrieval
// ABOUTME: Chunks are value objects, never mutated after creation
package models

// Chunk is one bounded, ordered segment of a document's extracted text.
// Index is 0-based and monotonic within a document; concatenating chunks in
// index order reconstructs the source text apart from the separators the
// chunker consumed.
type Chunk struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
	Size    int    `json:"size"`
}

// RetrievedChunk is a chunk returned by a semantic search, with the store's
// relevance score in [0,1] and any metadata the store attached (document
// name, chunk index, page). Ephemeral: produced per request, never persisted.
type RetrievedChunk struct {
	Content  string            `json:"content"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
