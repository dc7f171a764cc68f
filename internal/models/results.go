// ABOUTME: Result types returned by the ingestion and chat orchestrators
// ABOUTME: Mirrors the JSON shapes of the HTTP surface
package models

// UploadResult is returned after a successful ingestion.
type UploadResult struct {
	CollectionID string `json:"collection_id"`
	DocumentName string `json:"document_name"`
	ChunksCount  int    `json:"chunks_count"`
	Message      string `json:"message,omitempty"`
}

// ChatResult is one query/answer exchange: the generated answer plus the
// retrieved chunks used as evidence so callers can show supporting context.
// Not persisted; each chat request is independent.
type ChatResult struct {
	CollectionID string           `json:"collection_id"`
	Query        string           `json:"query"`
	Answer       string           `json:"response"`
	Chunks       []RetrievedChunk `json:"chunks"`
	ChunksFound  int              `json:"chunks_found"`
}
