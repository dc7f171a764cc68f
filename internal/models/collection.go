// ABOUTME: Collection metadata tracked by the local registry
// ABOUTME: One collection per ingested document, id issued by the grounding store
package models

import "time"

// Collection records one ingested document. The ID is the opaque identifier
// the grounding store issued at creation time; everything else is local
// bookkeeping so the service can answer lookups without a remote round trip.
type Collection struct {
	ID           string    `json:"id"`
	DocumentName string    `json:"document_name"`
	ChunkCount   int       `json:"chunk_count"`
	CreatedAt    time.Time `json:"created_at"`
}
