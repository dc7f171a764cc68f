// ABOUTME: Wire types for the document grounding REST API
// ABOUTME: Mirrors the store's nested request/response JSON exactly
package grounding

// metadataItem is the store's key/multi-value metadata format.
type metadataItem struct {
	Key   string   `json:"key"`
	Value []string `json:"value"`
}

type embeddingConfig struct {
	ModelName string `json:"modelName"`
}

type createCollectionRequest struct {
	Title           string          `json:"title"`
	EmbeddingConfig embeddingConfig `json:"embeddingConfig"`
	Metadata        []metadataItem  `json:"metadata"`
}

type createCollectionResponse struct {
	ID string `json:"id"`
}

type chunkPayload struct {
	Content  string         `json:"content"`
	Metadata []metadataItem `json:"metadata"`
}

type documentPayload struct {
	Metadata []metadataItem `json:"metadata"`
	Chunks   []chunkPayload `json:"chunks"`
}

type uploadDocumentsRequest struct {
	Documents []documentPayload `json:"documents"`
}

type searchConfiguration struct {
	MaxChunkCount int `json:"maxChunkCount"`
}

type searchFilter struct {
	ID                  string              `json:"id"`
	DataRepositories    []string            `json:"dataRepositories"`
	DataRepositoryType  string              `json:"dataRepositoryType"`
	SearchConfiguration searchConfiguration `json:"searchConfiguration"`
}

type searchRequest struct {
	Query   string         `json:"query"`
	Filters []searchFilter `json:"filters"`
}

// The search response nests chunks four levels deep:
// results -> results -> dataRepository -> documents -> chunks.
type searchResponse struct {
	Results []filterResult `json:"results"`
}

type filterResult struct {
	Results []repositoryResult `json:"results"`
}

type repositoryResult struct {
	DataRepository dataRepository `json:"dataRepository"`
}

type dataRepository struct {
	Documents []documentResult `json:"documents"`
}

type documentResult struct {
	Chunks []chunkResult `json:"chunks"`
}

type chunkResult struct {
	Content      string         `json:"content"`
	SearchScores searchScores   `json:"searchScores"`
	Metadata     []metadataItem `json:"metadata"`
}

type searchScores struct {
	AggregatedScore aggregatedScore `json:"aggregatedScore"`
}

type aggregatedScore struct {
	Value float64 `json:"value"`
}
