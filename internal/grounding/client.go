// ABOUTME: Grounding store adapter: collections, document indexing, semantic search
// ABOUTME: OAuth2 client credentials, bounded retries with jitter, normalized errors
package grounding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/models"
)

const (
	serviceName     = "grounding store"
	collectionsPath = "/v2/lm/document-grounding/vector/collections"
	searchPath      = "/v2/lm/document-grounding/retrieval/search"

	resourceGroupHeader = "AI-Resource-Group"
)

// Config holds everything the adapter needs to reach the grounding store.
type Config struct {
	APIURL         string
	AuthURL        string
	ClientID       string
	ClientSecret   string
	ResourceGroup  string
	EmbeddingModel string
	Timeout        time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RateLimitRPS   float64

	// HTTPClient overrides the OAuth2 client; tests point it at a fake
	// server.
	HTTPClient *http.Client
}

// Client is the only component that performs network calls to the grounding
// store. Safe for concurrent use.
type Client struct {
	apiURL         string
	resourceGroup  string
	embeddingModel string
	httpClient     *http.Client
	timeout        time.Duration
	maxAttempts    int
	baseDelay      time.Duration
	limiter        *rate.Limiter
}

// NewClient builds a grounding store client. When no HTTPClient override is
// given, requests carry an OAuth2 client-credentials bearer token that is
// fetched and refreshed automatically.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("grounding store API URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, fmt.Errorf("grounding store client credentials are required")
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimSuffix(cfg.AuthURL, "/") + "/oauth/token",
		}
		httpClient = cc.Client(context.Background())
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &Client{
		apiURL:         strings.TrimSuffix(cfg.APIURL, "/"),
		resourceGroup:  cfg.ResourceGroup,
		embeddingModel: cfg.EmbeddingModel,
		httpClient:     httpClient,
		timeout:        timeout,
		maxAttempts:    maxAttempts,
		baseDelay:      baseDelay,
		limiter:        limiter,
	}, nil
}

// CreateCollection creates a collection and indexes all chunks into it.
// Atomic from the caller's perspective: if the document upload fails after
// the collection was created, the half-created collection is deleted before
// the error is surfaced, so no partially indexed collection is ever
// observable.
func (c *Client) CreateCollection(ctx context.Context, documentName string, chunks []models.Chunk) (string, error) {
	createReq := createCollectionRequest{
		Title:           documentName,
		EmbeddingConfig: embeddingConfig{ModelName: c.embeddingModel},
		Metadata:        []metadataItem{},
	}

	res, err := c.do(ctx, http.MethodPost, collectionsPath, createReq)
	if err != nil {
		return "", fmt.Errorf("create collection: %w", err)
	}

	collectionID := collectionIDFromLocation(res.header.Get("Location"))
	if collectionID == "" {
		var body createCollectionResponse
		if err := json.Unmarshal(res.body, &body); err == nil {
			collectionID = body.ID
		}
	}
	if collectionID == "" {
		return "", fmt.Errorf("create collection: store returned no collection id")
	}

	// Chunks are uploaded in index order; the store preserves position, and
	// the chunk_index metadata is surfaced back to users on retrieval.
	docs := uploadDocumentsRequest{
		Documents: []documentPayload{buildDocumentPayload(documentName, chunks)},
	}

	uploadPath := collectionsPath + "/" + collectionID + "/documents"
	if _, err := c.do(ctx, http.MethodPost, uploadPath, docs); err != nil {
		c.rollbackCollection(collectionID)
		return "", fmt.Errorf("index document: %w", err)
	}

	return collectionID, nil
}

// Search returns at most maxChunks chunks ordered by descending relevance.
// An empty result is an empty slice, not an error: it means nothing cleared
// the store's relevance floor.
func (c *Client) Search(ctx context.Context, collectionID, query string, maxChunks int) ([]models.RetrievedChunk, error) {
	req := searchRequest{
		Query: query,
		Filters: []searchFilter{{
			ID:                  uuid.New().String(),
			DataRepositories:    []string{collectionID},
			DataRepositoryType:  "vector",
			SearchConfiguration: searchConfiguration{MaxChunkCount: maxChunks},
		}},
	}

	res, err := c.do(ctx, http.MethodPost, searchPath, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(res.body, &parsed); err != nil {
		return nil, fmt.Errorf("search: failed to decode response: %w", err)
	}

	chunks := flattenSearchResponse(parsed)
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
	if len(chunks) > maxChunks {
		chunks = chunks[:maxChunks]
	}
	return chunks, nil
}

// DeleteCollection removes a collection and all its documents. Idempotent:
// deleting an unknown or already-deleted id is not an error at this layer.
func (c *Client) DeleteCollection(ctx context.Context, collectionID string) error {
	_, err := c.do(ctx, http.MethodDelete, collectionsPath+"/"+collectionID, nil)
	if err != nil {
		var remote *errs.RemoteError
		if errors.As(err, &remote) && remote.Status == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

// rollbackCollection is a best-effort cleanup of a half-created collection.
// Uses its own short deadline: the original request context may already be
// cancelled.
func (c *Client) rollbackCollection(collectionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.DeleteCollection(ctx, collectionID); err != nil {
		log.Printf("grounding: failed to roll back collection %s: %v", collectionID, err)
	}
}

type httpResult struct {
	status int
	header http.Header
	body   []byte
}

// do issues one API call with rate limiting, per-attempt timeout, and
// bounded exponential backoff. Transient failures (transport errors, 408,
// 429, 5xx) are retried up to maxAttempts; auth failures (401/403) and
// other 4xx are surfaced immediately.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*httpResult, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempts := 0
	attempt := func() (*httpResult, error) {
		attempts++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, backoff.Permanent(err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		var reader *bytes.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(attemptCtx, method, c.apiURL+path, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(resourceGroupHeader, c.resourceGroup)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Transport error or timeout: retryable.
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := readBody(resp)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return &httpResult{status: resp.StatusCode, header: resp.Header, body: respBody}, nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, backoff.Permanent(&errs.AuthError{
				Service: serviceName,
				Msg:     remoteDiagnostic(resp.StatusCode, respBody),
			})
		case resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= 500:
			return nil, fmt.Errorf("%s returned status %d", serviceName, resp.StatusCode)
		default:
			return nil, backoff.Permanent(&errs.RemoteError{
				Service: serviceName,
				Status:  resp.StatusCode,
				Msg:     remoteDiagnostic(resp.StatusCode, respBody),
			})
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.RandomizationFactor = 1 // full jitter
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)

	res, err := backoff.RetryWithData(attempt, policy)
	if err != nil {
		if errs.IsAuth(err) || errs.IsRemote(err) {
			return nil, err
		}
		return nil, &errs.UnavailableError{Service: serviceName, Attempts: attempts, Err: err}
	}
	return res, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// remoteDiagnostic keeps a short, loggable slice of the remote's message.
// Raw payloads never cross the API boundary; handlers render their own
// messages from the error type.
func remoteDiagnostic(status int, body []byte) string {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	if msg == "" {
		return http.StatusText(status)
	}
	return msg
}

// collectionIDFromLocation extracts the collection id from a Location
// header of the form .../collections/{id}[?...].
func collectionIDFromLocation(location string) string {
	if location == "" {
		return ""
	}
	var id string
	if idx := strings.LastIndex(location, "/collections/"); idx >= 0 {
		id = location[idx+len("/collections/"):]
	} else {
		parts := strings.Split(location, "/")
		id = parts[len(parts)-1]
	}
	id = strings.SplitN(id, "/", 2)[0]
	id = strings.SplitN(id, "?", 2)[0]
	return id
}

// buildDocumentPayload assembles the store's document format: key/value
// metadata lists at the document level, one chunk entry per chunk with its
// index attached so retrieval results can reference positions.
func buildDocumentPayload(documentName string, chunks []models.Chunk) documentPayload {
	doc := documentPayload{
		Metadata: []metadataItem{
			{Key: "name", Value: []string{documentName}},
			{Key: "source", Value: []string{"user_upload"}},
		},
		Chunks: make([]chunkPayload, len(chunks)),
	}
	for i, chunk := range chunks {
		doc.Chunks[i] = chunkPayload{
			Content: chunk.Content,
			Metadata: []metadataItem{
				{Key: "chunk_index", Value: []string{strconv.Itoa(chunk.Index)}},
			},
		}
	}
	return doc
}

// flattenSearchResponse walks the store's nested result structure and
// produces flat retrieved chunks with scores and flattened metadata.
func flattenSearchResponse(resp searchResponse) []models.RetrievedChunk {
	chunks := []models.RetrievedChunk{}
	for _, filterRes := range resp.Results {
		for _, repoRes := range filterRes.Results {
			for _, doc := range repoRes.DataRepository.Documents {
				for _, chunk := range doc.Chunks {
					chunks = append(chunks, models.RetrievedChunk{
						Content:  chunk.Content,
						Score:    chunk.SearchScores.AggregatedScore.Value,
						Metadata: flattenMetadata(chunk.Metadata),
					})
				}
			}
		}
	}
	return chunks
}

func flattenMetadata(items []metadataItem) map[string]string {
	if len(items) == 0 {
		return nil
	}
	result := make(map[string]string, len(items))
	for _, item := range items {
		result[item.Key] = strings.Join(item.Value, ", ")
	}
	return result
}
