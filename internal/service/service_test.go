// ABOUTME: Tests for the orchestration service using counting fakes
// ABOUTME: Verifies validation gating, rollback behavior, and pipeline wiring
package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/models"
	"github.com/harper/docchat/internal/registry"
)

type fakeStore struct {
	createCalls int
	searchCalls int
	deleteCalls int

	createErr error
	searchErr error
	deleteErr error

	collectionID  string
	createdTitle  string
	createdChunks []models.Chunk
	searchResult  []models.RetrievedChunk
	deletedIDs    []string
}

func (f *fakeStore) CreateCollection(_ context.Context, title string, chunks []models.Chunk) (string, error) {
	f.createCalls++
	f.createdTitle = title
	f.createdChunks = chunks
	if f.createErr != nil {
		return "", f.createErr
	}
	if f.collectionID == "" {
		f.collectionID = "col-test"
	}
	return f.collectionID, nil
}

func (f *fakeStore) Search(_ context.Context, _, _ string, _ int) ([]models.RetrievedChunk, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResult, nil
}

func (f *fakeStore) DeleteCollection(_ context.Context, id string) error {
	f.deleteCalls++
	f.deletedIDs = append(f.deletedIDs, id)
	return f.deleteErr
}

type fakeGenerator struct {
	calls  int
	prompt string
	params models.GenerationParams
	answer string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, p models.GenerationParams) (string, error) {
	f.calls++
	f.prompt = prompt
	f.params = p
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

// failingRegistry rejects every Register; the rest delegates.
type failingRegistry struct {
	registry.Registry
}

func (f *failingRegistry) Register(models.Collection) error {
	return errors.New("kv write failed")
}

func testService(store *fakeStore, gen *fakeGenerator) (*Service, registry.Registry) {
	reg := registry.NewMemory()
	svc := New(store, gen, reg, Options{
		DefaultChunkSize: 500,
		MaxUploadBytes:   1 << 20,
		AllowedModels:    []string{"gpt-4o", "gpt-4o-mini"},
	})
	return svc, reg
}

func TestIngest_HappyPath(t *testing.T) {
	store := &fakeStore{collectionID: "col-42"}
	svc, reg := testService(store, &fakeGenerator{})

	res, err := svc.Ingest(context.Background(), "Annual Report.txt", []byte("Some document text."), 0)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if res.CollectionID != "col-42" || res.DocumentName != "Annual Report.txt" {
		t.Errorf("result = %+v", res)
	}
	if res.ChunksCount != 1 || len(store.createdChunks) != 1 {
		t.Errorf("chunks count = %d / %d, want 1", res.ChunksCount, len(store.createdChunks))
	}

	if !strings.HasPrefix(store.createdTitle, "annual-report-") {
		t.Errorf("collection title = %q, want sanitized name with suffix", store.createdTitle)
	}

	col, err := reg.Lookup("col-42")
	if err != nil {
		t.Fatalf("collection not registered: %v", err)
	}
	if col.DocumentName != "Annual Report.txt" || col.ChunkCount != 1 {
		t.Errorf("registered collection = %+v", col)
	}
}

func TestIngest_UnsupportedTypeMakesNoRemoteCalls(t *testing.T) {
	store := &fakeStore{}
	svc, _ := testService(store, &fakeGenerator{})

	_, err := svc.Ingest(context.Background(), "slides.pptx", []byte("data"), 0)
	if !errs.IsValidation(err) {
		t.Fatalf("Ingest() error = %v, want ValidationError", err)
	}
	if store.createCalls != 0 {
		t.Error("validation failures must not reach the grounding store")
	}
}

func TestIngest_StoreFailureLeavesNoRegistration(t *testing.T) {
	store := &fakeStore{createErr: &errs.UnavailableError{Service: "grounding store", Attempts: 3}}
	svc, reg := testService(store, &fakeGenerator{})

	_, err := svc.Ingest(context.Background(), "doc.txt", []byte("text"), 0)
	if !errs.IsUnavailable(err) {
		t.Fatalf("Ingest() error = %v, want UnavailableError", err)
	}

	cols, _ := reg.List()
	if len(cols) != 0 {
		t.Errorf("registry should stay empty after a failed ingestion, has %d", len(cols))
	}
}

func TestIngest_RegistryFailureRollsBackRemote(t *testing.T) {
	store := &fakeStore{collectionID: "col-orphan"}
	gen := &fakeGenerator{}
	reg := &failingRegistry{Registry: registry.NewMemory()}
	svc := New(store, gen, reg, Options{AllowedModels: []string{"gpt-4o"}})

	_, err := svc.Ingest(context.Background(), "doc.txt", []byte("text"), 0)
	if err == nil {
		t.Fatal("Ingest() should fail when registration fails")
	}
	if store.deleteCalls != 1 || store.deletedIDs[0] != "col-orphan" {
		t.Errorf("remote collection must be deleted after a registry failure, deletes = %v", store.deletedIDs)
	}
}

func TestIngest_NegativeChunkSize(t *testing.T) {
	svc, _ := testService(&fakeStore{}, &fakeGenerator{})

	_, err := svc.Ingest(context.Background(), "doc.txt", []byte("text"), -1)
	if !errs.IsValidation(err) {
		t.Errorf("Ingest() error = %v, want ValidationError", err)
	}
}

func TestChat_HappyPath(t *testing.T) {
	store := &fakeStore{
		collectionID: "col-1",
		searchResult: []models.RetrievedChunk{
			{Content: "The budget was 4 million.", Score: 0.9},
			{Content: "Spending rose in Q3.", Score: 0.7},
		},
	}
	gen := &fakeGenerator{answer: "The budget was 4 million."}
	svc, reg := testService(store, gen)
	mustRegister(t, reg, "col-1")

	res, err := svc.Chat(context.Background(), "col-1", "What was the budget?", 0, models.GenerationParams{Temperature: 0.7})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if res.Answer != "The budget was 4 million." || res.ChunksFound != 2 {
		t.Errorf("result = %+v", res)
	}
	if res.CollectionID != "col-1" || res.Query != "What was the budget?" {
		t.Errorf("result echo = %+v", res)
	}

	if !strings.Contains(gen.prompt, "The budget was 4 million.") ||
		!strings.Contains(gen.prompt, "[Document chunk 1]") {
		t.Errorf("prompt missing retrieved context:\n%s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "What was the budget?") {
		t.Errorf("prompt missing the question:\n%s", gen.prompt)
	}

	// Defaults applied before generation.
	if gen.params.Model != models.DefaultModel || gen.params.MaxTokens != models.DefaultMaxTokens {
		t.Errorf("params = %+v, want defaults applied", gen.params)
	}
}

func TestChat_EmptySearchStillGenerates(t *testing.T) {
	store := &fakeStore{searchResult: nil}
	gen := &fakeGenerator{answer: "I could not find that in the document."}
	svc, reg := testService(store, gen)
	mustRegister(t, reg, "col-1")

	res, err := svc.Chat(context.Background(), "col-1", "Unanswerable question?", 0, models.GenerationParams{Temperature: 0.7})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if gen.calls != 1 {
		t.Fatal("generator must run even when retrieval finds nothing")
	}
	if !strings.Contains(gen.prompt, "No matching content was found") {
		t.Errorf("prompt should carry the no-context marker:\n%s", gen.prompt)
	}
	if res.ChunksFound != 0 || len(res.Chunks) != 0 {
		t.Errorf("result = %+v, want zero chunks", res)
	}
}

func TestChat_UnknownCollectionSkipsRemotes(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{}
	svc, _ := testService(store, gen)

	_, err := svc.Chat(context.Background(), "missing", "A question?", 0, models.GenerationParams{Temperature: 0.7})
	if !errs.IsNotFound(err) {
		t.Fatalf("Chat() error = %v, want NotFoundError", err)
	}
	if store.searchCalls != 0 || gen.calls != 0 {
		t.Error("unknown collections must fail before any remote call")
	}
}

func TestChat_Validation(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		maxChunks int
		params    models.GenerationParams
	}{
		{"empty query", "   ", 0, models.GenerationParams{Temperature: 0.7}},
		{"max_chunks too large", "q?", 21, models.GenerationParams{Temperature: 0.7}},
		{"max_chunks negative", "q?", -1, models.GenerationParams{Temperature: 0.7}},
		{"temperature out of range", "q?", 0, models.GenerationParams{Temperature: 2.5}},
		{"max_tokens out of range", "q?", 0, models.GenerationParams{Temperature: 0.7, MaxTokens: 50}},
		{"model not allowed", "q?", 0, models.GenerationParams{Model: "gpt-3.5-turbo", Temperature: 0.7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			gen := &fakeGenerator{}
			svc, reg := testService(store, gen)
			mustRegister(t, reg, "col-1")

			_, err := svc.Chat(context.Background(), "col-1", tt.query, tt.maxChunks, tt.params)
			if !errs.IsValidation(err) {
				t.Fatalf("Chat() error = %v, want ValidationError", err)
			}
			if store.searchCalls != 0 || gen.calls != 0 {
				t.Error("validation failures must not reach remote services")
			}
		})
	}
}

func TestChat_TemperatureZeroIsValid(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGenerator{answer: "deterministic"}
	svc, reg := testService(store, gen)
	mustRegister(t, reg, "col-1")

	_, err := svc.Chat(context.Background(), "col-1", "q?", 0, models.GenerationParams{Temperature: 0})
	if err != nil {
		t.Fatalf("Chat() with temperature 0 error = %v", err)
	}
	if gen.params.Temperature != 0 {
		t.Errorf("temperature = %v, want 0 preserved", gen.params.Temperature)
	}
}

func TestDelete_RemovesRemoteThenLocal(t *testing.T) {
	store := &fakeStore{}
	svc, reg := testService(store, &fakeGenerator{})
	mustRegister(t, reg, "col-1")

	if err := svc.Delete(context.Background(), "col-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.deleteCalls != 1 {
		t.Errorf("remote deletes = %d, want 1", store.deleteCalls)
	}
	if _, err := reg.Lookup("col-1"); !errs.IsNotFound(err) {
		t.Error("collection should be unregistered after delete")
	}

	// Second delete of the same id is a NotFound, no remote call.
	if err := svc.Delete(context.Background(), "col-1"); !errs.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want NotFoundError", err)
	}
	if store.deleteCalls != 1 {
		t.Error("second delete must not reach the grounding store")
	}
}

func TestDelete_RemoteFailureKeepsRegistration(t *testing.T) {
	store := &fakeStore{deleteErr: &errs.UnavailableError{Service: "grounding store", Attempts: 3}}
	svc, reg := testService(store, &fakeGenerator{})
	mustRegister(t, reg, "col-1")

	if err := svc.Delete(context.Background(), "col-1"); !errs.IsUnavailable(err) {
		t.Fatalf("Delete() error = %v, want UnavailableError", err)
	}
	if _, err := reg.Lookup("col-1"); err != nil {
		t.Error("registration must survive a failed remote delete so the user can retry")
	}
}

func TestCollections(t *testing.T) {
	svc, reg := testService(&fakeStore{}, &fakeGenerator{})
	mustRegister(t, reg, "col-a")
	mustRegister(t, reg, "col-b")

	cols, err := svc.Collections()
	if err != nil {
		t.Fatalf("Collections() error = %v", err)
	}
	if len(cols) != 2 {
		t.Errorf("Collections() = %d, want 2", len(cols))
	}
}

func TestCollectionTitle(t *testing.T) {
	tests := []struct {
		fileName string
		prefix   string
	}{
		{"Annual Report 2024.pdf", "annual-report-2024-"},
		{"notes.txt", "notes-"},
		{"___.txt", "document-"},
		{"Ünïcödé Nàme.md", "ünïcödé-nàme-"},
	}

	for _, tt := range tests {
		got := collectionTitle(tt.fileName)
		if !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("collectionTitle(%q) = %q, want prefix %q", tt.fileName, got, tt.prefix)
		}
	}

	// Unique suffix: two uploads of the same file get different titles.
	if collectionTitle("doc.txt") == collectionTitle("doc.txt") {
		t.Error("collection titles must be unique per upload")
	}
}

func mustRegister(t *testing.T, reg registry.Registry, id string) {
	t.Helper()
	err := reg.Register(models.Collection{
		ID:           id,
		DocumentName: id + ".txt",
		ChunkCount:   2,
		CreatedAt:    nowFunc(),
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", id, err)
	}
}
