// ABOUTME: Grounded-prompt construction from retrieved chunks and a query
// ABOUTME: Template is embedded so prompt engineering stays out of orchestration code
package prompts

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/harper/docchat/internal/models"
)

//go:embed document_qa.tmpl
var templateFS embed.FS

var documentQA = template.Must(
	template.New("document_qa.tmpl").
		Funcs(template.FuncMap{"add": func(a, b int) int { return a + b }}).
		ParseFS(templateFS, "document_qa.tmpl"),
)

type promptData struct {
	Chunks []models.RetrievedChunk
	Query  string
}

// DocumentQA renders the grounded question-answering prompt. Chunks must
// already be in descending relevance order; with no chunks the template
// inserts an explicit no-matching-content marker so the model states it
// cannot answer instead of the request failing.
func DocumentQA(chunks []models.RetrievedChunk, query string) (string, error) {
	var b strings.Builder
	if err := documentQA.Execute(&b, promptData{Chunks: chunks, Query: query}); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}
