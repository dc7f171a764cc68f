// ABOUTME: Splits extracted document text into bounded, ordered chunks
// ABOUTME: Paragraph-first grouping with sentence and word fallbacks
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/models"
)

// DefaultChunkSize is the default chunk budget in characters (runes).
const DefaultChunkSize = 500

// Split divides text into ordered chunks of at most chunkSize characters.
// The budget unit is characters (Unicode code points), not tokens. Chunk
// boundaries prefer paragraph breaks, falling back to sentence breaks for
// oversized paragraphs and word breaks for oversized sentences. A single
// word longer than the budget is emitted as its own oversized chunk;
// content is never dropped.
//
// Pure function of (text, chunkSize): no side effects, safe for concurrent
// use.
func Split(text string, chunkSize int) ([]models.Chunk, error) {
	if chunkSize <= 0 {
		return nil, errs.Validation("chunk size must be positive, got %d", chunkSize)
	}
	if strings.TrimSpace(text) == "" {
		return nil, errs.Validation("document has no extractable text")
	}

	var pieces []string
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			pieces = append(pieces, strings.Join(current, "\n\n"))
			current = nil
			currentSize = 0
		}
	}

	for _, para := range splitParagraphs(text) {
		paraSize := charLen(para)

		// A paragraph over budget cannot be grouped; break it up on its own.
		if paraSize > chunkSize {
			flush()
			pieces = append(pieces, splitBySentences(para, chunkSize)...)
			continue
		}

		// The "\n\n" joiner counts against the budget too.
		sep := 0
		if len(current) > 0 {
			sep = 2
		}
		if currentSize+sep+paraSize > chunkSize && len(current) > 0 {
			flush()
		}
		current = append(current, para)
		currentSize += sep + paraSize
	}
	flush()

	chunks := make([]models.Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = models.Chunk{
			Index:   i,
			Content: content,
			Size:    charLen(content),
		}
	}
	return chunks, nil
}

// splitParagraphs splits on blank lines, handling both Unix and Windows
// line endings, and drops empty paragraphs.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	var result []string
	for _, para := range strings.Split(normalized, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			result = append(result, para)
		}
	}
	return result
}

// splitBySentences groups sentences of an oversized paragraph into chunks of
// at most chunkSize characters. Sentences that are themselves over budget
// fall through to word grouping.
func splitBySentences(para string, chunkSize int) []string {
	var pieces []string
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
			currentSize = 0
		}
	}

	for _, sent := range splitSentences(para) {
		sentSize := charLen(sent)

		if sentSize > chunkSize {
			flush()
			pieces = append(pieces, splitByWords(sent, chunkSize)...)
			continue
		}

		sep := 0
		if len(current) > 0 {
			sep = 1
		}
		if currentSize+sep+sentSize > chunkSize && len(current) > 0 {
			flush()
		}
		current = append(current, sent)
		currentSize += sep + sentSize
	}
	flush()
	return pieces
}

// splitSentences splits after sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		b.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) && i+1 < len(runes) && isSpace(runes[i+1]) {
			sent := strings.TrimSpace(b.String())
			if sent != "" {
				sentences = append(sentences, sent)
			}
			b.Reset()
			// Skip the whitespace run between sentences.
			for i+1 < len(runes) && isSpace(runes[i+1]) {
				i++
			}
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// splitByWords is the last-resort split for a sentence over budget. A lone
// word longer than the budget becomes its own oversized chunk rather than
// being truncated.
func splitByWords(sent string, chunkSize int) []string {
	var pieces []string
	var current []string
	currentSize := 0

	flush := func() {
		if len(current) > 0 {
			pieces = append(pieces, strings.Join(current, " "))
			current = nil
			currentSize = 0
		}
	}

	for _, word := range strings.Fields(sent) {
		wordSize := charLen(word)

		if wordSize > chunkSize {
			flush()
			pieces = append(pieces, word)
			continue
		}

		sep := 0
		if len(current) > 0 {
			sep = 1
		}
		if currentSize+sep+wordSize > chunkSize && len(current) > 0 {
			flush()
		}
		current = append(current, word)
		currentSize += sep + wordSize
	}
	flush()
	return pieces
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}
