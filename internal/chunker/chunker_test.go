// ABOUTME: Tests for the size-budgeted document chunker
// ABOUTME: Verifies size bounds, ordering, reconstruction, and edge cases
package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/harper/docchat/internal/errs"
)

func TestSplit_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty string", ""},
		{"whitespace only", "   "},
		{"tabs and newlines", "\t\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, 500)
			if !errs.IsValidation(err) {
				t.Errorf("Split(%q) error = %v, want ValidationError", tt.text, err)
			}
			if chunks != nil {
				t.Errorf("expected nil chunks, got %d", len(chunks))
			}
		})
	}
}

func TestSplit_InvalidChunkSize(t *testing.T) {
	for _, size := range []int{0, -1, -500} {
		if _, err := Split("some text", size); !errs.IsValidation(err) {
			t.Errorf("Split with chunk size %d: error = %v, want ValidationError", size, err)
		}
	}
}

func TestSplit_SingleParagraph(t *testing.T) {
	text := "This is a short document."
	chunks, err := Split(text, 500)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].Content != text {
		t.Errorf("content = %q, want %q", chunks[0].Content, text)
	}
	if chunks[0].Index != 0 {
		t.Errorf("index = %d, want 0", chunks[0].Index)
	}
	if chunks[0].Size != len(text) {
		t.Errorf("size = %d, want %d", chunks[0].Size, len(text))
	}
}

func TestSplit_ThreeSentencesFitOneChunk(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one closes it."
	chunks, err := Split(text, 500)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Errorf("chunks = %d, want 1 for a 3-sentence document under budget", len(chunks))
	}
}

func TestSplit_ParagraphGrouping(t *testing.T) {
	// Three 20-char paragraphs; budget of 50 fits two (20+2+20=42) per chunk.
	para := strings.Repeat("a", 20)
	text := para + "\n\n" + para + "\n\n" + para
	chunks, err := Split(text, 50)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[0].Content != para+"\n\n"+para {
		t.Errorf("first chunk should group two paragraphs, got %q", chunks[0].Content)
	}
	if chunks[1].Content != para {
		t.Errorf("second chunk = %q, want lone paragraph", chunks[1].Content)
	}
}

func TestSplit_SizeBoundHolds(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
	}{
		{"paragraphs", "One para.\n\nAnother para here.\n\nA third, somewhat longer paragraph.", 30},
		{"long single paragraph", strings.Repeat("Sentence goes here. ", 50), 80},
		{"mixed", "Short.\n\n" + strings.Repeat("Many words fill this sentence without end ", 20) + "\n\nTail.", 64},
		{"unicode", strings.Repeat("héllo wörld. ", 40), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := Split(tt.text, tt.size)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}
			for _, c := range chunks {
				if c.Content == "" || strings.TrimSpace(c.Content) == "" {
					t.Error("chunk content must be non-empty")
				}
				if n := utf8.RuneCountInString(c.Content); n > tt.size {
					t.Errorf("chunk %d has %d chars, budget %d: %q", c.Index, n, tt.size, c.Content)
				}
			}
		})
	}
}

func TestSplit_IndexesAreMonotonic(t *testing.T) {
	text := strings.Repeat("A sentence of reasonable length sits here. ", 30)
	chunks, err := Split(text, 100)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
	}
}

func TestSplit_ReconstructsContent(t *testing.T) {
	// Concatenating chunks must reproduce the input words in order; only
	// the separators the splitter consumed may differ.
	text := "Alpha beta gamma. Delta epsilon zeta.\n\nEta theta iota kappa. Lambda mu."
	chunks, err := Split(text, 30)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	var joined []string
	for _, c := range chunks {
		joined = append(joined, c.Content)
	}
	got := strings.Fields(strings.Join(joined, " "))
	want := strings.Fields(text)

	if len(got) != len(want) {
		t.Fatalf("word count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplit_OversizedWordKept(t *testing.T) {
	long := strings.Repeat("x", 120)
	text := "Before. " + long + " After."
	chunks, err := Split(text, 50)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	found := false
	for _, c := range chunks {
		if c.Content == long {
			found = true
			if c.Size != 120 {
				t.Errorf("oversized chunk size = %d, want 120", c.Size)
			}
		}
	}
	if !found {
		t.Error("a word longer than the budget must be emitted as its own chunk, not dropped")
	}
}

func TestSplit_WindowsLineEndings(t *testing.T) {
	text := "First paragraph.\r\n\r\nSecond paragraph."
	chunks, err := Split(text, 500)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if strings.Contains(chunks[0].Content, "\r") {
		t.Errorf("carriage returns should be normalized away: %q", chunks[0].Content)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
	}{
		{"single sentence", "One sentence here.", 1},
		{"two sentences", "First sentence. Second sentence.", 2},
		{"question and exclamation", "Really? Yes! Done.", 3},
		{"no terminal punctuation", "With period. No period", 2},
		{"decimal not split", "Pi is 3.14159 roughly. Next.", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sents := splitSentences(tt.text)
			if len(sents) != tt.count {
				t.Errorf("splitSentences(%q) = %d sentences %v, want %d", tt.text, len(sents), sents, tt.count)
			}
		})
	}
}

func TestSplitSentences_KeepsPunctuation(t *testing.T) {
	sents := splitSentences("First sentence. Second sentence.")
	for _, s := range sents {
		if !strings.HasSuffix(s, ".") {
			t.Errorf("sentence should keep its punctuation: %q", s)
		}
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
	}{
		{"single paragraph", "Just one paragraph here.", 1},
		{"two paragraphs", "First paragraph.\n\nSecond paragraph.", 2},
		{"blank runs collapse", "One.\n\n\n\nTwo.", 2},
		{"single newline not a break", "Line one.\nLine two.", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paras := splitParagraphs(tt.text)
			if len(paras) != tt.count {
				t.Errorf("splitParagraphs() = %d paragraphs, want %d", len(paras), tt.count)
			}
		})
	}
}
