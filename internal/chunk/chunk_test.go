package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tavila/amparo-agent/internal/mode"
)

// sentenceText builds n numbered sentences.
func sentenceText(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("Frase %d.", i+1)
	}
	return strings.Join(parts, " ")
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n ", nil},
		{"single sentence", "Estou aqui com você.", []string{"Estou aqui com você."}},
		{"two sentences", "Sinto muito. Quer me contar mais?", []string{"Sinto muito.", "Quer me contar mais?"}},
		{"exclamation", "Que notícia! Fico feliz por você.", []string{"Que notícia!", "Fico feliz por você."}},
		{"no trailing terminator", "Primeira frase. E a segunda continua", []string{"Primeira frase.", "E a segunda continua"}},
		{"decimal stays whole", "A leitura leva 1.5 hora. Combina?", []string{"A leitura leva 1.5 hora.", "Combina?"}},
		{"stacked terminators", "Sério?! Não acredito.", []string{"Sério?!", "Não acredito."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Split(%q) = %q, want %q", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestForMode_EmptyInput(t *testing.T) {
	if got := ForMode(mode.Acolhimento, "   "); got != nil {
		t.Errorf("got %q, want no chunks", got)
	}
}

func TestForMode_VulnerabilidadeInicialNeverSplits(t *testing.T) {
	text := sentenceText(8)
	got := ForMode(mode.VulnerabilidadeInicial, text)

	if len(got) != 1 {
		t.Fatalf("got %d chunks, want 1", len(got))
	}
	if got[0] != text {
		t.Errorf("chunk = %q, want the full text", got[0])
	}
}

func TestForMode_Orientacao(t *testing.T) {
	tests := []struct {
		sentences  int
		wantChunks int
		wantFirst  int // sentences in the first chunk
	}{
		{1, 1, 1},
		{2, 1, 2},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{7, 3, 2},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d sentences", tt.sentences), func(t *testing.T) {
			got := ForMode(mode.Orientacao, sentenceText(tt.sentences))
			if len(got) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d: %q", len(got), tt.wantChunks, got)
			}
			if first := len(Split(got[0])); first != tt.wantFirst {
				t.Errorf("first chunk has %d sentences, want %d", first, tt.wantFirst)
			}
		})
	}
}

func TestForMode_PastorInstitucional(t *testing.T) {
	tests := []struct {
		sentences  int
		wantChunks int
		wantSizes  []int
	}{
		{2, 1, []int{2}},          // below the split threshold
		{3, 3, []int{1, 1, 1}},    // one group per sentence
		{5, 4, []int{2, 1, 1, 1}}, // remainder goes to the first group
		{8, 4, []int{2, 2, 2, 2}},
		{10, 4, []int{3, 3, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d sentences", tt.sentences), func(t *testing.T) {
			got := ForMode(mode.PastorInstitucional, sentenceText(tt.sentences))
			if len(got) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d: %q", len(got), tt.wantChunks, got)
			}
			for i, chunk := range got {
				if size := len(Split(chunk)); size != tt.wantSizes[i] {
					t.Errorf("chunk %d has %d sentences, want %d", i, size, tt.wantSizes[i])
				}
			}
		})
	}
}

func TestForMode_DefaultShape(t *testing.T) {
	tests := []struct {
		sentences  int
		wantChunks int
	}{
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{6, 2},
		{7, 3},
		{9, 3},
		{12, 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d sentences", tt.sentences), func(t *testing.T) {
			got := ForMode(mode.Acolhimento, sentenceText(tt.sentences))
			if len(got) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d: %q", len(got), tt.wantChunks, got)
			}
		})
	}
}

func TestForMode_ChunkCountBounds(t *testing.T) {
	modes := []mode.Mode{
		mode.Welcome, mode.Acolhimento, mode.Exploracao, mode.Ambivalencia,
		mode.Defensivo, mode.Culpa, mode.Orientacao, mode.PresencaProfunda,
		mode.PastorInstitucional, mode.VulnerabilidadeInicial,
	}

	for _, m := range modes {
		for n := 1; n <= 15; n++ {
			got := ForMode(m, sentenceText(n))
			if len(got) < 1 || len(got) > 4 {
				t.Errorf("%s with %d sentences: %d chunks, want 1..4", m, n, len(got))
			}
		}
	}
}

func TestForMode_JoinReproducesSentences(t *testing.T) {
	text := "Sinto muito pela sua perda. Estou aqui. Quer me contar como foi? " +
		"Às vezes falar ajuda. Deus está perto dos que choram. Conte comigo. Um passo por vez."

	want := strings.Join(Split(text), " ")
	modes := []mode.Mode{
		mode.Acolhimento, mode.Orientacao, mode.PastorInstitucional,
		mode.VulnerabilidadeInicial,
	}

	for _, m := range modes {
		chunks := ForMode(m, text)
		if got := strings.Join(chunks, " "); got != want {
			t.Errorf("%s: joined chunks = %q, want %q", m, got, want)
		}
	}
}
