// Package chunk splits a finished reply into the short message bursts
// a chat conversation expects, shaped by the mode the reply was
// written in.
package chunk

import (
	"strings"
	"unicode"

	"github.com/tavila/amparo-agent/internal/mode"
)

// Split divides text into sentences. A sentence ends at '.', '!' or
// '?' followed by whitespace; the terminator stays with its sentence.
func Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if !isTerminator(r) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// ForMode splits text into 1 to 4 ordered chunks shaped for the given
// mode. Joining the chunks with single spaces reproduces the sentence
// stream; empty input yields no chunks.
func ForMode(m mode.Mode, text string) []string {
	sentences := Split(text)
	if len(sentences) == 0 {
		return nil
	}

	switch {
	case m == mode.VulnerabilidadeInicial:
		// One unbroken message; a fragmented reply reads as casual.
		return []string{joinSentences(sentences)}
	case m == mode.Orientacao:
		return orientacaoChunks(sentences)
	case m == mode.PastorInstitucional && len(sentences) >= 3:
		return nearEqualGroups(sentences, 4)
	default:
		return defaultChunks(sentences)
	}
}

// orientacaoChunks keeps the opening guidance pair together so the
// concrete direction lands first.
func orientacaoChunks(sentences []string) []string {
	switch {
	case len(sentences) < 2:
		return []string{joinSentences(sentences)}
	case len(sentences) <= 4:
		return groupBySizes(sentences, 2)
	default:
		return groupBySizes(sentences, 2, 2)
	}
}

func defaultChunks(sentences []string) []string {
	switch {
	case len(sentences) <= 2:
		return []string{joinSentences(sentences)}
	case len(sentences) <= 6:
		return groupBySizes(sentences, 3)
	default:
		return groupBySizes(sentences, 3, 3)
	}
}

// groupBySizes takes leading groups of the given sentence counts;
// whatever remains becomes the final group. A size that would consume
// everything ends the grouping instead, so no group comes out empty.
func groupBySizes(sentences []string, sizes ...int) []string {
	var chunks []string
	rest := sentences
	for _, size := range sizes {
		if len(rest) <= size {
			break
		}
		chunks = append(chunks, joinSentences(rest[:size]))
		rest = rest[size:]
	}
	if len(rest) > 0 {
		chunks = append(chunks, joinSentences(rest))
	}
	return chunks
}

// nearEqualGroups splits sentences into up to max groups of nearly
// equal size, giving earlier groups the remainder.
func nearEqualGroups(sentences []string, max int) []string {
	groups := max
	if len(sentences) < groups {
		groups = len(sentences)
	}

	base := len(sentences) / groups
	remainder := len(sentences) % groups

	chunks := make([]string, 0, groups)
	start := 0
	for i := 0; i < groups; i++ {
		size := base
		if i < remainder {
			size++
		}
		chunks = append(chunks, joinSentences(sentences[start:start+size]))
		start += size
	}
	return chunks
}

func joinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}
