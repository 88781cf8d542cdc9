package retrieval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/tavila/amparo-agent/internal/embeddings"
)

// Section is one heading-delimited span of a theme document.
type Section struct {
	Title   string
	Content string
}

// Ingester loads theme documents into the passage store.
type Ingester struct {
	store  *Store
	engine embeddings.Engine
	logger *slog.Logger
}

// NewIngester creates a document ingester.
func NewIngester(store *Store, engine embeddings.Engine, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		store:  store,
		engine: engine,
		logger: logger.With("component", "retrieval"),
	}
}

// IngestFile loads one markdown document as themeID's passage set,
// replacing whatever the theme had before. Returns the passage count.
func (in *Ingester) IngestFile(ctx context.Context, themeID, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	return in.ingest(ctx, themeID, file)
}

// IngestString loads markdown content from a string.
func (in *Ingester) IngestString(ctx context.Context, themeID, content string) (int, error) {
	return in.ingest(ctx, themeID, strings.NewReader(content))
}

// ingest embeds every section before touching the store, so a failed
// embedding run leaves the previous passage set intact.
func (in *Ingester) ingest(ctx context.Context, themeID string, r io.Reader) (int, error) {
	sections := parseSections(r)
	if len(sections) == 0 {
		return 0, fmt.Errorf("document for theme %q has no content", themeID)
	}

	texts := make([]string, len(sections))
	for i, sec := range sections {
		texts[i] = strings.TrimSpace(sec.Title + "\n" + sec.Content)
	}
	vectors, err := embeddings.EmbedBatch(ctx, in.engine, texts)
	if err != nil {
		return 0, fmt.Errorf("embed sections: %w", err)
	}

	passages := make([]Passage, len(sections))
	for i, sec := range sections {
		passages[i] = Passage{
			Title:     sec.Title,
			Content:   sec.Content,
			Embedding: vectors[i],
		}
	}
	if err := in.store.Replace(ctx, themeID, passages); err != nil {
		return 0, err
	}

	in.logger.Info("theme document ingested",
		"theme", themeID,
		"passages", len(passages),
		"embedder", in.engine.Name(),
	)
	return len(passages), nil
}

var headingPattern = regexp.MustCompile(`^#{1,3}\s+(.+)$`)

// parseSections splits markdown into sections at level 1-3 headings.
// Content before the first heading becomes an untitled section; fenced
// code blocks never terminate a section.
func parseSections(r io.Reader) []Section {
	var sections []Section
	scanner := bufio.NewScanner(r)

	var title string
	var content strings.Builder

	flush := func() {
		text := strings.TrimSpace(content.String())
		if text != "" {
			sections = append(sections, Section{Title: title, Content: text})
		}
		content.Reset()
	}

	inCodeBlock := false
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			content.WriteString(line + "\n")
			continue
		}
		if inCodeBlock {
			content.WriteString(line + "\n")
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			title = strings.TrimSpace(m[1])
			continue
		}

		if line != "" || content.Len() > 0 {
			content.WriteString(line + "\n")
		}
	}
	flush()

	return sections
}
