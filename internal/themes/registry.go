// Package themes loads pastoral support themes and classifies inbound
// messages against them.
//
// A theme is one markdown file in the configured themes directory: the
// filename (sans extension) is the theme ID, the first heading is its
// display name, and the body is guidance text injected into the system
// prompt when the theme is selected.
package themes

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrNoThemes reports an empty or missing themes directory. Callers
// treat this as a configuration error and fail before any model call.
var ErrNoThemes = errors.New("no themes loaded")

// Theme is one loaded support theme.
type Theme struct {
	ID       string
	Name     string
	Guidance string
}

// Registry holds the loaded theme set.
type Registry struct {
	themes    map[string]Theme
	ids       []string
	defaultID string
}

// LoadRegistry reads every *.md file in dir. defaultID must name one of
// the loaded themes; when empty, the first theme in sorted ID order
// becomes the default.
func LoadRegistry(dir, defaultID string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read themes dir %s: %w", dir, err)
	}

	r := &Registry{themes: make(map[string]Theme)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".md")
		src, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read theme %s: %w", id, err)
		}

		r.themes[id] = parseTheme(id, src)
		r.ids = append(r.ids, id)
	}

	if len(r.themes) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoThemes, dir)
	}
	sort.Strings(r.ids)

	if defaultID == "" {
		defaultID = r.ids[0]
	}
	if _, ok := r.themes[defaultID]; !ok {
		return nil, fmt.Errorf("default theme %q not found in %s", defaultID, dir)
	}
	r.defaultID = defaultID

	logger.Info("themes loaded", "count", len(r.ids), "default", defaultID)
	return r, nil
}

// Get returns a theme by ID.
func (r *Registry) Get(id string) (Theme, bool) {
	t, ok := r.themes[id]
	return t, ok
}

// IDs returns the loaded theme IDs in sorted order. The returned slice
// is shared; callers must not mutate it.
func (r *Registry) IDs() []string {
	return r.ids
}

// Default returns the configured default theme.
func (r *Registry) Default() Theme {
	return r.themes[r.defaultID]
}

// firstHeadingLine matches one markdown heading line including its
// trailing newline.
var firstHeadingLine = regexp.MustCompile(`(?m)^#{1,6}[ \t]+.*\r?\n?`)

// parseTheme extracts the display name from the first heading and
// renders the remaining body as plain text guidance.
func parseTheme(id string, src []byte) Theme {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	name := ""
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			name = string(h.Text(src))
			break
		}
	}

	body := string(src)
	if name != "" {
		if loc := firstHeadingLine.FindStringIndex(body); loc != nil {
			body = body[:loc[0]] + body[loc[1]:]
		}
	} else {
		name = id
	}

	return Theme{
		ID:       id,
		Name:     name,
		Guidance: markdownToPlain(body),
	}
}

// Patterns for stripping markdown formatting from guidance text.
var (
	mdBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	mdItalic     = regexp.MustCompile(`\*(.+?)\*`)
	mdLink       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	mdHeading    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdInlineCode = regexp.MustCompile("`([^`]+)`")
)

// markdownToPlain strips formatting characters while preserving the
// text structure. List markers stay; "- item" reads fine as-is.
func markdownToPlain(md string) string {
	s := md
	s = mdLink.ReplaceAllString(s, "$1")
	s = mdBold.ReplaceAllString(s, "$1")
	s = mdItalic.ReplaceAllString(s, "$1")
	s = mdInlineCode.ReplaceAllString(s, "$1")
	s = mdHeading.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
