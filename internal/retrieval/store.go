package retrieval

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tavila/amparo-agent/internal/embeddings"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so that stored
// timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Passage is one embedded section of a theme document.
type Passage struct {
	ID        string
	ThemeID   string
	Title     string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// Store persists passages and their embeddings in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a passage store using an existing database connection.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS passages (
			id TEXT PRIMARY KEY,
			theme_id TEXT NOT NULL,
			title TEXT,
			content TEXT NOT NULL,
			embedding BLOB,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_passages_theme ON passages(theme_id);
	`)
	return err
}

// Insert adds one passage. ID and CreatedAt are filled in when empty.
func (s *Store) Insert(ctx context.Context, p *Passage) error {
	stampPassage(p)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO passages (id, theme_id, title, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.ThemeID, p.Title, p.Content, encodeEmbedding(p.Embedding),
		p.CreatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert passage: %w", err)
	}
	return nil
}

// Replace swaps a theme's passages for a new set in one transaction,
// so a re-ingest never leaves the theme half-loaded.
func (s *Store) Replace(ctx context.Context, themeID string, passages []Passage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM passages WHERE theme_id = ?`, themeID); err != nil {
		return fmt.Errorf("clear theme: %w", err)
	}

	for i := range passages {
		p := &passages[i]
		p.ThemeID = themeID
		stampPassage(p)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO passages (id, theme_id, title, content, embedding, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, p.ID, p.ThemeID, p.Title, p.Content, encodeEmbedding(p.Embedding),
			p.CreatedAt.Format(timeLayout)); err != nil {
			return fmt.Errorf("insert passage %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SemanticSearch returns the limit passages most similar to the query
// embedding, with their similarity scores. themeID narrows the search
// to one theme when non-empty.
func (s *Store) SemanticSearch(ctx context.Context, queryEmbedding []float32, themeID string, limit int) ([]Passage, []float32, error) {
	if limit <= 0 {
		return nil, nil, nil
	}

	query := `SELECT id, theme_id, title, content, embedding, created_at
		FROM passages WHERE embedding IS NOT NULL`
	args := []any{}
	if themeID != "" {
		query += ` AND theme_id = ?`
		args = append(args, themeID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query passages: %w", err)
	}
	defer rows.Close()

	type scored struct {
		passage Passage
		score   float32
	}
	var scores []scored

	for rows.Next() {
		p, err := scanPassage(rows)
		if err != nil {
			return nil, nil, err
		}
		if len(p.Embedding) == 0 {
			continue
		}
		scores = append(scores, scored{
			passage: p,
			score:   embeddings.CosineSimilarity(queryEmbedding, p.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	// Partial selection sort for top-k; passage sets per theme are small.
	for i := 0; i < limit && i < len(scores); i++ {
		maxIdx := i
		for j := i + 1; j < len(scores); j++ {
			if scores[j].score > scores[maxIdx].score {
				maxIdx = j
			}
		}
		scores[i], scores[maxIdx] = scores[maxIdx], scores[i]
	}

	passages := make([]Passage, 0, limit)
	simScores := make([]float32, 0, limit)
	for i := 0; i < limit && i < len(scores); i++ {
		passages = append(passages, scores[i].passage)
		simScores = append(simScores, scores[i].score)
	}
	return passages, simScores, nil
}

// CountByTheme returns how many passages a theme has loaded.
func (s *Store) CountByTheme(ctx context.Context, themeID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM passages WHERE theme_id = ?`, themeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count passages: %w", err)
	}
	return count, nil
}

func stampPassage(p *Passage) {
	if p.ID == "" {
		id, _ := uuid.NewV7()
		p.ID = id.String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

func scanPassage(rows *sql.Rows) (Passage, error) {
	var p Passage
	var title sql.NullString
	var embedding []byte
	var createdStr string

	err := rows.Scan(&p.ID, &p.ThemeID, &title, &p.Content, &embedding, &createdStr)
	if err != nil {
		return Passage{}, fmt.Errorf("scan passage: %w", err)
	}

	if title.Valid {
		p.Title = title.String
	}
	p.Embedding = decodeEmbedding(embedding)
	p.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return p, nil
}

// --- embedding helpers ---

func encodeEmbedding(embedding []float32) []byte {
	if len(embedding) == 0 {
		return nil
	}
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	result := make([]float32, len(data)/4)
	for i := range result {
		result[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return result
}
