package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so that stored
// timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists conversation messages in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a message store using an existing database connection.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			channel TEXT,
			block_root TEXT,
			chunk_index INTEGER DEFAULT 0,
			chunk_count INTEGER DEFAULT 0,
			trace TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_messages_actor ON messages(actor_id, created_at);
		CREATE INDEX IF NOT EXISTS idx_messages_block ON messages(block_root);
	`)
	return err
}

// SaveMessage inserts one message. ID and CreatedAt are filled in when
// empty.
func (s *Store) SaveMessage(ctx context.Context, m *Message) error {
	stampMessage(m)
	return insertMessage(ctx, s.db, m)
}

// SaveTurn persists a completed exchange atomically: the user message,
// the assistant block root (full text plus trace), one row per chunk,
// and the analysis summary. Nothing is written if any row fails.
// Returns the block root ID.
func (s *Store) SaveTurn(ctx context.Context, user Message, reply Reply) (string, error) {
	if user.ActorID == "" {
		return "", fmt.Errorf("save turn: empty actor id")
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	stampMessage(&user)

	root := Message{
		ActorID:    user.ActorID,
		Role:       RoleAssistant,
		Content:    reply.Text,
		Channel:    user.Channel,
		ChunkCount: len(reply.Chunks),
		Trace:      reply.Trace,
	}
	stampMessage(&root)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertMessage(ctx, tx, &user); err != nil {
		return "", fmt.Errorf("user message: %w", err)
	}
	if err := insertMessage(ctx, tx, &root); err != nil {
		return "", fmt.Errorf("block root: %w", err)
	}

	for i, chunk := range reply.Chunks {
		c := Message{
			ActorID:    user.ActorID,
			Role:       RoleAssistant,
			Content:    chunk,
			Channel:    user.Channel,
			BlockRoot:  root.ID,
			ChunkIndex: i,
			ChunkCount: len(reply.Chunks),
		}
		stampMessage(&c)
		if err := insertMessage(ctx, tx, &c); err != nil {
			return "", fmt.Errorf("chunk %d: %w", i, err)
		}
	}

	if reply.Analysis != "" {
		a := Message{
			ActorID: user.ActorID,
			Role:    RoleAnalysis,
			Content: reply.Analysis,
			Channel: user.Channel,
		}
		stampMessage(&a)
		if err := insertMessage(ctx, tx, &a); err != nil {
			return "", fmt.Errorf("analysis message: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return root.ID, nil
}

// RecentHistory returns the last limit user and assistant root messages
// for an actor, oldest first. Chunk rows and analysis rows are excluded.
func (s *Store) RecentHistory(ctx context.Context, actorID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, role, content, channel, block_root, chunk_index, chunk_count, trace, created_at
		FROM messages
		WHERE actor_id = ? AND role IN ('user', 'assistant') AND block_root IS NULL
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	reverseMessages(msgs)
	return msgs, nil
}

// LastUserMessages returns the contents of the actor's last n user
// messages, oldest first.
func (s *Store) LastUserMessages(ctx context.Context, actorID string, n int) ([]string, error) {
	return s.lastContents(ctx, actorID, RoleUser, n)
}

// LastAssistantReplies returns the full text of the actor's last n
// assistant replies (block roots only), oldest first.
func (s *Store) LastAssistantReplies(ctx context.Context, actorID string, n int) ([]string, error) {
	return s.lastContents(ctx, actorID, RoleAssistant, n)
}

func (s *Store) lastContents(ctx context.Context, actorID string, role Role, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT content FROM messages
		WHERE actor_id = ? AND role = ? AND block_root IS NULL
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, actorID, string(role), n)
	if err != nil {
		return nil, fmt.Errorf("query %s messages: %w", role, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Trace returns the pipeline trace stored on an assistant block root.
func (s *Store) Trace(ctx context.Context, rootID string) ([]byte, error) {
	var trace sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT trace FROM messages WHERE id = ?`, rootID).Scan(&trace)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("message not found: %s", rootID)
	}
	if err != nil {
		return nil, fmt.Errorf("query trace: %w", err)
	}
	if !trace.Valid {
		return nil, nil
	}
	return []byte(trace.String), nil
}

// Chunks returns the chunk rows of a block root in delivery order.
func (s *Store) Chunks(ctx context.Context, rootID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, role, content, channel, block_root, chunk_index, chunk_count, trace, created_at
		FROM messages
		WHERE block_root = ?
		ORDER BY chunk_index ASC
	`, rootID)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// MessageCount returns how many user and assistant root messages an
// actor has. Zero means this is the actor's first turn.
func (s *Store) MessageCount(ctx context.Context, actorID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE actor_id = ? AND role IN ('user', 'assistant') AND block_root IS NULL
	`, actorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMessage(ctx context.Context, db execer, m *Message) error {
	var blockRoot, trace any
	if m.BlockRoot != "" {
		blockRoot = m.BlockRoot
	}
	if len(m.Trace) > 0 {
		trace = string(m.Trace)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, actor_id, role, content, channel, block_root, chunk_index, chunk_count, trace, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ActorID, string(m.Role), m.Content, m.Channel,
		blockRoot, m.ChunkIndex, m.ChunkCount, trace,
		m.CreatedAt.Format(timeLayout))
	return err
}

func stampMessage(m *Message) {
	if m.ID == "" {
		id, _ := uuid.NewV7()
		m.ID = id.String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var msgs []Message
	for rows.Next() {
		var m Message
		var channel, blockRoot, trace sql.NullString
		var createdStr string

		err := rows.Scan(&m.ID, &m.ActorID, &m.Role, &m.Content,
			&channel, &blockRoot, &m.ChunkIndex, &m.ChunkCount,
			&trace, &createdStr)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		if channel.Valid {
			m.Channel = channel.String
		}
		if blockRoot.Valid {
			m.BlockRoot = blockRoot.String
		}
		if trace.Valid {
			m.Trace = []byte(trace.String)
		}
		m.CreatedAt, _ = time.Parse(timeLayout, createdStr)

		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func reverseMessages(msgs []Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
