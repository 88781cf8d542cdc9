// Package profile persists long-lived conversational identities: the
// posture the agent last took with a person, the practical-progress
// axis, behavioral counters, and consolidated topic memory.
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tavila/amparo-agent/internal/mode"
	"github.com/tavila/amparo-agent/internal/topics"
)

// timeLayout is RFC3339 with fixed-width nanoseconds so that stored
// timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrUnknownActor is returned by Lookup for actors that have never
// made contact.
var ErrUnknownActor = errors.New("unknown actor")

// Actor is one person the agent accompanies. Mode and Progress hold
// the persisted string forms; loaders parse unknown values back to
// the defaults instead of failing, so old profiles survive renames.
type Actor struct {
	ID                string
	DisplayName       string
	Mode              string
	Progress          string
	PracticalCooldown int
	LoopCount         int
	RegenCount        int
	Topics            topics.Memory
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Store persists actors in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates an actor store using an existing database connection.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS actors (
			id TEXT PRIMARY KEY,
			display_name TEXT,
			mode TEXT NOT NULL,
			progress TEXT NOT NULL,
			practical_cooldown INTEGER DEFAULT 0,
			loop_count INTEGER DEFAULT 0,
			regen_count INTEGER DEFAULT 0,
			topics TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`)
	return err
}

// Get loads an actor, creating a fresh profile on first contact.
func (s *Store) Get(ctx context.Context, id string) (*Actor, error) {
	if id == "" {
		return nil, fmt.Errorf("empty actor id")
	}

	actor, err := s.fetch(ctx, id)
	if err == nil {
		return actor, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load actor %s: %w", id, err)
	}

	now := time.Now().UTC()
	actor = &Actor{
		ID:        id,
		Mode:      mode.Welcome.String(),
		Progress:  mode.Identification.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Save(ctx, actor); err != nil {
		return nil, fmt.Errorf("create actor %s: %w", id, err)
	}
	return actor, nil
}

// Lookup loads an actor without creating one. Inspection paths use
// this so that reads never mint profiles.
func (s *Store) Lookup(ctx context.Context, id string) (*Actor, error) {
	if id == "" {
		return nil, fmt.Errorf("empty actor id")
	}
	actor, err := s.fetch(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("actor %s: %w", id, ErrUnknownActor)
	}
	if err != nil {
		return nil, fmt.Errorf("load actor %s: %w", id, err)
	}
	return actor, nil
}

// Save upserts an actor and refreshes its UpdatedAt. CreatedAt is
// preserved for existing rows.
func (s *Store) Save(ctx context.Context, a *Actor) error {
	if a.ID == "" {
		return fmt.Errorf("empty actor id")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.UpdatedAt = time.Now().UTC()

	topicsJSON, err := json.Marshal(a.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO actors (id, display_name, mode, progress, practical_cooldown,
			loop_count, regen_count, topics, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = excluded.display_name,
			mode = excluded.mode,
			progress = excluded.progress,
			practical_cooldown = excluded.practical_cooldown,
			loop_count = excluded.loop_count,
			regen_count = excluded.regen_count,
			topics = excluded.topics,
			updated_at = excluded.updated_at
	`, a.ID, a.DisplayName, a.Mode, a.Progress, a.PracticalCooldown,
		a.LoopCount, a.RegenCount, string(topicsJSON),
		a.CreatedAt.Format(timeLayout), a.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save actor %s: %w", a.ID, err)
	}
	return nil
}

// List returns every actor, most recently active first.
func (s *Store) List(ctx context.Context) ([]Actor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, mode, progress, practical_cooldown,
			loop_count, regen_count, topics, created_at, updated_at
		FROM actors
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var actors []Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		actors = append(actors, *a)
	}
	return actors, rows.Err()
}

func (s *Store) fetch(ctx context.Context, id string) (*Actor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, mode, progress, practical_cooldown,
			loop_count, regen_count, topics, created_at, updated_at
		FROM actors WHERE id = ?
	`, id)
	return scanActor(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActor(row rowScanner) (*Actor, error) {
	var a Actor
	var displayName, topicsJSON sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(&a.ID, &displayName, &a.Mode, &a.Progress,
		&a.PracticalCooldown, &a.LoopCount, &a.RegenCount,
		&topicsJSON, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}

	if displayName.Valid {
		a.DisplayName = displayName.String
	}
	if topicsJSON.Valid && topicsJSON.String != "" {
		if err := json.Unmarshal([]byte(topicsJSON.String), &a.Topics); err != nil {
			return nil, fmt.Errorf("unmarshal topics: %w", err)
		}
	}
	a.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	a.UpdatedAt, _ = time.Parse(timeLayout, updatedStr)
	return &a, nil
}
