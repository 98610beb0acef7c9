// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pageforge/pkg/types"
)

const snapshotDBFile = "snapshots.db"

// SnapshotStore persists assembled page structures. Commits are atomic
// per page: either a full valid structure replaces the prior snapshot,
// or the prior snapshot is left untouched.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore opens or creates the snapshot database at
// snapshotDir/snapshots.db.
func NewSnapshotStore(cfg types.SnapshotConfig) (*SnapshotStore, error) {
	if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}

	dbPath := filepath.Join(cfg.SnapshotDir, snapshotDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening snapshot database: %w", err)
	}

	s := &SnapshotStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

func (s *SnapshotStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		page_id TEXT PRIMARY KEY,
		page_type TEXT NOT NULL,
		content TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		stored_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Save commits the structure as the page's current snapshot. The write
// is a single transaction: on any failure the prior snapshot survives.
func (s *SnapshotStore) Save(ctx context.Context, structure *types.PageContentStructure) error {
	if structure == nil || structure.PageID == "" {
		return &types.InputValidationError{Field: "structure", Reason: "structure with a page id is required"}
	}

	data, err := json.Marshal(structure)
	if err != nil {
		return fmt.Errorf("marshaling structure: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (page_id, page_type, content, generated_at, stored_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(page_id) DO UPDATE SET
			page_type=excluded.page_type, content=excluded.content,
			generated_at=excluded.generated_at, stored_at=excluded.stored_at`,
		structure.PageID, string(structure.PageType), string(data),
		structure.Pipeline.GeneratedAt.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting snapshot: %w", err)
	}

	return tx.Commit()
}

// Load returns the current snapshot for a page, or sql.ErrNoRows
// wrapped when none exists.
func (s *SnapshotStore) Load(ctx context.Context, pageID string) (*types.PageContentStructure, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM snapshots WHERE page_id = ?`, pageID,
	).Scan(&content)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no snapshot for page %s: %w", pageID, err)
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var structure types.PageContentStructure
	if err := json.Unmarshal([]byte(content), &structure); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &structure, nil
}

// SnapshotInfo summarizes one stored snapshot.
type SnapshotInfo struct {
	PageID      string    `json:"page_id"`
	PageType    string    `json:"page_type"`
	GeneratedAt time.Time `json:"generated_at"`
}

// List returns a summary of every stored snapshot, ordered by page id.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_id, page_type, generated_at FROM snapshots ORDER BY page_id`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var generatedAt string
		if err := rows.Scan(&info.PageID, &info.PageType, &generatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, generatedAt); err == nil {
			info.GeneratedAt = t
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
