// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists knowledge excerpts and persona definitions
// and builds a retrieval index. It is the grounding source the pipeline
// queries for content generation and layout fit.
// See docs/ARCHITECTURE § Knowledge Base.
package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pageforge/pkg/types"
)

const (
	excerptsDir = "excerpts"
	personasDir = "personas"
	indexDir    = "index"
	dbFile      = "pageforge.db"
)

// Store manages the knowledge base SQLite database.
type Store struct {
	db           *sql.DB
	knowledgeDir string
	maxResults   int
}

// NewStore opens or creates the knowledge base SQLite database at
// knowledgeDir/index/pageforge.db, creating the schema if it does not
// exist.
func NewStore(cfg types.KnowledgeConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.KnowledgeDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:           db,
		knowledgeDir: cfg.KnowledgeDir,
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS excerpts (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			source_id TEXT NOT NULL,
			section TEXT,
			confidence REAL,
			tags TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_excerpts_source_id ON excerpts(source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_excerpts_entity_type ON excerpts(entity_type)`,
		`CREATE TABLE IF NOT EXISTS personas (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			keywords TEXT,
			priority INTEGER,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			source_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='excerpts_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE excerpts_fts USING fts5(content, content=excerpts, content_rowid=rowid)`,
			`CREATE TRIGGER excerpts_ai AFTER INSERT ON excerpts BEGIN
				INSERT INTO excerpts_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER excerpts_ad AFTER DELETE ON excerpts BEGIN
				INSERT INTO excerpts_fts(excerpts_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
			`CREATE TRIGGER excerpts_au AFTER UPDATE ON excerpts BEGIN
				INSERT INTO excerpts_fts(excerpts_fts, rowid, content) VALUES('delete', old.rowid, old.content);
				INSERT INTO excerpts_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a knowledge base indexing run.
type IngestSummary struct {
	Indexed  int
	Updated  int
	Skipped  int
	Failed   int
	Personas int
}

// Total returns the number of excerpt files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads excerpt YAML files from knowledgeDir/excerpts/ and
// persona YAML files from knowledgeDir/personas/ and populates the
// database. Excerpt files are tracked by modification time so unchanged
// sources are skipped on subsequent runs.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	excDir := filepath.Join(s.knowledgeDir, excerptsDir)
	entries, err := os.ReadDir(excDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading excerpts directory %s: %w", excDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-excerpts.yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		sourceID := strings.TrimSuffix(entry.Name(), "-excerpts.yaml")
		filePath := filepath.Join(excDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Skip files unchanged since last indexing.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE source_id = ?`, sourceID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", sourceID)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		var file types.ExcerptFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestSource(ctx, sourceID, &file, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", sourceID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d excerpts)\n", sourceID, len(file.Excerpts))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d excerpts)\n", sourceID, len(file.Excerpts))
			summary.Indexed++
		}
	}

	personaCount, err := s.ingestPersonas(ctx, w)
	if err != nil {
		return summary, err
	}
	summary.Personas = personaCount

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d, personas: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.Personas)

	return summary, nil
}

func (s *Store) ingestSource(ctx context.Context, sourceID string, file *types.ExcerptFile, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Remove old excerpts if updating.
	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM excerpts WHERE source_id = ?`, sourceID); err != nil {
			return fmt.Errorf("deleting old excerpts: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO excerpts (id, content, entity_type, source_id, section, confidence, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, exc := range file.Excerpts {
		if exc.Content == "" {
			return fmt.Errorf("excerpt %s: empty content", exc.ID)
		}
		if !types.ValidEntityTypes[exc.EntityType] {
			return fmt.Errorf("excerpt %s: invalid entity type %q", exc.ID, exc.EntityType)
		}
		tagsJSON, _ := json.Marshal(exc.Tags)
		_, err := stmt.ExecContext(ctx,
			exc.ID, exc.Content, string(exc.EntityType), sourceID,
			exc.Section, exc.Confidence, string(tagsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting excerpt %s: %w", exc.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (source_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(source_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		sourceID, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// ingestPersonas reads every persona YAML file under knowledgeDir/personas/
// and upserts the definitions. A missing personas directory is not an
// error; pages can be generated without persona variants.
func (s *Store) ingestPersonas(ctx context.Context, w io.Writer) (int, error) {
	perDir := filepath.Join(s.knowledgeDir, personasDir)
	entries, err := os.ReadDir(perDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading personas directory %s: %w", perDir, err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(perDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  personas %s: %v\n", entry.Name(), err)
			continue
		}

		var file types.PersonaFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			fmt.Fprintf(w, "failed  personas %s: parse error: %v\n", entry.Name(), err)
			continue
		}

		for _, p := range file.Personas {
			if p.ID == "" {
				fmt.Fprintf(w, "failed  persona in %s: missing id\n", entry.Name())
				continue
			}
			keywordsJSON, _ := json.Marshal(p.Keywords)
			_, err := s.db.ExecContext(ctx,
				`INSERT INTO personas (id, label, keywords, priority, description)
				 VALUES (?, ?, ?, ?, ?)
				 ON CONFLICT(id) DO UPDATE SET
					label=excluded.label, keywords=excluded.keywords,
					priority=excluded.priority, description=excluded.description`,
				p.ID, p.Label, string(keywordsJSON), p.Priority, p.Description,
			)
			if err != nil {
				return count, fmt.Errorf("upserting persona %s: %w", p.ID, err)
			}
			count++
		}
	}

	return count, nil
}

// Personas returns all persona definitions ordered by priority
// descending, then id.
func (s *Store) Personas(ctx context.Context) ([]types.Persona, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, keywords, priority, description FROM personas
		 ORDER BY priority DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying personas: %w", err)
	}
	defer rows.Close()

	var personas []types.Persona
	for rows.Next() {
		var (
			p            types.Persona
			keywordsJSON sql.NullString
			description  sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Label, &keywordsJSON, &p.Priority, &description); err != nil {
			return nil, fmt.Errorf("scanning persona: %w", err)
		}
		if keywordsJSON.Valid {
			json.Unmarshal([]byte(keywordsJSON.String), &p.Keywords)
		}
		if description.Valid {
			p.Description = description.String
		}
		personas = append(personas, p)
	}
	return personas, rows.Err()
}
