// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/pageforge/pkg/types"
)

// QueryOptions holds parameters for knowledge base queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// EntityType filters by excerpt entity type.
	EntityType types.EntityType

	// Tags filters by one or more tags with AND semantics.
	Tags []string

	// SourceID filters by source document.
	SourceID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.EntityType == "" && len(q.Tags) == 0 && q.SourceID == ""
}

// QueryResult is a KnowledgeExcerpt with its retrieval rank.
type QueryResult struct {
	types.KnowledgeExcerpt

	// Rank is the FTS5 relevance rank; more negative is more relevant.
	// Zero for structured-only queries.
	Rank float64 `json:"rank" yaml:"rank"`
}

// Retrieve queries the knowledge base with optional full-text search
// and structured filters. Results are ranked by relevance for full-text
// queries or sorted by source_id, section for structured-only queries.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT e.id, e.content, e.entity_type, e.source_id, e.section,
				e.confidence, e.tags, excerpts_fts.rank
			FROM excerpts_fts
			JOIN excerpts e ON e.rowid = excerpts_fts.rowid
			WHERE excerpts_fts MATCH ?`)
		args = append(args, ftsQuery(opts.Query))
	} else {
		qb.WriteString(
			`SELECT e.id, e.content, e.entity_type, e.source_id, e.section,
				e.confidence, e.tags, 0 AS rank
			FROM excerpts e
			WHERE 1=1`)
	}

	if opts.EntityType != "" {
		qb.WriteString(` AND e.entity_type = ?`)
		args = append(args, string(opts.EntityType))
	}
	if opts.SourceID != "" {
		qb.WriteString(` AND e.source_id = ?`)
		args = append(args, opts.SourceID)
	}
	for _, tag := range opts.Tags {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(e.tags) WHERE value = ?)`)
		args = append(args, tag)
	}

	if useFTS {
		qb.WriteString(` ORDER BY excerpts_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY e.source_id, e.section`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var (
			qr         QueryResult
			entityType string
			section    sql.NullString
			tagsJSON   sql.NullString
		)
		if err := rows.Scan(
			&qr.ID, &qr.Content, &entityType, &qr.SourceID, &section,
			&qr.Confidence, &tagsJSON, &qr.Rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		qr.EntityType = types.EntityType(entityType)
		if section.Valid {
			qr.Section = section.String
		}
		if tagsJSON.Valid {
			json.Unmarshal([]byte(tagsJSON.String), &qr.Tags)
		}
		results = append(results, qr)
	}
	return results, rows.Err()
}

// ftsQuery turns free-form hint text into an FTS5 OR query. Raw visitor
// or hint text can contain characters FTS5 treats as syntax, so each
// term is quoted.
func ftsQuery(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return text
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, ``) + `"`
	}
	return strings.Join(quoted, " OR ")
}
