// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pageforge/pkg/types"
)

func writeExcerptFile(t *testing.T, dir, sourceID string, excerpts []types.KnowledgeExcerpt) string {
	t.Helper()
	file := types.ExcerptFile{SourceID: sourceID, Excerpts: excerpts}
	data, err := yaml.Marshal(&file)
	if err != nil {
		t.Fatalf("marshaling excerpt fixture: %v", err)
	}
	path := filepath.Join(dir, excerptsDir, sourceID+"-excerpts.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing excerpt fixture: %v", err)
	}
	return path
}

func writePersonaFile(t *testing.T, dir string, personas []types.Persona) {
	t.Helper()
	file := types.PersonaFile{Personas: personas}
	data, err := yaml.Marshal(&file)
	if err != nil {
		t.Fatalf("marshaling persona fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, personasDir, "personas.yaml"), data, 0o644); err != nil {
		t.Fatalf("writing persona fixture: %v", err)
	}
}

func newTestKnowledgeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{excerptsDir, personasDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatalf("creating %s: %v", sub, err)
		}
	}
	return dir
}

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := NewStore(types.KnowledgeConfig{KnowledgeDir: dir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func productExcerpts() []types.KnowledgeExcerpt {
	return []types.KnowledgeExcerpt{
		{ID: "acme-001", Content: "Acme Deploy ships container workloads to production in under ninety seconds", EntityType: types.EntityFeature, Section: "features", Confidence: 0.95, Tags: []string{"deploy", "speed"}},
		{ID: "acme-002", Content: "Customers report a forty percent reduction in release engineering effort", EntityType: types.EntityMetric, Section: "metrics", Confidence: 0.9, Tags: []string{"roi"}},
		{ID: "acme-003", Content: "The platform is SOC 2 Type II certified with regional data residency", EntityType: types.EntityFact, Section: "security", Confidence: 0.92, Tags: []string{"compliance"}},
	}
}

func TestIngestAndRetrieve(t *testing.T) {
	dir := newTestKnowledgeDir(t)
	writeExcerptFile(t, dir, "acme-product", productExcerpts())
	store := newTestStore(t, dir)
	ctx := context.Background()

	summary, err := store.Ingest(ctx, io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Indexed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 1 indexed", summary)
	}

	results, err := store.Retrieve(ctx, QueryOptions{Query: "container workloads"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("full-text query returned nothing")
	}
	if results[0].ID != "acme-001" {
		t.Errorf("top result = %s, want acme-001", results[0].ID)
	}
	if results[0].Rank >= 0 {
		t.Errorf("rank = %v, want negative for a relevance match", results[0].Rank)
	}
	if results[0].EntityType != types.EntityFeature {
		t.Errorf("entity type = %s", results[0].EntityType)
	}
	if len(results[0].Tags) != 2 {
		t.Errorf("tags = %v", results[0].Tags)
	}
}

func TestRetrieveStructuredFilters(t *testing.T) {
	dir := newTestKnowledgeDir(t)
	writeExcerptFile(t, dir, "acme-product", productExcerpts())
	store := newTestStore(t, dir)
	ctx := context.Background()

	if _, err := store.Ingest(ctx, io.Discard); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := store.Retrieve(ctx, QueryOptions{EntityType: types.EntityMetric})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 || results[0].ID != "acme-002" {
		t.Errorf("entity filter results = %+v", results)
	}
	if results[0].Rank != 0 {
		t.Errorf("structured-only rank = %v, want 0", results[0].Rank)
	}

	results, err = store.Retrieve(ctx, QueryOptions{Tags: []string{"compliance"}})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 || results[0].ID != "acme-003" {
		t.Errorf("tag filter results = %+v", results)
	}

	// Full-text plus filter narrows within matches.
	results, err = store.Retrieve(ctx, QueryOptions{Query: "acme platform production", EntityType: types.EntityFact})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for _, r := range results {
		if r.EntityType != types.EntityFact {
			t.Errorf("filter leaked entity type %s", r.EntityType)
		}
	}
}

func TestRetrieveLimit(t *testing.T) {
	dir := newTestKnowledgeDir(t)
	writeExcerptFile(t, dir, "acme-product", productExcerpts())
	store := newTestStore(t, dir)
	ctx := context.Background()

	if _, err := store.Ingest(ctx, io.Discard); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results, err := store.Retrieve(ctx, QueryOptions{MaxResults: 2})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want limit 2", len(results))
	}
}

func TestIngestSkipsUnchangedSources(t *testing.T) {
	dir := newTestKnowledgeDir(t)
	path := writeExcerptFile(t, dir, "acme-product", productExcerpts())
	store := newTestStore(t, dir)
	ctx := context.Background()

	if _, err := store.Ingest(ctx, io.Discard); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	summary, err := store.Ingest(ctx, io.Discard)
	if err != nil {
		t.Fatalf("re-Ingest: %v", err)
	}
	if summary.Skipped != 1 || summary.Indexed != 0 || summary.Updated != 0 {
		t.Errorf("unchanged source summary = %+v, want 1 skipped", summary)
	}

	// A touched file re-indexes as an update, replacing prior rows.
	excerpts := productExcerpts()[:2]
	writeExcerptFile(t, dir, "acme-product", excerpts)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	summary, err = store.Ingest(ctx, io.Discard)
	if err != nil {
		t.Fatalf("re-Ingest after change: %v", err)
	}
	if summary.Updated != 1 {
		t.Errorf("changed source summary = %+v, want 1 updated", summary)
	}

	results, err := store.Retrieve(ctx, QueryOptions{SourceID: "acme-product", MaxResults: 10})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d excerpts after update, want 2", len(results))
	}
}

func TestIngestRejectsInvalidExcerpts(t *testing.T) {
	dir := newTestKnowledgeDir(t)
	writeExcerptFile(t, dir, "bad-entity", []types.KnowledgeExcerpt{
		{ID: "x-001", Content: "some claim", EntityType: "rumor"},
	})
	writeExcerptFile(t, dir, "empty-content", []types.KnowledgeExcerpt{
		{ID: "x-002", EntityType: types.EntityFact},
	})
	writeExcerptFile(t, dir, "acme-product", productExcerpts())
	store := newTestStore(t, dir)

	summary, err := store.Ingest(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Failed != 2 || summary.Indexed != 1 {
		t.Errorf("summary = %+v, want 2 failed and 1 indexed", summary)
	}
}

func TestPersonas(t *testing.T) {
	dir := newTestKnowledgeDir(t)
	writeExcerptFile(t, dir, "acme-product", productExcerpts())
	writePersonaFile(t, dir, []types.Persona{
		{ID: "developer", Label: "Developer", Keywords: []string{"api", "sdk"}, Priority: 2},
		{ID: "ciso", Label: "Security Lead", Keywords: []string{"soc2"}, Priority: 3},
		{ID: "founder", Label: "Founder", Priority: 1},
	})
	store := newTestStore(t, dir)
	ctx := context.Background()

	summary, err := store.Ingest(ctx, io.Discard)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Personas != 3 {
		t.Fatalf("persona count = %d, want 3", summary.Personas)
	}

	personas, err := store.Personas(ctx)
	if err != nil {
		t.Fatalf("Personas: %v", err)
	}
	if len(personas) != 3 {
		t.Fatalf("got %d personas", len(personas))
	}
	// Priority descending.
	if personas[0].ID != "ciso" || personas[1].ID != "developer" || personas[2].ID != "founder" {
		t.Errorf("order = %s, %s, %s", personas[0].ID, personas[1].ID, personas[2].ID)
	}
	if len(personas[1].Keywords) != 2 {
		t.Errorf("developer keywords = %v", personas[1].Keywords)
	}
}

func TestPersonasDirOptional(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, excerptsDir), 0o755); err != nil {
		t.Fatal(err)
	}
	writeExcerptFile(t, dir, "acme-product", productExcerpts())
	store := newTestStore(t, dir)

	summary, err := store.Ingest(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Ingest without personas dir: %v", err)
	}
	if summary.Personas != 0 {
		t.Errorf("personas = %d, want 0", summary.Personas)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := newTestKnowledgeDir(t)
	writeExcerptFile(t, dir, "acme-product", productExcerpts())
	ctx := context.Background()

	store, err := NewStore(types.KnowledgeConfig{KnowledgeDir: dir})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Ingest(ctx, io.Discard); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	store.Close()

	reopened := newTestStore(t, dir)
	results, err := reopened.Retrieve(ctx, QueryOptions{Query: "ninety seconds"})
	if err != nil {
		t.Fatalf("Retrieve after reopen: %v", err)
	}
	if len(results) == 0 || results[0].ID != "acme-001" {
		t.Errorf("results after reopen = %+v", results)
	}
}
