// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pdiddy/pageforge/pkg/types"
)

func validInput() MergeInput {
	return MergeInput{
		PageID:   "home",
		PageType: types.PageLanding,
		Metadata: types.PageMetadata{Title: "Acme"},
		Layout: &types.PageLayout{
			PageType: types.PageLanding,
			Sections: []types.ComponentSelection{
				{SectionID: "s00-hero-centered", ComponentID: "hero-centered", Order: 0, NarrativeRole: types.RoleHook},
				{SectionID: "s01-cta-banner", ComponentID: "cta-banner", Order: 1, NarrativeRole: types.RoleConversion},
			},
		},
		Storyline: &types.Storyline{
			DefaultFlow: []string{"s00-hero-centered", "s01-cta-banner"},
			PersonaVariations: map[string]types.FlowVariation{
				"developer": {Flow: []string{"s01-cta-banner", "s00-hero-centered"}},
			},
		},
		Sections: []types.PopulatedSection{
			{SectionID: "s01-cta-banner", ComponentID: "cta-banner", Order: 1,
				Content: types.PopulatedContent{Headline: "Start free"}},
			{SectionID: "s00-hero-centered", ComponentID: "hero-centered", Order: 0,
				Content: types.PopulatedContent{Headline: "Ship faster"}},
		},
	}
}

func TestMerge(t *testing.T) {
	structure, err := Merge(validInput())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if structure.PageID != "home" {
		t.Errorf("PageID = %q", structure.PageID)
	}
	// Sections come out ordered by Order regardless of input order.
	if structure.Sections[0].SectionID != "s00-hero-centered" {
		t.Errorf("sections not sorted by order: %s first", structure.Sections[0].SectionID)
	}
	if structure.Pipeline.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should default when unset")
	}
}

func TestMergeInconsistencies(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MergeInput)
		missing string
	}{
		{
			name: "populated section missing",
			mutate: func(in *MergeInput) {
				in.Sections = in.Sections[:1]
			},
			missing: "s00-hero-centered",
		},
		{
			name: "populated section unknown to layout",
			mutate: func(in *MergeInput) {
				in.Sections = append(in.Sections, types.PopulatedSection{
					SectionID: "s09-ghost", Content: types.PopulatedContent{Headline: "x"},
				})
			},
			missing: "s09-ghost",
		},
		{
			name: "default flow references unknown section",
			mutate: func(in *MergeInput) {
				in.Storyline.DefaultFlow = []string{"s00-hero-centered", "s09-ghost"}
			},
			missing: "s09-ghost",
		},
		{
			name: "persona flow not a permutation",
			mutate: func(in *MergeInput) {
				in.Storyline.PersonaVariations["developer"] = types.FlowVariation{
					Flow: []string{"s00-hero-centered"},
				}
			},
			missing: "s01-cta-banner",
		},
		{
			name: "empty base content",
			mutate: func(in *MergeInput) {
				in.Sections[0].Content = types.PopulatedContent{}
			},
			missing: "s01-cta-banner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			_, err := Merge(input)
			var pErr *types.PipelineInconsistencyError
			if !errors.As(err, &pErr) {
				t.Fatalf("expected PipelineInconsistencyError, got %v", err)
			}
			found := false
			for _, id := range pErr.Missing {
				if id == tt.missing {
					found = true
				}
			}
			if !found {
				t.Errorf("Missing = %v, want to include %s", pErr.Missing, tt.missing)
			}
		})
	}
}

func TestMergeValidation(t *testing.T) {
	input := validInput()
	input.PageID = ""
	if _, err := Merge(input); err == nil {
		t.Error("expected error for missing page id")
	}

	input = validInput()
	input.Layout = nil
	if _, err := Merge(input); err == nil {
		t.Error("expected error for missing layout")
	}
}

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	store, err := NewSnapshotStore(types.SnapshotConfig{SnapshotDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewSnapshotStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	structure, err := Merge(validInput())
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	structure.Pipeline.GeneratedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, structure); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.PageID != structure.PageID {
		t.Errorf("PageID = %q", loaded.PageID)
	}
	if len(loaded.Sections) != len(structure.Sections) {
		t.Errorf("section count %d, want %d", len(loaded.Sections), len(structure.Sections))
	}
	if loaded.Sections[0].Content.Headline != "Ship faster" {
		t.Errorf("headline = %q", loaded.Sections[0].Content.Headline)
	}
	if _, ok := loaded.Storyline.PersonaVariations["developer"]; !ok {
		t.Error("persona variation lost in round trip")
	}
}

func TestSnapshotReplacesPrior(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	structure, _ := Merge(validInput())
	if err := store.Save(ctx, structure); err != nil {
		t.Fatalf("Save: %v", err)
	}

	structure.Sections[0].Content.Headline = "Ship even faster"
	if err := store.Save(ctx, structure); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	loaded, err := store.Load(ctx, "home")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Sections[0].Content.Headline != "Ship even faster" {
		t.Errorf("snapshot not replaced: %q", loaded.Sections[0].Content.Headline)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("snapshot count %d, want 1 after replacement", len(infos))
	}
}

func TestSnapshotLoadMissing(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Load(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing snapshot")
	}
}

func TestSnapshotSaveRejectsEmpty(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(context.Background(), nil); err == nil {
		t.Error("expected error for nil structure")
	}
	if err := store.Save(context.Background(), &types.PageContentStructure{}); err == nil {
		t.Error("expected error for structure without page id")
	}
}
