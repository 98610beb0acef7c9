// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pdiddy/pageforge/pkg/types"
)

// fakeRanker scores components from a fixed map; unlisted ids score
// fallback.
type fakeRanker struct {
	scores   map[string]float64
	fallback float64
	err      error
}

func (f *fakeRanker) Name() string { return "fake" }

func (f *fakeRanker) Score(_ context.Context, c Component, _ Hints) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if s, ok := f.scores[c.ID]; ok {
		return s, nil
	}
	return f.fallback, nil
}

func newTestGenerator(r Ranker) *Generator {
	return NewGenerator(types.LayoutConfig{}, r)
}

func TestGenerateDefaults(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	l, err := g.Generate(context.Background(), Input{PageType: types.PageProduct})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(l.Sections) < 3 || len(l.Sections) > 8 {
		t.Errorf("section count %d outside default bounds [3,8]", len(l.Sections))
	}
	if !l.ConstraintsSatisfied {
		t.Error("expected constraints satisfied")
	}
	if l.Metadata.Ranker != "fake" {
		t.Errorf("Metadata.Ranker = %q, want fake", l.Metadata.Ranker)
	}
	if l.Metadata.CandidateCount == 0 {
		t.Error("expected nonzero candidate count")
	}

	for i, s := range l.Sections {
		if s.Order != i {
			t.Errorf("section %d has order %d, want contiguous from zero", i, s.Order)
		}
		wantID := fmt.Sprintf("s%02d-%s", i, s.ComponentID)
		if s.SectionID != wantID {
			t.Errorf("section id %q, want %q", s.SectionID, wantID)
		}
	}
}

func TestGenerateNarrativeOrder(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	l, err := g.Generate(context.Background(), Input{PageType: types.PageLanding})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	prev := -1
	for _, s := range l.Sections {
		rank := roleRank[s.NarrativeRole]
		if rank < prev {
			t.Fatalf("narrative role %s out of arc order", s.NarrativeRole)
		}
		prev = rank
	}
}

func TestGenerateRequiredAndExcluded(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	l, err := g.Generate(context.Background(), Input{
		PageType: types.PageProduct,
		Constraints: types.LayoutConstraints{
			RequiredComponents: []string{"metrics-band"},
			ExcludedComponents: []string{"hero-split"},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	have := make(map[string]bool)
	for _, s := range l.Sections {
		have[s.ComponentID] = true
	}
	if !have["metrics-band"] {
		t.Error("required component metrics-band missing")
	}
	if have["hero-split"] {
		t.Error("excluded component hero-split present")
	}
	if !l.ConstraintsSatisfied {
		t.Error("expected constraints satisfied")
	}
}

func TestGeneratePageTypeRestriction(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	// team-intro is only allowed on about and landing pages.
	l, err := g.Generate(context.Background(), Input{
		PageType:    types.PagePricing,
		Constraints: types.LayoutConstraints{MaxSections: 14},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, s := range l.Sections {
		if s.ComponentID == "team-intro" {
			t.Error("team-intro selected on a pricing page")
		}
	}
}

func TestGenerateForcedOrder(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	l, err := g.Generate(context.Background(), Input{
		PageType: types.PageProduct,
		Constraints: types.LayoutConstraints{
			RequiredComponents: []string{"cta-banner", "hero-split"},
			ForcedOrder:        []string{"cta-banner", "hero-split"},
		},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	ctaAt, heroAt := -1, -1
	for i, s := range l.Sections {
		switch s.ComponentID {
		case "cta-banner":
			ctaAt = i
		case "hero-split":
			heroAt = i
		}
	}
	if ctaAt == -1 || heroAt == -1 {
		t.Fatal("forced components not both present")
	}
	if ctaAt > heroAt {
		t.Errorf("forced order broken: cta-banner at %d, hero-split at %d", ctaAt, heroAt)
	}
	if !l.ConstraintsSatisfied {
		t.Error("expected constraints satisfied")
	}
}

func TestGenerateTruncation(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	l, err := g.Generate(context.Background(), Input{
		PageType:    types.PageLanding,
		Constraints: types.LayoutConstraints{MinSections: 3, MaxSections: 5},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(l.Sections) != 5 {
		t.Errorf("section count %d, want 5 after truncation", len(l.Sections))
	}
	if !l.Metadata.Truncated {
		t.Error("expected Metadata.Truncated to be set")
	}
}

func TestGenerateInsufficientContent(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	// Only 13 components are eligible on product pages.
	_, err := g.Generate(context.Background(), Input{
		PageType:    types.PageProduct,
		Constraints: types.LayoutConstraints{MinSections: 14, MaxSections: 14},
	})

	var icErr *types.InsufficientContentError
	if !errors.As(err, &icErr) {
		t.Fatalf("expected InsufficientContentError, got %v", err)
	}
	if icErr.Needed != 14 {
		t.Errorf("Needed = %d, want 14", icErr.Needed)
	}
	if icErr.Available >= icErr.Needed {
		t.Errorf("Available %d should be below Needed %d", icErr.Available, icErr.Needed)
	}
}

func TestGenerateValidation(t *testing.T) {
	g := newTestGenerator(&fakeRanker{fallback: 1.0})

	tests := []struct {
		name  string
		input Input
	}{
		{
			name:  "unknown page type",
			input: Input{PageType: "brochure"},
		},
		{
			name: "min exceeds max",
			input: Input{
				PageType:    types.PageProduct,
				Constraints: types.LayoutConstraints{MinSections: 6, MaxSections: 4},
			},
		},
		{
			name: "unknown required component",
			input: Input{
				PageType:    types.PageProduct,
				Constraints: types.LayoutConstraints{RequiredComponents: []string{"mystery-widget"}},
			},
		},
		{
			name: "required and excluded conflict",
			input: Input{
				PageType: types.PageProduct,
				Constraints: types.LayoutConstraints{
					RequiredComponents: []string{"cta-banner"},
					ExcludedComponents: []string{"cta-banner"},
				},
			},
		},
		{
			name: "required component not allowed on page type",
			input: Input{
				PageType:    types.PagePricing,
				Constraints: types.LayoutConstraints{RequiredComponents: []string{"team-intro"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(context.Background(), tt.input)
			var vErr *types.InputValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected InputValidationError, got %v", err)
			}
		})
	}
}

func TestGenerateRankerError(t *testing.T) {
	g := newTestGenerator(&fakeRanker{err: errors.New("scoring backend down")})

	_, err := g.Generate(context.Background(), Input{PageType: types.PageProduct})
	if err == nil {
		t.Fatal("expected error from failing ranker")
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("hero-split"); !ok {
		t.Error("hero-split should resolve")
	}
	if _, ok := Lookup("no-such-component"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestKeywordRankerScoring(t *testing.T) {
	r := KeywordRanker{}
	comp, _ := Lookup("metrics-band")

	low, err := r.Score(context.Background(), comp, Hints{})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	high, err := r.Score(context.Background(), comp, Hints{
		ContentHints: []string{"uptime", "performance", "benchmark"},
		Excerpts: []types.KnowledgeExcerpt{
			{ID: "m1", Content: "99.99% uptime", EntityType: types.EntityMetric},
		},
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	if high <= low {
		t.Errorf("matching hints should raise score: low=%.2f high=%.2f", low, high)
	}
}
