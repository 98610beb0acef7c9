// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the page generation stages: layout
// selection, storyline derivation, content population, and assembly
// into the persisted page structure. Stages run sequentially per
// request; a hard failure in any stage aborts the run and leaves any
// previously persisted snapshot untouched.
// See docs/ARCHITECTURE § Generation Pipeline.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/pageforge/internal/assemble"
	"github.com/pdiddy/pageforge/internal/content"
	"github.com/pdiddy/pageforge/internal/knowledge"
	"github.com/pdiddy/pageforge/internal/layout"
	"github.com/pdiddy/pageforge/internal/storyline"
	"github.com/pdiddy/pageforge/pkg/types"
)

// ExcerptSource supplies grounding excerpts for a generation run.
// *knowledge.Store satisfies it; tests use fakes.
type ExcerptSource interface {
	Retrieve(ctx context.Context, opts knowledge.QueryOptions) ([]knowledge.QueryResult, error)
}

// Saver persists assembled page structures. *assemble.SnapshotStore
// satisfies it.
type Saver interface {
	Save(ctx context.Context, structure *types.PageContentStructure) error
}

// Runner drives one generation request through all stages.
type Runner struct {
	cfg       types.PipelineConfig
	excerpts  ExcerptSource
	layouts   *layout.Generator
	stories   *storyline.Generator
	contents  *content.Generator
	snapshots Saver
	now       func() time.Time
}

// NewRunner wires the stage generators. snapshots may be nil when the
// caller handles persistence itself.
func NewRunner(cfg types.PipelineConfig, excerpts ExcerptSource, oracle content.Oracle, snapshots Saver) *Runner {
	return &Runner{
		cfg:       cfg,
		excerpts:  excerpts,
		layouts:   layout.NewGenerator(cfg.Layout, layout.KeywordRanker{}),
		stories:   storyline.NewGenerator(),
		contents:  content.NewGenerator(cfg.Content, oracle),
		snapshots: snapshots,
		now:       time.Now,
	}
}

// Outcome is the result of one pipeline run.
type Outcome struct {
	// Structure is the assembled page, already persisted when the runner
	// has a snapshot store.
	Structure *types.PageContentStructure

	// Validation is the advisory storyline grade. A low score never
	// fails the run.
	Validation types.StorylineValidation
}

// Run executes the pipeline for one request, reporting stage progress
// to w. The request is validated before any stage or external call.
func (r *Runner) Run(ctx context.Context, req types.GenerationRequest, w io.Writer) (*Outcome, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	stats := types.GenerationStats{}
	timed := func(stage string, start time.Time) {
		stats.StageTimings = append(stats.StageTimings, types.StageTiming{
			Stage:    stage,
			Duration: r.now().Sub(start),
		})
	}

	excerpts, err := r.retrieveExcerpts(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("retrieving knowledge: %w", err)
	}
	fmt.Fprintf(w, "Retrieved %d excerpts for %s\n", len(excerpts), req.PageID)

	start := r.now()
	pageLayout, err := r.layouts.Generate(ctx, layout.Input{
		PageType:     req.PageType,
		Personas:     req.Personas,
		ContentHints: req.ContentHints,
		Excerpts:     excerpts,
		Constraints:  req.Constraints,
	})
	timed("layout", start)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Layout: %d sections selected\n", len(pageLayout.Sections))

	start = r.now()
	story, err := r.stories.Generate(pageLayout, req.Personas)
	timed("storyline", start)
	if err != nil {
		return nil, err
	}
	validation := r.stories.Validate(story, req.PageType)
	fmt.Fprintf(w, "Storyline: %s journey, coherence %d/100\n", req.PageType, validation.Score)
	for _, v := range validation.Violations {
		fmt.Fprintf(w, "warning: storyline: %s (%s)\n", v.Message, v.Code)
	}

	start = r.now()
	populated, err := r.contents.Populate(ctx, content.Input{
		PageTitle: req.Title,
		Layout:    pageLayout,
		Storyline: story,
		Personas:  req.Personas,
		Tone:      req.Brand.Tone,
		Excerpts:  excerpts,
	})
	timed("content", start)
	if err != nil {
		return nil, err
	}
	stats.TokensUsed = populated.TokensUsed
	stats.OracleCalls = populated.OracleCalls
	stats.Degradations = populated.Degradations
	fmt.Fprintf(w, "Content: %d sections populated, %d oracle calls, %d tokens\n",
		len(populated.Sections), populated.OracleCalls, populated.TokensUsed)
	for _, d := range populated.Degradations {
		fmt.Fprintf(w, "warning: degraded %s: %s\n", d.SectionID, d.Reason)
	}

	start = r.now()
	structure, err := assemble.Merge(assemble.MergeInput{
		PageID:   req.PageID,
		PageType: req.PageType,
		Metadata: types.PageMetadata{
			Title:       req.Title,
			Description: req.Description,
			Brand:       req.Brand,
			Animation:   req.Animation,
		},
		Pipeline: types.PipelineMetadata{
			GeneratedAt:     r.now(),
			Model:           r.cfg.Content.Model,
			KnowledgeBaseID: req.KnowledgeBaseID,
		},
		Layout:    pageLayout,
		Storyline: story,
		Sections:  populated.Sections,
		Stats:     stats,
	})
	timed("assemble", start)
	if err != nil {
		return nil, err
	}
	structure.Stats.StageTimings = stats.StageTimings

	if r.snapshots != nil {
		if err := r.snapshots.Save(ctx, structure); err != nil {
			return nil, fmt.Errorf("persisting snapshot for %s: %w", req.PageID, err)
		}
		fmt.Fprintf(w, "Snapshot saved: %s\n", req.PageID)
	}

	return &Outcome{Structure: structure, Validation: validation}, nil
}

// retrieveExcerpts queries the knowledge base using the request's
// content hints as search terms. A missing source yields an empty
// excerpt set, which downstream stages degrade around rather than
// failing.
func (r *Runner) retrieveExcerpts(ctx context.Context, req types.GenerationRequest) ([]types.KnowledgeExcerpt, error) {
	if r.excerpts == nil {
		return nil, nil
	}
	query := strings.TrimSpace(strings.Join(req.ContentHints, " "))
	results, err := r.excerpts.Retrieve(ctx, knowledge.QueryOptions{Query: query})
	if err != nil {
		return nil, err
	}
	excerpts := make([]types.KnowledgeExcerpt, len(results))
	for i, res := range results {
		excerpts[i] = res.KnowledgeExcerpt
	}
	return excerpts, nil
}

func validateRequest(req types.GenerationRequest) error {
	if req.PageID == "" {
		return &types.InputValidationError{Field: "page_id", Reason: "page id is required"}
	}
	if !types.ValidPageTypes[req.PageType] {
		return &types.InputValidationError{Field: "page_type", Reason: fmt.Sprintf("unknown page type %q", req.PageType)}
	}
	if req.Title == "" {
		return &types.InputValidationError{Field: "title", Reason: "title is required"}
	}
	for i, p := range req.Personas {
		if p.ID == "" {
			return &types.InputValidationError{Field: fmt.Sprintf("personas[%d].id", i), Reason: "persona id is required"}
		}
	}
	if c := req.Constraints; c.MinSections > 0 && c.MaxSections > 0 && c.MinSections > c.MaxSections {
		return &types.InputValidationError{Field: "constraints", Reason: "min_sections exceeds max_sections"}
	}
	return nil
}
