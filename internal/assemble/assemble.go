// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble merges a layout, storyline, and populated sections
// into one canonical page structure and persists it atomically.
// See docs/ARCHITECTURE § Assembly.
package assemble

import (
	"sort"
	"time"

	"github.com/pdiddy/pageforge/pkg/types"
)

// MergeInput carries the three stage outputs plus page metadata into
// assembly.
type MergeInput struct {
	PageID    string
	PageType  types.PageType
	Metadata  types.PageMetadata
	Pipeline  types.PipelineMetadata
	Layout    *types.PageLayout
	Storyline *types.Storyline
	Sections  []types.PopulatedSection
	Stats     types.GenerationStats
}

// Merge deterministically combines the stage outputs keyed by section
// id. Every section id referenced by the storyline's default flow or
// persona variations must exist in both the layout and the populated
// sections; any mismatch is a PipelineInconsistencyError and nothing is
// assembled.
func Merge(input MergeInput) (*types.PageContentStructure, error) {
	if input.PageID == "" {
		return nil, &types.InputValidationError{Field: "page_id", Reason: "page id is required"}
	}
	if input.Layout == nil || input.Storyline == nil {
		return nil, &types.InputValidationError{Field: "stages", Reason: "layout and storyline are required"}
	}

	layoutIDs := make(map[string]bool, len(input.Layout.Sections))
	for _, s := range input.Layout.Sections {
		layoutIDs[s.SectionID] = true
	}
	populatedIDs := make(map[string]bool, len(input.Sections))
	for _, s := range input.Sections {
		populatedIDs[s.SectionID] = true
	}

	// Layout and content must cover exactly the same sections.
	if missing := diff(layoutIDs, populatedIDs); len(missing) > 0 {
		return nil, &types.PipelineInconsistencyError{Stage: "content", Missing: missing}
	}
	if extra := diff(populatedIDs, layoutIDs); len(extra) > 0 {
		return nil, &types.PipelineInconsistencyError{Stage: "layout", Missing: extra}
	}

	// The default flow must be a permutation of the layout sections.
	if missing := flowMismatch(input.Storyline.DefaultFlow, layoutIDs); len(missing) > 0 {
		return nil, &types.PipelineInconsistencyError{Stage: "storyline", Missing: missing}
	}
	for _, v := range input.Storyline.PersonaVariations {
		if missing := flowMismatch(v.Flow, layoutIDs); len(missing) > 0 {
			return nil, &types.PipelineInconsistencyError{Stage: "storyline", Missing: missing}
		}
	}

	// Base content must be present for every section.
	var empty []string
	for _, s := range input.Sections {
		if s.Content.IsEmpty() {
			empty = append(empty, s.SectionID)
		}
	}
	if len(empty) > 0 {
		sort.Strings(empty)
		return nil, &types.PipelineInconsistencyError{Stage: "content", Missing: empty}
	}

	sections := make([]types.PopulatedSection, len(input.Sections))
	copy(sections, input.Sections)
	sort.SliceStable(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })

	pipeline := input.Pipeline
	if pipeline.GeneratedAt.IsZero() {
		pipeline.GeneratedAt = time.Now().UTC()
	}

	return &types.PageContentStructure{
		PageID:       input.PageID,
		PageType:     input.PageType,
		Sections:     sections,
		Storyline:    *input.Storyline,
		PageMetadata: input.Metadata,
		Pipeline:     pipeline,
		Stats:        input.Stats,
	}, nil
}

// flowMismatch returns the flow entries absent from the layout plus the
// layout sections absent from the flow, sorted. An empty result means
// the flow is a permutation of the layout.
func flowMismatch(flow []string, layoutIDs map[string]bool) []string {
	var missing []string
	seen := make(map[string]bool, len(flow))
	for _, id := range flow {
		if !layoutIDs[id] || seen[id] {
			missing = append(missing, id)
			continue
		}
		seen[id] = true
	}
	for id := range layoutIDs {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// diff returns the keys of a not present in b, sorted.
func diff(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
