// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pdiddy/pageforge/pkg/types"
)

// Input is the layout generation request.
type Input struct {
	// PageType is the kind of page to lay out.
	PageType types.PageType

	// Personas lists the archetypes the page will serve. Not used for
	// selection directly but recorded for downstream stages.
	Personas []types.Persona

	// ContentHints are free-form topic hints steering selection.
	ContentHints []string

	// Excerpts are knowledge excerpts grounding the fit scoring.
	Excerpts []types.KnowledgeExcerpt

	// Constraints bound the selection.
	Constraints types.LayoutConstraints
}

// Generator produces page layouts. Construct with NewGenerator so tests
// can inject a fake ranker; there is no package-level instance.
type Generator struct {
	ranker Ranker
	cfg    types.LayoutConfig
	now    func() time.Time
}

// NewGenerator returns a layout generator using the given ranker.
func NewGenerator(cfg types.LayoutConfig, r Ranker) *Generator {
	if cfg.DefaultMinSections <= 0 {
		cfg.DefaultMinSections = 3
	}
	if cfg.DefaultMaxSections <= 0 {
		cfg.DefaultMaxSections = 8
	}
	return &Generator{ranker: r, cfg: cfg, now: time.Now}
}

// candidate pairs a component with its fit score.
type candidate struct {
	comp  Component
	score float64
}

// Generate selects component variants and ordering for the requested
// page under the input's constraints. Orders in the result are
// contiguous from zero; required components are present, excluded ones
// absent, and any forced-order sequence is preserved as a subsequence.
func (g *Generator) Generate(ctx context.Context, input Input) (*types.PageLayout, error) {
	cons, err := g.validate(input)
	if err != nil {
		return nil, err
	}

	excluded := toSet(cons.ExcludedComponents)
	required := toSet(cons.RequiredComponents)
	forced := toSet(cons.ForcedOrder)

	hints := Hints{ContentHints: input.ContentHints, Excerpts: input.Excerpts}

	// Score every eligible candidate.
	var candidates []candidate
	for _, c := range Catalog() {
		if excluded[c.ID] || !c.allowedOn(input.PageType) {
			continue
		}
		score, err := g.ranker.Score(ctx, c, hints)
		if err != nil {
			return nil, fmt.Errorf("scoring candidate %s: %w", c.ID, err)
		}
		candidates = append(candidates, candidate{comp: c, score: score})
	}

	selected := g.selectCandidates(candidates, required, cons)
	if len(selected) < cons.MinSections {
		return nil, &types.InsufficientContentError{
			PageType:  input.PageType,
			Needed:    cons.MinSections,
			Available: len(selected),
		}
	}

	truncated := false
	if len(selected) > cons.MaxSections {
		selected = truncate(selected, cons.MaxSections, required, forced)
		truncated = true
	}

	ordered := orderSections(selected, cons.ForcedOrder)

	sections := make([]types.ComponentSelection, len(ordered))
	for i, c := range ordered {
		sections[i] = types.ComponentSelection{
			SectionID:     fmt.Sprintf("s%02d-%s", i, c.comp.ID),
			ComponentID:   c.comp.ID,
			Order:         i,
			NarrativeRole: c.comp.Role,
		}
	}

	l := &types.PageLayout{
		PageType: input.PageType,
		Sections: sections,
		Metadata: types.LayoutMetadata{
			GeneratedAt:    g.now(),
			Ranker:         g.ranker.Name(),
			CandidateCount: len(candidates),
			Truncated:      truncated,
		},
	}
	l.ConstraintsSatisfied = constraintsSatisfied(l, cons)
	return l, nil
}

// validate checks the input and returns the constraints with defaults
// applied. Rejection happens here, before any scoring work.
func (g *Generator) validate(input Input) (types.LayoutConstraints, error) {
	cons := input.Constraints
	if cons.MinSections <= 0 {
		cons.MinSections = g.cfg.DefaultMinSections
	}
	if cons.MaxSections <= 0 {
		cons.MaxSections = g.cfg.DefaultMaxSections
	}

	if !types.ValidPageTypes[input.PageType] {
		return cons, &types.InputValidationError{Field: "page_type", Reason: fmt.Sprintf("unknown page type %q", input.PageType)}
	}
	if cons.MinSections > cons.MaxSections {
		return cons, &types.InputValidationError{Field: "constraints", Reason: fmt.Sprintf("min_sections %d exceeds max_sections %d", cons.MinSections, cons.MaxSections)}
	}
	if len(cons.RequiredComponents) > cons.MaxSections {
		return cons, &types.InputValidationError{Field: "constraints", Reason: fmt.Sprintf("%d required components exceed max_sections %d", len(cons.RequiredComponents), cons.MaxSections)}
	}

	excluded := toSet(cons.ExcludedComponents)
	for _, id := range cons.RequiredComponents {
		c, ok := Lookup(id)
		if !ok {
			return cons, &types.InputValidationError{Field: "required_components", Reason: fmt.Sprintf("unknown component %q", id)}
		}
		if excluded[id] {
			return cons, &types.InputValidationError{Field: "required_components", Reason: fmt.Sprintf("component %q is both required and excluded", id)}
		}
		if !c.allowedOn(input.PageType) {
			return cons, &types.InputValidationError{Field: "required_components", Reason: fmt.Sprintf("component %q not allowed on %s pages", id, input.PageType)}
		}
	}
	for _, id := range cons.ExcludedComponents {
		if _, ok := Lookup(id); !ok {
			return cons, &types.InputValidationError{Field: "excluded_components", Reason: fmt.Sprintf("unknown component %q", id)}
		}
	}
	for _, id := range cons.ForcedOrder {
		if _, ok := Lookup(id); !ok {
			return cons, &types.InputValidationError{Field: "forced_order", Reason: fmt.Sprintf("unknown component %q", id)}
		}
	}

	return cons, nil
}

// selectCandidates picks the section set: required components first,
// then the top-scoring variant per narrative role, then further
// candidates by score up to MaxSections.
func (g *Generator) selectCandidates(candidates []candidate, required map[string]bool, cons types.LayoutConstraints) []candidate {
	// Deterministic preference order: score desc, fewer required fields,
	// id asc.
	sorted := make([]candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		if len(sorted[i].comp.RequiredFields) != len(sorted[j].comp.RequiredFields) {
			return len(sorted[i].comp.RequiredFields) < len(sorted[j].comp.RequiredFields)
		}
		return sorted[i].comp.ID < sorted[j].comp.ID
	})

	var selected []candidate
	taken := make(map[string]bool)
	roleCovered := make(map[types.NarrativeRole]bool)

	// Force-include required components.
	for _, c := range sorted {
		if required[c.comp.ID] {
			selected = append(selected, c)
			taken[c.comp.ID] = true
			roleCovered[c.comp.Role] = true
		}
	}
	// Cover each remaining role with its best variant.
	for _, c := range sorted {
		if taken[c.comp.ID] || roleCovered[c.comp.Role] {
			continue
		}
		selected = append(selected, c)
		taken[c.comp.ID] = true
		roleCovered[c.comp.Role] = true
	}
	// Fill remaining slots up to MaxSections with next-best candidates
	// regardless of role. Below MinSections anything eligible goes;
	// beyond it only candidates with positive fit earn a slot.
	for _, c := range sorted {
		if taken[c.comp.ID] {
			continue
		}
		if len(selected) >= cons.MaxSections {
			break
		}
		if len(selected) >= cons.MinSections && c.score <= 0 {
			break
		}
		selected = append(selected, c)
		taken[c.comp.ID] = true
	}

	return selected
}

// truncate drops the lowest-scoring sections that are neither required
// nor part of a forced-order sequence until the selection fits.
func truncate(selected []candidate, max int, required, forced map[string]bool) []candidate {
	for len(selected) > max {
		dropIdx := -1
		for i, c := range selected {
			if required[c.comp.ID] || forced[c.comp.ID] {
				continue
			}
			if dropIdx == -1 || c.score < selected[dropIdx].score {
				dropIdx = i
			}
		}
		if dropIdx == -1 {
			break
		}
		selected = append(selected[:dropIdx], selected[dropIdx+1:]...)
	}
	return selected
}

// orderSections arranges the selection into the canonical narrative arc
// and then rewrites the positions occupied by forced-order components so
// the forced sequence appears as a subsequence of the final order.
func orderSections(selected []candidate, forcedOrder []string) []candidate {
	ordered := make([]candidate, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := roleRank[ordered[i].comp.Role], roleRank[ordered[j].comp.Role]
		if ri != rj {
			return ri < rj
		}
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].comp.ID < ordered[j].comp.ID
	})

	if len(forcedOrder) < 2 {
		return ordered
	}

	// Collect the positions held by forced components, then reassign
	// their occupants in forced order. Other sections keep their slots.
	forcedSet := toSet(forcedOrder)
	var positions []int
	for i, c := range ordered {
		if forcedSet[c.comp.ID] {
			positions = append(positions, i)
		}
	}
	var present []candidate
	for _, id := range forcedOrder {
		for _, c := range ordered {
			if c.comp.ID == id {
				present = append(present, c)
				break
			}
		}
	}
	for i, pos := range positions {
		ordered[pos] = present[i]
	}
	return ordered
}

// constraintsSatisfied verifies the generated layout against the
// constraints it was built under.
func constraintsSatisfied(l *types.PageLayout, cons types.LayoutConstraints) bool {
	if len(l.Sections) < cons.MinSections || len(l.Sections) > cons.MaxSections {
		return false
	}
	have := make(map[string]bool, len(l.Sections))
	for _, s := range l.Sections {
		have[s.ComponentID] = true
	}
	for _, id := range cons.RequiredComponents {
		if !have[id] {
			return false
		}
	}
	for _, id := range cons.ExcludedComponents {
		if have[id] {
			return false
		}
	}
	// The present part of the forced order must appear as a subsequence
	// of the final order.
	var want []string
	for _, id := range cons.ForcedOrder {
		if have[id] {
			want = append(want, id)
		}
	}
	i := 0
	for _, s := range l.Sections {
		if i < len(want) && s.ComponentID == want[i] {
			i++
		}
	}
	return i == len(want)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
