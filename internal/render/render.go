// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render transforms a canonical page structure into the
// flattened, persona-resolvable data the rendering surface consumes.
// Both operations are pure: no I/O, no randomness, identical output for
// identical input.
// See docs/ARCHITECTURE § Render Data.
package render

import (
	"sort"

	"github.com/pdiddy/pageforge/pkg/types"
)

// Extract flattens a page structure into render-ready data. The result
// is derived and disposable: recompute it rather than mutating it.
// AvailablePersonas is the sorted union of variant keys across all
// sections.
func Extract(structure *types.PageContentStructure) types.RuntimePageData {
	data := types.RuntimePageData{
		PageID:    structure.PageID,
		Metadata:  structure.PageMetadata,
		Brand:     structure.PageMetadata.Brand,
		Animation: structure.PageMetadata.Animation,
	}

	personaSet := make(map[string]bool)
	for _, sec := range structure.Sections {
		rs := types.RuntimeSection{
			SectionID:      sec.SectionID,
			ComponentID:    sec.ComponentID,
			Order:          sec.Order,
			NarrativeRole:  sec.NarrativeRole,
			DefaultContent: sec.Content,
		}
		if len(sec.PersonaVariations) > 0 {
			rs.PersonaVariants = make(map[string]types.PopulatedContent, len(sec.PersonaVariations))
			for id, v := range sec.PersonaVariations {
				rs.PersonaVariants[id] = v.Content
				personaSet[id] = true
			}
		}
		data.Sections = append(data.Sections, rs)
	}

	sort.SliceStable(data.Sections, func(i, j int) bool {
		return data.Sections[i].Order < data.Sections[j].Order
	})

	data.AvailablePersonas = make([]string, 0, len(personaSet))
	for id := range personaSet {
		data.AvailablePersonas = append(data.AvailablePersonas, id)
	}
	sort.Strings(data.AvailablePersonas)

	return data
}

// ForPersona resolves every section's content for one persona: the
// persona's variant when present, the default content otherwise. It
// never returns a missing content payload for any section, for any
// persona id, including ids absent from AvailablePersonas.
func ForPersona(data types.RuntimePageData, personaID string) []types.ResolvedSection {
	resolved := make([]types.ResolvedSection, len(data.Sections))
	for i, sec := range data.Sections {
		rs := types.ResolvedSection{
			SectionID:   sec.SectionID,
			ComponentID: sec.ComponentID,
			Order:       sec.Order,
			Content:     sec.DefaultContent,
		}
		if personaID != "" {
			if v, ok := sec.PersonaVariants[personaID]; ok {
				rs.Content = v
				rs.FromVariant = true
			}
		}
		resolved[i] = rs
	}
	return resolved
}
