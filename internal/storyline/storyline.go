// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package storyline derives a narrative arc over a page layout's
// sections, with per-persona flow variants and an advisory validator.
// See docs/ARCHITECTURE § Storyline Generation.
package storyline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/pageforge/pkg/types"
)

// journeyTemplate is the emotional-journey shape for one page type: the
// stage order visitors should move through.
type journeyTemplate struct {
	stages []types.EmotionalStage
}

// rank returns the position of a stage in the template, or len(stages)
// for stages the template does not name.
func (t journeyTemplate) rank(s types.EmotionalStage) int {
	for i, st := range t.stages {
		if st == s {
			return i
		}
	}
	return len(t.stages)
}

// templates maps each page type to its journey shape. Product pages
// build desire through features before proving credibility; the others
// establish credibility first.
var templates = map[types.PageType]journeyTemplate{
	types.PageLanding: {stages: []types.EmotionalStage{types.StageAwareness, types.StageCredibility, types.StageDesire, types.StageAction}},
	types.PageProduct: {stages: []types.EmotionalStage{types.StageAwareness, types.StageDesire, types.StageCredibility, types.StageAction}},
	types.PagePricing: {stages: []types.EmotionalStage{types.StageAwareness, types.StageCredibility, types.StageDesire, types.StageAction}},
	types.PageAbout:   {stages: []types.EmotionalStage{types.StageAwareness, types.StageCredibility, types.StageDesire, types.StageAction}},
}

// roleStage maps a narrative role to the emotional stage it serves.
var roleStage = map[types.NarrativeRole]types.EmotionalStage{
	types.RoleHook:       types.StageAwareness,
	types.RoleProblem:    types.StageAwareness,
	types.RoleSolution:   types.StageDesire,
	types.RoleFeature:    types.StageDesire,
	types.RoleProof:      types.StageCredibility,
	types.RoleObjection:  types.StageCredibility,
	types.RoleTrust:      types.StageCredibility,
	types.RoleConversion: types.StageAction,
}

// stageDirectives is the messaging directive per stage, specialized by
// role where it matters.
var stageDirectives = map[types.EmotionalStage]string{
	types.StageAwareness:   "name the visitor's situation and make the page's promise concrete",
	types.StageCredibility: "establish credibility with concrete proof points and named sources",
	types.StageDesire:      "show the outcome the visitor gets, in their own vocabulary",
	types.StageAction:      "remove friction and ask for exactly one next step",
}

// Generator derives storylines. Construct with NewGenerator; there is
// no package-level instance.
type Generator struct{}

// NewGenerator returns a storyline generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate derives a storyline from a page layout. DefaultFlow is a
// permutation of the layout's section ids: sections are reordered onto
// the page type's emotional journey, stable within a stage.
func (g *Generator) Generate(layout *types.PageLayout, personas []types.Persona) (*types.Storyline, error) {
	if layout == nil || len(layout.Sections) == 0 {
		return nil, &types.InputValidationError{Field: "layout", Reason: "layout has no sections"}
	}
	tmpl, ok := templates[layout.PageType]
	if !ok {
		return nil, &types.InputValidationError{Field: "page_type", Reason: fmt.Sprintf("unknown page type %q", layout.PageType)}
	}

	ordered := make([]types.ComponentSelection, len(layout.Sections))
	copy(ordered, layout.Sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri := tmpl.rank(roleStage[ordered[i].NarrativeRole])
		rj := tmpl.rank(roleStage[ordered[j].NarrativeRole])
		if ri != rj {
			return ri < rj
		}
		return ordered[i].Order < ordered[j].Order
	})

	s := &types.Storyline{
		Narrative: narrative(layout.PageType, tmpl),
	}
	for _, sec := range ordered {
		stage := roleStage[sec.NarrativeRole]
		s.DefaultFlow = append(s.DefaultFlow, sec.SectionID)
		s.EmotionalJourney = append(s.EmotionalJourney, types.JourneyPoint{SectionID: sec.SectionID, Stage: stage})
		s.ContentBlocks = append(s.ContentBlocks, types.ContentBlock{
			SectionID: sec.SectionID,
			Stage:     stage,
			Directive: stageDirectives[stage],
		})
	}

	variations := make(map[string]types.FlowVariation)
	for _, p := range personas {
		if v, ok := personaVariation(p, ordered, s.DefaultFlow); ok {
			variations[p.ID] = v
		}
	}
	if len(variations) > 0 {
		s.PersonaVariations = variations
	}

	return s, nil
}

// trustKeywords and featureKeywords mark personas whose flows get
// re-weighted: compliance-minded personas see trust material earlier,
// technical ones see features earlier.
var (
	trustKeywords   = []string{"security", "compliance", "enterprise", "audit", "procurement"}
	featureKeywords = []string{"api", "sdk", "developer", "integration", "technical"}
)

// personaVariation derives a flow override for one persona. Returns
// false when the persona's flow would match the default.
func personaVariation(p types.Persona, ordered []types.ComponentSelection, defaultFlow []string) (types.FlowVariation, bool) {
	var emphasis types.NarrativeRole
	switch {
	case hasAnyKeyword(p, trustKeywords):
		emphasis = types.RoleTrust
	case hasAnyKeyword(p, featureKeywords):
		emphasis = types.RoleFeature
	default:
		return types.FlowVariation{}, false
	}

	// Move emphasized sections to directly after the opening section.
	var head, emphasized, rest []string
	for i, sec := range ordered {
		switch {
		case i == 0:
			head = append(head, sec.SectionID)
		case sec.NarrativeRole == emphasis:
			emphasized = append(emphasized, sec.SectionID)
		default:
			rest = append(rest, sec.SectionID)
		}
	}
	flow := append(append(head, emphasized...), rest...)
	if equalFlow(flow, defaultFlow) {
		return types.FlowVariation{}, false
	}
	return types.FlowVariation{Flow: flow, Emphasis: emphasis}, true
}

func hasAnyKeyword(p types.Persona, want []string) bool {
	for _, kw := range p.Keywords {
		kw = strings.ToLower(kw)
		for _, w := range want {
			if kw == w {
				return true
			}
		}
	}
	return false
}

func equalFlow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// narrative writes the one-paragraph arc description.
func narrative(pt types.PageType, tmpl journeyTemplate) string {
	names := make([]string, len(tmpl.stages))
	for i, s := range tmpl.stages {
		names[i] = string(s)
	}
	return fmt.Sprintf("A %s page moving the visitor through %s.",
		pt, strings.Join(names, ", then "))
}
