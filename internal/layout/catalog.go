// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout selects component variants and ordering for a page
// type under explicit constraints.
// See docs/ARCHITECTURE § Layout Generation.
package layout

import "github.com/pdiddy/pageforge/pkg/types"

// Component is one concrete presentational variant of a narrative role.
type Component struct {
	// ID is the component variant identifier (e.g. "hero-split").
	ID string

	// Role is the rhetorical function the component serves.
	Role types.NarrativeRole

	// RequiredFields lists the content slots the component cannot render
	// without. Fewer required fields means lower generation risk; ties in
	// ranking break toward the structurally simplest variant.
	RequiredFields []string

	// Keywords describe the component's subject affinity for fit scoring.
	Keywords []string

	// PageTypes lists the page types the component may appear on. Empty
	// means any.
	PageTypes []types.PageType
}

// minFields is the floor every component shares: a headline slot.
var minFields = []string{"headline"}

// catalog is the closed set of component variants. Lookup goes through
// Lookup, which reports unknown ids instead of silently falling back.
var catalog = []Component{
	{ID: "hero-split", Role: types.RoleHook, RequiredFields: []string{"headline", "subheadline", "cta_label"},
		Keywords: []string{"product", "launch", "platform", "announcement"}},
	{ID: "hero-centered", Role: types.RoleHook, RequiredFields: []string{"headline", "cta_label"},
		Keywords: []string{"brand", "mission", "simple"}},
	{ID: "problem-statement", Role: types.RoleProblem, RequiredFields: minFields,
		Keywords: []string{"pain", "problem", "cost", "risk", "manual"}},
	{ID: "solution-overview", Role: types.RoleSolution, RequiredFields: []string{"headline", "body"},
		Keywords: []string{"solution", "workflow", "automation", "how"}},
	{ID: "feature-grid", Role: types.RoleFeature, RequiredFields: []string{"headline", "feature_list"},
		Keywords: []string{"feature", "capability", "integration", "api"}},
	{ID: "feature-spotlight", Role: types.RoleFeature, RequiredFields: []string{"headline", "body"},
		Keywords: []string{"feature", "detail", "deep-dive"}},
	{ID: "testimonial-carousel", Role: types.RoleProof, RequiredFields: []string{"headline", "quote"},
		Keywords: []string{"testimonial", "customer", "review", "quote"}},
	{ID: "metrics-band", Role: types.RoleProof, RequiredFields: []string{"headline", "metric_list"},
		Keywords: []string{"metric", "benchmark", "growth", "performance", "uptime"}},
	{ID: "logo-wall", Role: types.RoleProof, RequiredFields: minFields,
		Keywords: []string{"customer", "brand", "logo", "enterprise"}},
	{ID: "faq-accordion", Role: types.RoleObjection, RequiredFields: []string{"headline", "faq_list"},
		Keywords: []string{"question", "faq", "objection", "concern"}},
	{ID: "security-panel", Role: types.RoleTrust, RequiredFields: []string{"headline", "body"},
		Keywords: []string{"security", "compliance", "soc2", "privacy", "encryption"}},
	{ID: "team-intro", Role: types.RoleTrust, RequiredFields: []string{"headline", "body"},
		Keywords: []string{"team", "founder", "story", "about"},
		PageTypes: []types.PageType{types.PageAbout, types.PageLanding}},
	{ID: "pricing-cards", Role: types.RoleConversion, RequiredFields: []string{"headline", "plan_list"},
		Keywords: []string{"pricing", "plan", "tier", "cost", "free"},
		PageTypes: []types.PageType{types.PagePricing, types.PageLanding, types.PageProduct}},
	{ID: "cta-banner", Role: types.RoleConversion, RequiredFields: []string{"headline", "cta_label"},
		Keywords: []string{"signup", "trial", "demo", "start", "contact"}},
}

// byID indexes the catalog for lookup.
var byID = func() map[string]Component {
	m := make(map[string]Component, len(catalog))
	for _, c := range catalog {
		m[c.ID] = c
	}
	return m
}()

// Catalog returns the full component catalog.
func Catalog() []Component {
	out := make([]Component, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup resolves a component id. The second return is false for ids
// not in the catalog; callers must treat that as an input error, never
// fall back to a default component.
func Lookup(id string) (Component, bool) {
	c, ok := byID[id]
	return c, ok
}

// roleRank orders narrative roles into the canonical page arc.
var roleRank = map[types.NarrativeRole]int{
	types.RoleHook:       0,
	types.RoleProblem:    1,
	types.RoleSolution:   2,
	types.RoleFeature:    3,
	types.RoleProof:      4,
	types.RoleObjection:  5,
	types.RoleTrust:      6,
	types.RoleConversion: 7,
}

// allowedOn reports whether the component may appear on the page type.
func (c Component) allowedOn(pt types.PageType) bool {
	if len(c.PageTypes) == 0 {
		return true
	}
	for _, p := range c.PageTypes {
		if p == pt {
			return true
		}
	}
	return false
}
