// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pageforge pipeline.
// See docs/ARCHITECTURE § Pipeline Interface, § Data Structures.
package types

import "time"

// PageType identifies the kind of marketing page being generated.
type PageType string

const (
	PageLanding PageType = "landing"
	PageProduct PageType = "product"
	PagePricing PageType = "pricing"
	PageAbout   PageType = "about"
)

// ValidPageTypes is the closed set of accepted page types.
var ValidPageTypes = map[PageType]bool{
	PageLanding: true,
	PageProduct: true,
	PagePricing: true,
	PageAbout:   true,
}

// NarrativeRole classifies the rhetorical function a section plays in the
// page's persuasion arc.
type NarrativeRole string

const (
	RoleHook       NarrativeRole = "hook"
	RoleProblem    NarrativeRole = "problem"
	RoleSolution   NarrativeRole = "solution"
	RoleFeature    NarrativeRole = "feature"
	RoleProof      NarrativeRole = "proof"
	RoleObjection  NarrativeRole = "objection-handling"
	RoleTrust      NarrativeRole = "trust"
	RoleConversion NarrativeRole = "conversion"
)

// ComponentSelection is one section chosen for a page layout.
type ComponentSelection struct {
	// SectionID is a stable identifier for this section within the page,
	// derived from the order and component id at layout time.
	SectionID string `json:"section_id" yaml:"section_id"`

	// ComponentID names the concrete component variant (e.g. "hero-split").
	ComponentID string `json:"component_id" yaml:"component_id"`

	// Order is the zero-based contiguous index of the section on the page.
	Order int `json:"order" yaml:"order"`

	// NarrativeRole is the rhetorical function the section serves.
	NarrativeRole NarrativeRole `json:"narrative_role" yaml:"narrative_role"`
}

// LayoutConstraints bound layout selection for a page.
type LayoutConstraints struct {
	// MinSections is the minimum number of sections the layout must contain.
	MinSections int `json:"min_sections" yaml:"min_sections"`

	// MaxSections is the maximum number of sections the layout may contain.
	MaxSections int `json:"max_sections" yaml:"max_sections"`

	// RequiredComponents lists component ids that must appear in the layout.
	RequiredComponents []string `json:"required_components,omitempty" yaml:"required_components,omitempty"`

	// ExcludedComponents lists component ids that must not appear.
	ExcludedComponents []string `json:"excluded_components,omitempty" yaml:"excluded_components,omitempty"`

	// ForcedOrder lists component ids that, when present, must appear in
	// this relative order (as a subsequence of the final section order).
	ForcedOrder []string `json:"forced_order,omitempty" yaml:"forced_order,omitempty"`
}

// LayoutMetadata records how a layout was produced.
type LayoutMetadata struct {
	// GeneratedAt is the layout generation timestamp.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Ranker names the ranking strategy used to score candidates.
	Ranker string `json:"ranker" yaml:"ranker"`

	// CandidateCount is the number of component variants considered.
	CandidateCount int `json:"candidate_count" yaml:"candidate_count"`

	// Truncated reports whether low-priority sections were dropped to
	// satisfy MaxSections.
	Truncated bool `json:"truncated,omitempty" yaml:"truncated,omitempty"`
}

// PageLayout is the ordered set of component selections for one page.
// Sections carry contiguous zero-based orders; every required component
// is present, no excluded component is, and any forced-order sequence is
// preserved as a subsequence.
type PageLayout struct {
	// PageType is the kind of page this layout serves.
	PageType PageType `json:"page_type" yaml:"page_type"`

	// Sections is the ordered component selection, indexed by Order.
	Sections []ComponentSelection `json:"sections" yaml:"sections"`

	// ConstraintsSatisfied reports whether all constraints were honored.
	ConstraintsSatisfied bool `json:"constraints_satisfied" yaml:"constraints_satisfied"`

	// Metadata records generation provenance.
	Metadata LayoutMetadata `json:"metadata" yaml:"metadata"`
}

// SectionIDs returns the layout's section ids in order.
func (l *PageLayout) SectionIDs() []string {
	ids := make([]string, len(l.Sections))
	for i, s := range l.Sections {
		ids[i] = s.SectionID
	}
	return ids
}
