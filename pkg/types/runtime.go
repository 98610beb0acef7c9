// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BrandConfig is the brand token set a rendered page applies.
type BrandConfig struct {
	// PrimaryColor is the dominant brand color as a hex string.
	PrimaryColor string `json:"primary_color,omitempty" yaml:"primary_color,omitempty"`

	// SecondaryColor is the accent color as a hex string.
	SecondaryColor string `json:"secondary_color,omitempty" yaml:"secondary_color,omitempty"`

	// FontFamily is the display font stack.
	FontFamily string `json:"font_family,omitempty" yaml:"font_family,omitempty"`

	// LogoURL points at the brand logo asset.
	LogoURL string `json:"logo_url,omitempty" yaml:"logo_url,omitempty"`

	// Tone is a free-form voice descriptor fed to the content generator
	// (e.g. "confident, plain-spoken").
	Tone string `json:"tone,omitempty" yaml:"tone,omitempty"`
}

// AnimationConfig is the transition contract for the rendering surface.
// When a persona change alters a section's resolved content, the swap
// must be announced through these transitions, not applied instantly.
type AnimationConfig struct {
	// Entrance names the section entrance animation (e.g. "fade-up").
	Entrance string `json:"entrance,omitempty" yaml:"entrance,omitempty"`

	// Swap names the content-swap transition used on persona changes.
	Swap string `json:"swap,omitempty" yaml:"swap,omitempty"`

	// DurationMS is the transition duration in milliseconds.
	DurationMS int `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

// RuntimeSection is the flattened, render-ready form of one section.
// Derived and read-only.
type RuntimeSection struct {
	// SectionID identifies the section.
	SectionID string `json:"section_id" yaml:"section_id"`

	// ComponentID names the component variant to render.
	ComponentID string `json:"component_id" yaml:"component_id"`

	// Order is the section's zero-based position.
	Order int `json:"order" yaml:"order"`

	// NarrativeRole is the section's rhetorical function.
	NarrativeRole NarrativeRole `json:"narrative_role" yaml:"narrative_role"`

	// DefaultContent is shown when no persona variant applies.
	DefaultContent PopulatedContent `json:"default_content" yaml:"default_content"`

	// PersonaVariants maps persona ids to targeted content.
	PersonaVariants map[string]PopulatedContent `json:"persona_variants,omitempty" yaml:"persona_variants,omitempty"`
}

// RuntimePageData is the flattened structure the rendering surface
// consumes. Derived from a PageContentStructure and disposable: never
// mutated, only recomputed. AvailablePersonas is the union of variant
// keys across all sections.
type RuntimePageData struct {
	// PageID identifies the source page.
	PageID string `json:"page_id" yaml:"page_id"`

	// Sections is the render-ready section list, ordered by Order.
	Sections []RuntimeSection `json:"sections" yaml:"sections"`

	// Metadata carries page title and description.
	Metadata PageMetadata `json:"metadata" yaml:"metadata"`

	// AvailablePersonas lists every persona id with at least one variant,
	// sorted for deterministic output.
	AvailablePersonas []string `json:"available_personas" yaml:"available_personas"`

	// Brand is the brand token set.
	Brand BrandConfig `json:"brand" yaml:"brand"`

	// Animation is the transition contract.
	Animation AnimationConfig `json:"animation" yaml:"animation"`
}

// ResolvedSection is one section with its content resolved for a single
// persona: the persona variant when one exists, the default otherwise.
type ResolvedSection struct {
	// SectionID identifies the section.
	SectionID string `json:"section_id" yaml:"section_id"`

	// ComponentID names the component variant to render.
	ComponentID string `json:"component_id" yaml:"component_id"`

	// Order is the section's zero-based position.
	Order int `json:"order" yaml:"order"`

	// Content is the resolved copy. Never empty.
	Content PopulatedContent `json:"content" yaml:"content"`

	// FromVariant reports whether a persona variant supplied the content.
	FromVariant bool `json:"from_variant" yaml:"from_variant"`
}
