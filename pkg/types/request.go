// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// GenerationRequest is the inbound document describing one page
// generation run. It is schema-validated before any stage executes;
// invalid requests are rejected with InputValidationError before any
// external call is made.
type GenerationRequest struct {
	// PageID identifies the page to generate. Snapshots are keyed by it.
	PageID string `json:"page_id" yaml:"page_id"`

	// PageType is the kind of page.
	PageType PageType `json:"page_type" yaml:"page_type"`

	// Title is the page title.
	Title string `json:"title" yaml:"title"`

	// Description is the page meta description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// KnowledgeBaseID identifies the knowledge base grounding the content.
	KnowledgeBaseID string `json:"knowledge_base_id,omitempty" yaml:"knowledge_base_id,omitempty"`

	// Personas lists the visitor archetypes to generate variants for.
	Personas []Persona `json:"personas,omitempty" yaml:"personas,omitempty"`

	// ContentHints are free-form topic hints steering layout selection.
	ContentHints []string `json:"content_hints,omitempty" yaml:"content_hints,omitempty"`

	// Constraints bound layout selection.
	Constraints LayoutConstraints `json:"constraints" yaml:"constraints"`

	// Brand is the brand token set carried through to render data.
	Brand BrandConfig `json:"brand" yaml:"brand"`

	// Animation is the transition contract carried through to render data.
	Animation AnimationConfig `json:"animation" yaml:"animation"`
}
