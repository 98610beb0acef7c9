// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PopulatedContent is the generated copy for one section. Headline,
// Subheadline, and Body are the fields every component shares; Fields
// carries component-specific extras (e.g. "cta_label", "price_note").
type PopulatedContent struct {
	// Headline is the section's primary copy. Never empty for a base variant.
	Headline string `json:"headline" yaml:"headline"`

	// Subheadline is supporting copy under the headline.
	Subheadline string `json:"subheadline,omitempty" yaml:"subheadline,omitempty"`

	// Body is the section's long-form copy.
	Body string `json:"body,omitempty" yaml:"body,omitempty"`

	// Fields holds component-specific named copy slots.
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// IsEmpty reports whether the content carries no copy at all.
func (c PopulatedContent) IsEmpty() bool {
	return c.Headline == "" && c.Subheadline == "" && c.Body == "" && len(c.Fields) == 0
}

// PersonaVariant is a persona-specific rewrite of a section's content.
type PersonaVariant struct {
	// Content is the persona-targeted copy.
	Content PopulatedContent `json:"content" yaml:"content"`

	// Confidence is the grounding score in [0,1]: how much of the copy is
	// traceable to supplied knowledge excerpts versus generic fallback.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// PopulatedSection is one fully generated page section: the base content
// plus any per-persona variations. The base Content is always present
// and non-empty regardless of grounding confidence.
type PopulatedSection struct {
	// SectionID matches the layout section this content fills.
	SectionID string `json:"section_id" yaml:"section_id"`

	// ComponentID names the component variant rendering this section.
	ComponentID string `json:"component_id" yaml:"component_id"`

	// Order is the section's zero-based position, copied from the layout.
	Order int `json:"order" yaml:"order"`

	// NarrativeRole is the section's rhetorical function, copied from the layout.
	NarrativeRole NarrativeRole `json:"narrative_role" yaml:"narrative_role"`

	// Content is the default variant shown to unidentified visitors.
	Content PopulatedContent `json:"content" yaml:"content"`

	// Confidence is the grounding score of the base content in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// PersonaVariations maps persona ids to targeted rewrites.
	PersonaVariations map[string]PersonaVariant `json:"persona_variations,omitempty" yaml:"persona_variations,omitempty"`
}

// Degradation records one soft generation failure: an oracle call that
// errored or produced copy below the usability threshold, for which
// templated generic content was substituted. Non-fatal and invisible to
// visitors; observable only through generation stats.
type Degradation struct {
	// SectionID is the affected section.
	SectionID string `json:"section_id" yaml:"section_id"`

	// PersonaID is the affected variant, empty for the base content.
	PersonaID string `json:"persona_id,omitempty" yaml:"persona_id,omitempty"`

	// Reason describes why the fallback was used.
	Reason string `json:"reason" yaml:"reason"`
}

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	// Stage names the pipeline stage ("layout", "storyline", "content", "assemble").
	Stage string `json:"stage" yaml:"stage"`

	// Duration is the wall-clock stage time.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// GenerationStats aggregates observability data for one pipeline run.
type GenerationStats struct {
	// StageTimings lists per-stage wall-clock durations in stage order.
	StageTimings []StageTiming `json:"stage_timings" yaml:"stage_timings"`

	// TokensUsed is the total oracle token consumption, when reported.
	TokensUsed int `json:"tokens_used" yaml:"tokens_used"`

	// OracleCalls counts completion calls made to the oracle.
	OracleCalls int `json:"oracle_calls" yaml:"oracle_calls"`

	// Degradations lists soft failures where generic content was substituted.
	Degradations []Degradation `json:"degradations,omitempty" yaml:"degradations,omitempty"`
}

// PageMetadata carries page-level presentation settings through the
// pipeline to the rendering surface.
type PageMetadata struct {
	// Title is the page title.
	Title string `json:"title" yaml:"title"`

	// Description is the page meta description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Brand is the brand token set applied at render time.
	Brand BrandConfig `json:"brand" yaml:"brand"`

	// Animation is the transition contract the renderer must honor.
	Animation AnimationConfig `json:"animation" yaml:"animation"`
}

// PipelineMetadata records provenance for one generated page.
type PipelineMetadata struct {
	// GeneratedAt is the pipeline completion timestamp.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Model is the oracle model identifier used for content generation.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// KnowledgeBaseID identifies the knowledge base that grounded the content.
	KnowledgeBaseID string `json:"knowledge_base_id,omitempty" yaml:"knowledge_base_id,omitempty"`
}

// PageContentStructure is the single persisted source of truth for a
// generated page: layout, narrative, and populated content merged into
// one canonical structure.
type PageContentStructure struct {
	// PageID identifies the page.
	PageID string `json:"page_id" yaml:"page_id"`

	// PageType is the kind of page.
	PageType PageType `json:"page_type" yaml:"page_type"`

	// Sections is the populated section list, ordered by Order.
	Sections []PopulatedSection `json:"sections" yaml:"sections"`

	// Storyline is the narrative arc the sections follow.
	Storyline Storyline `json:"storyline" yaml:"storyline"`

	// PageMetadata carries presentation settings.
	PageMetadata PageMetadata `json:"page_metadata" yaml:"page_metadata"`

	// Pipeline records generation provenance.
	Pipeline PipelineMetadata `json:"pipeline" yaml:"pipeline"`

	// Stats aggregates stage timings, token usage, and degradations.
	Stats GenerationStats `json:"stats" yaml:"stats"`
}
