// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EntityType categorizes a knowledge excerpt extracted from source
// documents.
type EntityType string

const (
	EntityFact        EntityType = "fact"
	EntityFeature     EntityType = "feature"
	EntityTestimonial EntityType = "testimonial"
	EntityMetric      EntityType = "metric"
	EntityBrand       EntityType = "brand"
)

// ValidEntityTypes is the closed set of accepted entity types.
var ValidEntityTypes = map[EntityType]bool{
	EntityFact:        true,
	EntityFeature:     true,
	EntityTestimonial: true,
	EntityMetric:      true,
	EntityBrand:       true,
}

// KnowledgeExcerpt is a grounded piece of knowledge with provenance,
// used to ground generated content.
type KnowledgeExcerpt struct {
	// ID is a stable identifier, consistent across re-ingestions of
	// unchanged content.
	ID string `json:"id" yaml:"id"`

	// Content is the excerpt text, preserved verbatim from the source.
	Content string `json:"content" yaml:"content"`

	// EntityType categorizes the excerpt.
	EntityType EntityType `json:"entity_type" yaml:"entity_type"`

	// SourceID identifies the source document.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Section is the source heading the excerpt was found under.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Confidence is the extraction certainty in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Tags are lowercase, hyphenated topic labels drawn from the source
	// vocabulary.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ExcerptFile is the on-disk form of extracted excerpts for one source
// document, as written by the extraction collaborator.
type ExcerptFile struct {
	// SourceID identifies the source document.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Excerpts contains the extracted knowledge excerpts.
	Excerpts []KnowledgeExcerpt `json:"excerpts" yaml:"excerpts"`
}

// PersonaFile is the on-disk form of persona definitions for a
// knowledge base.
type PersonaFile struct {
	// Personas lists the defined visitor archetypes.
	Personas []Persona `json:"personas" yaml:"personas"`
}
