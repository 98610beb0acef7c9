// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EmotionalStage is one step of a page's emotional journey.
type EmotionalStage string

const (
	StageAwareness   EmotionalStage = "awareness"
	StageCredibility EmotionalStage = "credibility"
	StageDesire      EmotionalStage = "desire"
	StageAction      EmotionalStage = "action"
)

// ContentBlock is the messaging directive for one section, derived from
// its position in the narrative arc. The content generator uses it to
// steer tone and emphasis.
type ContentBlock struct {
	// SectionID links the block to a layout section.
	SectionID string `json:"section_id" yaml:"section_id"`

	// Stage is the emotional-journey stage assigned to the section.
	Stage EmotionalStage `json:"stage" yaml:"stage"`

	// Directive is a short instruction for the content generator
	// (e.g. "establish credibility with concrete proof points").
	Directive string `json:"directive" yaml:"directive"`
}

// FlowVariation overrides the default section flow for one persona
// without altering the underlying layout.
type FlowVariation struct {
	// Flow is the persona-specific section order. It is a permutation of
	// the storyline's DefaultFlow.
	Flow []string `json:"flow" yaml:"flow"`

	// Emphasis names the narrative role the persona's flow foregrounds
	// (e.g. "trust" for an enterprise persona).
	Emphasis NarrativeRole `json:"emphasis,omitempty" yaml:"emphasis,omitempty"`
}

// JourneyPoint maps one section onto the emotional journey.
type JourneyPoint struct {
	SectionID string         `json:"section_id" yaml:"section_id"`
	Stage     EmotionalStage `json:"stage" yaml:"stage"`
}

// Storyline is the narrative arc derived from a page layout. DefaultFlow
// is a permutation of the layout's section ids: no additions, no omissions.
type Storyline struct {
	// Narrative is a one-paragraph description of the page's story.
	Narrative string `json:"narrative" yaml:"narrative"`

	// DefaultFlow is the section id order for visitors with no persona.
	DefaultFlow []string `json:"default_flow" yaml:"default_flow"`

	// ContentBlocks carries one messaging directive per section.
	ContentBlocks []ContentBlock `json:"content_blocks" yaml:"content_blocks"`

	// PersonaVariations maps persona ids to flow overrides.
	PersonaVariations map[string]FlowVariation `json:"persona_variations,omitempty" yaml:"persona_variations,omitempty"`

	// EmotionalJourney records the stage assigned to each section, in
	// DefaultFlow order.
	EmotionalJourney []JourneyPoint `json:"emotional_journey" yaml:"emotional_journey"`
}

// Violation is a named storyline validation finding. Violations are
// advisory: they lower the score but never block generation.
type Violation struct {
	// Code identifies the rule (e.g. "conversion-before-proof").
	Code string `json:"code" yaml:"code"`

	// Message describes the finding in context.
	Message string `json:"message" yaml:"message"`

	// SectionID is the offending section, when one can be named.
	SectionID string `json:"section_id,omitempty" yaml:"section_id,omitempty"`
}

// StorylineValidation is the result of grading a storyline against the
// ordering rules for its page type.
type StorylineValidation struct {
	// IsOptimal is true when no violations were found.
	IsOptimal bool `json:"is_optimal" yaml:"is_optimal"`

	// Score grades the narrative from 0 to 100.
	Score int `json:"score" yaml:"score"`

	// Violations lists named rule breaches.
	Violations []Violation `json:"violations" yaml:"violations"`

	// Suggestions lists human-readable improvement hints.
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}
