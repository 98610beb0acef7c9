// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Persona is a named visitor archetype used for both content targeting
// and session inference.
type Persona struct {
	// ID is the persona identifier (e.g. "developer", "business-owner").
	ID string `json:"id" yaml:"id"`

	// Label is the display name shown to visitors on self-identification.
	Label string `json:"label" yaml:"label"`

	// Keywords are lowercase terms whose presence in visitor input hints
	// at this persona.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Priority orders personas when several target the same content;
	// higher wins.
	Priority int `json:"priority" yaml:"priority"`

	// Description explains the archetype for content generation.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SignalSource identifies where a persona signal came from.
type SignalSource string

const (
	SourceInferred       SignalSource = "inferred"
	SourceChatKeyword    SignalSource = "chat-keyword"
	SourceSelfIdentified SignalSource = "self-identified"
	SourceDetection      SignalSource = "detection"
)

// PersonaSignal is a timestamped, confidence-bearing hint about a
// visitor's persona.
type PersonaSignal struct {
	// PersonaID is the hinted persona.
	PersonaID string `json:"persona_id" yaml:"persona_id"`

	// Confidence is the signal strength in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Source identifies the signal's origin.
	Source SignalSource `json:"source" yaml:"source"`

	// Timestamp is when the signal was observed.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// InteractionType classifies a visitor interaction event.
type InteractionType string

const (
	EventPageView    InteractionType = "page_view"
	EventSectionView InteractionType = "section_view"
	EventClick       InteractionType = "click"
	EventChatMessage InteractionType = "chat_message"
	EventRoleSelect  InteractionType = "role_select"
	EventScroll      InteractionType = "scroll"
)

// ValidInteractionTypes is the closed set of accepted event types.
var ValidInteractionTypes = map[InteractionType]bool{
	EventPageView:    true,
	EventSectionView: true,
	EventClick:       true,
	EventChatMessage: true,
	EventRoleSelect:  true,
	EventScroll:      true,
}

// InteractionEvent is one visitor interaction. Events are timestamped
// client-side and may arrive out of order.
type InteractionEvent struct {
	// Type classifies the event.
	Type InteractionType `json:"type" yaml:"type"`

	// Target identifies what was interacted with (section id, link, etc.).
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Value carries event payload (chat text, scroll depth, selected role).
	Value string `json:"value,omitempty" yaml:"value,omitempty"`

	// Timestamp is the client-side event time.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Metadata carries optional free-form event attributes.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// SessionState is the persona resolution state of a visitor session.
type SessionState string

const (
	// StateUnidentified means no persona has been inferred yet.
	StateUnidentified SessionState = "unidentified"

	// StateInferred means signals suggest a persona with some confidence.
	StateInferred SessionState = "inferred"

	// StateConfirmed means the visitor self-identified. Terminal for the
	// session unless explicitly cleared.
	StateConfirmed SessionState = "confirmed"
)

// Session history bounds and lifetime.
const (
	MaxSessionInteractions = 50
	MaxSessionSignals      = 20
	SessionTTL             = 24 * time.Hour
)

// PersonaSession is the ephemeral, client-resident persona state for one
// visitor. Created on first visit, mutated by every interaction and
// signal, persisted best-effort on every change, discarded after 24h of
// inactivity.
type PersonaSession struct {
	// SessionID is a UUID assigned at creation.
	SessionID string `json:"session_id" yaml:"session_id"`

	// State is the resolution state.
	State SessionState `json:"state" yaml:"state"`

	// ActivePersonaID is the currently resolved persona, empty when
	// unidentified.
	ActivePersonaID string `json:"active_persona_id,omitempty" yaml:"active_persona_id,omitempty"`

	// PersonaLabel is the display label for the active persona.
	PersonaLabel string `json:"persona_label,omitempty" yaml:"persona_label,omitempty"`

	// Confidence is the resolution confidence in [0,1]. Exactly 1.0 when
	// self-identified.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SelfIdentified reports whether the visitor explicitly chose the
	// active persona. Inferred signals never overwrite a self-identified
	// persona.
	SelfIdentified bool `json:"self_identified" yaml:"self_identified"`

	// Signals is the bounded signal history, oldest first. Capped at
	// MaxSessionSignals.
	Signals []PersonaSignal `json:"signals,omitempty" yaml:"signals,omitempty"`

	// Interactions is the bounded interaction history, oldest first.
	// Capped at MaxSessionInteractions.
	Interactions []InteractionEvent `json:"interactions,omitempty" yaml:"interactions,omitempty"`

	// CreatedAt is the session creation time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// LastSeenAt is the last mutation time; drives TTL expiry.
	LastSeenAt time.Time `json:"last_seen_at" yaml:"last_seen_at"`
}

// Expired reports whether the session has passed its inactivity TTL.
func (s *PersonaSession) Expired(now time.Time) bool {
	return now.Sub(s.LastSeenAt) > SessionTTL
}

// ContentVariant is a persona-targeted content override a renderer
// resolves against base content.
type ContentVariant struct {
	// TargetPersonas lists persona ids this variant applies to.
	TargetPersonas []string `json:"target_personas" yaml:"target_personas"`

	// Priority orders competing variants; higher wins.
	Priority int `json:"priority" yaml:"priority"`

	// Content carries the overriding copy. Empty fields leave the base
	// untouched (shallow merge).
	Content PopulatedContent `json:"content" yaml:"content"`
}
