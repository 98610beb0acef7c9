// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pageforge/pkg/types"
)

// DefaultSessionKey is the store key the resolver persists under when
// none is configured, matching the single-slot browser storage model.
const DefaultSessionKey = "persona-session"

// Transition records a persona change that renderers announce to the
// visitor before swapping content.
type Transition struct {
	// FromPersonaID is the previous persona, empty when unidentified.
	FromPersonaID string `json:"from_persona_id,omitempty"`

	// ToPersonaID is the new persona.
	ToPersonaID string `json:"to_persona_id,omitempty"`

	// ToLabel is the display label of the new persona.
	ToLabel string `json:"to_label,omitempty"`

	// At is when the change happened.
	At time.Time `json:"at"`
}

// Resolver is the persona resolution state machine for one visitor
// session. It is single-writer: one resolver per visitor context, the
// way a browser tab owns its local storage.
type Resolver struct {
	store    Store
	key      string
	personas map[string]types.Persona
	session  types.PersonaSession
	last     *Transition
	now      func() time.Time
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSessionKey overrides the store key.
func WithSessionKey(key string) ResolverOption {
	return func(r *Resolver) { r.key = key }
}

// WithClock overrides the resolver's clock.
func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// NewResolver loads the persisted session from store, discarding it if
// expired, and starts a fresh one otherwise. A store load failure is
// soft: resolution proceeds on a fresh session.
func NewResolver(store Store, personas []types.Persona, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:    store,
		key:      DefaultSessionKey,
		personas: make(map[string]types.Persona, len(personas)),
		now:      time.Now,
	}
	for _, p := range personas {
		r.personas[p.ID] = p
	}
	for _, opt := range opts {
		opt(r)
	}

	if data, ok, err := r.store.Get(r.key); err == nil && ok {
		var sess types.PersonaSession
		if json.Unmarshal(data, &sess) == nil && !sess.Expired(r.now()) {
			r.session = sess
			return r
		}
	}
	r.session = r.newSession()
	r.persist()
	return r
}

func (r *Resolver) newSession() types.PersonaSession {
	now := r.now()
	return types.PersonaSession{
		SessionID:  uuid.NewString(),
		State:      types.StateUnidentified,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

// Session returns a copy of the current session state.
func (r *Resolver) Session() types.PersonaSession {
	return r.session
}

// LastTransition returns the most recent persona change, or nil when
// the active persona has not changed since the resolver was created.
func (r *Resolver) LastTransition() *Transition {
	return r.last
}

// touch advances LastSeenAt, regenerating the session first if it
// lapsed past its inactivity TTL.
func (r *Resolver) touch() {
	now := r.now()
	if r.session.Expired(now) {
		r.session = r.newSession()
		r.last = nil
	}
	r.session.LastSeenAt = now
}

// persist writes the session to the store. Persistence is best-effort:
// a failed write never blocks resolution; the session simply will not
// survive a reload.
func (r *Resolver) persist() {
	data, err := json.Marshal(r.session)
	if err != nil {
		return
	}
	r.store.Set(r.key, data, types.SessionTTL)
}

// AddSignal records an inferred persona signal and recomputes the
// resolution. Signals targeting unknown personas are rejected; signals
// arriving on a self-identified session are recorded but never change
// the active persona.
func (r *Resolver) AddSignal(personaID string, confidence float64, source types.SignalSource) error {
	if _, ok := r.personas[personaID]; !ok {
		return &types.InputValidationError{Field: "persona_id", Reason: fmt.Sprintf("unknown persona %q", personaID)}
	}
	if confidence < 0 || confidence > 1 {
		return &types.InputValidationError{Field: "confidence", Reason: fmt.Sprintf("confidence %.2f outside [0,1]", confidence)}
	}
	r.touch()
	r.session.Signals = append(r.session.Signals, types.PersonaSignal{
		PersonaID:  personaID,
		Confidence: confidence,
		Source:     source,
		Timestamp:  r.now(),
	})
	if over := len(r.session.Signals) - types.MaxSessionSignals; over > 0 {
		r.session.Signals = r.session.Signals[over:]
	}
	if !r.session.SelfIdentified {
		r.recompute()
	}
	r.persist()
	return nil
}

// recompute derives the active persona from the signal history. Each
// signal's contribution is its confidence scaled by a recency weight
// that grows linearly from 0.5 for the oldest signal toward 1.0 for
// the newest.
func (r *Resolver) recompute() {
	total := len(r.session.Signals)
	if total == 0 {
		r.setActive(types.StateUnidentified, "", 0, false)
		return
	}
	scores := make(map[string]float64)
	for i, sig := range r.session.Signals {
		weight := 0.5 + 0.5*(float64(i)/float64(total))
		scores[sig.PersonaID] += sig.Confidence * weight
	}
	bestID, bestScore := "", 0.0
	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if scores[id] > bestScore {
			bestID, bestScore = id, scores[id]
		}
	}
	if bestScore <= 0 {
		r.setActive(types.StateUnidentified, "", 0, false)
		return
	}
	confidence := math.Min(1, bestScore/float64(total))
	r.setActive(types.StateInferred, bestID, confidence, false)
}

// setActive applies a resolution outcome, recording a Transition when
// the active persona actually changes.
func (r *Resolver) setActive(state types.SessionState, personaID string, confidence float64, selfIdentified bool) {
	if personaID != r.session.ActivePersonaID {
		label := ""
		if p, ok := r.personas[personaID]; ok {
			label = p.Label
		}
		r.last = &Transition{
			FromPersonaID: r.session.ActivePersonaID,
			ToPersonaID:   personaID,
			ToLabel:       label,
			At:            r.now(),
		}
	}
	r.session.State = state
	r.session.ActivePersonaID = personaID
	r.session.Confidence = confidence
	r.session.SelfIdentified = selfIdentified
	if p, ok := r.personas[personaID]; ok {
		r.session.PersonaLabel = p.Label
	} else {
		r.session.PersonaLabel = ""
	}
}

// SetPersona confirms an explicit visitor choice. Confidence becomes
// exactly 1.0 and no inferred signal can displace the choice until
// ClearPersona.
func (r *Resolver) SetPersona(personaID string) error {
	if _, ok := r.personas[personaID]; !ok {
		return &types.InputValidationError{Field: "persona_id", Reason: fmt.Sprintf("unknown persona %q", personaID)}
	}
	r.touch()
	r.session.Signals = append(r.session.Signals, types.PersonaSignal{
		PersonaID:  personaID,
		Confidence: 1.0,
		Source:     types.SourceSelfIdentified,
		Timestamp:  r.now(),
	})
	if over := len(r.session.Signals) - types.MaxSessionSignals; over > 0 {
		r.session.Signals = r.session.Signals[over:]
	}
	r.setActive(types.StateConfirmed, personaID, 1.0, true)
	r.persist()
	return nil
}

// ClearPersona resets resolution to unidentified. The interaction
// history is kept; the signal history is discarded so a stale
// inference cannot immediately reassert itself.
func (r *Resolver) ClearPersona() {
	r.touch()
	r.session.Signals = nil
	r.setActive(types.StateUnidentified, "", 0, false)
	r.persist()
}

// RecordInteraction appends an event to the bounded history and feeds
// any persona evidence it carries back into resolution: chat messages
// are scanned against persona keywords, and role selections confirm
// the chosen persona.
func (r *Resolver) RecordInteraction(ev types.InteractionEvent) error {
	if !types.ValidInteractionTypes[ev.Type] {
		return &types.InputValidationError{Field: "type", Reason: fmt.Sprintf("unknown interaction type %q", ev.Type)}
	}
	r.touch()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = r.now()
	}
	r.session.Interactions = append(r.session.Interactions, ev)
	if over := len(r.session.Interactions) - types.MaxSessionInteractions; over > 0 {
		r.session.Interactions = r.session.Interactions[over:]
	}
	r.persist()

	switch ev.Type {
	case types.EventChatMessage:
		for _, hit := range r.scanKeywords(ev.Value) {
			if err := r.AddSignal(hit.personaID, hit.confidence, types.SourceChatKeyword); err != nil {
				return err
			}
		}
	case types.EventRoleSelect:
		if _, ok := r.personas[ev.Value]; ok {
			return r.SetPersona(ev.Value)
		}
	}
	return nil
}

type keywordHit struct {
	personaID  string
	confidence float64
}

// scanKeywords counts persona keyword matches in a chat message. Each
// matching persona yields a signal whose confidence starts at 0.2 and
// grows 0.15 per matched keyword, capped at 0.8 so chat evidence alone
// never outranks self-identification.
func (r *Resolver) scanKeywords(message string) []keywordHit {
	text := strings.ToLower(message)
	ids := make([]string, 0, len(r.personas))
	for id := range r.personas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var hits []keywordHit
	for _, id := range ids {
		matches := 0
		for _, kw := range r.personas[id].Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				matches++
			}
		}
		if matches > 0 {
			conf := math.Min(0.8, 0.2+0.15*float64(matches))
			hits = append(hits, keywordHit{personaID: id, confidence: conf})
		}
	}
	return hits
}

// ResolveContent picks the content served to this session: the highest
// priority variant targeting the active persona, shallow-merged over
// the base, or the base unchanged when nothing targets the visitor.
// The second return reports whether a variant was applied.
func (r *Resolver) ResolveContent(base types.PopulatedContent, variants []types.ContentVariant) (types.PopulatedContent, bool) {
	if r.session.ActivePersonaID == "" {
		return base, false
	}
	var matched []types.ContentVariant
	for _, v := range variants {
		for _, target := range v.TargetPersonas {
			if target == r.session.ActivePersonaID {
				matched = append(matched, v)
				break
			}
		}
	}
	if len(matched) == 0 {
		return base, false
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority > matched[j].Priority
	})
	return mergeContent(base, matched[0].Content), true
}

// mergeContent overlays non-empty variant fields onto the base. The
// merge is shallow: top-level fields and individual Fields entries
// replace, nothing deeper is combined.
func mergeContent(base, variant types.PopulatedContent) types.PopulatedContent {
	out := base
	if variant.Headline != "" {
		out.Headline = variant.Headline
	}
	if variant.Subheadline != "" {
		out.Subheadline = variant.Subheadline
	}
	if variant.Body != "" {
		out.Body = variant.Body
	}
	if len(variant.Fields) > 0 {
		merged := make(map[string]string, len(base.Fields)+len(variant.Fields))
		for k, v := range base.Fields {
			merged[k] = v
		}
		for k, v := range variant.Fields {
			if v != "" {
				merged[k] = v
			}
		}
		out.Fields = merged
	}
	return out
}
