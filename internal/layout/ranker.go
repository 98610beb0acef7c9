// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"context"
	"strings"

	"github.com/pdiddy/pageforge/pkg/types"
)

// Hints is the grounding context a ranker scores candidates against.
type Hints struct {
	// ContentHints are free-form topic hints from the generation request.
	ContentHints []string

	// Excerpts are knowledge excerpts retrieved for the page.
	Excerpts []types.KnowledgeExcerpt
}

// Ranker scores a component candidate's fit against the grounding
// context. The exact weighting is an implementation detail behind this
// interface; scores only need to be comparable within one generation
// run.
type Ranker interface {
	// Name identifies the ranking strategy for layout metadata.
	Name() string

	// Score returns the candidate's fit score. Higher is better.
	Score(ctx context.Context, c Component, hints Hints) (float64, error)
}

// entityAffinity maps excerpt entity types to the narrative role they
// naturally support. A proof section is a better fit when testimonial
// or metric excerpts exist to ground it.
var entityAffinity = map[types.EntityType]types.NarrativeRole{
	types.EntityTestimonial: types.RoleProof,
	types.EntityMetric:      types.RoleProof,
	types.EntityFeature:     types.RoleFeature,
	types.EntityBrand:       types.RoleHook,
	types.EntityFact:        types.RoleSolution,
}

// KeywordRanker scores fit by keyword overlap between the candidate's
// descriptors and the hint/excerpt vocabulary, plus an affinity bonus
// when the knowledge base holds excerpt types the candidate's role can
// ground.
type KeywordRanker struct{}

func (KeywordRanker) Name() string { return "keyword" }

// Score implements Ranker.
func (KeywordRanker) Score(_ context.Context, c Component, hints Hints) (float64, error) {
	var corpus strings.Builder
	for _, h := range hints.ContentHints {
		corpus.WriteString(strings.ToLower(h))
		corpus.WriteByte(' ')
	}
	for _, e := range hints.Excerpts {
		corpus.WriteString(strings.ToLower(e.Content))
		corpus.WriteByte(' ')
		for _, t := range e.Tags {
			corpus.WriteString(strings.ToLower(t))
			corpus.WriteByte(' ')
		}
	}
	text := corpus.String()

	matched := 0
	for _, kw := range c.Keywords {
		if strings.Contains(text, kw) {
			matched++
		}
	}
	score := 0.0
	if len(c.Keywords) > 0 {
		score = float64(matched) / float64(len(c.Keywords))
	}

	// Affinity bonus: excerpts whose entity type grounds this role.
	for _, e := range hints.Excerpts {
		if entityAffinity[e.EntityType] == c.Role {
			score += 0.1
		}
	}

	return score, nil
}
