// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package content

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/pageforge/internal/layout"
	"github.com/pdiddy/pageforge/pkg/types"
)

// Input is the content generation request for one page.
type Input struct {
	// PageTitle is the page title, used in prompts and generic fallback.
	PageTitle string

	// Layout is the selected section set.
	Layout *types.PageLayout

	// Storyline supplies per-section messaging directives.
	Storyline *types.Storyline

	// Personas lists the archetypes to generate variants for.
	Personas []types.Persona

	// Tone is the brand voice descriptor.
	Tone string

	// Excerpts are the knowledge excerpts grounding the copy.
	Excerpts []types.KnowledgeExcerpt
}

// Result is the output of one content generation run.
type Result struct {
	// Sections is the populated section list, in layout order.
	Sections []types.PopulatedSection

	// Degradations lists soft failures where generic content was
	// substituted or a persona variant was dropped.
	Degradations []types.Degradation

	// TokensUsed is the total oracle token consumption.
	TokensUsed int

	// OracleCalls counts completion calls made.
	OracleCalls int
}

// Generator populates sections through an oracle. Construct with
// NewGenerator so tests can inject a mock oracle; there is no
// package-level instance.
type Generator struct {
	oracle Oracle
	cfg    types.ContentConfig
}

// NewGenerator returns a content generator using the given oracle.
func NewGenerator(cfg types.ContentConfig, oracle Oracle) *Generator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.3
	}
	if cfg.ExcerptsPerSection <= 0 {
		cfg.ExcerptsPerSection = 5
	}
	return &Generator{oracle: oracle, cfg: cfg}
}

// Populate generates content for every layout section: one base variant
// plus one variant per persona. This stage fails soft: an oracle error
// or sub-threshold grounding confidence substitutes templated generic
// content (base) or drops the variant (personas), recording a
// degradation either way. The only hard failure is a malformed section
// spec.
func (g *Generator) Populate(ctx context.Context, input Input) (*Result, error) {
	if input.Layout == nil || len(input.Layout.Sections) == 0 {
		return nil, &types.InputValidationError{Field: "layout", Reason: "layout has no sections"}
	}
	if input.Storyline == nil {
		return nil, &types.InputValidationError{Field: "storyline", Reason: "storyline is required"}
	}

	directives := make(map[string]types.ContentBlock, len(input.Storyline.ContentBlocks))
	for _, b := range input.Storyline.ContentBlocks {
		directives[b.SectionID] = b
	}

	res := &Result{}

	for _, sec := range input.Layout.Sections {
		comp, ok := layout.Lookup(sec.ComponentID)
		if !ok {
			return nil, &types.InputValidationError{Field: "sections", Reason: fmt.Sprintf("unknown component %q", sec.ComponentID)}
		}

		excerpts := relevantExcerpts(input.Excerpts, comp, g.cfg.ExcerptsPerSection)
		base := OracleRequest{
			PageType:       input.Layout.PageType,
			PageTitle:      input.PageTitle,
			SectionID:      sec.SectionID,
			ComponentID:    sec.ComponentID,
			Role:           sec.NarrativeRole,
			Directive:      directives[sec.SectionID].Directive,
			Tone:           input.Tone,
			RequiredFields: comp.RequiredFields,
			Excerpts:       excerpts,
		}

		populated := types.PopulatedSection{
			SectionID:     sec.SectionID,
			ComponentID:   sec.ComponentID,
			Order:         sec.Order,
			NarrativeRole: sec.NarrativeRole,
		}

		content, confidence, deg := g.generateVariant(ctx, base, res)
		if deg != nil {
			d := *deg
			d.SectionID = sec.SectionID
			res.Degradations = append(res.Degradations, d)
		}
		populated.Content = content
		populated.Confidence = confidence

		// Persona variants: dropped on failure, never generic. The base
		// content already serves visitors the variant would have covered.
		for _, p := range input.Personas {
			req := base
			req.PersonaID = p.ID
			req.PersonaLabel = p.Label
			req.PersonaDesc = p.Description
			vContent, vConfidence, vDeg := g.generateVariant(ctx, req, res)
			if vDeg != nil {
				d := *vDeg
				d.SectionID = sec.SectionID
				d.PersonaID = p.ID
				res.Degradations = append(res.Degradations, d)
				continue
			}
			if populated.PersonaVariations == nil {
				populated.PersonaVariations = make(map[string]types.PersonaVariant)
			}
			populated.PersonaVariations[p.ID] = types.PersonaVariant{
				Content:    vContent,
				Confidence: vConfidence,
			}
		}

		res.Sections = append(res.Sections, populated)
	}

	return res, nil
}

// generateVariant runs one oracle call with retries and converts the
// response. The returned degradation is non-nil when generic fallback
// was substituted (base variants) or when the caller should drop the
// variant (persona variants, signaled the same way).
func (g *Generator) generateVariant(ctx context.Context, req OracleRequest, res *Result) (types.PopulatedContent, float64, *types.Degradation) {
	resp, err := g.callWithRetry(ctx, req)
	res.OracleCalls++
	if err != nil {
		c := genericContent(req)
		return c, groundingConfidence(c, req.Excerpts), &types.Degradation{
			Reason: fmt.Sprintf("oracle call failed: %v", err),
		}
	}
	res.TokensUsed += resp.TokensUsed

	c := toContent(resp.Fields, req)
	confidence := groundingConfidence(c, req.Excerpts)
	if confidence < g.cfg.ConfidenceThreshold {
		generic := genericContent(req)
		return generic, confidence, &types.Degradation{
			Reason: fmt.Sprintf("grounding confidence %.2f below threshold %.2f", confidence, g.cfg.ConfidenceThreshold),
		}
	}
	return c, confidence, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the oracle with a per-call timeout and
// exponential backoff. Intermediate pipeline artifacts are immutable,
// so a retry never re-runs upstream stages.
func (g *Generator) callWithRetry(ctx context.Context, req OracleRequest) (OracleResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return OracleResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
		resp, err := g.oracle.Complete(callCtx, req)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return OracleResponse{}, fmt.Errorf("after %d retries: %w", g.cfg.MaxRetries, lastErr)
}

// toContent maps oracle fields onto PopulatedContent, filling any
// missing required slot with its generic value so the section always
// renders complete.
func toContent(fields map[string]string, req OracleRequest) types.PopulatedContent {
	c := types.PopulatedContent{}
	extra := make(map[string]string)
	for k, v := range fields {
		switch k {
		case "headline":
			c.Headline = v
		case "subheadline":
			c.Subheadline = v
		case "body":
			c.Body = v
		default:
			extra[k] = v
		}
	}
	for _, f := range req.RequiredFields {
		switch f {
		case "headline":
			if c.Headline == "" {
				c.Headline = genericHeadline(req)
			}
		case "subheadline":
			if c.Subheadline == "" {
				c.Subheadline = genericFieldValues["subheadline"]
			}
		case "body":
			if c.Body == "" {
				c.Body = genericFieldValues["body"]
			}
		default:
			if extra[f] == "" {
				extra[f] = genericField(f)
			}
		}
	}
	if len(extra) > 0 {
		c.Fields = extra
	}
	return c
}

// relevantExcerpts picks the excerpts most related to a component by
// keyword and tag overlap, capped at n. With no overlap anywhere the
// highest-confidence excerpts are used.
func relevantExcerpts(excerpts []types.KnowledgeExcerpt, comp layout.Component, n int) []types.KnowledgeExcerpt {
	type scored struct {
		e     types.KnowledgeExcerpt
		score float64
	}
	items := make([]scored, 0, len(excerpts))
	for _, e := range excerpts {
		text := strings.ToLower(e.Content + " " + strings.Join(e.Tags, " "))
		s := 0.0
		for _, kw := range comp.Keywords {
			if strings.Contains(text, kw) {
				s += 1.0
			}
		}
		s += e.Confidence * 0.1
		items = append(items, scored{e: e, score: s})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })
	if len(items) > n {
		items = items[:n]
	}
	out := make([]types.KnowledgeExcerpt, len(items))
	for i, it := range items {
		out[i] = it.e
	}
	return out
}

// groundingConfidence measures how much of the generated copy is
// traceable to the supplied excerpts: the fraction of significant words
// that appear in the excerpt vocabulary, clamped to [0,1]. No excerpts
// means nothing is traceable and the score is zero.
func groundingConfidence(c types.PopulatedContent, excerpts []types.KnowledgeExcerpt) float64 {
	if len(excerpts) == 0 {
		return 0
	}

	vocab := make(map[string]bool)
	for _, e := range excerpts {
		for _, w := range significantWords(e.Content) {
			vocab[w] = true
		}
		for _, t := range e.Tags {
			vocab[strings.ToLower(t)] = true
		}
	}

	var text strings.Builder
	text.WriteString(c.Headline)
	text.WriteByte(' ')
	text.WriteString(c.Subheadline)
	text.WriteByte(' ')
	text.WriteString(c.Body)
	for _, v := range c.Fields {
		text.WriteByte(' ')
		text.WriteString(v)
	}

	words := significantWords(text.String())
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, w := range words {
		if vocab[w] {
			matched++
		}
	}
	conf := float64(matched) / float64(len(words))
	if conf > 1 {
		conf = 1
	}
	return conf
}

// significantWords lowercases and splits text, keeping words longer
// than three characters so stopwords do not inflate the score.
func significantWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	var out []string
	for _, f := range fields {
		if len(f) > 3 {
			out = append(out, f)
		}
	}
	return out
}
