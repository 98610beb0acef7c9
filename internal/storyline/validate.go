// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package storyline

import (
	"fmt"

	"github.com/pdiddy/pageforge/pkg/types"
)

// Violation codes.
const (
	ViolationConversionBeforeProof = "conversion-before-proof"
	ViolationJourneyRegression     = "journey-regression"
	ViolationMissingOpening        = "missing-opening"
	ViolationDuplicateSection      = "duplicate-section"
)

// violationPenalty is the score cost per violation on the 0-100 scale.
const violationPenalty = 25

// Validate grades a storyline against the ordering rules for its page
// type. Validation is advisory: low scores and violations never block
// generation, so this returns a report rather than an error.
func (g *Generator) Validate(s *types.Storyline, pageType types.PageType) types.StorylineValidation {
	tmpl, ok := templates[pageType]
	if !ok {
		// Unknown page types grade against the landing template rather
		// than failing; validation must not gate.
		tmpl = templates[types.PageLanding]
	}

	stageOf := make(map[string]types.EmotionalStage, len(s.EmotionalJourney))
	for _, jp := range s.EmotionalJourney {
		stageOf[jp.SectionID] = jp.Stage
	}

	var violations []types.Violation
	var suggestions []string

	// Duplicate section ids in the flow.
	seen := make(map[string]bool, len(s.DefaultFlow))
	for _, id := range s.DefaultFlow {
		if seen[id] {
			violations = append(violations, types.Violation{
				Code:      ViolationDuplicateSection,
				Message:   fmt.Sprintf("section %s appears more than once in the default flow", id),
				SectionID: id,
			})
		}
		seen[id] = true
	}

	// An action-stage section must not precede every credibility-stage
	// section: asking for conversion before any proof has been shown.
	firstAction, firstCredibility := -1, -1
	for i, id := range s.DefaultFlow {
		switch stageOf[id] {
		case types.StageAction:
			if firstAction == -1 {
				firstAction = i
			}
		case types.StageCredibility:
			if firstCredibility == -1 {
				firstCredibility = i
			}
		}
	}
	if firstAction != -1 && firstCredibility != -1 && firstAction < firstCredibility {
		violations = append(violations, types.Violation{
			Code:      ViolationConversionBeforeProof,
			Message:   "a conversion section precedes every proof section",
			SectionID: s.DefaultFlow[firstAction],
		})
		suggestions = append(suggestions, "move at least one proof or trust section ahead of the first conversion ask")
	}
	if firstAction != -1 && firstCredibility == -1 {
		violations = append(violations, types.Violation{
			Code:      ViolationConversionBeforeProof,
			Message:   "the flow asks for conversion but contains no proof section",
			SectionID: s.DefaultFlow[firstAction],
		})
		suggestions = append(suggestions, "add a proof, trust, or objection-handling section before the conversion ask")
	}

	// The journey should not regress against the template's stage order
	// by more than one step (a deliberate callback is fine; jumping from
	// action back to awareness is not).
	prevRank := -1
	for _, id := range s.DefaultFlow {
		r := tmpl.rank(stageOf[id])
		if prevRank != -1 && r < prevRank-1 {
			violations = append(violations, types.Violation{
				Code:      ViolationJourneyRegression,
				Message:   fmt.Sprintf("section %s regresses the journey from %q", id, tmpl.stages[prevRank]),
				SectionID: id,
			})
		}
		if r > prevRank {
			prevRank = r
		}
	}

	// The flow should open on an awareness-stage section.
	if len(s.DefaultFlow) > 0 && stageOf[s.DefaultFlow[0]] != types.StageAwareness {
		violations = append(violations, types.Violation{
			Code:      ViolationMissingOpening,
			Message:   "the flow does not open with an awareness-stage section",
			SectionID: s.DefaultFlow[0],
		})
		suggestions = append(suggestions, "open with a hook or problem section to orient the visitor")
	}

	score := 100 - violationPenalty*len(violations)
	if score < 0 {
		score = 0
	}

	return types.StorylineValidation{
		IsOptimal:   len(violations) == 0,
		Score:       score,
		Violations:  violations,
		Suggestions: suggestions,
	}
}
