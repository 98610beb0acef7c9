// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// InputValidationError is a hard error: a malformed generation or event
// request, rejected before any external call is made.
type InputValidationError struct {
	// Field names the offending input field.
	Field string

	// Reason describes the problem.
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// InsufficientContentError is a hard error: the layout generator cannot
// reach the minimum section count under the given constraints. No
// partial layout is produced.
type InsufficientContentError struct {
	// PageType is the page being generated.
	PageType PageType

	// Needed is the minimum section count required.
	Needed int

	// Available is the count actually reachable under constraints.
	Available int
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("insufficient content for %s page: need %d sections, only %d available under constraints",
		e.PageType, e.Needed, e.Available)
}

// PipelineInconsistencyError is a hard error: a cross-stage section id
// mismatch detected at assembly. The commit is aborted and any prior
// persisted snapshot is left untouched.
type PipelineInconsistencyError struct {
	// Stage names the stage whose references did not line up.
	Stage string

	// Missing lists the section ids referenced but not found.
	Missing []string
}

func (e *PipelineInconsistencyError) Error() string {
	return fmt.Sprintf("pipeline inconsistency in %s: missing sections %s",
		e.Stage, strings.Join(e.Missing, ", "))
}

// DetectionError is a soft error: a persona detection call failed. The
// session keeps its prior persona (or none); there is no user-visible
// failure.
type DetectionError struct {
	// SessionID identifies the affected session.
	SessionID string

	// Cause is the underlying failure.
	Cause error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("persona detection failed for session %s: %v", e.SessionID, e.Cause)
}

func (e *DetectionError) Unwrap() error {
	return e.Cause
}
