// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package track gates expensive AI-backed persona detection behind an
// engagement heuristic and ingests batched client interaction events.
// See docs/ARCHITECTURE § Detection Trigger Policy.
package track

import (
	"time"
)

// Engagement scoring weights and gates. Package-level so tests and
// deployments can tune the policy; the score stays monotonic in every
// input regardless of the values.
var (
	// ClickWeight is the score contribution per click.
	ClickWeight = 0.5

	// PageWeight is the score contribution per page viewed.
	PageWeight = 1.0

	// TimeWeight is the score contribution per second on site.
	TimeWeight = 0.02

	// MinEngagement is the score required to trigger detection.
	MinEngagement = 10.0

	// DetectionCooldown suppresses triggering when the previous
	// detection is more recent than this, regardless of engagement.
	DetectionCooldown = 5 * time.Minute
)

// EngagementScore combines click, page, and dwell-time counts into a
// single score. Strictly non-decreasing in every input.
func EngagementScore(totalClicks, totalPages int, totalTime time.Duration) float64 {
	score := ClickWeight * float64(totalClicks)
	score += PageWeight * float64(totalPages)
	score += TimeWeight * totalTime.Seconds()
	return score
}

// ShouldTriggerDetection reports whether a persona detection call is
// warranted. A nil lastDetectionAt means no detection has run yet for
// the session. The cooldown wins over engagement: a recent detection
// suppresses triggering no matter how engaged the visitor is.
func ShouldTriggerDetection(totalClicks, totalPages int, totalTime time.Duration, lastDetectionAt *time.Time) bool {
	return shouldTrigger(totalClicks, totalPages, totalTime, lastDetectionAt, time.Now())
}

func shouldTrigger(totalClicks, totalPages int, totalTime time.Duration, lastDetectionAt *time.Time, now time.Time) bool {
	if lastDetectionAt != nil && now.Sub(*lastDetectionAt) < DetectionCooldown {
		return false
	}
	return EngagementScore(totalClicks, totalPages, totalTime) >= MinEngagement
}
