// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package track

import (
	"math"
	"testing"
	"time"
)

func TestEngagementScore(t *testing.T) {
	// 0.5*15 + 1.0*4 + 0.02*120 = 13.9
	got := EngagementScore(15, 4, 120*time.Second)
	if math.Abs(got-13.9) > 1e-9 {
		t.Errorf("score = %.4f, want 13.9", got)
	}

	if got := EngagementScore(0, 0, 0); got != 0 {
		t.Errorf("empty session score = %.4f, want 0", got)
	}
}

func TestEngagementScoreMonotonic(t *testing.T) {
	base := EngagementScore(5, 3, time.Minute)

	cases := []struct {
		name   string
		clicks int
		pages  int
		dwell  time.Duration
	}{
		{"more clicks", 6, 3, time.Minute},
		{"more pages", 5, 4, time.Minute},
		{"more time", 5, 3, 2 * time.Minute},
	}
	for _, tc := range cases {
		if got := EngagementScore(tc.clicks, tc.pages, tc.dwell); got <= base {
			t.Errorf("%s: score %.4f not above base %.4f", tc.name, got, base)
		}
	}
}

func TestShouldTriggerDetection(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Engaged visitor, no prior detection: trigger.
	if !shouldTrigger(15, 4, 120*time.Second, nil, now) {
		t.Error("engaged visitor with no prior detection must trigger")
	}

	// Below the engagement gate: no trigger.
	if shouldTrigger(2, 1, 30*time.Second, nil, now) {
		t.Error("low engagement must not trigger")
	}

	// Exactly at the gate: trigger. 0.5*4 + 1.0*8 + 0 = 10.0.
	if !shouldTrigger(4, 8, 0, nil, now) {
		t.Error("score exactly at the gate must trigger")
	}
}

func TestDetectionCooldownWinsOverEngagement(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	recent := now.Add(-time.Minute)
	if shouldTrigger(100, 100, time.Hour, &recent, now) {
		t.Error("a detection one minute ago must suppress even extreme engagement")
	}

	stale := now.Add(-DetectionCooldown - time.Second)
	if !shouldTrigger(15, 4, 120*time.Second, &stale, now) {
		t.Error("a detection past the cooldown must not suppress")
	}

	// Exactly at the cooldown boundary the suppression lifts.
	boundary := now.Add(-DetectionCooldown)
	if !shouldTrigger(15, 4, 120*time.Second, &boundary, now) {
		t.Error("cooldown is a strict window; the boundary itself must not suppress")
	}
}
