// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pageforge/internal/track"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Evaluate the persona detection trigger policy",
	Long: `Detect reports whether the given engagement numbers would trigger an
AI-backed persona detection call. The policy is monotonic in clicks,
pages, and time on site; a recent prior detection suppresses triggering
regardless of engagement.`,
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	clicks, _ := cmd.Flags().GetInt("clicks")
	pages, _ := cmd.Flags().GetInt("pages")
	onSite, _ := cmd.Flags().GetDuration("time")
	since, _ := cmd.Flags().GetDuration("last-detection")

	var lastDetectionAt *time.Time
	if cmd.Flags().Changed("last-detection") {
		t := time.Now().Add(-since)
		lastDetectionAt = &t
	}

	score := track.EngagementScore(clicks, pages, onSite)
	trigger := track.ShouldTriggerDetection(clicks, pages, onSite, lastDetectionAt)

	fmt.Fprintf(os.Stdout, "engagement=%.2f threshold=%.2f trigger=%v\n", score, track.MinEngagement, trigger)
	if !trigger && lastDetectionAt != nil && time.Since(*lastDetectionAt) < track.DetectionCooldown {
		fmt.Fprintf(os.Stdout, "suppressed: last detection %v ago, cooldown %v\n", since, track.DetectionCooldown)
	}
	return nil
}

func init() {
	detectCmd.Flags().Int("clicks", 0, "total clicks in the session")
	detectCmd.Flags().Int("pages", 0, "total pages viewed in the session")
	detectCmd.Flags().Duration("time", 0, "total time on site")
	detectCmd.Flags().Duration("last-detection", 0, "time elapsed since the previous detection")

	rootCmd.AddCommand(detectCmd)
}
