// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pageforge/internal/knowledge"
	"github.com/pdiddy/pageforge/internal/session"
	"github.com/pdiddy/pageforge/internal/track"
	"github.com/pdiddy/pageforge/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect the persona resolver",
}

var sessionReplayCmd = &cobra.Command{
	Use:   "replay [events-file]",
	Short: "Replay an interaction event stream through the persona resolver",
	Long: `Replay reads a JSON array of interaction events, feeds it through the
persona resolution state machine against the personas defined in the
knowledge base, and prints the inferred persona trajectory: after each
event, the session state, active persona, and confidence.`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionReplay,
}

func runSessionReplay(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading events file: %w", err)
	}
	var events []types.InteractionEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("parsing events file %s: %w", args[0], err)
	}

	store, err := knowledge.NewStore(knowledgeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	personas, err := store.Personas(context.Background())
	if err != nil {
		return err
	}
	if len(personas) == 0 {
		return fmt.Errorf("no personas in knowledge base: run 'pageforge knowledge store' first")
	}

	resolver := session.NewResolver(session.NewMemoryStore(), personas)

	// The ingestor orders and groups the batch; each delivered event
	// advances the resolver and its trajectory is printed as it evolves.
	sink := track.SinkFunc(func(ev types.InteractionEvent) error {
		if err := resolver.RecordInteraction(ev); err != nil {
			return err
		}
		s := resolver.Session()
		fmt.Fprintf(os.Stdout, "%-13s  state=%-12s  persona=%-16s  confidence=%.2f\n",
			ev.Type, s.State, orDash(s.ActivePersonaID), s.Confidence)
		return nil
	})

	result := track.NewIngestor(sink, os.Stderr).Ingest(events)

	s := resolver.Session()
	fmt.Fprintf(os.Stdout, "\nProcessed %d event(s), %d malformed\n", result.Processed(), result.Malformed)
	fmt.Fprintf(os.Stdout, "Final: state=%s persona=%s label=%q confidence=%.2f self_identified=%v\n",
		s.State, orDash(s.ActivePersonaID), s.PersonaLabel, s.Confidence, s.SelfIdentified)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	sessionCmd.PersistentFlags().String("knowledge-dir", "knowledge", "base directory for knowledge data (contains excerpts/, personas/, index/)")
	sessionCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	sessionCmd.AddCommand(sessionReplayCmd)
	rootCmd.AddCommand(sessionCmd)
}
