// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pageforge/internal/assemble"
	"github.com/pdiddy/pageforge/internal/content"
	"github.com/pdiddy/pageforge/internal/knowledge"
	"github.com/pdiddy/pageforge/internal/pipeline"
	"github.com/pdiddy/pageforge/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [request-file]",
	Short: "Run the generation pipeline for one page",
	Long: `Generate reads a page generation request (YAML), runs the staged
pipeline (layout, storyline, content, assembly), and persists the
assembled page structure as a snapshot. Content is grounded in the
knowledge base and populated through the Claude API; soft failures
degrade to generic copy and are reported, hard failures abort the run
without touching any prior snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading request file: %w", err)
	}
	var req types.GenerationRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parsing request file %s: %w", args[0], err)
	}

	cfg := pipelineConfig(cmd)

	store, err := knowledge.NewStore(cfg.Knowledge)
	if err != nil {
		return err
	}
	defer store.Close()

	snapshots, err := assemble.NewSnapshotStore(cfg.Snapshot)
	if err != nil {
		return err
	}
	defer snapshots.Close()

	oracle := &content.ClaudeOracle{
		APIKey: cfg.Content.APIKey,
		Model:  cfg.Content.Model,
		Client: &http.Client{Timeout: cfg.Content.CallTimeout},
	}

	runner := pipeline.NewRunner(cfg, store, oracle, snapshots)
	outcome, err := runner.Run(context.Background(), req, os.Stdout)
	if err != nil {
		return err
	}

	s := outcome.Structure
	fmt.Fprintf(os.Stdout, "Generated %s: %d sections, coherence %d/100, %d degradation(s)\n",
		s.PageID, len(s.Sections), outcome.Validation.Score, len(s.Stats.Degradations))
	return nil
}

// pipelineConfig assembles the pipeline configuration from flags and
// loaded secrets.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	knowledgeDir, _ := cmd.Flags().GetString("knowledge-dir")
	snapshotDir, _ := cmd.Flags().GetString("snapshot-dir")
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")
	timeout, _ := cmd.Flags().GetDuration("call-timeout")
	threshold, _ := cmd.Flags().GetFloat64("confidence-threshold")

	cfg := types.PipelineConfig{
		Knowledge: types.KnowledgeConfig{KnowledgeDir: knowledgeDir},
		Snapshot:  types.SnapshotConfig{SnapshotDir: snapshotDir},
		Content: types.ContentConfig{
			AIConfig: types.AIConfig{
				Model:  model,
				APIKey: secretDefault("anthropic-api-key", apiKey),
			},
			CallTimeout:         timeout,
			ConfidenceThreshold: threshold,
		},
	}
	return cfg
}

func init() {
	generateCmd.Flags().String("knowledge-dir", "knowledge", "base directory for knowledge data (contains excerpts/, personas/, index/)")
	generateCmd.Flags().String("snapshot-dir", "snapshots", "directory for the page snapshot database")
	generateCmd.Flags().String("model", "claude-sonnet-4-5", "Claude model identifier for content generation")
	generateCmd.Flags().String("api-key", "", "Claude API key (default: .secrets/anthropic-api-key)")
	generateCmd.Flags().Duration("call-timeout", 60*time.Second, "timeout for a single oracle call")
	generateCmd.Flags().Float64("confidence-threshold", 0.3, "minimum grounding confidence before generic fallback")

	rootCmd.AddCommand(generateCmd)
}
