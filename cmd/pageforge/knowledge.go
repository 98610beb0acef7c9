// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pageforge/internal/knowledge"
	"github.com/pdiddy/pageforge/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the knowledge base (store, retrieve, personas)",
	Long: `Knowledge manages a local SQLite knowledge base built from curated
excerpt and persona files. Use subcommands to ingest files, query
excerpts, or list personas.`,
}

// --- store subcommand ---

var knowledgeStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest excerpt and persona files into the knowledge base",
	Long: `Store reads excerpt YAML files from knowledge/excerpts/ and persona
definitions from knowledge/personas/, and ingests them into a SQLite
database with FTS5 indexing. Unchanged sources are skipped on
subsequent runs.`,
	RunE: runKnowledgeStore,
}

func runKnowledgeStore(cmd *cobra.Command, args []string) error {
	store, err := knowledge.NewStore(knowledgeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d source(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var knowledgeRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the knowledge base with full-text search and filters",
	Long: `Retrieve searches the knowledge base using FTS5 full-text search,
structured filters (type, tag, source), or a combination of both.
Results include provenance links to the source document and section.`,
	RunE: runKnowledgeRetrieve,
}

func runKnowledgeRetrieve(cmd *cobra.Command, args []string) error {
	store, err := knowledge.NewStore(knowledgeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --type, --tag, or --source")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []knowledge.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-50s  %-20s  %s\n",
		"Rank", "Type", "Content", "Source", "Section")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		excerpt := r.Content
		if len(excerpt) > 50 {
			excerpt = excerpt[:47] + "..."
		}
		source := r.SourceID
		if len(source) > 20 {
			source = source[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-50s  %-20s  %s\n",
			i+1, r.EntityType, excerpt, source, r.Section)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- personas subcommand ---

var knowledgePersonasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List personas defined in the knowledge base",
	RunE:  runKnowledgePersonas,
}

func runKnowledgePersonas(cmd *cobra.Command, args []string) error {
	store, err := knowledge.NewStore(knowledgeConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	personas, err := store.Personas(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(personas)
	}

	if len(personas) == 0 {
		fmt.Println("No personas defined.")
		return nil
	}
	for _, p := range personas {
		fmt.Fprintf(os.Stdout, "%-20s  %-24s  priority=%d  keywords=%s\n",
			p.ID, p.Label, p.Priority, strings.Join(p.Keywords, ","))
	}
	return nil
}

// --- shared helpers ---

func knowledgeConfig(cmd *cobra.Command) types.KnowledgeConfig {
	knowledgeDir, _ := cmd.Flags().GetString("knowledge-dir")
	if knowledgeDir == "" {
		knowledgeDir = "knowledge"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.KnowledgeConfig{
		KnowledgeDir: knowledgeDir,
		MaxResults:   maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) knowledge.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	entityType, _ := cmd.Flags().GetString("type")
	tag, _ := cmd.Flags().GetString("tag")
	sourceID, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := knowledge.QueryOptions{
		Query:      queryText,
		EntityType: types.EntityType(entityType),
		SourceID:   sourceID,
		MaxResults: limit,
	}
	if tag != "" {
		opts.Tags = []string{tag}
	}
	return opts
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	knowledgeCmd.PersistentFlags().String("knowledge-dir", "knowledge", "base directory for knowledge data (contains excerpts/, personas/, index/)")
	knowledgeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	knowledgeRetrieveCmd.Flags().String("query", "", "full-text search query")
	knowledgeRetrieveCmd.Flags().String("type", "", "filter by entity type: fact, feature, testimonial, metric, brand")
	knowledgeRetrieveCmd.Flags().String("tag", "", "filter by tag")
	knowledgeRetrieveCmd.Flags().String("source", "", "filter by source document ID")
	knowledgeRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	knowledgeRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Personas flags.
	knowledgePersonasCmd.Flags().Bool("json", false, "output personas as JSON")

	// Wire subcommands.
	knowledgeCmd.AddCommand(knowledgeStoreCmd)
	knowledgeCmd.AddCommand(knowledgeRetrieveCmd)
	knowledgeCmd.AddCommand(knowledgePersonasCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
