// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pageforge/internal/assemble"
	"github.com/pdiddy/pageforge/internal/render"
	"github.com/pdiddy/pageforge/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render [page-id]",
	Short: "Extract runtime page data from a persisted snapshot",
	Long: `Render loads a page snapshot and extracts the runtime data a
rendering surface consumes: ordered sections with base content and
persona variants, brand tokens, and the animation contract. With
--persona the sections are resolved for that persona, variant over
base, exactly what a visitor with that persona would see.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	snapshotDir, _ := cmd.Flags().GetString("snapshot-dir")
	personaID, _ := cmd.Flags().GetString("persona")

	store, err := assemble.NewSnapshotStore(types.SnapshotConfig{SnapshotDir: snapshotDir})
	if err != nil {
		return err
	}
	defer store.Close()

	structure, err := store.Load(context.Background(), args[0])
	if err != nil {
		return err
	}

	data := render.Extract(structure)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if personaID != "" {
		resolved := render.ForPersona(data, personaID)
		return enc.Encode(resolved)
	}
	return enc.Encode(data)
}

func init() {
	renderCmd.Flags().String("snapshot-dir", "snapshots", "directory for the page snapshot database")
	renderCmd.Flags().String("persona", "", "resolve sections for this persona ID")

	rootCmd.AddCommand(renderCmd)
}
