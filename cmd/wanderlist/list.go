package main

import (
	"encoding/json"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/wanderlist/pkg/core"
)

var (
	listJSON  bool
	listMatch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List destinations in the saved layout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listMatch != "" && !doublestar.ValidatePattern(listMatch) {
			return fmt.Errorf("invalid --match pattern %q", listMatch)
		}

		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		notes, err := app.Notes.ListNotes(ctx)
		if err != nil {
			return err
		}
		notes = filterNotes(notes, listMatch)

		if listJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(notes)
		}

		showList, err := app.Preferences.ShowList(ctx)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), notes, showList)
	},
}

// filterNotes keeps notes whose tujuan matches the glob pattern.
func filterNotes(notes []core.Note, pattern string) []core.Note {
	if pattern == "" {
		return notes
	}
	filtered := []core.Note{}
	for _, n := range notes {
		if ok, _ := doublestar.Match(pattern, n.Tujuan); ok {
			filtered = append(filtered, n)
		}
	}
	return filtered
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listMatch, "match", "", "Only destinations matching a glob, e.g. 'B*' or '{Bali,Aceh}'")
}
