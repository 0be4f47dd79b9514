package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wanderlist/pkg/prefs"
)

var layoutCmd = &cobra.Command{
	Use:       "layout [list|grid|toggle]",
	Short:     "Show or change how destinations are displayed",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"list", "grid", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		store := app.Preferences

		var showList bool
		switch {
		case len(args) == 0:
			showList, err = store.ShowList(ctx)
		case args[0] == "toggle":
			showList, err = store.Toggle(ctx)
		default:
			showList = args[0] == "list"
			err = store.Save(ctx, showList)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Layout: %s\n", prefs.LayoutName(showList))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}
