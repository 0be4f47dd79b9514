package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one destination",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		res := <-viewModels(app).NoteEditor().Load(cmd.Context(), id)
		if res.Err != nil {
			return res.Err
		}
		if !res.Found {
			return fmt.Errorf("note %d not found", id)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Tujuan:    %s\n", res.Note.Tujuan)
		fmt.Fprintf(out, "Kendaraan: %s\n", res.Note.Kendaraan)
		fmt.Fprintf(out, "Catatan:   %s\n", res.Note.Catatan)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
