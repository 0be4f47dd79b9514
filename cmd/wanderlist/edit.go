package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/wanderlist/pkg/core"
)

var editDraft core.Draft

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a destination; omitted fields keep their value",
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

		editor := viewModels(app).NoteEditor()
		loaded := <-editor.Load(cmd.Context(), id)
		if loaded.Err != nil {
			return loaded.Err
		}
		if !loaded.Found {
			return fmt.Errorf("note %d not found", id)
		}

		d := loaded.Note.Draft()
		if cmd.Flags().Changed("tujuan") {
			d.Tujuan = editDraft.Tujuan
		}
		if cmd.Flags().Changed("kendaraan") {
			d.Kendaraan = editDraft.Kendaraan
			warnVehicle(d.Kendaraan)
		}
		if cmd.Flags().Changed("catatan") {
			d.Catatan = editDraft.Catatan
		}
		if err := d.Validate(); err != nil {
			return err
		}

		res := <-editor.Update(cmd.Context(), id, d.Tujuan, d.Kendaraan, d.Catatan)
		if res.Err != nil {
			return res.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	draftFlags(editCmd, &editDraft)
}
