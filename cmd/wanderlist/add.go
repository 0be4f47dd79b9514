package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aretw0/wanderlist/pkg/core"
)

var addDraft core.Draft

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a destination",
	Example: `  wanderlist add -t Bali -k Kapal -c "Pantai Kuta"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := addDraft.Validate(); err != nil {
			return err
		}
		warnVehicle(addDraft.Kendaraan)

		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		res := <-viewModels(app).NoteEditor().Insert(cmd.Context(),
			addDraft.Tujuan, addDraft.Kendaraan, addDraft.Catatan)
		if res.Err != nil {
			return res.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved note %d\n", res.ID)
		return nil
	},
}

func warnVehicle(v string) {
	if !core.IsKnownVehicle(v) {
		slog.Warn("unusual vehicle", "kendaraan", v, "known", core.Vehicles)
	}
}

func draftFlags(cmd *cobra.Command, d *core.Draft) {
	cmd.Flags().StringVarP(&d.Tujuan, "tujuan", "t", "", "Destination")
	cmd.Flags().StringVarP(&d.Kendaraan, "kendaraan", "k", "", "Vehicle (Pesawat, Kereta, Kapal, Mobil, Motor)")
	cmd.Flags().StringVarP(&d.Catatan, "catatan", "c", "", "Notes")
}

func init() {
	rootCmd.AddCommand(addCmd)
	draftFlags(addCmd, &addDraft)
}
