package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/wanderlist/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the destination list every time it changes",
	Long: `Keeps the live list open and reprints it after every change, including
changes made by other wanderlist processes on the fs adapter. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		list := viewModels(app).NoteList()
		defer list.Close()

		layout, err := app.Preferences.Observe(ctx)
		if err != nil {
			return err
		}
		showList := <-layout

		out := cmd.OutOrStdout()
		snapshots := list.Subscribe(ctx)
		for {
			select {
			case <-ctx.Done():
				return nil
			case v, ok := <-layout:
				if !ok {
					return nil
				}
				showList = v
				if err := reprint(out, list.Value(), showList); err != nil {
					return err
				}
			case notes, ok := <-snapshots:
				if !ok {
					return nil
				}
				if err := reprint(out, notes, showList); err != nil {
					return err
				}
			}
		}
	},
}

func reprint(out io.Writer, notes []core.Note, showList bool) error {
	fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format(time.TimeOnly))
	return render(out, notes, showList)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
