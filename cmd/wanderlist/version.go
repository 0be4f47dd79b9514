package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/wanderlist"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wanderlist",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wanderlist version %s\n", strings.TrimSpace(wanderlist.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
