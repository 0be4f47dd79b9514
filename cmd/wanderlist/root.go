package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/wanderlist/internal/conf"
)

var (
	verbose  bool
	cfgFile  string
	cfg      = conf.New()
	settings *conf.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wanderlist",
	Short: "Keep a list of places to travel to",
	Long: `Wanderlist records travel destinations, how you plan to get there
and free notes about each trip. Data lives in a local SQLite database
or, with --adapter fs, in a hand-editable notes.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := conf.Load(cfg, cfgFile)
		if err != nil {
			return err
		}
		settings = s

		level, _ := s.Level()
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if s.ConfigFile != "" {
			logger.Debug("configuration loaded", "file", s.ConfigFile)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&cfgFile, "config", "", "Config file (default: wanderlist.yaml in the data dir or $HOME/.config/wanderlist)")
	flags.StringP("dir", "d", ".", "Data directory")
	flags.String("adapter", "sqlite", "Storage adapter: sqlite, fs or memory")
	flags.Bool("read-only", false, "Open the data without allowing writes")

	for key, flag := range map[string]string{
		"data_dir":  "dir",
		"adapter":   "adapter",
		"read_only": "read-only",
	} {
		if err := cfg.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}
