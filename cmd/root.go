// Package cmd implements the sesame command-line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/config"
	"github.com/aliou/sesame/internal/source"
	"github.com/aliou/sesame/internal/store"
	"github.com/aliou/sesame/internal/watch"
)

var (
	flagDBPath string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "sesame",
	Short: "Search your agent session history",
	Long:  "Index Claude Code session logs into a local full-text store and search them by topic.",
	RunE:  runSearchCmd,
	Args:  cobra.ArbitraryArgs,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDBPath, "db", "d", "", "Index database path (default: XDG data dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// openStore opens the index database at the flagged or configured path.
func openStore() (*store.Store, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	path := flagDBPath
	if path == "" {
		path = cfg.DBPath()
	}
	st, err := store.Open(path)
	return st, cfg, err
}

// resolveTargets maps configured sources to watch targets; sources with
// unrecognized parser ids are skipped with a warning.
func resolveTargets(cfg config.Config, registry source.Registry) []watch.Target {
	var targets []watch.Target
	for _, src := range cfg.Sources {
		adapter := registry.Lookup(src.Parser)
		if adapter == nil {
			slog.Warn("unknown parser in config, skipping source", "parser", src.Parser, "path", src.Path)
			continue
		}
		targets = append(targets, watch.Target{
			Dir:     config.ExpandHome(src.Path),
			Adapter: adapter,
		})
	}
	return targets
}
