package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	home, _ := os.UserHomeDir()
	sourceDir := filepath.Join(home, ".claude", "projects")
	if len(cfg.Sources) > 0 {
		sourceDir = cfg.Sources[0].Path
	}
	dbPath := cfg.General.DBPath

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Session log directory").
				Description("Where Claude Code stores per-project session logs.").
				Value(&sourceDir),
			huh.NewInput().
				Title("Index database path").
				Description("Leave empty for the default data directory.").
				Value(&dbPath),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.DBPath = dbPath
	cfg.Sources = []config.Source{{Parser: "claude-code", Path: sourceDir}}

	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("\n  Config written to %s\n", config.ConfigPath())
	fmt.Println("  Run `sesame index` to build the index.")
	return nil
}
