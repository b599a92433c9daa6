package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	fmt.Printf("  Index db:    %s\n", cfg.DBPath())
	for _, src := range cfg.Sources {
		fmt.Printf("  Source:      %s (%s)\n", config.ExpandHome(src.Path), src.Parser)
	}
	return nil
}
