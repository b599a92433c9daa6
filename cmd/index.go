package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/cli"
	"github.com/aliou/sesame/internal/index"
	"github.com/aliou/sesame/internal/model"
	"github.com/aliou/sesame/internal/source"
	"github.com/aliou/sesame/internal/store"
)

var flagIndexSource string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index configured session sources",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVarP(&flagIndexSource, "source", "s", "", "Index a single directory instead of the configured sources")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	registry := source.DefaultRegistry()
	ctx := cmd.Context()

	var total model.IndexResult
	if flagIndexSource != "" {
		res, err := index.IndexSessions(ctx, st, flagIndexSource, source.NewClaudeAdapter())
		if err != nil {
			return err
		}
		total = res
	} else {
		for _, t := range resolveTargets(cfg, registry) {
			res, err := index.IndexSessions(ctx, st, t.Dir, t.Adapter)
			if err != nil {
				return err
			}
			total.Add(res)
		}
	}

	if total.ScanFailed {
		fmt.Fprintln(os.Stderr, "  warning: a source directory could not be read")
	}

	// Record the sync time only after a clean run that produced work.
	if total.Added+total.Updated > 0 && total.Errors == 0 {
		if err := st.SetMetadata(ctx, store.LastSyncKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	if !flagQuiet {
		fmt.Print(cli.RenderIndexResult(total))
	}
	return nil
}
