package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/cli"
	"github.com/aliou/sesame/internal/index"
	"github.com/aliou/sesame/internal/model"
	"github.com/aliou/sesame/internal/source"
	"github.com/aliou/sesame/internal/store"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Drop the index and re-index everything from scratch",
	RunE:  runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := cmd.Context()
	if err := st.DropAll(ctx); err != nil {
		return err
	}

	var total model.IndexResult
	for _, t := range resolveTargets(cfg, source.DefaultRegistry()) {
		res, err := index.IndexSessions(ctx, st, t.Dir, t.Adapter)
		if err != nil {
			return err
		}
		total.Add(res)
	}

	if total.Added > 0 && total.Errors == 0 {
		if err := st.SetMetadata(ctx, store.LastSyncKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	if !flagQuiet {
		fmt.Print(cli.RenderIndexResult(total))
	}
	return nil
}
