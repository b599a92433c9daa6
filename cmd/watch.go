package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/source"
	"github.com/aliou/sesame/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index in sync as session logs change",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	targets := resolveTargets(cfg, source.DefaultRegistry())
	if len(targets) == 0 {
		return fmt.Errorf("no usable sources configured; run `sesame setup`")
	}

	w, err := watch.New(st, targets)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	if !flagQuiet {
		fmt.Println("  Watching session sources. Ctrl-C to stop.")
	}
	<-ctx.Done()
	return nil
}
