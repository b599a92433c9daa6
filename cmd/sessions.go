package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/cli"
	"github.com/aliou/sesame/internal/search"
)

var flagSessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List and manage indexed sessions",
	RunE:  runSessionsList,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Remove one session from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.Flags().IntVarP(&flagSessionsLimit, "limit", "l", 20, "Number of sessions to show")
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	results, err := search.Search(cmd.Context(), st, search.ListingSentinel, search.Options{
		Limit: flagSessionsLimit,
	})
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderResults(results))
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id := args[0]
	if _, exists, err := st.GetSessionMtime(cmd.Context(), id); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("no session with id %s", id)
	}

	if err := st.DeleteSession(cmd.Context(), id); err != nil {
		return err
	}
	if !flagQuiet {
		fmt.Printf("  Deleted session %s\n", id)
	}
	return nil
}
