package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aliou/sesame/internal/cli"
	"github.com/aliou/sesame/internal/model"
	"github.com/aliou/sesame/internal/search"
)

var (
	flagSearchCwd     string
	flagSearchAfter   string
	flagSearchBefore  string
	flagSearchLimit   int
	flagSearchTools   bool
	flagSearchTool    string
	flagSearchPath    string
	flagSearchExclude []string
	flagSearchStatus  string
	flagSearchJSON    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed sessions (use * to list recent)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	addSearchFlags(searchCmd)
	addSearchFlags(rootCmd)
	rootCmd.AddCommand(searchCmd)
}

func addSearchFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagSearchCwd, "cwd", "", "Filter by working-directory prefix")
	c.Flags().StringVar(&flagSearchAfter, "after", "", "Only sessions created on or after this date (ISO-8601)")
	c.Flags().StringVar(&flagSearchBefore, "before", "", "Only sessions created on or before this date (ISO-8601)")
	c.Flags().IntVarP(&flagSearchLimit, "limit", "l", 0, "Max results (default 10)")
	c.Flags().BoolVar(&flagSearchTools, "tools", false, "Match only tool invocations")
	c.Flags().StringVar(&flagSearchTool, "tool", "", "Match only one tool by name")
	c.Flags().StringVar(&flagSearchPath, "path", "", "Only sessions whose tool calls touched this path")
	c.Flags().StringSliceVar(&flagSearchExclude, "exclude", nil, "Session ids to exclude")
	c.Flags().StringVar(&flagSearchStatus, "status", "", "Tool outcome filter: success or error (needs --tool or --tools)")
	c.Flags().BoolVar(&flagSearchJSON, "json", false, "Emit JSON instead of formatted output")
}

// runSearchCmd lets `sesame "query"` work without the search subcommand.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	return runSearch(cmd, args)
}

func runSearch(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	limit := flagSearchLimit
	if limit <= 0 {
		limit = cfg.General.DefaultLimit
	}

	query := strings.Join(args, " ")
	results, err := search.Search(cmd.Context(), st, query, search.Options{
		Cwd:        flagSearchCwd,
		After:      flagSearchAfter,
		Before:     flagSearchBefore,
		Limit:      limit,
		ToolsOnly:  flagSearchTools,
		ToolName:   flagSearchTool,
		PathFilter: flagSearchPath,
		Exclude:    flagSearchExclude,
		Status:     flagSearchStatus,
	})
	if err != nil {
		return err
	}

	if flagSearchJSON {
		if results == nil {
			results = []model.SearchResult{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Print(cli.RenderResults(results))
	return nil
}
