package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aliou/sesame/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorTextMuted)
	dimStyle     = lipgloss.NewStyle().Foreground(ColorTextDim)
	snippetStyle = lipgloss.NewStyle().Foreground(ColorBlue)
)

// RenderResults renders ranked search results as a readable list.
func RenderResults(results []model.SearchResult) string {
	if len(results) == 0 {
		return mutedStyle.Render("  No matching sessions.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, r := range results {
		name := r.Name
		if name == "" {
			name = r.SessionID
		}
		fmt.Fprintf(&b, "  %s %s\n",
			headerStyle.Render(fmt.Sprintf("%d.", i+1)),
			nameStyle.Render(Truncate(name, 70)),
		)

		meta := []string{r.SessionID}
		if r.Cwd != "" {
			meta = append(meta, r.Cwd)
		}
		if r.ModifiedAt != "" {
			meta = append(meta, FormatTimeAgo(r.ModifiedAt))
		}
		fmt.Fprintf(&b, "     %s\n", dimStyle.Render(strings.Join(meta, "  ·  ")))

		if r.Snippet != "" {
			fmt.Fprintf(&b, "     %s\n", snippetStyle.Render(Truncate(r.Snippet, 100)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderStats renders store statistics as a small aligned block.
func RenderStats(st model.StoreStats, dbPath string) string {
	lastSync := st.LastSyncAt
	if lastSync == "" {
		lastSync = "never"
	} else {
		lastSync = FormatTimeAgo(lastSync)
	}

	rows := [][2]string{
		{"Sessions", fmt.Sprintf("%d", st.SessionCount)},
		{"Chunks", fmt.Sprintf("%d", st.ChunkCount)},
		{"Size", FormatBytes(st.SizeBytes)},
		{"Last sync", lastSync},
		{"Store", dbPath},
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "  %s  %s\n",
			mutedStyle.Render(fmt.Sprintf("%-10s", row[0])),
			nameStyle.Render(row[1]),
		)
	}
	return b.String()
}

// RenderIndexResult summarizes one indexing run.
func RenderIndexResult(res model.IndexResult) string {
	parts := []string{
		fmt.Sprintf("%d added", res.Added),
		fmt.Sprintf("%d updated", res.Updated),
		fmt.Sprintf("%d unchanged", res.Skipped),
	}
	line := "  " + strings.Join(parts, ", ")
	if res.Errors > 0 {
		line += ", " + lipgloss.NewStyle().Foreground(ColorRed).Render(fmt.Sprintf("%d errors", res.Errors))
	}
	return line + "\n"
}
