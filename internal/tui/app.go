// Package tui implements the interactive search screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aliou/sesame/internal/cli"
	"github.com/aliou/sesame/internal/model"
	"github.com/aliou/sesame/internal/search"
	"github.com/aliou/sesame/internal/store"
)

const resultPageSize = 15

var (
	promptStyle   = lipgloss.NewStyle().Foreground(cli.ColorAccent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(cli.ColorText).Bold(true)
	rowStyle      = lipgloss.NewStyle().Foreground(cli.ColorTextMuted)
	errStyle      = lipgloss.NewStyle().Foreground(cli.ColorRed)
	helpStyle     = lipgloss.NewStyle().Foreground(cli.ColorTextDim)
)

// App is the bubbletea model for interactive search.
type App struct {
	st    *store.Store
	input textinput.Model

	results  []model.SearchResult
	selected int
	status   string
	width    int
	height   int
}

// NewApp creates the interactive search app over an open store.
func NewApp(st *store.Store) App {
	ti := textinput.New()
	ti.Placeholder = "search sessions (* lists recent)"
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()

	return App{st: st, input: ti}
}

// Run starts the program and blocks until the user quits.
func Run(st *store.Store) error {
	_, err := tea.NewProgram(NewApp(st), tea.WithAltScreen()).Run()
	return err
}

type searchDoneMsg struct {
	results []model.SearchResult
	err     error
}

func (a App) Init() tea.Cmd {
	return textinput.Blink
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		case "enter":
			query := a.input.Value()
			return a, a.runSearch(query)
		case "up":
			if a.selected > 0 {
				a.selected--
			}
			return a, nil
		case "down":
			if a.selected < len(a.results)-1 {
				a.selected++
			}
			return a, nil
		}

	case searchDoneMsg:
		if msg.err != nil {
			a.status = msg.err.Error()
			a.results = nil
		} else {
			a.status = ""
			a.results = msg.results
		}
		a.selected = 0
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := search.Search(context.Background(), a.st, query, search.Options{
			Limit: resultPageSize,
		})
		if errors.Is(err, search.ErrEmptyQuery) {
			return searchDoneMsg{err: errors.New("type a query, or * for recent sessions")}
		}
		return searchDoneMsg{results: results, err: err}
	}
}

func (a App) View() string {
	var b strings.Builder

	b.WriteString("\n  " + promptStyle.Render("sesame") + "  " + a.input.View() + "\n\n")

	if a.status != "" {
		b.WriteString("  " + errStyle.Render(a.status) + "\n")
	}

	for i, r := range a.results {
		name := r.Name
		if name == "" {
			name = r.SessionID
		}
		line := fmt.Sprintf("%s  %s", cli.Truncate(name, 50), cli.FormatTimeAgo(r.ModifiedAt))

		if i == a.selected {
			b.WriteString("  " + selectedStyle.Render("> "+line) + "\n")
			if r.Snippet != "" {
				b.WriteString("    " + rowStyle.Render(cli.Truncate(r.Snippet, 90)) + "\n")
			}
			b.WriteString("    " + helpStyle.Render(r.Path) + "\n")
		} else {
			b.WriteString("    " + rowStyle.Render(line) + "\n")
		}
	}

	if len(a.results) == 0 && a.status == "" {
		b.WriteString("  " + rowStyle.Render("No results yet.") + "\n")
	}

	b.WriteString("\n  " + helpStyle.Render("enter search · ↑/↓ select · esc quit") + "\n")
	return b.String()
}
