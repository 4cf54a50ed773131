package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/session"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RepoListModel - Interactive repository selection
// =============================================================================

// RepoListModel is the bubbletea model for picking one of the recently
// opened repositories.
type RepoListModel struct {
	Sessions []*session.Session
	Cursor   int
	Selected *session.Session
	Height   int
	Offset   int
}

// NewRepoListModel creates a new repo list model.
func NewRepoListModel(sessions []*session.Session) RepoListModel {
	return RepoListModel{
		Sessions: sessions,
		Cursor:   0,
		Height:   15,
		Offset:   0,
	}
}

func (m RepoListModel) Init() tea.Cmd {
	return nil
}

func (m RepoListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Sessions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Sessions) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Sessions[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m RepoListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Recent Repositories"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Sessions) {
		end = len(m.Sessions)
	}

	now := time.Now()
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Sessions[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		backend := s.Backend
		if backend == "" {
			backend = "auto"
		}

		opened := history.RelativeTime(s.LastOpened.Unix(), now)
		rows = append(rows, []string{cursor, shortenPath(s.Repo), backend, fmt.Sprintf("%d", s.OpenCount), opened})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Repository", "Backend", "Opens", "Last opened").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Sessions) {
				return lipgloss.NewStyle()
			}
			if actualIdx == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.Sessions) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Sessions))))
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// shortenPath abbreviates the home directory prefix to "~".
func shortenPath(p string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	if p == home {
		return "~"
	}
	if strings.HasPrefix(p, home+string(filepath.Separator)) {
		return "~" + p[len(home):]
	}
	return p
}
