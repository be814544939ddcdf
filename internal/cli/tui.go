package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/model"
	"github.com/matzehuels/xmigraph/pkg/pipeline"
)

// =============================================================================
// DiagramListModel - Interactive diagram selection
// =============================================================================

// DiagramListModel is the bubbletea model for interactive diagram selection.
type DiagramListModel struct {
	Diagrams []model.Diagram
	Cursor   int
	Selected *model.Diagram
	Height   int
	Offset   int
}

// NewDiagramListModel creates a new diagram list model.
func NewDiagramListModel(diagrams []model.Diagram) DiagramListModel {
	return DiagramListModel{Diagrams: diagrams, Height: 15}
}

func (m DiagramListModel) Init() tea.Cmd {
	return nil
}

func (m DiagramListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Diagrams)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Diagrams) == 0 {
				return m, tea.Quit
			}
			d := m.Diagrams[m.Cursor]
			m.Selected = &d
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m DiagramListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagram"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Diagrams))
	rows := diagramRows(m.Diagrams[m.Offset:end])
	for i := range rows {
		cursor := "  "
		if m.Offset+i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = append([]string{cursor}, rows[i]...)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Diagram", "Elements", "Connectors", "Author", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Diagrams) {
				return lipgloss.NewStyle()
			}
			empty := len(m.Diagrams[idx].Elements) == 0
			base := lipgloss.NewStyle()
			switch {
			case idx == m.Cursor:
				return base.Foreground(colorGreen).Bold(true)
			case empty:
				return base.Foreground(colorDim)
			case col >= 4:
				return base.Foreground(colorGray)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Diagrams))))

	return b.String()
}

// =============================================================================
// Selection
// =============================================================================

// interactive reports whether prompts can be shown.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}

// selectDiagram extracts doc and returns the diagram named in opts. When
// no name is given and the document has several diagrams, the user picks
// one on a terminal; elsewhere the ambiguity is an error.
func selectDiagram(ctx context.Context, r *pipeline.Runner, doc []byte, opts *pipeline.Options) (model.Diagram, *pipeline.ExtractResult, error) {
	ex, err := r.Extract(ctx, doc, *opts)
	if err != nil {
		return model.Diagram{}, nil, err
	}
	if opts.Diagram == "" && len(ex.Diagrams) > 1 && interactive() {
		d, err := pickDiagram(ctx, ex.Diagrams)
		if err != nil {
			return model.Diagram{}, nil, err
		}
		opts.Diagram = d.Name
	}
	d, err := opts.SelectDiagram(ex.Diagrams)
	return d, ex, err
}

func pickDiagram(ctx context.Context, diagrams []model.Diagram) (model.Diagram, error) {
	p := tea.NewProgram(NewDiagramListModel(diagrams), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return model.Diagram{}, fmt.Errorf("diagram picker: %w", err)
	}
	m, _ := final.(DiagramListModel)
	if m.Selected == nil {
		return model.Diagram{}, errors.New(errors.ErrCodeInvalidInput, "no diagram selected")
	}
	return *m.Selected, nil
}

// =============================================================================
// Helpers
// =============================================================================

// modifiedLayout is the timestamp layout of diagram metadata.
const modifiedLayout = "2006-01-02 15:04:05"

// formatModified renders a metadata timestamp relative to now.
func formatModified(s string) string {
	return formatRelativeTime(s, time.Now())
}

func formatRelativeTime(s string, now time.Time) string {
	t, err := time.ParseInLocation(modifiedLayout, s, time.Local)
	if err != nil {
		return s
	}

	diff := now.Sub(t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006")
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
