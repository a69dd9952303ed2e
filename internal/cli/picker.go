package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/py2plan/pkg/errors"
	"github.com/matzehuels/py2plan/pkg/syntax"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// FunctionListModel is the bubbletea model for interactive function selection.
type FunctionListModel struct {
	Functions []syntax.Signature
	Preferred string
	Cursor    int
	Selected  *syntax.Signature
	Height    int
	Offset    int
}

// NewFunctionListModel creates a picker with the cursor on the function
// that automatic selection would choose.
func NewFunctionListModel(funcs []syntax.Signature) FunctionListModel {
	m := FunctionListModel{Functions: funcs, Height: 15}
	if best, ok := syntax.SelectFunction(funcs); ok {
		m.Preferred = best.Name
		for i, f := range funcs {
			if f.Name == best.Name && f.Line == best.Line {
				m.Cursor = i
			}
		}
		if m.Cursor >= m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m
}

func (m FunctionListModel) Init() tea.Cmd {
	return nil
}

func (m FunctionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Functions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Functions) == 0 {
				return m, tea.Quit
			}
			sig := m.Functions[m.Cursor]
			m.Selected = &sig
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

func (m FunctionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Function"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Functions))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Functions[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := ""
		if f.Name == m.Preferred {
			mark = "*"
		}
		kind := "def"
		if f.Async {
			kind = "async def"
		}
		rows = append(rows, []string{cursor, f.Name, kind, strconv.Itoa(f.Line), strings.Join(f.Params, ", "), strconv.Itoa(f.Statements), mark})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Function", "Kind", "Line", "Params", "Stmts", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 2 || col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  * automatic choice", m.Cursor+1, len(m.Functions))))

	return b.String()
}

// pickFunction runs the picker and returns the chosen function name.
func pickFunction(ctx context.Context, funcs []syntax.Signature) (string, error) {
	if len(funcs) == 0 {
		return "", errors.New(errors.ErrCodeFunctionNotFound, "no function definitions found")
	}
	final, err := tea.NewProgram(NewFunctionListModel(funcs), tea.WithContext(ctx)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("function picker: %w", err)
	}
	m, ok := final.(FunctionListModel)
	if !ok || m.Selected == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "no function selected")
	}
	return m.Selected.Name, nil
}
