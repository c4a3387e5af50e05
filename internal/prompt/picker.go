// Package prompt lets a user pick an operator interactively. It only produces a
// selector; resolving and matching stay in the pipeline.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"space-matchmaker/internal/model"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves the picker without choosing.
var ErrCancelled = errors.New("operator selection cancelled")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// PickerModel is a bubbletea model listing operators in a table.
type PickerModel struct {
	table     table.Model
	operators []model.Operator
	chosen    int
	done      bool
	cancelled bool
}

// NewPickerModel builds the picker for ops.
func NewPickerModel(ops []model.Operator) PickerModel {
	rows := make([]table.Row, 0, len(ops))
	nameWidth := len("Operator")
	for _, op := range ops {
		if w := lipgloss.Width(op.Name); w > nameWidth {
			nameWidth = w
		}
		rows = append(rows, table.Row{strconv.Itoa(op.Row), op.Name, sizeText(op.MinSize), sizeText(op.MaxSize)})
	}
	if nameWidth > 40 {
		nameWidth = 40
	}

	// header line plus its bottom border
	height := len(rows) + 2
	if height > 17 {
		height = 17
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 5},
			{Title: "Operator", Width: nameWidth},
			{Title: "MinSize", Width: 10},
			{Title: "MaxSize", Width: 10},
		}),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return PickerModel{table: t, operators: ops, chosen: -1}
}

// Init initializes the model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if len(m.operators) > 0 {
				m.chosen = m.table.Cursor()
				m.done = true
			} else {
				m.cancelled = true
			}
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the picker.
func (m PickerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return titleStyle.Render("Select the operator to match") + "\n" +
		m.table.View() + "\n" +
		helpStyle.Render("↑/↓ move • enter select • q quit") + "\n"
}

// Selected returns the chosen operator position, or false if none was chosen.
func (m PickerModel) Selected() (int, bool) {
	if !m.done || m.chosen < 0 || m.chosen >= len(m.operators) {
		return 0, false
	}
	return m.operators[m.chosen].Row, true
}

// PickOperator runs the picker on the given terminal streams and returns a selector
// for the chosen operator.
func PickOperator(ops []model.Operator, in io.Reader, out io.Writer) (model.Selector, error) {
	if len(ops) == 0 {
		return model.Selector{}, fmt.Errorf("no operators to choose from")
	}
	p := tea.NewProgram(NewPickerModel(ops), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return model.Selector{}, fmt.Errorf("operator picker failed: %w", err)
	}
	picker, ok := final.(PickerModel)
	if !ok {
		return model.Selector{}, fmt.Errorf("unexpected picker model %T", final)
	}
	row, ok := picker.Selected()
	if !ok {
		return model.Selector{}, ErrCancelled
	}
	return model.ByIndex(row), nil
}

func sizeText(s model.Size) string {
	if s.Missing() {
		return "n/a"
	}
	return s.String()
}
