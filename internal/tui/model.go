// Package tui renders a live portfolio watch view in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/coinroutine/ledger/internal/ledger"
	"github.com/coinroutine/ledger/internal/types"
)

// Model is the Bubble Tea model for the portfolio watch view.
type Model struct {
	ledger         *ledger.Ledger
	portfolioTable table.Model
	valuation      types.PortfolioValuation
	received       bool
	err            error
	width          int
	height         int

	watchCancel context.CancelFunc
	program     *tea.Program
}

// NewModel creates a Model that watches the given ledger.
func NewModel(l *ledger.Ledger) Model {
	return Model{
		ledger:         l,
		portfolioTable: NewPortfolioTable(),
	}
}

// SetProgram sets the tea.Program reference for sending messages from the
// watch goroutine.
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.startWatching()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.watchCancel != nil {
				m.watchCancel()
			}

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.portfolioTable.SetWidth(msg.Width)
		m.portfolioTable.SetHeight(msg.Height - 8)

		return m, nil

	case PortfolioMsg:
		m.valuation = msg.Valuation
		m.received = true
		m.err = nil
		m.portfolioTable = UpdateTableRows(m.portfolioTable, msg.Valuation.Entries)

		return m, nil

	case WatchErrorMsg:
		m.err = msg.Err

		return m, nil

	case WatchStartedMsg:
		// Update receivers are values, so the cancel func has to travel by
		// message to land on the model copy the program keeps.
		m.watchCancel = msg.Cancel

		return m, nil
	}

	var cmd tea.Cmd
	m.portfolioTable, cmd = m.portfolioTable.Update(msg)

	return m, cmd
}

// startWatching returns a command that starts the portfolio watch stream.
func (m Model) startWatching() tea.Cmd {
	return func() tea.Msg {
		if m.program == nil {
			return WatchErrorMsg{Err: fmt.Errorf("program not set")}
		}

		ctx, cancel := context.WithCancel(context.Background())

		go watchPortfolio(m.program, ctx, m.ledger)

		return WatchStartedMsg{Cancel: cancel}
	}
}

// watchPortfolio forwards valuations from the ledger watch stream to the
// program.
func watchPortfolio(p *tea.Program, ctx context.Context, l *ledger.Ledger) {
	for valuation, err := range l.WatchPortfolio(ctx) {
		if err != nil {
			p.Send(WatchErrorMsg{Err: err})

			continue
		}

		p.Send(PortfolioMsg{Valuation: valuation})
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Coin Ledger - Portfolio"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	if !m.received {
		s.WriteString("Waiting for portfolio data...\n")
	} else {
		s.WriteString(fmt.Sprintf("Cash: %.2f    Total: %.2f\n\n",
			m.valuation.CashBalance, m.valuation.TotalValue))

		if len(m.valuation.Entries) == 0 {
			s.WriteString("No positions held.\n")
		} else {
			s.WriteString(m.portfolioTable.View())
		}
	}

	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("q: quit"))

	return s.String()
}

// Run starts the watch view and blocks until the user quits.
func Run(l *ledger.Ledger) error {
	model := NewModel(l)
	program := tea.NewProgram(&model, tea.WithAltScreen())
	model.SetProgram(program)

	_, err := program.Run()

	return err
}
