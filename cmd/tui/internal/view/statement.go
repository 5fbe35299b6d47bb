package view

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/export"
)

type StatementModel struct {
	CommonModel
	exports   *export.Service
	accountID uuid.UUID

	viewport viewport.Model
	spinner  spinner.Model
	loading  bool
	err      error
}

func NewStatementModel(exports *export.Service, accountID uuid.UUID) StatementModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return StatementModel{
		exports:   exports,
		accountID: accountID,
		viewport:  viewport.New(100, 25),
		spinner:   s,
		loading:   true,
	}
}

func (m StatementModel) Title() string { return "Estado de cuenta" }

func (m StatementModel) ShortHelp() string {
	return "Esc: back | ↑/↓: scroll"
}

func (m StatementModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m StatementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statementMsg:
		m.loading = false
		m.err = msg.err
		m.viewport.SetContent(msg.text)

		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-6, 5)

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

func (m StatementModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(1).Render(m.spinner.View() + " Generando estado de cuenta...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return lipgloss.NewStyle().Padding(1).Render(boxStyle.Render(m.viewport.View()))
}

type statementMsg struct {
	text string
	err  error
}

func (m StatementModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		var buf bytes.Buffer
		err := m.exports.Statement(ctx, &buf, m.accountID)

		return statementMsg{text: buf.String(), err: err}
	}
}
