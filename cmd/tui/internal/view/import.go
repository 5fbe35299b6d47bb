package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/servimas/cortineros/internal/format"
	"github.com/servimas/cortineros/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStatePreview
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	accountID     uuid.UUID
	operator      string

	state      importState
	filePicker filepicker.Model
	path       string
	preview    *importer.Report
	confirm    *huh.Form
	proceed    *bool

	status string
	err    error
}

func NewImportModel(impSvc *importer.Service, accountID uuid.UUID, operator string) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		accountID:     accountID,
		operator:      operator,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Importar planilla" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStatePreview:
		return "Navigate form | Esc: cancel"
	case importStateResult:
		return "Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			if m.state == importStatePreview {
				m.state = importStateFilePick
				m.confirm = nil

				return m, nil
			}

			return m, Back
		}

	case previewMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err

			return m, nil
		}

		m.preview = msg.report
		m.proceed = new(true)
		m.confirm = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Key("proceed").
					Title(fmt.Sprintf("¿Importar %d movimientos?", len(msg.report.Movements))).
					Affirmative("Importar").
					Negative("Cancelar").
					Value(m.proceed),
			),
		).WithWidth(45).WithShowHelp(false)
		m.state = importStatePreview

		return m, m.confirm.Init()

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Se importaron %d movimientos (%s).", len(msg.report.Movements), format.Amount(msg.report.Net))
		}

		return m, nil
	}

	switch m.state {
	case importStateFilePick:
		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.path = path
			return m, m.previewCmd(path)
		}

		return m, cmd

	case importStatePreview:
		form, cmd := m.confirm.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.confirm = f
		}

		if m.confirm.State != huh.StateCompleted {
			return m, cmd
		}

		if !*m.proceed {
			return m, Back
		}

		m.state = importStateImporting

		return m, m.importCmd(m.path)
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Elegí la planilla a importar:\n\n" + m.filePicker.View(),
		)

	case importStatePreview:
		r := m.preview
		summary := fmt.Sprintf(
			"Archivo: %s\nFormato: %s (%s)\n\nEntregas: %d\nPagos: %d\nAjustes: %d\nEfecto en el saldo: %s",
			m.path, r.Profile, r.Charset, r.Deliveries, r.Payments, r.Adjustments, format.Amount(r.Net),
		)

		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.JoinVertical(lipgloss.Left, summary, "", m.confirm.View()),
		)

	case importStateImporting:
		return lipgloss.NewStyle().Padding(1).Render("Importando...")

	case importStateResult:
		if m.err != nil {
			return lipgloss.NewStyle().Padding(1).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		}

		return lipgloss.NewStyle().Padding(1).Render(okStyle.Render(m.status))
	}

	return ""
}

// Messages

type previewMsg struct {
	report *importer.Report
	err    error
}

func (m ImportModel) previewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return previewMsg{err: err}
		}
		defer f.Close()

		rep, err := m.importService.Preview(importer.SourceSheet, f)

		return previewMsg{report: rep, err: err}
	}
}

type importResultMsg struct {
	report *importer.Report
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		rep, err := m.importService.Import(ctx, importer.SourceSheet, m.accountID, m.operator, f)

		return importResultMsg{report: rep, err: err}
	}
}
