package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/servimas/cortineros/cmd/tui/internal/view"
	"github.com/servimas/cortineros/internal/account"
	accountStore "github.com/servimas/cortineros/internal/account/store"
	"github.com/servimas/cortineros/internal/config"
	"github.com/servimas/cortineros/internal/database"
	"github.com/servimas/cortineros/internal/export"
	"github.com/servimas/cortineros/internal/importer"
	"github.com/servimas/cortineros/internal/logger"
	"github.com/servimas/cortineros/internal/movement"
	movementStore "github.com/servimas/cortineros/internal/movement/store"
	"github.com/servimas/cortineros/migrations"
)

type services struct {
	accounts  *account.Service
	movements *movement.Service
	imports   *importer.Service
	exports   *export.Service
	operator  string
}

type model struct {
	svc services

	// stack holds the open screens; the menu shows when it is empty.
	stack []view.View
	size  tea.WindowSizeMsg
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) push(v view.View) (tea.Model, tea.Cmd) {
	m.stack = append(m.stack, v)

	cmds := []tea.Cmd{v.Init()}
	if m.size.Width > 0 {
		size := m.size
		cmds = append(cmds, func() tea.Msg { return size })
	}

	return m, tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if len(m.stack) == 0 {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.push(view.NewAccountsModel(m.svc.accounts))
			case "2":
				return m.push(view.NewDashboardModel(m.svc.accounts))
			}

			return m, nil
		}
	case view.BackMsg:
		if len(m.stack) > 0 {
			m.stack = m.stack[:len(m.stack)-1]
		}

		if len(m.stack) > 0 {
			return m, m.stack[len(m.stack)-1].Init()
		}

		return m, nil
	case view.OpenLedgerMsg:
		return m.push(view.NewLedgerModel(m.svc.accounts, m.svc.movements, msg.AccountID, m.svc.operator))
	case view.OpenStatementMsg:
		return m.push(view.NewStatementModel(m.svc.exports, msg.AccountID))
	case view.OpenImportMsg:
		return m.push(view.NewImportModel(m.svc.imports, msg.AccountID, m.svc.operator))
	}

	if len(m.stack) == 0 {
		return m, nil
	}

	top := len(m.stack) - 1

	next, cmd := m.stack[top].Update(msg)
	if v, ok := next.(view.View); ok {
		m.stack[top] = v
	}

	return m, cmd
}

func (m model) View() string {
	if len(m.stack) == 0 {
		return lipgloss.NewStyle().Padding(2).Render(
			"Cortineros\n\n" +
				"1. Cuentas\n" +
				"2. Resumen\n\n" +
				"q. Salir",
		)
	}

	v := m.stack[len(m.stack)-1]

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Padding(1, 1, 0).Render(v.Title()),
		v.View(),
		lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp()),
	)
}

func setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (services, func(), error) {
	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return services{}, nil, fmt.Errorf("connecting to database: %w", err)
	}

	if _, err := database.Migrate(ctx, db, migrations.FS); err != nil {
		db.Close()
		return services{}, nil, fmt.Errorf("migrating database: %w", err)
	}

	movementService := movement.NewService(movementStore.New(db))
	accountService := account.NewService(accountStore.New(db), movementService, account.Options{
		Window:      cfg.Ledger.Window,
		RecentLimit: cfg.Ledger.RecentLimit,
		Logger:      log,
	})

	return services{
		accounts:  accountService,
		movements: movementService,
		imports:   importer.NewService(movementService, log),
		exports:   export.NewService(accountService),
		operator:  cfg.TUI.Operator,
	}, func() { db.Close() }, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file when asked for.
	var out io.Writer = io.Discard
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "cortineros")
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to open log file:", err)
			os.Exit(1)
		}
		defer f.Close()

		out = f
	}

	log := logger.New(logger.Config{Env: "production", Level: cfg.App.LogLevel, Out: out})

	svc, closeDB, err := setup(context.Background(), cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeDB()

	p := tea.NewProgram(model{svc: svc}, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run TUI")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
