// Command finctl manages the ledger from the terminal.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"fintrack/internal/amqp"
	appcli "fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/services"
)

// globals overrides the environment configuration for one invocation.
type globals struct {
	Backend  string `help:"Storage backend: memory, sqlite or file (default from STORAGE_BACKEND)."`
	DB       string `name:"db" help:"SQLite database path (default from SQLITE_DB_PATH)."`
	DataDir  string `name:"data-dir" help:"Directory used by the file backend (default from DATA_DIR)."`
	LogLevel string `name:"log-level" default:"warn" help:"Log level: debug, info, warn or error."`
}

func (g globals) apply(cfg *config.Config) {
	if g.Backend != "" {
		cfg.StorageBackend = g.Backend
	}
	if g.DB != "" {
		cfg.SQLiteDBPath = g.DB
	}
	if g.DataDir != "" {
		cfg.DataDir = g.DataDir
	}
	cfg.LogLevel = g.LogLevel
}

var commands struct {
	Globals globals `embed`

	Add     addCmd     `cmd help:"Record an income or expense."`
	List    listCmd    `cmd help:"List transactions with filters, sorting and paging."`
	Delete  deleteCmd  `cmd help:"Delete a transaction."`
	Summary summaryCmd `cmd help:"Show balance, monthly totals and the month-on-month comparison."`
	Trend   trendCmd   `cmd help:"Show income and expenses for the trailing months."`
	Budget  budgetCmd  `cmd help:"Manage monthly category budgets."`
	Goal    goalCmd    `cmd help:"Manage savings goals."`
	Import  importCmd  `cmd help:"Import transactions from a CSV file."`
	Export  exportCmd  `cmd help:"Export transactions as CSV."`
	Watch   watchCmd   `cmd help:"Print record change events as they are published."`
}

// session is bound to every command's Run method.
type session struct {
	ctx     context.Context
	ledger  *services.Ledger
	out     io.Writer
	changes *amqp.Client
}

func main() {
	kctx := kong.Parse(&commands,
		kong.Name("finctl"),
		kong.Description("Personal finance ledger: transactions, budgets and savings goals."))

	appcli.LoadEnvFile()
	logger := appcli.SetupLogger(commands.Globals.LogLevel)

	cfg := config.Load()
	commands.Globals.apply(cfg)
	kctx.FatalIfErrorf(cfg.Validate())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger, backendResult, err := appcli.OpenLedger(ctx, cfg, logger)
	kctx.FatalIfErrorf(err)

	err = kctx.Run(&session{ctx: ctx, ledger: ledger, out: os.Stdout, changes: backendResult.AMQP})
	if cerr := backendResult.Cleanup(); err == nil {
		err = cerr
	}
	kctx.FatalIfErrorf(err)
}
