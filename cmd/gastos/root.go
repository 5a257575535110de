package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/shell"
)

// app carries what every command needs once configuration is resolved.
type app struct {
	in  io.Reader
	out io.Writer

	v          *viper.Viper
	configFile string

	cfg   *config.Config
	dates core.DateStrategy
}

var flagKeys = map[string]string{
	"backend":    config.KeyDataBackend,
	"file":       config.KeyLedgerFile,
	"db":         config.KeySQLiteDBPath,
	"date-input": config.KeyDateInput,
	"log-level":  config.KeyLogLevel,
	"amqp-url":   config.KeyAMQPURL,
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out, v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "gastos",
		Short: "Track daily expenses and income in a local ledger",
		Long: `Gastos keeps an append-only ledger of expenses and income in a CSV file
(or SQLite), and answers questions about it: by date, by category, by kind,
and overall totals. Without a subcommand it starts the interactive menu.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, a.runShell)
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml, toml, json or .env)")
	flags.String("backend", "", "data backend: csv, sqlite or memory")
	flags.String("file", "", "CSV ledger file")
	flags.String("db", "", "SQLite database path")
	flags.String("date-input", "", "date input: strict (DD/MM/YYYY) or split (day, month, year)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("amqp-url", "", "publish recorded transactions to this AMQP broker")
	for name, key := range flagKeys {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		a.shellCmd(),
		a.addCmd(),
		a.byDateCmd(),
		a.byCategoryCmd(),
		a.byKindCmd(),
		a.totalsCmd(),
		a.listCmd(),
		a.monthCmd(),
		a.importCmd(),
	)

	return rootCmd
}

// withService resolves configuration, opens the backend, loads the ledger
// and runs fn with the logger carried in its context. The backend is always
// released afterwards.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc *services.TransactionService) error) error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	logger, err := cli.SetupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	dates, err := core.DateStrategyByName(cfg.DateInput)
	if err != nil {
		return err
	}
	a.cfg, a.dates = cfg, dates

	ctx, stop := cli.SignalContext(logger)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
	}()

	report, err := res.Service.Load(ctx)
	if err != nil {
		// Keep going with an empty ledger; appends may still succeed.
		logger.Warn("Ledger could not be read, starting empty", log.FieldError, err, log.FieldOperation, log.OpLoad)
	} else if len(report.Skipped) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠️ %d fila(s) ilegibles fueron ignoradas.\n", len(report.Skipped))
	}

	logger.Debug("Ledger ready",
		log.FieldBackend, cfg.DataBackend,
		log.FieldCount, report.Loaded,
		log.FieldOperation, log.OpStartup)

	actx, done := logger.StartAction(ctx, cmd.Name())
	err = fn(actx, res.Service)
	done(err)
	return err
}

func (a *app) runShell(ctx context.Context, svc *services.TransactionService) error {
	return shell.New(svc, a.in, a.out, a.dates, log.FromContext(ctx)).Run(ctx)
}

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd, a.runShell)
		},
	}
}
