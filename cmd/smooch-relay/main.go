package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-smooch"
	"github.com/goliatone/go-smooch/command"
	"github.com/goliatone/go-smooch/relay"
	"github.com/goliatone/go-smooch/store"
	"github.com/spf13/pflag"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile, addr, dsn string
	var debug bool

	flagSet := pflag.NewFlagSet("smooch-relay", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "load environment variables from this file when it exists")
	flagSet.StringVar(&addr, "addr", "", "listen address (overrides RELAY_ADDR)")
	flagSet.StringVar(&dsn, "db", "", "sqlite DSN for the user directory (overrides RELAY_DATABASE_DSN)")
	flagSet.BoolVar(&debug, "debug", false, "log outgoing payloads")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagSet.Changed("addr") {
		cfg.Addr = addr
	}
	if flagSet.Changed("db") {
		cfg.DatabaseDSN = dsn
	}
	if flagSet.Changed("debug") {
		cfg.DebugLogging = debug
	}

	logger := stdLogger{debug: cfg.DebugLogging}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDirectory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	binder := smooch.NewBinder(smooch.Config{
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Logger:     logger,
	})
	binder.Configure(cfg.Update())

	if err := binder.Config().Validate(); err != nil {
		logger.Error("smooch credentials are incomplete, updates will fail: %v", err)
	}

	handler := command.NewUpdateAppUserHandler(store.NewUsers(db), binder)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}))
	})
	relay.RegisterRelayRoutes(srv.Router(), handler, relay.Config{
		APIKeyHash: cfg.APIKeyHash,
		Logger:     logger,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("smooch relay listening on %s", cfg.Addr)
		if err := srv.Serve(cfg.Addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("smooch relay shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// openDirectory opens the user directory database and applies the store
// migrations.
func openDirectory(ctx context.Context, cfg Config, logger stdLogger) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	persistence.RegisterModel((*store.User)(nil))

	client, err := persistence.New(cfg, sqldb, sqlitedialect.New())
	if err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("persistence client: %w", err)
	}
	client.SetLogger(logger)

	client.RegisterDialectMigrations(
		store.GetMigrationsFS(),
		persistence.WithDialectSourceLabel(store.MigrationsDir),
	)

	if err := client.Migrate(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return client.DB(), nil
}

type stdLogger struct {
	debug bool
}

func (l stdLogger) Debug(format string, args ...any) {
	if l.debug {
		fmt.Fprintf(os.Stdout, "[DBG] RELAY "+format+"\n", args...)
	}
}

func (l stdLogger) Info(format string, args ...any) {
	fmt.Fprintf(os.Stdout, "[INF] RELAY "+format+"\n", args...)
}

func (l stdLogger) Warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[WRN] RELAY "+format+"\n", args...)
}

func (l stdLogger) Error(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[ERR] RELAY "+format+"\n", args...)
}
