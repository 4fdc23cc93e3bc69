// Command migrate manages the ledger schema.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/laundrydesk/backend/internal/infrastructure/config"
	"github.com/laundrydesk/backend/internal/infrastructure/logger"
	"github.com/laundrydesk/backend/internal/infrastructure/migration"
	"github.com/laundrydesk/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = `Payment ledger migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  version               Show the applied version
  force <version>       Mark a version applied after a manual repair
  create <name> [desc]  Write a new up/down pair into the migrations directory
  list                  List the migrations in the migrations directory

Flags:
  -path string          Migrations directory (default: embedded set, ./migrations for create/list)
  -log-level string     debug, info, warn or error (default: info)

The database is configured through config.toml or LEDGER_DATABASE_* variables.`

// schemaCommands run against the database
var schemaCommands = map[string]func(m *migration.Migrator, log *zap.Logger, args []string) error{
	"up":   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() },
	"step": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	},
	"force": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		version, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(version)
	},
	"version": func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	},
}

func main() {
	path := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console", Service: "ledger-migrate"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args[0], args[1:], *path, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(command string, args []string, path string, log *zap.Logger) error {
	dir := path
	if dir == "" {
		dir = "migrations"
	}

	switch command {
	case "create":
		if len(args) == 0 {
			return errors.New("usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(dir, args[0], description)
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil

	case "list":
		names, err := migration.ListMigrations(dir)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	schemaCmd, ok := schemaCommands[command]
	if !ok {
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	var source fs.FS = migrations.FS
	if path != "" {
		source = os.DirFS(path)
	}
	m, err := migration.New(db, source, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()

	return schemaCmd(m, log, args)
}

func intArg(args []string, name string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, args[0], err)
	}
	return n, nil
}
