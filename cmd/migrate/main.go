package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/friendaudit/backend/internal/infrastructure/config"
	"github.com/friendaudit/backend/internal/infrastructure/logger"
	"github.com/friendaudit/backend/internal/infrastructure/migration"
	"github.com/friendaudit/backend/migrations"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// create only touches the filesystem
	if command == "create" {
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		dir := migrationsPath
		if dir == "" {
			dir = defaultMigrationsPath
		}
		files, err := migration.CreateDriverMigrations(dir, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		for _, mf := range files {
			log.Info("Migration created",
				zap.Uint("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	var source fs.FS = migrations.FS
	if migrationsPath != "" {
		source = os.DirFS(migrationsPath)
	}

	db, err := openDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	m, err := migration.New(db, cfg.Database.Driver, source, log)
	if err != nil {
		_ = db.Close()
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
	)

	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		var n int
		if n, err = intArg(args, "steps <n>"); err == nil {
			err = m.Steps(n)
		}
	case "version":
		var (
			version uint
			dirty   bool
		)
		if version, dirty, err = m.Version(); err == nil {
			if version == 0 {
				log.Info("No migrations applied")
			} else {
				log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			}
		}
	case "force":
		var v int
		if v, err = intArg(args, "force <version>"); err == nil {
			err = m.Force(v)
		}
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func openDatabase(cfg *config.DatabaseConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = sql.Open("postgres", cfg.DSN())
	case "sqlite":
		db, err = sql.Open("sqlite3", cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func intArg(args []string, usage string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("missing argument, usage: migrate %s", usage)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[1])
	}
	return n, nil
}

func printUsage() {
	fmt.Println(`FriendAudit Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                Apply all pending migrations
  down              Roll back all migrations
  steps <n>         Apply n migrations (positive=up, negative=down)
  version           Show current migration version
  force <version>   Force set migration version (repairs a dirty database)
  create <name>     Create the next up/down pair for every driver

Flags:
  -path string      Read migrations from a directory, using its postgres/ or sqlite/
                    subdirectory when present (create writes there; default ./migrations)
  -log-level string Log level: debug, info, warn, error (default: info)

Environment Variables:
  FRIENDAUDIT_DATABASE_DRIVER, FRIENDAUDIT_DATABASE_HOST, FRIENDAUDIT_DATABASE_PATH, ...`)
}
