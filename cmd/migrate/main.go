package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/go-kit/log/level"
	"github.com/prajwalbharadwajbm/fundledger/internal/config"
	"github.com/prajwalbharadwajbm/fundledger/internal/database"
	"github.com/prajwalbharadwajbm/fundledger/internal/logger"
)

const usage = `usage: migrate [-dir migrations] <command>

commands:
  up             apply all pending migrations
  down           roll back all migrations
  reset          roll back and re-apply all migrations
  version        print the current schema version
  force VERSION  mark VERSION as applied without running it
`

func main() {
	dir := flag.String("dir", "", "migrations directory (defaults to DB_MIGRATIONS_PATH)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadConfigs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.AppConfigInstance.DatabaseConfig
	if *dir != "" {
		cfg.MigrationsPath = *dir
	}

	log := logger.New(logger.Config{Service: "fundledger-migrate", Level: config.AppConfigInstance.LogConfig.Level})

	if err := run(cfg, database.NewMigrationManager(cfg.DSN(), cfg.MigrationsPath, log), flag.Args()); err != nil {
		level.Error(log).Log("msg", "migration failed", "command", flag.Arg(0), "err", err)
		os.Exit(1)
	}
}

func run(cfg config.DatabaseConfig, m *database.MigrationManager, args []string) error {
	switch args[0] {
	case "up":
		if err := database.EnsureDatabase(cfg, m.Logger()); err != nil {
			return err
		}
		return m.Up()
	case "down":
		return m.Down()
	case "reset":
		return m.Reset()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(version)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
