package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/angelmondragon/itempurchase/pkg/config"
	"github.com/angelmondragon/itempurchase/pkg/db"
	"github.com/angelmondragon/itempurchase/pkg/logger"
	"github.com/angelmondragon/itempurchase/pkg/migrate"

	"github.com/joho/godotenv"
)

// dbCommands are forwarded to goose; "version" goes through MigrateToVersion.
var dbCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"redo":    true,
	"status":  true,
	"reset":   true,
	"version": true,
}

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	opts, err := parseFlags(os.Args[1:], os.Stderr, describeTarget(cfg))
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	if err := run(ctx, logg, cfg, opts, os.Stdout); err != nil {
		logg.Error(ctx, "migrate failed", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer, target string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.cmd, "cmd", "up", "up|down|redo|status|reset|version|create|validate")
	fs.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	fs.StringVar(&opts.name, "name", "", "migration name (for create)")
	fs.StringVar(&opts.version, "version", "", "target version YYYYMMDDHHMMSS (for version)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: migrate -cmd <command> [-dir path] [-name n] [-version v]\n")
		fmt.Fprintf(stderr, "target database: %s\n", target)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.cmd = strings.ToLower(strings.TrimSpace(opts.cmd))
	return opts, nil
}

// describeTarget names the database the migrations will run against without
// leaking credentials.
func describeTarget(cfg *config.Config) string {
	if cfg.FeatureFlags.UseSQLite {
		return "sqlite3 " + cfg.DB.DSN
	}
	u, err := url.Parse(cfg.DB.DSN)
	if err != nil || u.Host == "" {
		return migrate.DefaultDialect
	}
	return fmt.Sprintf("%s %s%s", migrate.DefaultDialect, u.Host, u.Path)
}

func run(ctx context.Context, logg *logger.Logger, cfg *config.Config, opts options, out io.Writer) error {
	// create and validate only touch the migrations directory.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Fprintln(out, "created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return fmt.Errorf("migration validation: %w", err)
		}
		fmt.Fprintln(out, "migration validation passed")
		return nil
	}

	if !dbCommands[opts.cmd] {
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
	if opts.cmd == "version" && opts.version == "" {
		return errors.New("missing -version for version command")
	}
	if opts.cmd == "reset" && cfg.App.IsProd() {
		return errors.New("reset is disabled in prod")
	}

	dbClient, err := db.New(ctx, cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database: %w", err)
	}

	dialect := dbClient.Dialect()
	ctx = logg.WithField(ctx, "dialect", dialect)
	logg.Info(ctx, "migrate ready")

	if opts.cmd == "version" {
		return migrate.MigrateToVersion(ctx, sqlDB, dialect, opts.dir, opts.version)
	}
	return migrate.Run(ctx, sqlDB, dialect, opts.dir, opts.cmd)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
