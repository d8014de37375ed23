package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/simaogato/savings-splitter/internal/adapter/repository/postgres"
	"github.com/simaogato/savings-splitter/internal/config"
)

const usage = `usage: migrate <command>

commands:
  up       apply all pending migrations
  down     roll back the most recent migration
  status   print the state of every migration
  version  print the current schema version`

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(context.Background(), os.Args[1]); err != nil {
		slog.Error("migrate failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	connStr, err := config.LoadDBConnStr()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	provider, err := postgres.NewMigrator(db)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return postgres.Migrate(ctx, db, slog.Default())

	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("failed to roll back: %w", err)
		}
		slog.Info("migration rolled back", "version", result.Source.Version, "path", result.Source.Path)
		return nil

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-8d %-10s %-20s %s\n", s.Source.Version, s.State, applied, s.Source.Path)
		}
		return nil

	case "version":
		version, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Println(version)
		return nil

	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}
