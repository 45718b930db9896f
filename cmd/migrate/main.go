package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/tokyosushibar/backend/config"
)

const migrationsDir = "migrations"

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "migrate").Logger()

func main() {
	var command string
	flag.StringVar(&command, "cmd", "", "Migration command: up, down, status, version, create")
	flag.Parse()

	if command == "" {
		printUsage()
		os.Exit(1)
	}

	// create writes a file, no connection needed
	if command == "create" {
		args := flag.Args()
		if len(args) < 1 {
			fmt.Println("Usage: migrate -cmd=create migration_name")
			os.Exit(1)
		}
		if err := goose.Create(nil, migrationsDir, args[0], "sql"); err != nil {
			logger.Fatal().Err(err).Str("name", args[0]).Msg("failed to create migration")
		}
		return
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping database")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		logger.Fatal().Err(err).Msg("failed to set dialect")
	}

	var execErr error
	switch command {
	case "up":
		execErr = goose.Up(db, migrationsDir)
	case "down":
		execErr = goose.Down(db, migrationsDir)
	case "status":
		execErr = goose.Status(db, migrationsDir)
	case "version":
		execErr = goose.Version(db, migrationsDir)
	default:
		fmt.Printf("unknown command %q\n", command)
		printUsage()
		os.Exit(1)
	}

	if execErr != nil {
		logger.Fatal().Err(execErr).Str("command", command).Msg("migration command failed")
	}
	logger.Info().Str("command", command).Msg("migration command completed")
}

func printUsage() {
	fmt.Println("Usage: go run cmd/migrate/main.go -cmd=<up|down|status|version|create> [args]")
}
