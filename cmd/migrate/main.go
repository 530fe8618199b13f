package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/stepquest/stepquest-backend/internal/config"
)

// Applies goose migrations against the configured database. Commands
// mirror the goose CLI: up, down, status, version.
func main() {
	dir := flag.String("dir", "migrations", "directory with migration files")
	flag.Parse()

	command := "up"
	var rest []string
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
		rest = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("pgx", cfg.GetDBConnString())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set goose dialect: %v", err)
	}

	if err := goose.Run(command, db, *dir, rest...); err != nil {
		log.Fatalf("Migration %s failed: %v", command, err)
	}
}
