package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"chatgraph/config"
	"chatgraph/pkg/database"
)

const usage = `
Chatgraph - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Run all *.up.sql migrations
  down        Roll back all migrations with the *.down.sql files
  status      Show database connection status
  seed-dev    Seed with development/test data

Flags:
  -migrations string   Path to migrations directory (default from MIGRATIONS_DIR)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev
  go run cmd/migrate/main.go down
`

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	migrationsDir := flag.String("migrations", cfg.MigrationsDir, "Path to migrations directory")
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch command := flag.Arg(0); command {
	case "up":
		log.Println("Running migrations UP...")
		if err := database.Migrate(ctx, db, *migrationsDir, database.Up); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	case "down":
		log.Println("Rolling back migrations...")
		if err := database.Migrate(ctx, db, *migrationsDir, database.Down); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Rollback completed successfully")
	case "status":
		showStatus(ctx, db)
	case "seed-dev":
		log.Println("Seeding database (development mode)...")
		result, err := database.SeedDevelopment(ctx, db)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("   - Users: %d (password %q)", len(result.Users), database.DevPassword)
		log.Printf("   - Chats: %d", len(result.Chats))
		log.Println("Development seeding completed")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func showStatus(ctx context.Context, db *sql.DB) {
	if err := database.HealthCheck(ctx, db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	for _, table := range []string{"users", "chats", "chat_members"} {
		exists, err := database.TableExists(ctx, db, table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if !exists {
			log.Printf("Table %-14s does not exist", table)
			continue
		}
		count, _ := database.TableCount(ctx, db, table)
		log.Printf("Table %-14s exists (%d rows)", table, count)
	}
}
