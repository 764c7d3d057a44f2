// seed/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/supermercado-sim/mercado_api/services"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Standalone catalog seeder. The API seeds on boot already; this exists for
// provisioning a database ahead of time or for local sqlite experiments.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		sqlitePath = flag.String("sqlite", "", "Seed a local sqlite file instead of postgres")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := services.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := services.SeedCatalog(db); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	log.Println("Catalog seeded successfully")
}

func open(sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	}

	if sqlitePath != "" {
		log.Printf("Connecting to sqlite database: %s", sqlitePath)
		return gorm.Open(sqlite.Open(sqlitePath), cfg)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set (or pass -sqlite for a local file)")
	}
	return gorm.Open(postgres.Open(dsn), cfg)
}

func showHelp() {
	fmt.Println("Mercado API catalog seeder")
	fmt.Println()
	fmt.Println("Usage: seed [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Seeds the product catalog, suppliers and employee positions.")
	fmt.Println("Idempotent: tables that already have rows are left untouched.")
}
