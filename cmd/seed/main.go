package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/tendo-app/backend/internal/logger"
	"github.com/tendo-app/backend/internal/seed"
	"github.com/tendo-app/backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		runSeed(dataDir, func(s *seed.Seeder) error { return s.SeedDev() })
	case "test":
		runSeed(dataDir, func(s *seed.Seeder) error { return s.SeedTest() })
	case "clean":
		cleanData(dataDir)
	default:
		fmt.Println("Usage: seed [dev|test|clean]")
		fmt.Println("  dev   - Seed the data directory with realistic task history")
		fmt.Println("  test  - Seed minimal data for integration tests")
		fmt.Println("  clean - Remove all data files (use with caution)")
		os.Exit(1)
	}
}

func runSeed(dataDir string, fn func(*seed.Seeder) error) {
	st, err := store.Open(dataDir)
	if err != nil {
		log.Fatalf("Failed to open data store: %v", err)
	}
	defer st.Close()

	if err := fn(seed.NewSeeder(st)); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	fmt.Printf("Seeded %s\n", dataDir)
}

func cleanData(dataDir string) {
	for _, name := range []string{"tasks.json", "events.json", "settings.json"} {
		path := filepath.Join(dataDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Fatalf("Failed to remove %s: %v", path, err)
		}
	}
	fmt.Printf("Cleaned %s\n", dataDir)
}
