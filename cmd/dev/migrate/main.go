package main

import (
	"flag"
	"log"

	"epusara/pkg/config"
	"epusara/pkg/db"
)

func main() {
	path := flag.String("path", "file://migrations", "migrations source, e.g. file://migrations")
	flag.Parse()

	cfg := config.Load()
	if cfg.MigrationsPath != "" {
		*path = cfg.MigrationsPath
	}

	if err := db.Migrate(*path, cfg); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("migrations applied from %s", *path)
}
