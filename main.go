// Main entry point for the application
package main

import (
	"log"
	"os"

	"fygallery/internal/config"
	"fygallery/internal/ui"
)

// main opens the gallery with fygallery.yaml from the working directory, if
// there is one. An optional argument names the catalog.
func main() {
	log.SetPrefix("fygallery ")

	cfg, err := config.LoadOptional("fygallery.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if len(os.Args) > 1 {
		cfg.Catalog = os.Args[1]
	}
	fixes := cfg.Normalize()

	logger, err := config.NewLogger(cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	for _, fix := range fixes {
		logger.Warn(fix)
	}

	ui.CreateApplication(cfg, logger)
}
