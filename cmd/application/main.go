package main

import (
	"flag"
	"log"
	"os"

	"catalogsync_api/config"
	"catalogsync_api/internal/catalog/app"
	"catalogsync_api/pkg/dbconnect/postgres"
)

func main() {
	log.Printf("Started catalog sync service")

	addr := flag.String("addr", ":8080", "listen address for the catalog API")
	configFile := flag.String("config", "", "optional yaml config file; environment wins otherwise")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if *configFile != "" {
		cfg, err = config.LoadConfig(*configFile)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	connector := postgres.NewPgConnector(&cfg.Postgres)

	server := app.NewCatalogServer(connector, cfg, os.Stdout)
	server.Run(*addr)
}
