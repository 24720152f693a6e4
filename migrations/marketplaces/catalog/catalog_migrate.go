package catalog

import (
	"database/sql"
	"fmt"
	"log"
)

type CreateCatalogSchema struct{}

func (m *CreateCatalogSchema) UpMigration(db *sql.DB) error {
	query := `
	CREATE SCHEMA IF NOT EXISTS catalog;`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create schema catalog: %w", err)
	}
	return nil
}

type CreateProductsTable struct{}

func (m *CreateProductsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "catalog.products"); err != nil {
		return err
	} else if ok {
		return nil
	}
	// raw_source is text, not jsonb: change detection compares the stored
	// serialization byte-for-byte and jsonb does not round-trip verbatim.
	query := `
	CREATE TABLE IF NOT EXISTS catalog.products (
		product_id SERIAL PRIMARY KEY,
		source_product_id VARCHAR(64),
		sku VARCHAR(255) NOT NULL UNIQUE,
		title TEXT,
		description TEXT,
		price NUMERIC(12, 2),
		quantity INT CHECK (quantity >= 0),
		primary_image_url TEXT,
		raw_source TEXT,
		updated_at TIMESTAMP NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS catalog_products_source_product_id_idx
		ON catalog.products(source_product_id);`
	if err := executeAndMarkMigration(db, query, "catalog.products"); err != nil {
		return err
	}
	log.Println("Migration 'catalog.products' completed successfully.")
	return nil
}

type CreateFeedSubmissionsTable struct{}

func (m *CreateFeedSubmissionsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "catalog.feed_submissions"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS catalog.feed_submissions (
		submission_id UUID PRIMARY KEY,
		feed_type VARCHAR(64) NOT NULL,
		document_id VARCHAR(255),
		feed_id VARCHAR(255),
		state VARCHAR(32) NOT NULL,
		result_document_id VARCHAR(255),
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		updated_at TIMESTAMP NOT NULL DEFAULT now()
	);`
	if err := executeAndMarkMigration(db, query, "catalog.feed_submissions"); err != nil {
		return err
	}
	log.Println("Migration 'catalog.feed_submissions' completed successfully.")
	return nil
}

func checkAndSkipMigration(db *sql.DB, migrationName string) (bool, error) {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", migrationName).Scan(&migrationExists)
	if err != nil {
		return migrationExists, fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Printf("Migration '%s' already completed. Skipping.\n", migrationName)
		return migrationExists, nil
	}
	return migrationExists, nil
}

func executeAndMarkMigration(db *sql.DB, query string, migrationName string) error {
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to execute migration '%s': %w", migrationName, err)
	}
	_, err = db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", migrationName)
	if err != nil {
		return fmt.Errorf("failed to mark migration '%s' as complete: %w", migrationName, err)
	}
	return nil
}
