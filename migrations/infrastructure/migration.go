package infrastructure

import (
	"database/sql"
	"fmt"
	"log"
)

type CreateMigrationsSchema struct{}

func (m *CreateMigrationsSchema) UpMigration(db *sql.DB) error {
	query := `
	CREATE SCHEMA IF NOT EXISTS migrations;`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create schema migrations: %w", err)
	}
	return nil
}

type CreateMigrationsTable struct{}

func (m *CreateMigrationsTable) UpMigration(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations.migrations (
		name VARCHAR(255) PRIMARY KEY,
		time TIMESTAMP NOT NULL
	);`
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	log.Println("Migrations registry is ready.")
	return nil
}
