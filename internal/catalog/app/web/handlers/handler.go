package handlers

import "database/sql"

type Handler interface {
	Connect() (*sql.DB, error)
	Ping() error
}
