package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"catalogsync_api/internal/catalog/storage/repositories"
	"catalogsync_api/pkg/dbconnect"
)

type ProductHandler struct {
	dbconnect.Database
	repo *repositories.ProductRepository
}

func NewProductHandler(connector dbconnect.Database) *ProductHandler {
	db, err := connector.Connect()
	if err != nil {
		return nil
	}
	return &ProductHandler{
		Database: connector,
		repo:     repositories.NewProductRepository(db),
	}
}

func (h *ProductHandler) Connect() (*sql.DB, error) {
	return h.Database.Connect()
}

func (h *ProductHandler) Ping() error {
	return h.Database.Ping()
}

// GetProductHandler serves GET /api/products?sku=... and
// GET /api/products?source_id=... lookups.
func (h *ProductHandler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Ping(); err != nil {
		http.Error(w, "Failed to ping database", http.StatusInternalServerError)
		return
	}

	sku := r.URL.Query().Get("sku")
	sourceID := r.URL.Query().Get("source_id")

	switch {
	case sku != "":
		product, err := h.repo.Get(r.Context(), sku)
		if err != nil {
			http.Error(w, "Failed to fetch product", http.StatusInternalServerError)
			return
		}
		if product == nil {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		if err := json.NewEncoder(w).Encode(product); err != nil {
			log.Printf("Failed to encode product: %v", err)
		}
	case sourceID != "":
		products, err := h.repo.GetBySourceProductID(r.Context(), sourceID)
		if err != nil {
			http.Error(w, "Failed to fetch products", http.StatusInternalServerError)
			return
		}
		if err := json.NewEncoder(w).Encode(products); err != nil {
			log.Printf("Failed to encode products: %v", err)
		}
	default:
		http.Error(w, "sku or source_id query parameter is required", http.StatusBadRequest)
	}
}
