package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"catalogsync_api/internal/catalog/models"
)

// Outcome reports what an upsert did to the stored row.
type Outcome string

const (
	OutcomeInserted  Outcome = "inserted"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

var (
	// ErrMissingSKU rejects products without a natural key. They are never
	// persisted.
	ErrMissingSKU = errors.New("product has no sku")
	// ErrWriteConflict surfaces a lost race on the sku unique constraint.
	ErrWriteConflict = errors.New("concurrent write conflict on sku")
)

const uniqueViolation = "23505"

const productColumns = `source_product_id, sku, title, description, price, quantity, primary_image_url, raw_source`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	log.Printf("ProductRepository successfully created.")
	return &ProductRepository{db: db}
}

// Upsert reconciles one product against the stored state, keyed by sku.
// A new sku inserts, an existing sku with any field difference overwrites the
// whole row, an identical row writes nothing. Each call is a single
// transaction; the sku unique constraint is the only concurrency guard.
func (r *ProductRepository) Upsert(ctx context.Context, product *models.Product) (Outcome, error) {
	if !product.HasSKU() {
		return "", ErrMissingSKU
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `SELECT ` + productColumns + ` FROM catalog.products WHERE sku = $1 FOR UPDATE`
	existing, err := scanProduct(tx.QueryRowContext(ctx, query, product.SKU))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to read product %q: %w", product.SKU, err)
	}

	if existing == nil {
		insert := `
			INSERT INTO catalog.products (` + productColumns + `, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
		if _, err := tx.ExecContext(ctx, insert, insertArgs(product)...); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return "", ErrWriteConflict
			}
			return "", fmt.Errorf("failed to insert product %q: %w", product.SKU, err)
		}
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("failed to commit insert for %q: %w", product.SKU, err)
		}
		return OutcomeInserted, nil
	}

	if existing.Equal(product) {
		return OutcomeUnchanged, nil
	}

	update := `
		UPDATE catalog.products
		SET source_product_id = $1, title = $3, description = $4, price = $5,
			quantity = $6, primary_image_url = $7, raw_source = $8, updated_at = now()
		WHERE sku = $2`
	if _, err := tx.ExecContext(ctx, update, insertArgs(product)...); err != nil {
		return "", fmt.Errorf("failed to update product %q: %w", product.SKU, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit update for %q: %w", product.SKU, err)
	}
	return OutcomeUpdated, nil
}

// Get returns the stored product for a sku, or nil when there is none.
func (r *ProductRepository) Get(ctx context.Context, sku string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products WHERE sku = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %q: %w", sku, err)
	}
	return product, nil
}

// GetBySKUs returns the stored products for the given skus. Unknown skus are
// silently absent from the result.
func (r *ProductRepository) GetBySKUs(ctx context.Context, skus []string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products WHERE sku = ANY($1) ORDER BY sku`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(skus))
	if err != nil {
		return nil, fmt.Errorf("failed to query products by skus: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

// GetBySourceProductID is the reverse lookup over the secondary index: all
// stored products that came from one source record.
func (r *ProductRepository) GetBySourceProductID(ctx context.Context, sourceProductID string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM catalog.products WHERE source_product_id = $1 ORDER BY sku`
	rows, err := r.db.QueryContext(ctx, query, sourceProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by source id: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *ProductRepository) Close() error {
	return r.db.Close()
}

func insertArgs(p *models.Product) []interface{} {
	return []interface{}{
		nullString(p.SourceProductID),
		p.SKU,
		nullString(p.Title),
		nullString(p.Description),
		nullDecimal(p.Price),
		nullInt(p.Quantity),
		nullString(p.PrimaryImageURL),
		nullString(string(p.RawSource)),
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		sourceID  sql.NullString
		sku       string
		title     sql.NullString
		descr     sql.NullString
		price     decimal.NullDecimal
		quantity  sql.NullInt64
		imageURL  sql.NullString
		rawSource sql.NullString
	)
	if err := row.Scan(&sourceID, &sku, &title, &descr, &price, &quantity, &imageURL, &rawSource); err != nil {
		return nil, err
	}

	product := &models.Product{
		SourceProductID: sourceID.String,
		SKU:             sku,
		Title:           title.String,
		Description:     descr.String,
		PrimaryImageURL: imageURL.String,
	}
	if price.Valid {
		value := price.Decimal
		product.Price = &value
	}
	if quantity.Valid {
		value := int(quantity.Int64)
		product.Quantity = &value
	}
	if rawSource.Valid {
		product.RawSource = json.RawMessage(rawSource.String)
	}
	return product, nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
