package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"catalogsync_api/internal/catalog/models"
	"catalogsync_api/internal/shopify/business/models/dto/response"
)

// Normalize maps a raw Shopify product record into the canonical Product.
// It is total: any input shape (missing keys, empty lists, null nested
// objects, even invalid JSON) yields a valid Product with absent fields
// rather than an error. The raw record is carried along verbatim.
//
// Derivation rules:
//   - sku, price, quantity come from the first variant, if any
//   - image precedence: the single main image src, else the first of the
//     images list, else absent
//   - description is the HTML body verbatim, no sanitization
func Normalize(raw json.RawMessage) models.Product {
	product := models.Product{RawSource: raw}

	var record response.Product
	if err := json.Unmarshal(raw, &record); err != nil {
		return product
	}

	if record.ID != 0 {
		product.SourceProductID = strconv.FormatInt(record.ID, 10)
	}
	product.Title = record.Title
	product.Description = record.BodyHTML

	if len(record.Variants) > 0 {
		variant := record.Variants[0]
		product.SKU = variant.SKU
		if variant.Price != "" {
			if price, err := decimal.NewFromString(variant.Price); err == nil {
				product.Price = &price
			}
		}
		if variant.InventoryQuantity != nil {
			quantity := *variant.InventoryQuantity
			// Shopify reports oversold stock as a negative count.
			if quantity < 0 {
				quantity = 0
			}
			product.Quantity = &quantity
		}
	}

	if record.Image != nil && record.Image.Src != "" {
		product.PrimaryImageURL = record.Image.Src
	} else if len(record.Images) > 0 {
		product.PrimaryImageURL = record.Images[0].Src
	}

	return product
}
