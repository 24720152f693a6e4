package response

import "encoding/json"

// ProductsResponse is the body of GET /admin/api/{version}/products.json.
// Records are kept as raw JSON so the original payload survives
// normalization verbatim.
type ProductsResponse struct {
	Products []json.RawMessage `json:"products"`
}

// ProductResponse is the body of GET /admin/api/{version}/products/{id}.json.
type ProductResponse struct {
	Product json.RawMessage `json:"product"`
}

// Product mirrors the subset of the Shopify Admin REST product shape the
// sync needs. Everything is optional on the wire.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	BodyHTML string    `json:"body_html"`
	Variants []Variant `json:"variants"`
	Image    *Image    `json:"image"`
	Images   []Image   `json:"images"`
}

type Variant struct {
	ID                int64  `json:"id"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity *int   `json:"inventory_quantity"`
}

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}
