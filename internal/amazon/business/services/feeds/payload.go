package feeds

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"catalogsync_api/internal/catalog/models"
)

const (
	FeedTypeListings          = "JSON_LISTINGS_FEED"
	FeedTypeInventoryFlatFile = "POST_FLAT_FILE_INVENTORY_AVAILABILITY_DATA"

	ContentTypeJSON     = "application/json; charset=UTF-8"
	ContentTypeFlatFile = "text/tab-separated-values; charset=Windows-1252"
)

type ListingsFeed struct {
	Header   ListingsHeader    `json:"header"`
	Messages []ListingsMessage `json:"messages"`
}

type ListingsHeader struct {
	SellerID string `json:"sellerId"`
	Version  string `json:"version"`
}

type ListingsMessage struct {
	MessageID     int                    `json:"messageId"`
	SKU           string                 `json:"sku"`
	OperationType string                 `json:"operationType"`
	ProductType   string                 `json:"productType"`
	Attributes    map[string]interface{} `json:"attributes"`
}

// BuildListingsFeed renders stored products into a JSON_LISTINGS_FEED
// payload. Products without a sku have no place in a feed and are rejected.
func BuildListingsFeed(sellerID, productType string, products []models.Product) ([]byte, error) {
	feed := ListingsFeed{
		Header:   ListingsHeader{SellerID: sellerID, Version: "2.0"},
		Messages: make([]ListingsMessage, 0, len(products)),
	}

	for i, product := range products {
		if !product.HasSKU() {
			return nil, fmt.Errorf("product at index %d has no sku", i)
		}
		attributes := map[string]interface{}{}
		if product.Title != "" {
			attributes["item_name"] = []map[string]interface{}{{"value": product.Title}}
		}
		if product.Description != "" {
			attributes["product_description"] = []map[string]interface{}{{"value": product.Description}}
		}
		if product.Price != nil {
			attributes["purchasable_offer"] = []map[string]interface{}{{
				"our_price": []map[string]interface{}{{
					"schedule": []map[string]interface{}{{"value_with_tax": product.Price.String()}},
				}},
			}}
		}
		if product.Quantity != nil {
			attributes["fulfillment_availability"] = []map[string]interface{}{{
				"fulfillment_channel_code": "DEFAULT",
				"quantity":                 *product.Quantity,
			}}
		}
		if product.PrimaryImageURL != "" {
			attributes["main_product_image_locator"] = []map[string]interface{}{{"media_location": product.PrimaryImageURL}}
		}

		feed.Messages = append(feed.Messages, ListingsMessage{
			MessageID:     i + 1,
			SKU:           product.SKU,
			OperationType: "UPDATE",
			ProductType:   productType,
			Attributes:    attributes,
		})
	}

	payload, err := json.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listings feed: %w", err)
	}
	return payload, nil
}

// BuildInventoryFlatFile renders a tab-separated inventory feed encoded as
// Windows-1252, the encoding the flat-file feed pipeline expects.
func BuildInventoryFlatFile(products []models.Product) ([]byte, error) {
	var builder strings.Builder
	builder.WriteString("sku\tquantity\tprice\n")

	for i, product := range products {
		if !product.HasSKU() {
			return nil, fmt.Errorf("product at index %d has no sku", i)
		}
		quantity := ""
		if product.Quantity != nil {
			quantity = fmt.Sprintf("%d", *product.Quantity)
		}
		price := ""
		if product.Price != nil {
			price = product.Price.String()
		}
		builder.WriteString(fmt.Sprintf("%s\t%s\t%s\n", product.SKU, quantity, price))
	}

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(builder.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to encode flat file as Windows-1252: %w", err)
	}
	return encoded, nil
}
