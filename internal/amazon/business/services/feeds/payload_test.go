package feeds

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogsync_api/internal/catalog/models"
)

func feedProduct(sku string) models.Product {
	price := decimal.NewFromFloat(9.99)
	quantity := 5
	return models.Product{
		SKU:             sku,
		Title:           "Widget",
		Description:     "<p>A fine widget</p>",
		Price:           &price,
		Quantity:        &quantity,
		PrimaryImageURL: "https://cdn.example.com/main.jpg",
	}
}

func TestBuildListingsFeed(t *testing.T) {
	payload, err := BuildListingsFeed("SELLER123", "HOME", []models.Product{feedProduct("ABC"), feedProduct("DEF")})
	require.NoError(t, err)

	var feed ListingsFeed
	require.NoError(t, json.Unmarshal(payload, &feed))

	assert.Equal(t, "SELLER123", feed.Header.SellerID)
	assert.Equal(t, "2.0", feed.Header.Version)
	require.Len(t, feed.Messages, 2)
	assert.Equal(t, 1, feed.Messages[0].MessageID)
	assert.Equal(t, "ABC", feed.Messages[0].SKU)
	assert.Equal(t, "UPDATE", feed.Messages[0].OperationType)
	assert.Equal(t, "HOME", feed.Messages[0].ProductType)
	assert.Contains(t, feed.Messages[0].Attributes, "item_name")
	assert.Contains(t, feed.Messages[0].Attributes, "purchasable_offer")
	assert.Contains(t, feed.Messages[0].Attributes, "fulfillment_availability")
	assert.Equal(t, 2, feed.Messages[1].MessageID)
}

func TestBuildListingsFeed_SkipsAbsentAttributes(t *testing.T) {
	payload, err := BuildListingsFeed("SELLER123", "HOME", []models.Product{{SKU: "BARE"}})
	require.NoError(t, err)

	var feed ListingsFeed
	require.NoError(t, json.Unmarshal(payload, &feed))

	require.Len(t, feed.Messages, 1)
	assert.Empty(t, feed.Messages[0].Attributes)
}

func TestBuildListingsFeed_RejectsMissingSKU(t *testing.T) {
	_, err := BuildListingsFeed("SELLER123", "HOME", []models.Product{{Title: "No key"}})

	assert.Error(t, err)
}

func TestBuildInventoryFlatFile(t *testing.T) {
	payload, err := BuildInventoryFlatFile([]models.Product{feedProduct("ABC")})
	require.NoError(t, err)

	assert.Equal(t, "sku\tquantity\tprice\nABC\t5\t9.99\n", string(payload))
}

func TestBuildInventoryFlatFile_EncodesWindows1252(t *testing.T) {
	product := feedProduct("CAFÉ-1")
	payload, err := BuildInventoryFlatFile([]models.Product{product})
	require.NoError(t, err)

	// É is a single 0xC9 byte in Windows-1252, two bytes in UTF-8.
	assert.Contains(t, string(payload), "CAF\xc9-1")
	assert.NotContains(t, string(payload), "É")
}

func TestBuildInventoryFlatFile_AbsentFieldsStayEmpty(t *testing.T) {
	payload, err := BuildInventoryFlatFile([]models.Product{{SKU: "BARE"}})
	require.NoError(t, err)

	assert.Equal(t, "sku\tquantity\tprice\nBARE\t\t\n", string(payload))
}
