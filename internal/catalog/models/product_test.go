package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func baseProduct() Product {
	price := decimal.NewFromFloat(9.99)
	quantity := 5
	return Product{
		SourceProductID: "1",
		SKU:             "ABC",
		Title:           "Widget",
		Price:           &price,
		Quantity:        &quantity,
		RawSource:       json.RawMessage(`{"id":1}`),
	}
}

func TestProduct_Equal(t *testing.T) {
	a := baseProduct()
	b := baseProduct()
	assert.True(t, a.Equal(&b))

	t.Run("different price", func(t *testing.T) {
		other := baseProduct()
		price := decimal.NewFromFloat(12.50)
		other.Price = &price
		assert.False(t, a.Equal(&other))
	})

	t.Run("absent vs present price", func(t *testing.T) {
		other := baseProduct()
		other.Price = nil
		assert.False(t, a.Equal(&other))
	})

	t.Run("equal decimals with different scale", func(t *testing.T) {
		other := baseProduct()
		price := decimal.RequireFromString("9.990")
		other.Price = &price
		assert.True(t, a.Equal(&other))
	})

	t.Run("different raw source", func(t *testing.T) {
		other := baseProduct()
		other.RawSource = json.RawMessage(`{"id":1,"extra":true}`)
		assert.False(t, a.Equal(&other))
	})

	t.Run("nil other", func(t *testing.T) {
		assert.False(t, a.Equal(nil))
	})
}

func TestProduct_HasSKU(t *testing.T) {
	product := baseProduct()
	assert.True(t, product.HasSKU())

	product.SKU = ""
	assert.False(t, product.HasSKU())
}
