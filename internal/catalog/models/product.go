package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product is the canonical, marketplace-agnostic representation of a catalog
// item. SKU is the natural key; reconciliation is keyed on it. All other
// fields are optional: an empty string or nil pointer means the source did
// not provide the value.
type Product struct {
	SourceProductID string
	SKU             string
	Title           string
	Description     string
	Price           *decimal.Decimal
	Quantity        *int
	PrimaryImageURL string
	// RawSource keeps the unmodified source record for audit and
	// reprocessing. It is compared byte-for-byte during change detection.
	RawSource json.RawMessage
}

func (p *Product) HasSKU() bool {
	return p.SKU != ""
}

// Equal reports whether all mutable fields match. Two products that are Equal
// produce an Unchanged outcome on upsert.
func (p *Product) Equal(other *Product) bool {
	if other == nil {
		return false
	}
	if p.SourceProductID != other.SourceProductID ||
		p.SKU != other.SKU ||
		p.Title != other.Title ||
		p.Description != other.Description ||
		p.PrimaryImageURL != other.PrimaryImageURL {
		return false
	}
	if !decimalPtrEqual(p.Price, other.Price) {
		return false
	}
	if !intPtrEqual(p.Quantity, other.Quantity) {
		return false
	}
	return bytes.Equal(p.RawSource, other.RawSource)
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
