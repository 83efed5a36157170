package models

import (
	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits a price may carry. SQL
// stores keep prices in decimal(12,2) columns.
const PriceScale = 2

var maxPrice = decimal.New(1, 10)

// ValidPrice reports whether d is non-negative, fits a decimal(12,2) column
// and has no digits beyond PriceScale. Trailing zeros are allowed.
func ValidPrice(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(maxPrice) && d.Equal(d.Truncate(PriceScale))
}

type Product struct {
	ID    uint64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name  string          `gorm:"type:varchar(255);not null" json:"name"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Stock int64           `gorm:"not null" json:"stock"`
	// Position keeps the catalog display order in stores without a natural order.
	Position int `gorm:"not null;index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
