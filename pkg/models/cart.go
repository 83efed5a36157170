package models

import (
	"github.com/shopspring/decimal"
)

// CartItem is a snapshot of a product taken when it was added to a cart.
// Price does not follow later catalog edits.
type CartItem struct {
	Seq       uint            `gorm:"primaryKey;autoIncrement" json:"-"`
	Username  string          `gorm:"type:varchar(100);not null;index" json:"-"`
	ProductID uint64          `gorm:"not null" json:"product_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
