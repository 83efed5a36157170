package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillLine struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Bill is the immutable record of one checkout.
type Bill struct {
	Username  string          `json:"username"`
	Lines     []BillLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
