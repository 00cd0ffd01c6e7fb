package models

import (
	"time"
)

// Price is the locally stored quote for one item, keyed by SKU.
type Price struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	SKU       string    `json:"sku" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name"`
	Source    string    `json:"source"`
	Currency  string    `json:"currency,omitempty"`
	BuyKeys   *float64  `json:"buy_keys"`
	BuyMetal  *float64  `json:"buy_metal"`
	SellKeys  *float64  `json:"sell_keys"`
	SellMetal *float64  `json:"sell_metal"`
	PricedAt  time.Time `json:"priced_at"` // when the pricer computed the quote
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginKey stores the most recent long-lived credential handed out by Steam.
type LoginKey struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	AccountName string    `json:"account_name" gorm:"uniqueIndex;not null"`
	Key         string    `json:"-"`
	UpdatedAt   time.Time `json:"updated_at"`
}
