package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a snapshot of a product taken when the line was first added.
// Name, Price, Weight and ImageURL are never re-synced with the product.
type CartItem struct {
	ProductID int64           `json:"product_id,string"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Weight    float64         `json:"weight"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

// Cart one per user, stored as a single row/document
type Cart struct {
	ID          int64           `json:"id,string" gorm:"primaryKey"`
	UserID      int64           `json:"user_id,string" gorm:"uniqueIndex"`
	Items       []CartItem      `json:"items" gorm:"type:text;serializer:json"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(14,2)"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Cart) TableName() string {
	return "shop_cart"
}

// RecomputeTotal sets TotalAmount to the sum of price*quantity over the snapshot prices.
// It must run before every persist.
func (c *Cart) RecomputeTotal() {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.TotalAmount = total
}

// IndexOf returns the position of the line for productID, or -1
func (c *Cart) IndexOf(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// RemoveItem drops the line for productID if present
func (c *Cart) RemoveItem(productID int64) {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	c.Items = items
}

// Normalize replaces a nil item list so it is rendered as []
func (c *Cart) Normalize() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
}
