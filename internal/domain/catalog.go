package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// money is rendered as a JSON number
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups products; Alias is the URL-safe slug used for filtering
type Category struct {
	ID          int64     `json:"id,string" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex"`
	Alias       string    `json:"alias" gorm:"size:120;uniqueIndex"`
	ImageURL    string    `json:"image_url" gorm:"size:1024"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "catalog_category"
}

// CategoryRef is the category summary embedded into product responses
type CategoryRef struct {
	ID    int64  `json:"id,string"`
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// ProductImage one uploaded image of a product
type ProductImage struct {
	ImageURL string `json:"image_url" mapstructure:"image_url"`
	PublicID string `json:"public_id" mapstructure:"public_id"`
	Type     string `json:"type" mapstructure:"type"`
	Size     int64  `json:"size" mapstructure:"size"`
}

type Product struct {
	ID          int64           `json:"id,string" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:200;index"`
	Description string          `json:"description" gorm:"type:text"`
	Quantity    int             `json:"quantity"`
	Weight      float64         `json:"weight"` // grams
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(14,2)"`
	SKU         string          `json:"sku" gorm:"size:64;uniqueIndex"`
	CategoryID  int64           `json:"category_id,string" gorm:"index"`
	Images      []ProductImage  `json:"images" gorm:"type:text;serializer:json"`
	IsActive    bool            `json:"is_active" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`
	SearchText  string          `json:"-" gorm:"type:text"`

	Category *CategoryRef `json:"category,omitempty" gorm:"-"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "catalog_product"
}

// FirstImageURL returns the primary image or an empty string
func (p *Product) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].ImageURL
}
