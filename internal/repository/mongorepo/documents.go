package mongorepo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/karadag/storefront/internal/domain"
)

// Money is stored as Decimal128 so sums stay exact inside the database.

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

type categoryDoc struct {
	ID          int64     `bson:"_id"`
	Name        string    `bson:"name"`
	Alias       string    `bson:"alias"`
	ImageURL    string    `bson:"image_url"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func newCategoryDoc(c *domain.Category) *categoryDoc {
	return &categoryDoc{
		ID:          c.ID,
		Name:        c.Name,
		Alias:       c.Alias,
		ImageURL:    c.ImageURL,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (d *categoryDoc) toDomain() *domain.Category {
	return &domain.Category{
		ID:          d.ID,
		Name:        d.Name,
		Alias:       d.Alias,
		ImageURL:    d.ImageURL,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type imageDoc struct {
	ImageURL string `bson:"image_url"`
	PublicID string `bson:"public_id"`
	Type     string `bson:"type"`
	Size     int64  `bson:"size"`
}

type productDoc struct {
	ID          int64                `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Quantity    int                  `bson:"quantity"`
	Weight      float64              `bson:"weight"`
	Price       primitive.Decimal128 `bson:"price"`
	SKU         string               `bson:"sku"`
	CategoryID  int64                `bson:"category_id"`
	Images      []imageDoc           `bson:"images"`
	IsActive    bool                 `bson:"is_active"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newProductDoc(p *domain.Product) *productDoc {
	images := make([]imageDoc, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, imageDoc(img))
	}
	return &productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		Weight:      p.Weight,
		Price:       toDecimal128(p.Price),
		SKU:         p.SKU,
		CategoryID:  p.CategoryID,
		Images:      images,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d *productDoc) toDomain() *domain.Product {
	images := make([]domain.ProductImage, 0, len(d.Images))
	for _, img := range d.Images {
		images = append(images, domain.ProductImage(img))
	}
	return &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Quantity:    d.Quantity,
		Weight:      d.Weight,
		Price:       fromDecimal128(d.Price),
		SKU:         d.SKU,
		CategoryID:  d.CategoryID,
		Images:      images,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type cartItemDoc struct {
	ProductID int64                `bson:"product_id"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Weight    float64              `bson:"weight"`
	ImageURL  string               `bson:"image_url"`
	Quantity  int                  `bson:"quantity"`
}

type cartDoc struct {
	ID          int64                `bson:"_id"`
	UserID      int64                `bson:"user_id"`
	Items       []cartItemDoc        `bson:"items"`
	TotalAmount primitive.Decimal128 `bson:"total_amount"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

func newCartDoc(c *domain.Cart) *cartDoc {
	items := make([]cartItemDoc, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     toDecimal128(it.Price),
			Weight:    it.Weight,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
		})
	}
	return &cartDoc{
		ID:          c.ID,
		UserID:      c.UserID,
		Items:       items,
		TotalAmount: toDecimal128(c.TotalAmount),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (d *cartDoc) toDomain() *domain.Cart {
	items := make([]domain.CartItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, domain.CartItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     fromDecimal128(it.Price),
			Weight:    it.Weight,
			ImageURL:  it.ImageURL,
			Quantity:  it.Quantity,
		})
	}
	return &domain.Cart{
		ID:          d.ID,
		UserID:      d.UserID,
		Items:       items,
		TotalAmount: fromDecimal128(d.TotalAmount),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type userDoc struct {
	ID              int64       `bson:"_id"`
	FirstName       string      `bson:"first_name"`
	LastName        string      `bson:"last_name"`
	Email           string      `bson:"email"`
	Password        string      `bson:"password"`
	Phone           string      `bson:"phone"`
	Role            domain.Role `bson:"role"`
	IsActive        bool        `bson:"is_active"`
	IsVerified      bool        `bson:"is_verified"`
	EmailVerifiedAt *time.Time  `bson:"email_verified_at,omitempty"`
	LastLogin       *time.Time  `bson:"last_login,omitempty"`
	CreatedAt       time.Time   `bson:"created_at"`
	UpdatedAt       time.Time   `bson:"updated_at"`
}

func newUserDoc(u *domain.User) *userDoc {
	d := userDoc(*u)
	return &d
}

func (d *userDoc) toDomain() *domain.User {
	u := domain.User(*d)
	return &u
}

type oprLogDoc struct {
	ID        int64     `bson:"_id"`
	OprID     int64     `bson:"opr_id"`
	OprIp     string    `bson:"opr_ip"`
	OptAction string    `bson:"opt_action"`
	OptDesc   string    `bson:"opt_desc"`
	OptTime   time.Time `bson:"opt_time"`
}
