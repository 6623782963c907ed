package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/karadag/storefront/internal/domain"
)

// GormCartRepository keeps each cart in a single row; items live in a JSON column
// so a save is one UPDATE.
type GormCartRepository struct {
	db *gorm.DB
}

func (r *GormCartRepository) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	var c domain.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, translate(err, "get cart")
	}
	c.Normalize()
	return &c, nil
}

func (r *GormCartRepository) Create(ctx context.Context, c *domain.Cart) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "create cart")
}

func (r *GormCartRepository) Save(ctx context.Context, c *domain.Cart) error {
	return translate(r.db.WithContext(ctx).Save(c).Error, "save cart")
}
