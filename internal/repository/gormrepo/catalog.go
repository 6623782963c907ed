package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
)

// GormCategoryRepository is the GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

func (r *GormCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "create category")
}

func (r *GormCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(err, "get category")
	}
	return &c, nil
}

func (r *GormCategoryRepository) GetByAlias(ctx context.Context, alias string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("alias = ?", alias).First(&c).Error; err != nil {
		return nil, translate(err, "get category by alias")
	}
	return &c, nil
}

func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("name = ?", name).Count(&count).Error
	return count > 0, translate(err, "count categories")
}

func (r *GormCategoryRepository) ExistsByAlias(ctx context.Context, alias string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Where("alias = ?", alias).Count(&count).Error
	return count > 0, translate(err, "count categories")
}

func (r *GormCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var rows []*domain.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "list categories")
	}
	return rows, nil
}

func (r *GormCategoryRepository) ListByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error) {
	rows := []*domain.Category{}
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate(err, "list categories by id")
	}
	return rows, nil
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	p.RefreshSearchText()
	return translate(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *GormProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.RefreshSearchText()
	return translate(r.db.WithContext(ctx).Save(p).Error, "update product")
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err, "get product")
	}
	return &p, nil
}

func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("sku = ? AND id != ?", sku, excludeID).
		Count(&count).Error
	return count > 0, translate(err, "count products")
}

func (r *GormProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Product{})
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}
	if filter.CategoryID != nil {
		db = db.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		db = searchProducts(db, filter.Search)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count products")
	}

	sortCol, ok := repository.ProductSortColumns[filter.SortField]
	if !ok {
		sortCol = "created_at"
	}
	order := "ASC"
	if filter.SortDesc {
		order = "DESC"
	}
	query := db.Order(sortCol + " " + order).Order("id " + order)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	rows := []*domain.Product{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, translate(err, "list products")
	}
	return rows, total, nil
}
