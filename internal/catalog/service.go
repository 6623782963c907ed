package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/pkg/common"
)

// AliasAll disables the category filter
const AliasAll = "all"

// CategoryInput admin payload for a new category; Alias is derived from Name when empty
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Alias       string `json:"alias" validate:"omitempty,max=120"`
	ImageURL    string `json:"image_url" validate:"omitempty,max=1024"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// ProductInput admin payload for a new product; SKU is generated when empty
type ProductInput struct {
	Name        string                `json:"name" validate:"required,max=200"`
	Description string                `json:"description" validate:"required"`
	Quantity    int                   `json:"quantity" validate:"gte=0"`
	Weight      float64               `json:"weight" validate:"gt=0"`
	Price       *decimal.Decimal      `json:"price"`
	SKU         string                `json:"sku" validate:"omitempty,max=64"`
	CategoryID  int64                 `json:"category_id,string" validate:"required"`
	Images      []domain.ProductImage `json:"images" validate:"omitempty,dive"`
}

// ProductQuery public listing parameters
type ProductQuery struct {
	Category string // alias; empty or "all" means no filter
	Search   string
	Limit    int
}

// ProductPage a listing result; Total counts every match, not just Data
type ProductPage struct {
	Data  []*domain.Product `json:"data"`
	Total int64             `json:"total"`
}

// Service catalog queries and admin mutations
type Service struct {
	stores   repository.Provider
	bus      EventBus.Bus
	validate *validator.Validate
}

func NewService(stores repository.Provider, bus EventBus.Bus) *Service {
	return &Service{stores: stores, bus: bus, validate: validator.New()}
}

func requireAdmin(p *domain.Principal) error {
	if p == nil {
		return domain.Unauthenticated("Authentication required")
	}
	if !p.IsAdmin() {
		return domain.Forbidden("Admin role required")
	}
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, p *domain.Principal, desc string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(topic, domain.OperationEvent{
		OprID:    p.UserID,
		RemoteIP: domain.RemoteIPFrom(ctx),
		Action:   topic,
		Desc:     desc,
		Time:     time.Now(),
	})
}

func (s *Service) open(ctx context.Context) (*repository.Stores, error) {
	st, err := s.stores.Stores(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	return st, nil
}

// ListCategories returns all categories by name
func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := st.Categories.List(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	if rows == nil {
		rows = []*domain.Category{}
	}
	return rows, nil
}

func (s *Service) CreateCategory(ctx context.Context, p *domain.Principal, in CategoryInput) (*domain.Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(&in); err != nil {
		return nil, domain.ValidationFailed(common.ValidationMessage(err))
	}
	alias := Slugify(common.If(common.IsEmpty(in.Alias), in.Name, in.Alias))
	if alias == "" {
		return nil, domain.ValidationFailed("Category alias could not be derived from name")
	}

	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	exists, err := st.Categories.ExistsByName(ctx, in.Name)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	if exists {
		return nil, domain.ValidationFailed("A category with this name already exists")
	}
	exists, err = st.Categories.ExistsByAlias(ctx, alias)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	if exists {
		return nil, domain.ValidationFailed("A category with this alias already exists")
	}

	now := time.Now()
	c := &domain.Category{
		ID:          common.UUIDint64(),
		Name:        in.Name,
		Alias:       alias,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := st.Categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ValidationFailed("A category with this name or alias already exists")
		}
		return nil, domain.Unexpected(err)
	}
	s.publish(ctx, domain.TopicCategoryCreated, p, fmt.Sprintf("create category %s (%s)", c.Name, c.Alias))
	return c, nil
}

// ListProducts is the customer listing: active products only, newest first
func (s *Service) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	filter := repository.ProductFilter{
		Active:    repository.Bool(true),
		Search:    strings.TrimSpace(q.Search),
		SortField: "created_at",
		SortDesc:  true,
	}
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	if alias := strings.TrimSpace(q.Category); alias != "" && alias != AliasAll {
		cat, err := st.Categories.GetByAlias(ctx, alias)
		if errors.Is(err, repository.ErrNotFound) {
			return &ProductPage{Data: []*domain.Product{}, Total: 0}, nil
		} else if err != nil {
			return nil, domain.Unexpected(err)
		}
		filter.CategoryID = &cat.ID
	}

	rows, total, err := st.Products.List(ctx, filter)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	if err := attachCategories(ctx, st, rows); err != nil {
		return nil, domain.Unexpected(err)
	}
	return &ProductPage{Data: rows, Total: total}, nil
}

// GetProduct returns a product by id, inactive ones included
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	prod, err := st.Products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFound("Product not found")
	} else if err != nil {
		return nil, domain.Unexpected(err)
	}
	if err := attachCategories(ctx, st, []*domain.Product{prod}); err != nil {
		return nil, domain.Unexpected(err)
	}
	return prod, nil
}

func (s *Service) CreateProduct(ctx context.Context, p *domain.Principal, in ProductInput) (*domain.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(&in); err != nil {
		return nil, domain.ValidationFailed(common.ValidationMessage(err))
	}
	if in.Price == nil {
		return nil, domain.ValidationFailed("price is required")
	}
	if in.Price.IsNegative() {
		return nil, domain.ValidationFailed("price must not be negative")
	}

	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := st.Categories.GetByID(ctx, in.CategoryID); errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFound("Category not found")
	} else if err != nil {
		return nil, domain.Unexpected(err)
	}

	now := time.Now()
	sku := NormalizeSKU(in.SKU)
	if sku == "" {
		sku = NormalizeSKU(common.GenerateSKU(now))
	}
	exists, err := st.Products.ExistsBySKU(ctx, sku, 0)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	if exists {
		return nil, domain.ValidationFailed("SKU is already in use")
	}

	images := in.Images
	if images == nil {
		images = []domain.ProductImage{}
	}
	prod := &domain.Product{
		ID:          common.UUIDint64(),
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		Weight:      in.Weight,
		Price:       in.Price.Round(2),
		SKU:         sku,
		CategoryID:  in.CategoryID,
		Images:      images,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := st.Products.Create(ctx, prod); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ValidationFailed("SKU is already in use")
		}
		return nil, domain.Unexpected(err)
	}
	if err := attachCategories(ctx, st, []*domain.Product{prod}); err != nil {
		return nil, domain.Unexpected(err)
	}
	s.publish(ctx, domain.TopicProductCreated, p, fmt.Sprintf("create product %s (%s)", prod.Name, prod.SKU))
	zap.L().Info("product created", zap.Int64("product_id", prod.ID), zap.String("sku", prod.SKU))
	return prod, nil
}

// DeactivateProduct soft-deletes a product; the record stays readable by id
func (s *Service) DeactivateProduct(ctx context.Context, p *domain.Principal, id int64) (*domain.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	prod, err := st.Products.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFound("Product not found")
	} else if err != nil {
		return nil, domain.Unexpected(err)
	}
	prod.IsActive = false
	prod.UpdatedAt = time.Now()
	if err := st.Products.Update(ctx, prod); err != nil {
		return nil, domain.Unexpected(err)
	}
	s.publish(ctx, domain.TopicProductDeactivated, p, fmt.Sprintf("deactivate product %s (%s)", prod.Name, prod.SKU))
	return prod, nil
}

// NormalizeSKU trims and upper-cases a stock keeping unit
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// attachCategories resolves the category summary of each product in one query
func attachCategories(ctx context.Context, st *repository.Stores, rows []*domain.Product) error {
	if len(rows) == 0 {
		return nil
	}
	seen := map[int64]struct{}{}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.CategoryID]; !ok {
			seen[r.CategoryID] = struct{}{}
			ids = append(ids, r.CategoryID)
		}
	}
	cats, err := st.Categories.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[int64]*domain.CategoryRef, len(cats))
	for _, c := range cats {
		byID[c.ID] = &domain.CategoryRef{ID: c.ID, Name: c.Name, Alias: c.Alias}
	}
	for _, r := range rows {
		r.Category = byID[r.CategoryID]
		if r.Images == nil {
			r.Images = []domain.ProductImage{}
		}
	}
	return nil
}
