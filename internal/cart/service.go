// Package cart implements the per-user shopping cart.
//
// A user has at most one cart. Every mutation loads the cart, edits its
// line list in memory, recomputes the total and saves the whole document.
// Concurrent mutations by the same user are last-writer-wins.
package cart

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/pkg/common"
	"github.com/karadag/storefront/pkg/metrics"
)

const (
	MetricItemAdded   = "storefront_cart_item_added"
	MetricItemRemoved = "storefront_cart_item_removed"
	MetricCleared     = "storefront_cart_cleared"
)

type Service struct {
	stores repository.Provider
}

func NewService(stores repository.Provider) *Service {
	return &Service{stores: stores}
}

func (s *Service) open(ctx context.Context, p *domain.Principal) (*repository.Stores, error) {
	if p == nil {
		return nil, domain.Unauthenticated("Authentication required")
	}
	st, err := s.stores.Stores(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	return st, nil
}

// load returns the caller's cart, or ErrNotFound wrapped as a domain error
func load(ctx context.Context, st *repository.Stores, userID int64) (*domain.Cart, error) {
	c, err := st.Carts.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFound("Cart not found")
	} else if err != nil {
		return nil, domain.Unexpected(err)
	}
	c.Normalize()
	return c, nil
}

func getOrCreate(ctx context.Context, st *repository.Stores, userID int64) (*domain.Cart, error) {
	c, err := st.Carts.GetByUser(ctx, userID)
	if err == nil {
		c.Normalize()
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Unexpected(err)
	}

	now := time.Now()
	c = &domain.Cart{
		ID:        common.UUIDint64(),
		UserID:    userID,
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.RecomputeTotal()
	err = st.Carts.Create(ctx, c)
	if errors.Is(err, repository.ErrDuplicate) {
		// another request created it first
		return load(ctx, st, userID)
	} else if err != nil {
		return nil, domain.Unexpected(err)
	}
	return c, nil
}

func persist(ctx context.Context, st *repository.Stores, c *domain.Cart) (*domain.Cart, error) {
	c.Normalize()
	c.RecomputeTotal()
	c.UpdatedAt = time.Now()
	if err := st.Carts.Save(ctx, c); err != nil {
		return nil, domain.Unexpected(err)
	}
	return c, nil
}

// Get returns the caller's cart, creating an empty one on first access
func (s *Service) Get(ctx context.Context, p *domain.Principal) (*domain.Cart, error) {
	st, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	return getOrCreate(ctx, st, p.UserID)
}

// AddItem adds quantity units of a product; nil quantity means one.
// An existing line is incremented and keeps the snapshot taken when it was first added.
func (s *Service) AddItem(ctx context.Context, p *domain.Principal, productID int64, quantity *int) (*domain.Cart, error) {
	st, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	qty := 1
	if quantity != nil {
		qty = *quantity
	}
	if qty < 1 {
		return nil, domain.ValidationFailed("Quantity must be at least 1")
	}

	prod, err := st.Products.GetByID(ctx, productID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.NotFound("Product not found")
	} else if err != nil {
		return nil, domain.Unexpected(err)
	}

	c, err := getOrCreate(ctx, st, p.UserID)
	if err != nil {
		return nil, err
	}
	if i := c.IndexOf(prod.ID); i >= 0 {
		if c.Items[i].Quantity > math.MaxInt-qty {
			return nil, domain.ValidationFailed("Quantity is too large")
		}
		c.Items[i].Quantity += qty
	} else {
		c.Items = append(c.Items, domain.CartItem{
			ProductID: prod.ID,
			Name:      prod.Name,
			Price:     prod.Price,
			Weight:    prod.Weight,
			ImageURL:  prod.FirstImageURL(),
			Quantity:  qty,
		})
	}
	c, err = persist(ctx, st, c)
	if err != nil {
		return nil, err
	}
	metrics.Incr(MetricItemAdded)
	zap.S().Debugf("cart %d: add product %d x%d", c.ID, prod.ID, qty)
	return c, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *Service) UpdateQuantity(ctx context.Context, p *domain.Principal, productID int64, quantity int) (*domain.Cart, error) {
	st, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	c, err := load(ctx, st, p.UserID)
	if err != nil {
		return nil, err
	}
	i := c.IndexOf(productID)
	if i < 0 {
		return nil, domain.NotFound("Product not found in cart")
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		metrics.Incr(MetricItemRemoved)
	} else {
		c.Items[i].Quantity = quantity
	}
	return persist(ctx, st, c)
}

// RemoveItem drops a line; removing a product that is not in the cart is a no-op
func (s *Service) RemoveItem(ctx context.Context, p *domain.Principal, productID int64) (*domain.Cart, error) {
	st, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	c, err := load(ctx, st, p.UserID)
	if err != nil {
		return nil, err
	}
	if c.IndexOf(productID) >= 0 {
		c.RemoveItem(productID)
		metrics.Incr(MetricItemRemoved)
	}
	return persist(ctx, st, c)
}

// Clear empties the cart but keeps it
func (s *Service) Clear(ctx context.Context, p *domain.Principal) (*domain.Cart, error) {
	st, err := s.open(ctx, p)
	if err != nil {
		return nil, err
	}
	c, err := load(ctx, st, p.UserID)
	if err != nil {
		return nil, err
	}
	c.Items = []domain.CartItem{}
	metrics.Incr(MetricCleared)
	return persist(ctx, st, c)
}
