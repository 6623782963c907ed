package repository

import (
	"context"
	"errors"
	"time"

	"github.com/karadag/storefront/internal/domain"
)

var (
	// ErrNotFound the requested row/document does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate a unique key constraint was violated
	ErrDuplicate = errors.New("duplicate key")
)

// CategoryRepository handles persistence of catalog categories
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	GetByAlias(ctx context.Context, alias string) (*domain.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByAlias(ctx context.Context, alias string) (bool, error)
	// List returns all categories sorted by name ascending
	List(ctx context.Context) ([]*domain.Category, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*domain.Category, error)
}

// ProductFilter selects products for listing
type ProductFilter struct {
	CategoryID *int64
	Search     string // case-insensitive substring over name and description
	Active     *bool // nil matches both
	Limit      int // <= 0 means unlimited
	Offset     int
	SortField  string // whitelisted column, defaults to created_at
	SortDesc   bool
}

// ProductRepository handles persistence of catalog products
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// ExistsBySKU checks the sku against all products except excludeID
	ExistsBySKU(ctx context.Context, sku string, excludeID int64) (bool, error)
	// List returns the matching page and the count of all matches
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int64, error)
}

// CartRepository handles persistence of the one-per-user carts
type CartRepository interface {
	GetByUser(ctx context.Context, userID int64) (*domain.Cart, error)
	// Create fails with ErrDuplicate when the user already has a cart
	Create(ctx context.Context, c *domain.Cart) error
	// Save replaces the stored cart atomically
	Save(ctx context.Context, c *domain.Cart) error
}

// UserRepository handles persistence of accounts
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// List returns all users, newest first
	List(ctx context.Context) ([]*domain.User, error)
}

// OprLogRepository handles the operator audit log
type OprLogRepository interface {
	Create(ctx context.Context, log *domain.SysOprLog) error
	// List returns the newest logs first
	List(ctx context.Context, limit int) ([]*domain.SysOprLog, error)
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}

// Stores bundles one backend's repositories
type Stores struct {
	Categories CategoryRepository
	Products   ProductRepository
	Carts      CartRepository
	Users      UserRepository
	OprLogs    OprLogRepository

	// Migrate creates tables/collections and indexes
	Migrate func(ctx context.Context) error
	// Drop removes all storefront data, used by initdb
	Drop func(ctx context.Context) error
	// Close releases the underlying connection
	Close func(ctx context.Context) error
}

// Bool returns a pointer to b, for ProductFilter.Active
func Bool(b bool) *bool {
	return &b
}

// Provider hands out the process-wide stores, opening them on first use
type Provider interface {
	Stores(ctx context.Context) (*Stores, error)
}

// Stores lets an already opened set of stores act as its own Provider
func (s *Stores) Stores(context.Context) (*Stores, error) {
	return s, nil
}

// ProductSortColumns whitelist of sortable product columns
var ProductSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"price":      "price",
	"quantity":   "quantity",
	"sku":        "sku",
	"created_at": "created_at",
	"updated_at": "updated_at",
}
