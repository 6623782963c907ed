package gormrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/internal/repository/repotest"
	"github.com/karadag/storefront/pkg/common"
)

func seedProduct(t *testing.T, stores *repository.Stores, name, desc string, catID int64, active bool, created time.Time) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:          common.UUIDint64(),
		Name:        name,
		Description: desc,
		Quantity:    10,
		Weight:      100,
		Price:       decimal.RequireFromString("12.50"),
		SKU:         common.GenerateSKU(created) + name,
		CategoryID:  catID,
		Images:      []domain.ProductImage{{ImageURL: "https://img/" + name + ".jpg"}},
		IsActive:    active,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, stores.Products.Create(context.Background(), p))
	return p
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	stores := repotest.NewStores(t)

	for _, name := range []string{"Sumak", "Kimyon", "Karabiber"} {
		require.NoError(t, stores.Categories.Create(ctx, &domain.Category{
			ID: common.UUIDint64(), Name: name, Alias: "alias-" + name,
		}))
	}

	rows, err := stores.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Karabiber", rows[0].Name)
	assert.Equal(t, "Sumak", rows[2].Name)

	exists, err := stores.Categories.ExistsByName(ctx, "Kimyon")
	require.NoError(t, err)
	assert.True(t, exists)

	err = stores.Categories.Create(ctx, &domain.Category{ID: common.UUIDint64(), Name: "Kimyon", Alias: "other"})
	assert.True(t, errors.Is(err, repository.ErrDuplicate), "%v", err)

	_, err = stores.Categories.GetByAlias(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	byID, err := stores.Categories.ListByIDs(ctx, []int64{rows[0].ID, rows[1].ID})
	require.NoError(t, err)
	assert.Len(t, byID, 2)
}

func TestProductListFilters(t *testing.T) {
	ctx := context.Background()
	stores := repotest.NewStores(t)
	now := time.Now()

	catA, catB := common.UUIDint64(), common.UUIDint64()
	seedProduct(t, stores, "Maras Biberi", "aci kirmizi", catA, true, now.Add(-3*time.Hour))
	seedProduct(t, stores, "Urfa Biberi", "isot", catA, true, now.Add(-2*time.Hour))
	seedProduct(t, stores, "Kekik", "100% thyme", catB, true, now.Add(-1*time.Hour))
	seedProduct(t, stores, "Eski Biber", "inactive", catA, false, now)

	rows, total, err := stores.Products.List(ctx, repository.ProductFilter{Active: repository.Bool(true), SortDesc: true})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 3)
	assert.Equal(t, "Kekik", rows[0].Name)
	assert.Equal(t, "Maras Biberi", rows[2].Name)

	rows, total, err = stores.Products.List(ctx, repository.ProductFilter{Active: repository.Bool(true), CategoryID: &catA, SortDesc: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = stores.Products.List(ctx, repository.ProductFilter{Active: repository.Bool(true), Search: "BIBER", SortDesc: true, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Urfa Biberi", rows[0].Name)

	// search matches description and treats % literally
	rows, _, err = stores.Products.List(ctx, repository.ProductFilter{Active: repository.Bool(true), Search: "100%"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Kekik", rows[0].Name)

	rows, total, err = stores.Products.List(ctx, repository.ProductFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, rows, 4)
}

func TestProductSearchFoldsTurkish(t *testing.T) {
	ctx := context.Background()
	stores := repotest.NewStores(t)
	now := time.Now()
	p := seedProduct(t, stores, "Öğütülmüş Karabiber - 100gr", "Çok taze", common.UUIDint64(), true, now)
	seedProduct(t, stores, "Isot", "URFA BİBERİ", common.UUIDint64(), true, now)

	tests := []struct {
		q    string
		want int
	}{
		{"Öğütülmüş", 1},
		{"öğütülmüş", 1},
		{"ÖĞÜTÜLMÜŞ", 1},
		{"çok", 1},
		{"ÇOK TAZE", 1},
		{"karabiber", 1},
		{"biberi", 1},
		{"URFA BIBERI", 1},
		{"ogutulmus", 0},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			rows, total, err := stores.Products.List(ctx, repository.ProductFilter{Search: tt.q})
			require.NoError(t, err)
			assert.EqualValues(t, tt.want, total)
			assert.Len(t, rows, tt.want)
		})
	}

	// renaming refreshes the folded text
	p.Name = "Tane Karabiber"
	require.NoError(t, stores.Products.Update(ctx, p))
	_, total, err := stores.Products.List(ctx, repository.ProductFilter{Search: "öğütülmüş"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	_, total, err = stores.Products.List(ctx, repository.ProductFilter{Search: "TANE"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestProductImagesRoundTrip(t *testing.T) {
	ctx := context.Background()
	stores := repotest.NewStores(t)
	p := seedProduct(t, stores, "Sumak", "eksi", common.UUIDint64(), true, time.Now())

	got, err := stores.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "https://img/Sumak.jpg", got.Images[0].ImageURL)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")))

	exists, err := stores.Products.ExistsBySKU(ctx, p.SKU, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = stores.Products.ExistsBySKU(ctx, p.SKU, 0)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCartRepository(t *testing.T) {
	ctx := context.Background()
	stores := repotest.NewStores(t)
	userID := common.UUIDint64()

	_, err := stores.Carts.GetByUser(ctx, userID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	cart := &domain.Cart{ID: common.UUIDint64(), UserID: userID, Items: []domain.CartItem{}}
	require.NoError(t, stores.Carts.Create(ctx, cart))

	err = stores.Carts.Create(ctx, &domain.Cart{ID: common.UUIDint64(), UserID: userID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	cart.Items = append(cart.Items, domain.CartItem{ProductID: 1, Name: "Kimyon", Price: decimal.RequireFromString("40"), Quantity: 2})
	cart.RecomputeTotal()
	require.NoError(t, stores.Carts.Save(ctx, cart))

	got, err := stores.Carts.GetByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(80)))
}

func TestUserAndOprLogRepository(t *testing.T) {
	ctx := context.Background()
	stores := repotest.NewStores(t)

	older := &domain.User{ID: common.UUIDint64(), Email: "a@x.com", Role: domain.RoleUser, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &domain.User{ID: common.UUIDint64(), Email: "b@x.com", Role: domain.RoleAdmin, CreatedAt: time.Now()}
	require.NoError(t, stores.Users.Create(ctx, older))
	require.NoError(t, stores.Users.Create(ctx, newer))

	users, err := stores.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b@x.com", users[0].Email)

	got, err := stores.Users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	require.NoError(t, stores.OprLogs.Create(ctx, &domain.SysOprLog{ID: common.UUIDint64(), OptAction: "old", OptTime: time.Now().AddDate(-2, 0, 0)}))
	require.NoError(t, stores.OprLogs.Create(ctx, &domain.SysOprLog{ID: common.UUIDint64(), OptAction: "new", OptTime: time.Now()}))

	n, err := stores.OprLogs.DeleteBefore(ctx, time.Now().AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	logs, err := stores.OprLogs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "new", logs[0].OptAction)
}
