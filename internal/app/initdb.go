package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/pkg/common"
)

// checkSuper creates or repairs the bootstrap admin account
func (a *Application) checkSuper(ctx context.Context) {
	email := a.appConfig.Auth.AdminEmail
	created, err := a.authService.EnsureAdmin(ctx, email, a.appConfig.Auth.AdminPassword)
	switch {
	case err != nil:
		zap.L().Error("failed to ensure admin account", zap.String("email", email), zap.Error(err))
	case created:
		zap.L().Info("initialized default admin account", zap.String("email", email))
	}
}

type seedCategory struct {
	Name        string
	Alias       string
	Description string
	Photo       string
}

type seedProduct struct {
	Name        string
	Description string
	Quantity    int
	Weight      float64
	Price       string
	SKU         string
	Category    int // index into defaultCategories
}

const seedImageBase = "https://images.unsplash.com/"

var defaultCategories = []seedCategory{
	{Name: "Kırmızı Biber", Alias: "red-pepper", Description: "Taze ve aromalı kırmızı biber çeşitleri", Photo: "photo-1583566278430-f33f7ee8f6c9"},
	{Name: "Karabiber", Alias: "black-pepper", Description: "Öğütülmüş ve tane karabiber", Photo: "photo-1599660675805-2603904dd562"},
	{Name: "Kimyon", Alias: "cumin", Description: "Kaliteli kimyon çeşitleri", Photo: "photo-1596040033229-a0b7e0b2e4a7"},
	{Name: "Sumak", Alias: "sumac", Description: "Ekşi ve aromalı sumak", Photo: "photo-1599909533113-d2b0e5f7bfa3"},
	{Name: "Kekik", Alias: "thyme", Description: "Doğal kekik yaprakları", Photo: "photo-1608481337062-7d59f6dadd1f"},
	{Name: "Pul Biber", Alias: "chili-flakes", Description: "Acı ve lezzetli pul biber", Photo: "photo-1583324113626-70df0f4deaab"},
}

var defaultProducts = []seedProduct{
	{Name: "Maras Kırmızı Biber - 100gr", Description: "Geleneksel Maraş usulü kırmızı biber. Orta acılıkta, aromalı.", Quantity: 50, Weight: 100, Price: "45.00", SKU: "MRB-100", Category: 0},
	{Name: "Urfa Kırmızı Biber - 250gr", Description: "Isot olarak da bilinen Urfa biberi. Hafif tatlı ve dumanlı aroma.", Quantity: 30, Weight: 250, Price: "95.00", SKU: "URB-250", Category: 0},
	{Name: "Tane Karabiber - 50gr", Description: "Öğütülmemiş, taze karabiber taneleri. Yoğun aroma.", Quantity: 40, Weight: 50, Price: "35.00", SKU: "TKB-50", Category: 1},
	{Name: "Öğütülmüş Karabiber - 100gr", Description: "Taze öğütülmüş karabiber. Mutfağınızın vazgeçilmezi.", Quantity: 60, Weight: 100, Price: "50.00", SKU: "OKB-100", Category: 1},
	{Name: "Tane Kimyon - 100gr", Description: "Doğal ve aromalı kimyon taneleri.", Quantity: 45, Weight: 100, Price: "40.00", SKU: "TKY-100", Category: 2},
	{Name: "Sumak - 150gr", Description: "Ekşi ve ferahlatıcı sumak. Salatalar için ideal.", Quantity: 35, Weight: 150, Price: "55.00", SKU: "SMK-150", Category: 3},
}

// SeedCatalog inserts the sample categories and products; existing rows
// (matched by alias and SKU) are left untouched.
func (a *Application) SeedCatalog(ctx context.Context) error {
	st, err := a.Stores(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	catIDs := make([]int64, len(defaultCategories))
	for i, sc := range defaultCategories {
		cat, err := st.Categories.GetByAlias(ctx, sc.Alias)
		if err == nil {
			catIDs[i] = cat.ID
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		cat = &domain.Category{
			ID:          common.UUIDint64(),
			Name:        sc.Name,
			Alias:       sc.Alias,
			ImageURL:    seedImageBase + sc.Photo + "?w=400",
			Description: sc.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := st.Categories.Create(ctx, cat); err != nil {
			return err
		}
		catIDs[i] = cat.ID
		zap.L().Info("initialized default category", zap.String("alias", sc.Alias))
	}

	for i, sp := range defaultProducts {
		exists, err := st.Products.ExistsBySKU(ctx, sp.SKU, 0)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		created := now.Add(time.Duration(i) * time.Second)
		p := &domain.Product{
			ID:          common.UUIDint64(),
			Name:        sp.Name,
			Description: sp.Description,
			Quantity:    sp.Quantity,
			Weight:      sp.Weight,
			Price:       decimal.RequireFromString(sp.Price),
			SKU:         sp.SKU,
			CategoryID:  catIDs[sp.Category],
			Images: []domain.ProductImage{{
				ImageURL: seedImageBase + defaultCategories[sp.Category].Photo + "?w=600",
				Type:     "image/jpeg",
			}},
			IsActive:  true,
			CreatedAt: created,
			UpdatedAt: created,
		}
		if err := st.Products.Create(ctx, p); err != nil {
			return err
		}
		zap.L().Info("initialized default product", zap.String("sku", sp.SKU))
	}
	return nil
}
