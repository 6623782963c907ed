package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
)

// productPatch fields a PUT /products/:id body may change; nil means untouched
type productPatch struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	Quantity    *int                   `json:"quantity"`
	Weight      *float64               `json:"weight"`
	Price       *decimal.Decimal       `json:"price"`
	SKU         *string                `json:"sku"`
	CategoryID  *int64                 `json:"category_id"`
	Images      *[]domain.ProductImage `json:"images"`
	IsActive    *bool                  `json:"is_active"`
}

// keys clients echo back from a GET that are silently ignored
var readOnlyProductKeys = []string{"id", "created_at", "updated_at", "category"}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	}
	return data, nil
}

func decodeProductPatch(raw map[string]interface{}) (*productPatch, error) {
	for _, k := range readOnlyProductKeys {
		delete(raw, k)
	}
	patch := &productPatch{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       decimalHook,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           patch,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, err
	}
	return patch, nil
}

// UpdateProduct applies a partial update; only the keys present in raw change
func (s *Service) UpdateProduct(ctx context.Context, p *domain.Principal, id int64, raw map[string]interface{}) (*domain.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	patch, err := decodeProductPatch(raw)
	if err != nil {
		return nil, domain.ValidationFailed(err.Error())
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

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" || len(name) > 200 {
			return nil, domain.ValidationFailed("name must be 1-200 characters")
		}
		prod.Name = name
	}
	if patch.Description != nil {
		desc := strings.TrimSpace(*patch.Description)
		if desc == "" {
			return nil, domain.ValidationFailed("description is required")
		}
		prod.Description = desc
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return nil, domain.ValidationFailed("quantity must not be negative")
		}
		prod.Quantity = *patch.Quantity
	}
	if patch.Weight != nil {
		if *patch.Weight <= 0 {
			return nil, domain.ValidationFailed("weight must be greater than zero")
		}
		prod.Weight = *patch.Weight
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, domain.ValidationFailed("price must not be negative")
		}
		prod.Price = patch.Price.Round(2)
	}
	if patch.CategoryID != nil && *patch.CategoryID != prod.CategoryID {
		if _, err := st.Categories.GetByID(ctx, *patch.CategoryID); errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("Category not found")
		} else if err != nil {
			return nil, domain.Unexpected(err)
		}
		prod.CategoryID = *patch.CategoryID
	}
	if patch.SKU != nil {
		sku := NormalizeSKU(*patch.SKU)
		if sku == "" {
			return nil, domain.ValidationFailed("sku must not be empty")
		}
		if sku != prod.SKU {
			exists, err := st.Products.ExistsBySKU(ctx, sku, prod.ID)
			if err != nil {
				return nil, domain.Unexpected(err)
			}
			if exists {
				return nil, domain.ValidationFailed("SKU is already used by another product")
			}
			prod.SKU = sku
		}
	}
	if patch.Images != nil {
		prod.Images = *patch.Images
		if prod.Images == nil {
			prod.Images = []domain.ProductImage{}
		}
	}
	if patch.IsActive != nil {
		prod.IsActive = *patch.IsActive
	}
	prod.UpdatedAt = time.Now()

	if err := st.Products.Update(ctx, prod); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ValidationFailed("SKU is already used by another product")
		}
		return nil, domain.Unexpected(err)
	}
	if err := attachCategories(ctx, st, []*domain.Product{prod}); err != nil {
		return nil, domain.Unexpected(err)
	}
	s.publish(ctx, domain.TopicProductUpdated, p, fmt.Sprintf("update product %s (%s)", prod.Name, prod.SKU))
	return prod, nil
}
