package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	excelize "github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
)

// AdminProductQuery back-office listing: inactive products included, paged and sortable
type AdminProductQuery struct {
	Page     int
	PageSize int
	Q        string
	Sort     string // one of repository.ProductSortColumns
	Order    string // ASC or DESC
	Active   *bool
}

// AdminListProducts returns one page of products and the count of all matches
func (s *Service) AdminListProducts(ctx context.Context, p *domain.Principal, q AdminProductQuery) ([]*domain.Product, int64, error) {
	if err := requireAdmin(p); err != nil {
		return nil, 0, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 500 {
		q.PageSize = 20
	}
	st, err := s.open(ctx)
	if err != nil {
		return nil, 0, err
	}
	filter := repository.ProductFilter{
		Search:    strings.TrimSpace(q.Q),
		Limit:     q.PageSize,
		Offset:    (q.Page - 1) * q.PageSize,
		SortField: q.Sort,
		SortDesc:  !strings.EqualFold(q.Order, "ASC"),
		Active:    q.Active,
	}
	if _, ok := repository.ProductSortColumns[filter.SortField]; !ok {
		filter.SortField = "created_at"
	}
	rows, total, err := st.Products.List(ctx, filter)
	if err != nil {
		return nil, 0, domain.Unexpected(err)
	}
	if err := attachCategories(ctx, st, rows); err != nil {
		return nil, 0, domain.Unexpected(err)
	}
	return rows, total, nil
}

// Dashboard summary figures for the admin home page
type Dashboard struct {
	Products         int64           `json:"products"`
	ActiveProducts   int64           `json:"active_products"`
	InactiveProducts int64           `json:"inactive_products"`
	Categories       int             `json:"categories"`
	Users            int             `json:"users"`
	TotalStock       int64           `json:"total_stock"`
	StockValue       decimal.Decimal `json:"stock_value"`
	LowStock         int             `json:"low_stock"`
	PriceMean        float64         `json:"price_mean"`
	PriceMedian      float64         `json:"price_median"`
	PriceMax         float64         `json:"price_max"`
}

// LowStockThreshold products with fewer units are counted as low stock
const LowStockThreshold = 10

func (s *Service) Dashboard(ctx context.Context, p *domain.Principal) (*Dashboard, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	st, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	rows, total, err := st.Products.List(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	cats, err := st.Categories.List(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	users, err := st.Users.List(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}

	d := &Dashboard{Products: total, Categories: len(cats), Users: len(users), StockValue: decimal.Zero}
	prices := make(stats.Float64Data, 0, len(rows))
	for _, r := range rows {
		if !r.IsActive {
			d.InactiveProducts++
			continue
		}
		d.ActiveProducts++
		d.TotalStock += int64(r.Quantity)
		d.StockValue = d.StockValue.Add(r.Price.Mul(decimal.NewFromInt(int64(r.Quantity))))
		if r.Quantity < LowStockThreshold {
			d.LowStock++
		}
		prices = append(prices, r.Price.InexactFloat64())
	}
	if len(prices) > 0 {
		d.PriceMean, _ = prices.Mean()
		d.PriceMedian, _ = prices.Median()
		d.PriceMax, _ = prices.Max()
		d.PriceMean, _ = stats.Round(d.PriceMean, 2)
	}
	return d, nil
}

// ExportRow one line of the product export
type ExportRow struct {
	ID          string `csv:"id"`
	SKU         string `csv:"sku"`
	Name        string `csv:"name"`
	Category    string `csv:"category"`
	Price       string `csv:"price"`
	Quantity    int    `csv:"quantity"`
	Weight      string `csv:"weight"`
	IsActive    bool   `csv:"is_active"`
	Description string `csv:"description"`
	CreatedAt   string `csv:"created_at"`
}

var exportHeader = []string{"id", "sku", "name", "category", "price", "quantity", "weight", "is_active", "description", "created_at"}

// Export writes every product as csv or xlsx
func (s *Service) Export(ctx context.Context, p *domain.Principal, format string, w io.Writer) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		return domain.ValidationFailed("format must be csv or xlsx")
	}
	st, err := s.open(ctx)
	if err != nil {
		return err
	}
	rows, _, err := st.Products.List(ctx, repository.ProductFilter{SortField: "created_at", SortDesc: true})
	if err != nil {
		return domain.Unexpected(err)
	}
	if err := attachCategories(ctx, st, rows); err != nil {
		return domain.Unexpected(err)
	}

	out := make([]*ExportRow, 0, len(rows))
	for _, r := range rows {
		cat := ""
		if r.Category != nil {
			cat = r.Category.Name
		}
		out = append(out, &ExportRow{
			ID:          fmt.Sprintf("%d", r.ID),
			SKU:         r.SKU,
			Name:        r.Name,
			Category:    cat,
			Price:       r.Price.StringFixed(2),
			Quantity:    r.Quantity,
			Weight:      decimal.NewFromFloat(r.Weight).String(),
			IsActive:    r.IsActive,
			Description: r.Description,
			CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if format == "csv" {
		if err := gocsv.Marshal(out, w); err != nil {
			return domain.Unexpected(err)
		}
		return nil
	}
	return writeXlsx(out, w)
}

func writeXlsx(rows []*ExportRow, w io.Writer) error {
	const sheet = "Sheet1"
	f := excelize.NewFile()
	for i, h := range exportHeader {
		f.SetCellValue(sheet, cellName(i, 1), h)
	}
	for n, r := range rows {
		line := n + 2
		values := []interface{}{r.ID, r.SKU, r.Name, r.Category, r.Price, r.Quantity, r.Weight, r.IsActive, r.Description, r.CreatedAt}
		for i, v := range values {
			f.SetCellValue(sheet, cellName(i, line), v)
		}
	}
	if err := f.Write(w); err != nil {
		return domain.Unexpected(err)
	}
	return nil
}

// cellName maps a zero based column and a one based row to A1 notation
func cellName(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return fmt.Sprintf("%s%d", name, row)
}
