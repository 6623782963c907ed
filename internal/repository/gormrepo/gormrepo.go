// Package gormrepo implements the storefront repositories on gorm (postgres or sqlite).
package gormrepo

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
)

// New returns gorm backed stores. The handle should be opened with TranslateError enabled.
func New(db *gorm.DB) *repository.Stores {
	return &repository.Stores{
		Categories: &GormCategoryRepository{db: db},
		Products:   &GormProductRepository{db: db},
		Carts:      &GormCartRepository{db: db},
		Users:      &GormUserRepository{db: db},
		OprLogs:    &GormOprLogRepository{db: db},
		Migrate: func(ctx context.Context) error {
			if err := db.WithContext(ctx).Migrator().AutoMigrate(domain.Tables...); err != nil {
				return err
			}
			return backfillSearchText(ctx, db)
		},
		Drop: func(ctx context.Context) error {
			return db.WithContext(ctx).Migrator().DropTable(domain.Tables...)
		},
		Close: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// translate maps gorm errors onto the repository sentinels
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return pkgerrors.Wrap(repository.ErrDuplicate, err.Error())
	default:
		return pkgerrors.Wrap(err, op)
	}
}

// isUniqueViolation catches drivers that do not support error translation
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// searchProducts matches q case-insensitively in name or description. Postgres
// folds case itself with ILIKE; sqlite LOWER only folds ASCII, so there the
// query runs against search_text, folded in Go on every write.
func searchProducts(db *gorm.DB, q string) *gorm.DB {
	if strings.EqualFold(db.Name(), "postgres") {
		pattern := "%" + escapeLike(q) + "%"
		return db.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return db.Where("search_text LIKE ? ESCAPE '\\'", "%"+escapeLike(domain.FoldText(q))+"%")
}

// backfillSearchText fills search_text for rows written before the column existed
func backfillSearchText(ctx context.Context, db *gorm.DB) error {
	var rows []*domain.Product
	return db.WithContext(ctx).
		Where("search_text IS NULL OR search_text = ''").
		FindInBatches(&rows, 200, func(tx *gorm.DB, _ int) error {
			for _, p := range rows {
				p.RefreshSearchText()
				err := tx.Model(&domain.Product{}).Where("id = ?", p.ID).
					UpdateColumn("search_text", p.SearchText).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}

// escapeLike makes % and _ in user input literal
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
