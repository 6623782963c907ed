package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/karadag/storefront/internal/domain"
)

// GormUserRepository is the GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

func (r *GormUserRepository) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error, "create user")
}

func (r *GormUserRepository) Update(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error, "update user")
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err, "get user")
	}
	return &u, nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, "get user by email")
	}
	return &u, nil
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, translate(err, "count users")
}

func (r *GormUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows := []*domain.User{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return rows, nil
}

// GormOprLogRepository is the GORM implementation of OprLogRepository
type GormOprLogRepository struct {
	db *gorm.DB
}

func (r *GormOprLogRepository) Create(ctx context.Context, log *domain.SysOprLog) error {
	return translate(r.db.WithContext(ctx).Create(log).Error, "create oprlog")
}

func (r *GormOprLogRepository) List(ctx context.Context, limit int) ([]*domain.SysOprLog, error) {
	rows := []*domain.SysOprLog{}
	query := r.db.WithContext(ctx).Order("opt_time DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, translate(err, "list oprlogs")
	}
	return rows, nil
}

func (r *GormOprLogRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("opt_time < ?", t).Delete(&domain.SysOprLog{})
	return res.RowsAffected, translate(res.Error, "purge oprlogs")
}
