package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/pkg/common"
)

// RegisterInput self-service sign up payload
type RegisterInput struct {
	FirstName string `json:"first_name" validate:"required,max=50"`
	LastName  string `json:"last_name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Phone     string `json:"phone" validate:"required,max=32"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   int64        `json:"expires_at"` // unix ms
	User        *domain.User `json:"user"`
}

// Service account registration, login and the admin user listing
type Service struct {
	stores   repository.Provider
	tokens   *TokenIssuer
	validate *validator.Validate
}

func NewService(stores repository.Provider, tokens *TokenIssuer) *Service {
	return &Service{stores: stores, tokens: tokens, validate: validator.New()}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := s.validate.Struct(&in); err != nil {
		return nil, domain.ValidationFailed(common.ValidationMessage(err))
	}

	st, err := s.stores.Stores(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	exists, err := st.Users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	if exists {
		return nil, domain.ValidationFailed("Email address is already registered")
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	now := time.Now()
	u := &domain.User{
		ID:        common.UUIDint64(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  hashed,
		Phone:     strings.TrimSpace(in.Phone),
		Role:      domain.RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ValidationFailed("Email address is already registered")
		}
		return nil, domain.Unexpected(err)
	}
	zap.L().Info("user registered", zap.Int64("user_id", u.ID), zap.String("email", u.Email))
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ValidationFailed("Email and password are required")
	}
	st, err := s.stores.Stores(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	u, err := st.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.Unauthenticated("Invalid email or password")
	} else if err != nil {
		return nil, domain.Unexpected(err)
	}
	if !u.IsActive {
		return nil, domain.Forbidden("Account is deactivated")
	}
	if !CheckPassword(u.Password, password) {
		return nil, domain.Unauthenticated("Invalid email or password")
	}

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	now := time.Now()
	u.LastLogin = &now
	if err := st.Users.Update(ctx, u); err != nil {
		zap.L().Warn("failed to record last login", zap.Int64("user_id", u.ID), zap.Error(err))
	}
	return &LoginResult{AccessToken: token, ExpiresAt: expires.UnixMilli(), User: u}, nil
}

// ListUsers returns every account newest first; admin only
func (s *Service) ListUsers(ctx context.Context, p *domain.Principal) ([]*domain.User, error) {
	if p == nil {
		return nil, domain.Unauthenticated("Authentication required")
	}
	if !p.IsAdmin() {
		return nil, domain.Forbidden("Admin role required")
	}
	st, err := s.stores.Stores(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	users, err := st.Users.List(ctx)
	if err != nil {
		return nil, domain.Unexpected(err)
	}
	return users, nil
}

// EnsureAdmin creates the bootstrap admin account, or repairs its role and
// active flag when the account already exists. created reports a new insert.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	st, err := s.stores.Stores(ctx)
	if err != nil {
		return false, err
	}
	u, err := st.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		hashed, err := HashPassword(password)
		if err != nil {
			return false, err
		}
		now := time.Now()
		err = st.Users.Create(ctx, &domain.User{
			ID:              common.UUIDint64(),
			FirstName:       "Admin",
			LastName:        "Karadağ",
			Email:           email,
			Password:        hashed,
			Phone:           "05551234567",
			Role:            domain.RoleAdmin,
			IsActive:        true,
			IsVerified:      true,
			EmailVerifiedAt: &now,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		return err == nil, err
	case err != nil:
		return false, err
	}

	if u.Role == domain.RoleAdmin && u.IsActive && strings.TrimSpace(u.Password) != "" {
		return false, nil
	}
	if strings.TrimSpace(u.Password) == "" {
		if u.Password, err = HashPassword(password); err != nil {
			return false, err
		}
	}
	u.Role = domain.RoleAdmin
	u.IsActive = true
	u.UpdatedAt = time.Now()
	return false, st.Users.Update(ctx, u)
}
