package auth

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/spf13/cast"

	"github.com/karadag/storefront/internal/domain"
)

// Session keys written at login
const (
	SessionUserID = "user_id"
	SessionRole   = "role"
)

// Mechanism resolves a principal from one kind of credential.
// ok is false when the request carries no usable credential of that kind.
type Mechanism interface {
	Resolve(r *http.Request) (p *domain.Principal, ok bool)
}

// Gate tries each mechanism in order and fails Unauthenticated when none resolves
type Gate struct {
	mechanisms []Mechanism
}

func NewGate(mechanisms ...Mechanism) *Gate {
	return &Gate{mechanisms: mechanisms}
}

func (g *Gate) Resolve(r *http.Request) (*domain.Principal, error) {
	for _, m := range g.mechanisms {
		if p, ok := m.Resolve(r); ok {
			return p, nil
		}
	}
	return nil, domain.Unauthenticated("Authentication required")
}

// BearerMechanism reads "Authorization: Bearer <jwt>"
type BearerMechanism struct {
	Tokens *TokenIssuer
}

func (b BearerMechanism) Resolve(r *http.Request) (*domain.Principal, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return nil, false
	}
	p, err := b.Tokens.Verify(strings.TrimSpace(header[7:]))
	if err != nil {
		return nil, false
	}
	return p, true
}

// SessionMechanism reads the principal stored in the login session cookie
type SessionMechanism struct {
	Store sessions.Store
	Name  string
}

func (s SessionMechanism) Resolve(r *http.Request) (*domain.Principal, bool) {
	if s.Store == nil {
		return nil, false
	}
	sess, err := s.Store.Get(r, s.Name)
	if err != nil || sess.IsNew {
		return nil, false
	}
	uid := cast.ToInt64(sess.Values[SessionUserID])
	role := domain.Role(cast.ToString(sess.Values[SessionRole]))
	if uid == 0 || !role.Valid() {
		return nil, false
	}
	return &domain.Principal{UserID: uid, Role: role}, true
}
