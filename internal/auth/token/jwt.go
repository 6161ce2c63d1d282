package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

type Manager struct {
	secret []byte
	issuer string
	admin  string // единственная допустимая identity
	ttl    time.Duration
}

func New(secret, issuer, admin string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, admin: admin, ttl: ttl}
}

// внутренний тип для подписи/парсинга с jwt.RegisteredClaims
type jwtClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Ensure: Manager implements domain.TokenManager
var _ domain.TokenManager = (*Manager)(nil)

// Issue выпускает JWT для админа (24h по умолчанию из конфига)
func (m *Manager) Issue(_ context.Context) (string, domain.TokenClaims, error) {
	now := time.Now().UTC()
	jti := uuid.NewString()

	cl := jwtClaims{
		Username: m.admin,
		Role:     domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   m.admin,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	tokenStr, err := t.SignedString(m.secret)
	if err != nil {
		return "", domain.TokenClaims{}, err
	}

	return tokenStr, domain.TokenClaims{
		JTI:       cl.ID,
		Username:  cl.Username,
		Role:      cl.Role,
		IssuedAt:  cl.IssuedAt.Time,
		ExpiresAt: cl.ExpiresAt.Time,
	}, nil
}

// Parse валидирует подпись/сроки и сверяет identity с настроенным админом
func (m *Manager) Parse(_ context.Context, raw string) (domain.TokenClaims, error) {
	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(raw, &out, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.TokenClaims{}, domain.ErrTokenExpired
		}
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	if !tkn.Valid {
		return domain.TokenClaims{}, domain.ErrTokenInvalid
	}
	if out.Username != m.admin {
		return domain.TokenClaims{}, domain.ErrIdentityMismatch
	}

	return domain.TokenClaims{
		JTI:       out.ID,
		Username:  out.Username,
		Role:      out.Role,
		IssuedAt:  out.IssuedAt.Time,
		ExpiresAt: out.ExpiresAt.Time,
	}, nil
}
