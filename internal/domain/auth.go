package domain

import (
	"context"
	"time"
)

// В системе ровно одна привилегированная учётка (single-tenant trust model):
// админ задаётся конфигурацией, таблицы пользователей нет.

const RoleAdmin = "admin"

type TokenClaims struct {
	JTI       string
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Управление токенами (JWT, реализация в internal/auth/token)
type TokenManager interface {
	Issue(ctx context.Context) (string, TokenClaims, error)
	Parse(ctx context.Context, raw string) (TokenClaims, error)
}

// Проверка статической админ-пары логин/пароль
type CredentialVerifier interface {
	Verify(username, password string) bool
}
