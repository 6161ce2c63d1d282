package domain

import "context"

// Ключ для хранения клеймов аутентифицированного админа в контексте запроса
type ctxKey int

const claimsCtxKey ctxKey = 1

func WithClaims(ctx context.Context, c TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

func ClaimsFromCtx(ctx context.Context) (TokenClaims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(TokenClaims)
	return c, ok
}
