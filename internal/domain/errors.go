package domain

import "errors"

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams  = errors.New("bad_params")   // 400
	ErrUnauth     = errors.New("unauthorized") // 401
	ErrNotFound   = errors.New("not_found")    // 404
	ErrUnexpected = errors.New("unexpected")   // 500
)

// Ошибки верификации токена. Наружу все превращаются в 401,
// но middleware различает их ради текста ответа.
var (
	ErrTokenExpired     = errors.New("token_expired")
	ErrTokenInvalid     = errors.New("token_invalid")
	ErrIdentityMismatch = errors.New("identity_mismatch")
)
