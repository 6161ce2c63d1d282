package auth

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahim99035/portfolio-server/internal/auth/admin"
	"github.com/ibrahim99035/portfolio-server/internal/auth/token"
	"github.com/ibrahim99035/portfolio-server/internal/domain"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	hash, err := admin.HashSecret("s3cret")
	require.NoError(t, err)
	return &Handler{
		Log:    log.New(io.Discard, "", 0),
		Admin:  admin.New("admin", hash),
		Tokens: token.New("secret", "portfolio", "admin", time.Hour),
	}
}

func postLogin(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	rec := postLogin(h, `{"username":"admin","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Login successful", got.Message)
	assert.Equal(t, "admin", got.User.Username)
	assert.Equal(t, domain.RoleAdmin, got.User.Role)

	// выданный токен принимает сам менеджер
	claims, err := h.Tokens.Parse(context.Background(), got.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestLogin_WrongCredentials(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	for name, body := range map[string]string{
		"wrong password": `{"username":"admin","password":"guess"}`,
		"wrong username": `{"username":"root","password":"s3cret"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postLogin(h, body)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	for name, body := range map[string]string{
		"empty password": `{"username":"admin"}`,
		"empty body":     `{}`,
		"bad json":       `{not json`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := postLogin(h, body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"Username and password are required"}`, rec.Body.String())
		})
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify", nil)
	req = req.WithContext(domain.WithClaims(req.Context(), domain.TokenClaims{
		Username: "admin", Role: domain.RoleAdmin,
	}))
	rec := httptest.NewRecorder()
	h.Verify(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Valid bool `json:"valid"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, "admin", got.User.Username)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	h := newHandler(t)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Logged out successfully"}`, rec.Body.String())
}
