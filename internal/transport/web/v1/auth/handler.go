package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/logx"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/mw"
	v1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1"
)

type Handler struct {
	Log    *log.Logger
	Admin  domain.CredentialVerifier
	Tokens domain.TokenManager
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    userInfo `json:"user"`
}

// Login выдаёт JWT по статической админ-паре. Какое поле неверно —
// не сообщаем.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "auth.login"
	reqID := mw.RequestIDFromCtx(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		logx.Error(h.Log, reqID, op, "empty username or password", domain.ErrBadParams)
		v1.WriteError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if !h.Admin.Verify(req.Username, req.Password) {
		logx.Error(h.Log, reqID, op, "verify failed", domain.ErrUnauth, "username", req.Username)
		v1.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, claims, err := h.Tokens.Issue(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue token failed", err)
		v1.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "username", claims.Username)
	v1.WriteJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    userInfo{Username: claims.Username, Role: claims.Role},
	})
}

// Verify отвечает за уже прошедший RequireAuth запрос
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := domain.ClaimsFromCtx(r.Context())
	if !ok {
		v1.WriteError(w, http.StatusUnauthorized, "Token required")
		return
	}
	v1.WriteJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  userInfo{Username: claims.Username, Role: claims.Role},
	})
}

// Logout stateless: токен выбрасывает клиент
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	v1.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
