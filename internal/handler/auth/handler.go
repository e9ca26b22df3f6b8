package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/promptly-app/promptly/backend/internal/model/user"
	"github.com/promptly-app/promptly/backend/internal/service/account"
	"github.com/promptly-app/promptly/backend/internal/token"
	"github.com/promptly-app/promptly/backend/pkg/utils"
)

// Handler 认证相关的HTTP处理器
type Handler struct {
	accounts *account.Service
	tokens   *token.Manager
}

// New 创建认证处理器
func New(accounts *account.Service, tokens *token.Manager) *Handler {
	return &Handler{
		accounts: accounts,
		tokens:   tokens,
	}
}

// RegisterRoutes 注册认证相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
}

type authResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// handleSignup 用户注册
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	created, err := h.accounts.Signup(r.Context(), payload.Email, payload.Password, payload.FirstName, payload.LastName)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	signed, err := h.tokens.Issue(created.UID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, authResponse{Token: signed, User: created})
}

// handleLogin 用户登录
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	logged, err := h.accounts.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	signed, err := h.tokens.Issue(logged.UID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, authResponse{Token: signed, User: logged})
}
