package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-manager/internal/api/res"
	"github.com/St1cky1/task-manager/internal/entity"
)

type AuthService interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
}

type AuthHandler struct {
	log         *slog.Logger
	authService AuthService
}

func NewAuthHandler(log *slog.Logger, authService AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log,
		authService: authService,
	}
}

// POST /api/auth - регистрация
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	out, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, out, http.StatusCreated)
}

// PUT /api/auth - логин
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	out, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, out, http.StatusOK)
}
