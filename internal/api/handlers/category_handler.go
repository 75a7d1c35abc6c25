package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-manager/internal/api/res"
	"github.com/St1cky1/task-manager/internal/entity"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
}

type CategoryHandler struct {
	log             *slog.Logger
	categoryService CategoryService
}

func NewCategoryHandler(log *slog.Logger, categoryService CategoryService) *CategoryHandler {
	return &CategoryHandler{
		log:             log,
		categoryService: categoryService,
	}
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, items, http.StatusOK)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req entity.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	c, err := h.categoryService.CreateCategory(r.Context(), &req)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, c, http.StatusCreated)
}
