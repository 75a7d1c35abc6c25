package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-manager/internal/api/res"
	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/go-chi/chi/v5/middleware"
)

// WriteErr переводит доменные ошибки в HTTP-статус; причина 500 только в лог
func WriteErr(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidTaskData),
		errors.Is(err, entity.ErrInvalidCategoryData),
		errors.Is(err, entity.ErrInvalidUserData):
		// причина нарушения ограничения БД не уходит клиенту
		var withCause interface{ Cause() error }
		if errors.As(err, &withCause) {
			log.Warn("request rejected",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"cause", withCause.Cause(),
			)
		}
		res.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrCategoryNotFound):
		res.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, entity.ErrUserAlreadyExists),
		errors.Is(err, entity.ErrCategoryAlreadyExists):
		res.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, entity.ErrInvalidCredentials):
		res.Error(w, "Invalid username or password", http.StatusUnauthorized)
	case errors.Is(err, entity.ErrAssistUnavailable):
		res.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		res.Error(w, "internal error", http.StatusInternalServerError)
	}
}
