package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-manager/internal/api/res"
)

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

func NewPingHandler(log *slog.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			log.Warn("health check failed", "error", err)
			res.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		res.Json(w, map[string]string{"status": "ok"}, http.StatusOK)
	}
}
