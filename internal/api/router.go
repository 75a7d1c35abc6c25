package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/St1cky1/task-manager/internal/api/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Deps struct {
	Tasks      handlers.TaskService
	Categories handlers.CategoryService
	Auth       handlers.AuthService
	Assist     handlers.AssistService
	DB         handlers.Pinger
}

type Options struct {
	Timeout     time.Duration
	CORSOrigins []string
}

func NewRouter(log *slog.Logger, deps Deps, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	taskHandler := handlers.NewTaskHandler(log, deps.Tasks)
	categoryHandler := handlers.NewCategoryHandler(log, deps.Categories)
	authHandler := handlers.NewAuthHandler(log, deps.Auth)
	assistHandler := handlers.NewAssistHandler(log, deps.Assist)

	r.Route("/api", func(r chi.Router) {
		if deps.DB != nil {
			r.Get("/ping", handlers.NewPingHandler(log, deps.DB))
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Put("/", taskHandler.UpdateTask)
			r.Delete("/", taskHandler.DeleteTask)
			r.Get("/search", taskHandler.SearchTasks)
			r.Get("/filter", taskHandler.FilterTasks)
			r.Route("/{id}", func(r chi.Router) {
				r.Put("/status", taskHandler.UpdateStatus)
				r.Put("/category", taskHandler.UpdateCategory)
				r.Put("/toggle", taskHandler.ToggleCompleted)
				r.Get("/history", taskHandler.TaskHistory)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/", authHandler.Register)
			r.Put("/", authHandler.Login)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.ListCategories)
			r.Post("/", categoryHandler.CreateCategory)
		})

		r.Route("/assist", func(r chi.Router) {
			r.Post("/description", assistHandler.Describe)
			r.Post("/recommendations", assistHandler.Recommend)
		})
	})

	return r
}

// requestLogger пишет одну строку slog на запрос
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
