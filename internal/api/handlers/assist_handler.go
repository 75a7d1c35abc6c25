package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/St1cky1/task-manager/internal/api/res"
)

type AssistService interface {
	SuggestDescription(ctx context.Context, title string) (string, error)
	Recommend(ctx context.Context) (string, error)
}

type AssistHandler struct {
	log           *slog.Logger
	assistService AssistService
}

func NewAssistHandler(log *slog.Logger, assistService AssistService) *AssistHandler {
	return &AssistHandler{
		log:           log,
		assistService: assistService,
	}
}

type describeRequest struct {
	Title string `json:"title"`
}

func (h *AssistHandler) Describe(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		res.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	text, err := h.assistService.SuggestDescription(r.Context(), req.Title)
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, map[string]string{"description": text}, http.StatusOK)
}

func (h *AssistHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	text, err := h.assistService.Recommend(r.Context())
	if err != nil {
		WriteErr(h.log, w, r, err)
		return
	}
	res.Json(w, map[string]string{"recommendations": text}, http.StatusOK)
}
