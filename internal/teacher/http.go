package teacher

import (
	"errors"
	"log/slog"
	"net/http"

	"records-service/common/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type createResponse struct {
	Success bool     `json:"success"`
	Teacher *Teacher `json:"teacher,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type seedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/teachers", h.CreateTeacher)
	router.Post("/setup/default-teachers", h.SeedDefaults)
}

func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/teachers", h.ListTeachers)
}

func (h *Handler) CreateTeacher(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithJSON(w, http.StatusBadRequest, createResponse{Error: err.Error()})
		return
	}

	created, err := h.service.CreateTeacher(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			httputil.RespondWithJSON(w, http.StatusBadRequest, createResponse{Error: "Email already exists"})
		case errors.Is(err, ErrInvalidInput):
			h.logger.InfoContext(r.Context(), "invalid teacher input", "error", err)
			httputil.RespondWithJSON(w, http.StatusBadRequest, createResponse{Error: err.Error()})
		default:
			h.logger.ErrorContext(r.Context(), "failed to create teacher", "error", err)
			httputil.RespondWithJSON(w, http.StatusInternalServerError, createResponse{Error: "Internal server error"})
		}
		return
	}

	httputil.RespondWithJSON(w, http.StatusCreated, createResponse{Success: true, Teacher: created})
}

func (h *Handler) ListTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.service.ListTeachers(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list teachers", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, teachers)
}

func (h *Handler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SeedDefaults(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to seed default teachers", "error", err)
		httputil.RespondWithJSON(w, http.StatusInternalServerError, seedResponse{Error: "Failed to create default teachers"})
		return
	}

	msg := "Default teachers created"
	if !result.Created {
		msg = "Teachers already exist"
	}
	httputil.RespondWithJSON(w, http.StatusOK, seedResponse{Success: true, Message: msg, Count: result.Count})
}
