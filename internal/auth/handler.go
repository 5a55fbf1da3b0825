package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"records-service/common/httputil"
	"records-service/internal/teacher"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Success bool             `json:"success"`
	Teacher *teacher.Summary `json:"teacher,omitempty"`
	Token   string           `json:"token,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type Handler struct {
	service       *Service
	logger        *slog.Logger
	validator     *validator.Validate
	secureCookies bool
}

func NewHandler(service *Service, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		validator:     validator.New(),
		secureCookies: secureCookies,
	}
}

func (h *Handler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/logout", h.Logout)
}

func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/auth/me", h.Me)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondWithJSON(w, http.StatusBadRequest, LoginResponse{Error: err.Error()})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.WarnContext(r.Context(), "login validation failed", "error", err)
		httputil.RespondWithJSON(w, http.StatusBadRequest, LoginResponse{Error: "Email and password are required"})
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, teacher.ErrInvalidCredentials) {
			h.logger.InfoContext(r.Context(), "login rejected", "email", req.Email)
			httputil.RespondWithJSON(w, http.StatusUnauthorized, LoginResponse{Error: "Invalid email or password"})
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithJSON(w, http.StatusInternalServerError, LoginResponse{Error: "Internal server error"})
		return
	}

	h.logger.InfoContext(r.Context(), "teacher logged in", "email", session.Teacher.Email)

	SetAuthCookie(w, session.Token, session.ExpiresAt, h.secureCookies)
	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Teacher: &session.Teacher,
		Token:   session.Token,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearAuthCookie(w, h.secureCookies)
	httputil.NoContent(w)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := GetTeacherID(r.Context())
	if !ok {
		httputil.RespondWithJSON(w, http.StatusUnauthorized, LoginResponse{Error: "unauthorized"})
		return
	}

	summary, err := h.service.CurrentTeacher(r.Context(), id)
	if err != nil {
		if errors.Is(err, teacher.ErrTeacherNotFound) {
			httputil.RespondWithJSON(w, http.StatusUnauthorized, LoginResponse{Error: "unauthorized"})
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to load current teacher", "error", err)
		httputil.RespondWithJSON(w, http.StatusInternalServerError, LoginResponse{Error: "Internal server error"})
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, LoginResponse{Success: true, Teacher: summary})
}
