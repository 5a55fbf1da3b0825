package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"records-service/common/httputil"
	"records-service/common/metrics"

	"github.com/go-chi/chi/v5"
)

// Pinger is implemented by *bun.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const DependencyDatabase = "postgres"

type Handler struct {
	db      Pinger
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHandler(db Pinger, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		db:      db,
		metrics: m,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready reports 503 until the database answers a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	h.metrics.Health.RecordDependencyCheck(ctx, DependencyDatabase, time.Since(start), err)

	if err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "dependency", DependencyDatabase, "error", err)
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Checks: map[string]string{DependencyDatabase: "down"},
		})
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
		Checks: map[string]string{DependencyDatabase: "up"},
	})
}
