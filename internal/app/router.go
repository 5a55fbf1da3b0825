package app

import (
	"log/slog"

	commonmetrics "records-service/common/metrics"
	"records-service/internal/auth"
	"records-service/internal/health"
	"records-service/internal/middleware"
	"records-service/internal/student"
	"records-service/internal/teacher"
	"records-service/internal/web"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Student     *student.Handler
	Teacher     *teacher.Handler
	Auth        *auth.Handler
	Health      *health.Handler
	Tokens      *auth.TokenManager
	Metrics     *commonmetrics.Metrics
	Logger      *slog.Logger
	CORSOrigins []string
	StaticDir   string
	// EnforceAuth puts the token middleware in front of protected routes.
	EnforceAuth bool
}

func NewRouter(deps RouterDeps) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.Use(deps.Metrics.HTTP.Middleware)

	// Health endpoints (no auth required)
	deps.Health.RegisterRoutes(router)

	router.Route("/api", func(r chi.Router) {
		r.NotFound(web.APINotFound)

		deps.Auth.RegisterPublicRoutes(r)
		deps.Teacher.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			if deps.EnforceAuth {
				r.Use(auth.Middleware(deps.Tokens, deps.Logger))
			}
			deps.Auth.RegisterProtectedRoutes(r)
			deps.Teacher.RegisterProtectedRoutes(r)
			deps.Student.RegisterRoutes(r)
		})
	})

	spa := web.NewSPA(deps.StaticDir)
	router.NotFound(spa.ServeHTTP)

	return router
}
