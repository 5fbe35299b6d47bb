package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/servimas/cortineros/internal/auth"
	"github.com/servimas/cortineros/internal/http/account"
	"github.com/servimas/cortineros/internal/http/billing"
	"github.com/servimas/cortineros/internal/http/dashboard"
	"github.com/servimas/cortineros/internal/http/movement"
	"github.com/servimas/cortineros/internal/logger"
)

type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
}

func New(
	authn *auth.Authenticator,
	accountsV1 *account.Handler,
	movementsV1 *movement.Handler,
	dashboardV1 *dashboard.Handler,
	billingV1 *billing.Handler,
	opts Options,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(opts.Logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authn.Authenticate)

		r.Route("/accounts", accountsV1.Routes)

		r.Route("/movements", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			movementsV1.Routes(r)
		})

		r.Route("/dashboard", dashboardV1.Routes)
		r.Route("/billing", billingV1.Routes)
	})

	return router
}
